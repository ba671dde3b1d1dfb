package main

import (
	"context"
	"time"

	"film_camp/config"
	appmodels "film_camp/internal/api/application/models"
	authmodels "film_camp/internal/api/auth/models"
	membermodels "film_camp/internal/api/member/models"
	projectmodels "film_camp/internal/api/project/models"
	reviewmodels "film_camp/internal/api/review/models"
	filmmodels "film_camp/internal/api/shortfilm/models"
	"film_camp/internal/database"
	"film_camp/internal/delivery"
	"film_camp/internal/global"
	"film_camp/internal/logger"
	"film_camp/internal/utility"

	"github.com/sirupsen/logrus"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initConfig()           // Khởi tạo cấu hình server
	initRollbar()          // Gắn Rollbar nếu có token
	initValidator()        // Khởi tạo validator
	initDatabase_MongoDB() // Khởi tạo kết nối database
	initFirebase()         // Khởi tạo Firebase
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatalf("Failed to initialize config: %v", err)
	}
	global.ServerConfig = cfg
	logrus.Info("Initialized server config")
}

func initRollbar() {
	cfg := global.ServerConfig
	if cfg.RollbarToken == "" {
		return
	}
	logger.EnableRollbar(cfg.RollbarToken, cfg.Environment, "")
	logrus.Info("Rollbar enabled")
}

// Hàm khởi tạo validator (đăng ký custom validators và bản dịch lỗi)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// collectionModels gắn mỗi collection với model khai báo index bằng tag
func collectionModels() map[string]interface{} {
	names := global.MongoDB_ColNames
	return map[string]interface{}{
		names.Users:               authmodels.User{},
		names.Projects:            projectmodels.Project{},
		names.Applications:        appmodels.Application{},
		names.ApplicationMembers:  membermodels.Member{},
		names.ApplicationComments: reviewmodels.Comment{},
		names.ShortFilms:          filmmodels.ShortFilm{},
		names.ShortFilmComments:   reviewmodels.Comment{},
		names.DeliveryQueue:       delivery.QueueItem{},
	}
}

// Hàm khởi tạo kết nối database, collections và index
func initDatabase_MongoDB() {
	var err error
	cfg := global.ServerConfig
	global.MongoDB_Session, err = database.GetInstance(cfg)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	global.MongoDB_Database = global.MongoDB_Session.Database(cfg.MongoDB_DBName)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	models := collectionModels()
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	if err := database.EnsureCollections(ctx, global.MongoDB_Database, names); err != nil {
		logrus.Fatalf("Failed to ensure collections: %v", err)
	}
	logrus.Info("Ensured database and collections")

	for name, model := range models {
		if err := database.CreateIndexes(ctx, global.MongoDB_Database.Collection(name), model); err != nil {
			logrus.WithError(err).WithField("collection", name).Warn("Failed to create indexes")
		}
	}
	if err := database.CreateAdditionalIndexes(ctx, global.MongoDB_Database); err != nil {
		logrus.Fatalf("Failed to create partial indexes: %v", err)
	}
	logrus.Info("Ensured indexes")
}

// initFirebase khởi tạo Firebase Admin SDK (Auth + Storage)
func initFirebase() {
	cfg := global.ServerConfig
	if cfg.FirebaseProjectID == "" {
		logrus.Fatal("FIREBASE_PROJECT_ID chưa được cấu hình")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := utility.InitFirebase(ctx, cfg); err != nil {
		logrus.Fatalf("Failed to initialize Firebase: %v", err)
	}

	logrus.WithField("emulator", cfg.UseFirebaseEmulator).Info("Firebase initialized successfully")
}
