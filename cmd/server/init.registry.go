package main

import (
	"film_camp/internal/global"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

func InitRegistry() {
	if err := InitCollections(global.MongoDB_Database); err != nil {
		logrus.Fatalf("Failed to initialize collections: %v", err)
	}
	logrus.Info("Initialized collection registry")
}

// InitCollections đăng ký các collection MongoDB vào global.RegistryCollections
func InitCollections(db *mongo.Database) error {
	for name := range collectionModels() {
		registered, err := global.RegistryCollections.Register(name, db.Collection(name))
		if err != nil {
			logrus.Errorf("Failed to register collection %s: %v", name, err)
			return err
		}
		if !registered {
			logrus.Warnf("Collection %s already registered", name)
		}
	}
	return nil
}
