package main

import (
	"context"
	"errors"
	"time"

	authmodels "film_camp/internal/api/auth/models"
	basesvc "film_camp/internal/api/base/service"
	"film_camp/internal/common"
	"film_camp/internal/global"
	"film_camp/internal/logger"
	"film_camp/internal/session"

	"go.mongodb.org/mongo-driver/bson"
)

// InitDefaultData nâng quyền admin cho FIREBASE_ADMIN_UID. Người dùng phải đã đăng nhập ít nhất một lần.
func InitDefaultData() {
	log := logger.GetAppLogger()
	uid := global.ServerConfig.FirebaseAdminUID
	if uid == "" {
		log.Info("🔄 [INIT] FIREBASE_ADMIN_UID not set, bỏ qua tạo admin mặc định")
		return
	}

	users, err := basesvc.FromRegistry[authmodels.User](global.MongoDB_ColNames.Users)
	if err != nil {
		log.Fatalf("Failed to load users collection: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := promoteAdmin(ctx, users, uid); err != nil {
		log.WithError(err).WithField("uid", uid).Warn("🔄 [INIT] Không thể nâng quyền admin")
		return
	}
	log.WithField("uid", uid).Info("✅ [INIT] Admin user initialized")
}

func promoteAdmin(ctx context.Context, users basesvc.BaseServiceMongo[authmodels.User], uid string) error {
	user, err := users.FindOneById(ctx, uid)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.WithDetails(common.ErrNotFound, "người dùng chưa đăng nhập lần nào")
		}
		return err
	}
	if user.Role == session.RoleAdmin {
		return nil
	}
	_, err = users.UpdateById(ctx, uid, bson.M{"role": session.RoleAdmin})
	return err
}
