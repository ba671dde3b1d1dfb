package main

import (
	"context"

	authrouter "film_camp/internal/api/auth/router"
	basesvc "film_camp/internal/api/base/service"
	"film_camp/internal/api/events"
	apirouter "film_camp/internal/api/router"
	"film_camp/internal/cache"
	"film_camp/internal/database"
	"film_camp/internal/delivery"
	"film_camp/internal/global"
	"film_camp/internal/logger"
	"film_camp/internal/storage"
	"film_camp/internal/utility"
)

// hubBuffer là số sự kiện mỗi client SSE được giữ trước khi bị bỏ
const hubBuffer = 32

// InitDeps tạo các thành phần dùng chung cho domain router và chạy delivery processor nền
func InitDeps(ctx context.Context) apirouter.Deps {
	log := logger.GetAppLogger()
	cfg := global.ServerConfig

	deps := apirouter.Deps{
		Config: cfg,
		Cache:  cache.New(cfg),
		Hub:    events.NewHub(hubBuffer),
	}

	if cfg.MongoDB_Transactions {
		deps.Tx = database.NewMongoTransactor(global.MongoDB_Session)
	} else {
		log.Warn("🗄️ [DATABASE] MONGODB_TRANSACTIONS=false, bình luận chấm điểm sẽ bị tắt")
	}

	if bucket := utility.GetFirebaseBucket(); bucket != nil && cfg.FirebaseStorageBucket != "" {
		emulatorHost := ""
		if cfg.UseFirebaseEmulator {
			emulatorHost = cfg.FirebaseStorageEmulatorHost
		}
		deps.Store = storage.NewFirebaseStore(bucket, cfg.FirebaseStorageBucket, emulatorHost)
	} else {
		log.Warn("🖼️ [UPLOAD] FIREBASE_STORAGE_BUCKET chưa được cấu hình, tắt upload")
	}

	if items, err := basesvc.FromRegistry[delivery.QueueItem](global.MongoDB_ColNames.DeliveryQueue); err != nil {
		log.WithError(err).Error("📦 [DELIVERY] Không tạo được hàng đợi email, tiếp tục không gửi thư")
	} else {
		deps.Mail = delivery.NewQueue(items)
		processor := delivery.NewProcessor(deps.Mail, delivery.NewSender(cfg))
		dlog := logger.WithModule("delivery")
		go utility.GoProtect("delivery-processor", func() {
			dlog.Info("📦 [DELIVERY] Starting Delivery Processor...")
			processor.Start(ctx)
			dlog.Warn("📦 [DELIVERY] Processor đã dừng")
		})
	}

	// Thay đổi của hồ sơ, thành viên, bình luận và phim ngắn được đẩy tới client đang xem hồ sơ đó
	names := global.MongoDB_ColNames
	events.OnDataChanged(deps.Hub.Forward(map[string]string{
		names.Applications:        "ID",
		names.ApplicationMembers:  "ApplicationID",
		names.ApplicationComments: "ParentID",
		names.ShortFilms:          "ApplicationID",
	}))

	resolver, err := authrouter.NewService(deps)
	if err != nil {
		log.Fatalf("Failed to create session resolver: %v", err)
	}
	deps.Resolver = resolver

	return deps
}
