package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"film_camp/internal/database"
	"film_camp/internal/global"
	"film_camp/internal/logger"

	"github.com/gofiber/fiber/v3"
)

// initLogger khởi tạo logger cho toàn bộ ứng dụng. Logger tự đọc biến môi trường LOG_*.
func initLogger() {
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	logger.GetAppLogger().Info("Logger system initialized successfully")
}

// resolvePath tìm đường dẫn tương đối tính từ thư mục chứa config/env
func resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	currentDir, err := os.Getwd()
	if err != nil {
		return path
	}
	for {
		if _, err := os.Stat(filepath.Join(currentDir, "config", "env")); err == nil {
			return filepath.Join(currentDir, path)
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return path
		}
		currentDir = parentDir
	}
}

// main_thread chạy Fiber server tới khi nhận tín hiệu dừng
func main_thread(app *fiber.App) {
	cfg := global.ServerConfig
	address := ":" + cfg.Address
	log := logger.GetAppLogger()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("Đang dừng server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("Không thể dừng server")
		}
	}()

	if cfg.EnableTLS && cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		certPath := resolvePath(cfg.TLSCertFile)
		keyPath := resolvePath(cfg.TLSKeyFile)

		cert, err := tls.LoadX509KeyPair(certPath, keyPath)
		if err != nil {
			log.Fatalf("Error loading TLS certificate: %v", err)
		}
		ln, err := net.Listen("tcp", address)
		if err != nil {
			log.Fatalf("Error creating listener: %v", err)
		}
		tlsListener := tls.NewListener(ln, &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		})

		log.WithFields(map[string]interface{}{
			"address": address,
			"cert":    certPath,
		}).Info("Starting server with HTTPS/TLS")
		if err := app.Listener(tlsListener); err != nil {
			log.Fatalf("Error in Fiber Listener with TLS: %v", err)
		}
		return
	}

	log.WithFields(map[string]interface{}{
		"address":  address,
		"protocol": "HTTP",
	}).Info("Starting server with HTTP")
	if err := app.Listen(address, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		log.Fatalf("Error in Fiber Listen: %v", err)
	}
}

// Hàm main
func main() {
	initLogger()
	defer logger.Close()

	// Cấu hình, validator, MongoDB, Firebase
	InitGlobal()
	defer logger.FlushRollbar()
	defer database.CloseInstance(global.MongoDB_Session)

	// Đăng ký collections vào registry
	InitRegistry()

	// Nâng quyền admin mặc định
	InitDefaultData()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cache, transaction, hàng đợi email, storage, hub SSE
	deps := InitDeps(ctx)
	defer deps.Cache.Close()

	app, err := InitFiberApp(deps)
	if err != nil {
		logger.GetAppLogger().Fatalf("Failed to initialize routes: %v", err)
	}

	main_thread(app)
}
