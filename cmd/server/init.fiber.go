package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	approuter "film_camp/internal/api/application/router"
	authrouter "film_camp/internal/api/auth/router"
	basehdl "film_camp/internal/api/base/handler"
	formrouter "film_camp/internal/api/form/router"
	memberrouter "film_camp/internal/api/member/router"
	projectrouter "film_camp/internal/api/project/router"
	reviewrouter "film_camp/internal/api/review/router"
	apirouter "film_camp/internal/api/router"
	filmrouter "film_camp/internal/api/shortfilm/router"
	uploadrouter "film_camp/internal/api/upload/router"
	"film_camp/internal/common"
	"film_camp/internal/global"
	"film_camp/internal/logger"
	"film_camp/internal/storage"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
)

// errorCodeForStatus ánh xạ lỗi *fiber.Error sang mã lỗi của hệ thống
func errorCodeForStatus(status int) common.ErrorCode {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge:
		return common.ErrCodeValidationInput
	case fiber.StatusUnauthorized:
		return common.ErrCodeAuthToken
	case fiber.StatusForbidden:
		return common.ErrCodeAuthRole
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return common.ErrCodeDatabaseQuery
	case fiber.StatusTooManyRequests:
		return common.ErrCodeBusinessOperation
	}
	return common.ErrCodeInternalServer
}

// InitFiberApp khởi tạo ứng dụng Fiber với các middleware cần thiết và route của mọi domain
func InitFiberApp(deps apirouter.Deps) (*fiber.App, error) {
	cfg := global.ServerConfig

	app := fiber.New(fiber.Config{
		AppName:       "Film Camp API",
		ServerHeader:  "Film Camp API",
		StrictRouting: true,
		CaseSensitive: true,
		UnescapePath:  true,

		// Video phim ngắn tối đa 500MB, cộng thêm phần multipart
		BodyLimit:       int(storage.VideoRule.MaxSize) + 10*1024*1024,
		ReadBufferSize:  8192,
		WriteBufferSize: 4096,

		// Upload video lớn cần đọc lâu, SSE giữ kết nối nên không đặt WriteTimeout
		ReadTimeout: 10 * time.Minute,
		IdleTimeout: 120 * time.Second,

		ErrorHandler: func(c fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				logger.WithRequest(c).WithFields(map[string]interface{}{
					"code":    fe.Code,
					"message": fe.Message,
				}).Warn("Request error")
				basehdl.WriteError(c, common.NewError(errorCodeForStatus(fe.Code), fe.Message, fe.Code, nil))
				return nil
			}
			basehdl.WriteError(c, err)
			return nil
		},
	})

	// 1. Request ID
	app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return fmt.Sprintf("%d", time.Now().UnixNano())
		},
	}))

	// 2. CORS phải đặt trước để xử lý preflight
	allowOrigins := []string{"*"}
	if cfg.CORS_Origins != "*" {
		allowOrigins = strings.Split(cfg.CORS_Origins, ",")
		for i, origin := range allowOrigins {
			allowOrigins[i] = strings.TrimSpace(origin)
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-Requested-With"},
		AllowCredentials: cfg.CORS_AllowCredentials,
		ExposeHeaders:    []string{"Content-Length", "Content-Range", "X-Request-ID"},
		MaxAge:           24 * 60 * 60,
	}))

	// 3. Security headers
	app.Use(func(c fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	})

	// 4. Rate limit theo IP, bỏ qua health check, preflight và luồng SSE
	log := logger.GetAppLogger()
	if cfg.RateLimit_Enabled && cfg.RateLimit_Max > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit_Max,
			Expiration: time.Duration(cfg.RateLimit_Window) * time.Second,
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c fiber.Ctx) error {
				basehdl.WriteError(c, common.NewError(common.ErrCodeBusinessOperation, "Quá nhiều yêu cầu, vui lòng thử lại sau", fiber.StatusTooManyRequests, nil))
				return nil
			},
			Next: func(c fiber.Ctx) bool {
				return c.Path() == "/api/v1/system/health" ||
					c.Method() == fiber.MethodOptions ||
					strings.HasSuffix(c.Path(), "/stream")
			},
		}))
		log.Infof("Rate limiting enabled: %d requests per %d seconds", cfg.RateLimit_Max, cfg.RateLimit_Window)
	} else {
		log.Info("Rate limiting disabled")
	}

	// 5. Recover
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			logger.WithRequest(c).WithField("panic", fmt.Sprint(e)).Error("Panic recovered")
		},
	}))

	regs := []apirouter.RegisterFunc{
		authrouter.Register,
		projectrouter.Register,
		approuter.Register,
		memberrouter.Register,
		formrouter.Register,
	}
	if deps.Tx != nil {
		regs = append(regs, reviewrouter.Register)
	}
	if deps.Store != nil {
		regs = append(regs, filmrouter.Register, uploadrouter.Register)
	}
	if err := apirouter.SetupRoutes(app, deps, regs...); err != nil {
		return nil, err
	}
	return app, nil
}
