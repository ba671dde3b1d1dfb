// Package router đăng ký các route thuộc domain auth: đăng nhập, hồ sơ cá nhân, quản lý người dùng, health check.
package router

import (
	"fmt"
	"time"

	authhdl "film_camp/internal/api/auth/handler"
	models "film_camp/internal/api/auth/models"
	authsvc "film_camp/internal/api/auth/service"
	basehdl "film_camp/internal/api/base/handler"
	basesvc "film_camp/internal/api/base/service"
	apirouter "film_camp/internal/api/router"
	"film_camp/internal/global"
	"film_camp/internal/session"
	"film_camp/internal/utility"

	"github.com/gofiber/fiber/v3"
)

// NewService tạo UserService dùng Firebase Auth đã khởi tạo (utility.InitFirebase)
func NewService(deps apirouter.Deps) (*authsvc.UserService, error) {
	users, err := basesvc.FromRegistry[models.User](global.MongoDB_ColNames.Users)
	if err != nil {
		return nil, err
	}
	client := utility.GetFirebaseAuth()
	if client == nil {
		return nil, fmt.Errorf("firebase auth chưa được khởi tạo")
	}

	cfg := deps.Config
	emulatorHost := ""
	if cfg.UseFirebaseEmulator {
		emulatorHost = cfg.FirebaseAuthEmulatorHost
	}
	identity := authsvc.NewFirebaseIdentity(client, utility.NewIdentityToolkitClient(cfg.FirebaseAPIKey, emulatorHost))
	issuer := session.NewIssuer(cfg.JwtSecret, time.Duration(cfg.JwtTTLHours)*time.Hour)

	var mailer authsvc.Mailer
	if deps.Mail != nil {
		mailer = deps.Mail
	}
	return authsvc.NewUserService(users, identity, issuer, deps.Cache, mailer), nil
}

// Register đăng ký /auth (công khai), /me (đã đăng nhập), /users (admin) và /system/health
func Register(v1 fiber.Router, r *apirouter.Router) error {
	userService, err := NewService(r.Deps())
	if err != nil {
		return fmt.Errorf("failed to create user service: %w", err)
	}
	h := authhdl.NewUserHandler(userService)

	r.Mount(v1, "/auth", nil,
		apirouter.POST("/register", h.HandleRegister),
		apirouter.POST("/login", h.HandleLogin),
		apirouter.POST("/login/firebase", h.HandleLoginWithFirebase),
		apirouter.POST("/password-reset", h.HandlePasswordReset),
	)
	r.Mount(v1, "/me", []fiber.Handler{r.RequireAuth()},
		apirouter.GET("", h.HandleMe),
		apirouter.PUT("/profile", h.HandleUpdateProfile),
		apirouter.POST("/logout", h.HandleLogout),
	)
	r.Mount(v1, "/users", []fiber.Handler{r.RequireAuth(session.RoleAdmin)},
		apirouter.GET("", h.HandleSearchUsers),
		apirouter.PUT("/:id/role", h.HandleUpdateRole),
	)

	systemHandler := basehdl.NewSystemHandler()
	r.Mount(v1, "/system", nil,
		apirouter.GET("/health", systemHandler.HandleHealth),
	)
	return nil
}
