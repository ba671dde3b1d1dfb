// Package router đăng ký route upload file dự án và ảnh đại diện.
package router

import (
	"fmt"

	approuter "film_camp/internal/api/application/router"
	authrouter "film_camp/internal/api/auth/router"
	apirouter "film_camp/internal/api/router"
	uploadhdl "film_camp/internal/api/upload/handler"
	uploadsvc "film_camp/internal/api/upload/service"

	"github.com/gofiber/fiber/v3"
)

// NewService tạo UploadService, cần Deps.Store
func NewService(deps apirouter.Deps) (*uploadsvc.UploadService, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("upload service cần object store")
	}
	apps, err := approuter.NewService(deps)
	if err != nil {
		return nil, err
	}
	users, err := authrouter.NewService(deps)
	if err != nil {
		return nil, err
	}
	return uploadsvc.NewUploadService(deps.Store, apps, users), nil
}

// Register đăng ký /uploads
func Register(v1 fiber.Router, r *apirouter.Router) error {
	service, err := NewService(r.Deps())
	if err != nil {
		return fmt.Errorf("failed to create upload service: %w", err)
	}
	h := uploadhdl.NewUploadHandler(service)

	r.Mount(v1, "/uploads", []fiber.Handler{r.RequireAuth()},
		apirouter.POST("/project-files", h.HandleUploadProjectFile),
		apirouter.DELETE("/project-files", h.HandleDeleteProjectFile),
		apirouter.POST("/profile-image", h.HandleUploadProfileImage),
		apirouter.DELETE("", h.HandleDeleteByURL),
	)
	return nil
}
