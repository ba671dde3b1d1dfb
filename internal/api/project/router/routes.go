// Package router đăng ký các route thuộc domain project.
package router

import (
	"fmt"

	basesvc "film_camp/internal/api/base/service"
	projecthdl "film_camp/internal/api/project/handler"
	models "film_camp/internal/api/project/models"
	projectsvc "film_camp/internal/api/project/service"
	apirouter "film_camp/internal/api/router"
	"film_camp/internal/global"

	"github.com/gofiber/fiber/v3"
)

// NewService tạo ProjectService từ collection đã đăng ký
func NewService(deps apirouter.Deps) (*projectsvc.ProjectService, error) {
	store, err := basesvc.FromRegistry[models.Project](global.MongoDB_ColNames.Projects)
	if err != nil {
		return nil, err
	}
	return projectsvc.NewProjectService(store, deps.Cache), nil
}

// Register đăng ký /projects, ai cũng xem được, đăng nhập với vai trò admin/editor thấy thêm dự án ẩn
func Register(v1 fiber.Router, r *apirouter.Router) error {
	service, err := NewService(r.Deps())
	if err != nil {
		return fmt.Errorf("failed to create project service: %w", err)
	}
	h := projecthdl.NewProjectHandler(service)

	r.Mount(v1, "/projects", []fiber.Handler{r.OptionalAuth()},
		apirouter.GET("", h.HandleList),
		apirouter.GET("/:id", h.HandleGet),
	)
	return nil
}
