// Package router đăng ký route hồ sơ đăng ký cho người nộp (/applications) và ban giám khảo (/admin).
package router

import (
	"fmt"

	apphdl "film_camp/internal/api/application/handler"
	models "film_camp/internal/api/application/models"
	appsvc "film_camp/internal/api/application/service"
	basesvc "film_camp/internal/api/base/service"
	memberrouter "film_camp/internal/api/member/router"
	projectrouter "film_camp/internal/api/project/router"
	reviewrouter "film_camp/internal/api/review/router"
	apirouter "film_camp/internal/api/router"
	filmrouter "film_camp/internal/api/shortfilm/router"
	"film_camp/internal/global"
	"film_camp/internal/logger"
	"film_camp/internal/session"

	"github.com/gofiber/fiber/v3"
)

// NewService tạo ApplicationService kèm roster, bình luận, phim ngắn và hàng đợi thư.
// Thiếu Tx thì màn chi tiết không có bình luận, thiếu Store thì không có phim ngắn.
func NewService(deps apirouter.Deps) (*appsvc.ApplicationService, error) {
	apps, err := basesvc.FromRegistry[models.Application](global.MongoDB_ColNames.Applications)
	if err != nil {
		return nil, err
	}
	projects, err := projectrouter.NewService(deps)
	if err != nil {
		return nil, err
	}
	roster, err := memberrouter.NewService(deps)
	if err != nil {
		return nil, err
	}

	opts := appsvc.Options{
		Projects: projects,
		Roster:   roster,
	}
	if deps.Config != nil {
		opts.ItemsPerPage = deps.Config.ItemsPerPage
		opts.FrontendURL = deps.Config.FrontendURL
	}
	if deps.Mail != nil {
		opts.Mailer = deps.Mail
	}
	service := appsvc.NewApplicationService(apps, opts)

	if deps.Tx != nil {
		comments, err := reviewrouter.NewService(deps)
		if err != nil {
			return nil, err
		}
		service.SetComments(comments)
	} else {
		logger.GetAppLogger().Warn("📋 [APPLICATION] Không có transactor, chi tiết hồ sơ sẽ không kèm bình luận")
	}
	if deps.Store != nil {
		films, err := filmrouter.NewService(deps)
		if err != nil {
			return nil, err
		}
		service.SetFilms(films)
	}
	return service, nil
}

// Register đăng ký /applications (đã đăng nhập) và /admin (ban giám khảo, vai trò chi tiết kiểm tra ở service)
func Register(v1 fiber.Router, r *apirouter.Router) error {
	service, err := NewService(r.Deps())
	if err != nil {
		return fmt.Errorf("failed to create application service: %w", err)
	}
	h := apphdl.NewApplicationHandler(service, r.Deps().Hub)

	r.Mount(v1, "/applications", []fiber.Handler{r.RequireAuth()},
		apirouter.POST("", h.HandleEnsureDraft),
		apirouter.GET("", h.HandleListMine),
		apirouter.GET("/suggest-group-name", h.HandleSuggestGroupName),
		apirouter.GET("/:id", h.HandleGet),
		apirouter.GET("/:id/detail", h.HandleDetail),
		apirouter.PUT("/:id", h.HandleSaveDraft),
		apirouter.POST("/:id/cancel", h.HandleCancel),
		apirouter.GET("/:id/stream", h.HandleStream),
	)
	r.Mount(v1, "/admin", []fiber.Handler{r.RequireAuth(session.RoleAdmin, session.RoleEditor, session.RoleCommentor)},
		apirouter.GET("/applications", h.HandleListForReview),
		apirouter.PUT("/applications/:id/status", h.HandleSetStatus),
		apirouter.GET("/stats", h.HandleStats),
	)
	return nil
}
