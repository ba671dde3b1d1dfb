// Package router đăng ký route phim ngắn.
package router

import (
	"fmt"

	appmodels "film_camp/internal/api/application/models"
	basesvc "film_camp/internal/api/base/service"
	apirouter "film_camp/internal/api/router"
	filmhdl "film_camp/internal/api/shortfilm/handler"
	models "film_camp/internal/api/shortfilm/models"
	filmsvc "film_camp/internal/api/shortfilm/service"
	"film_camp/internal/global"

	"github.com/gofiber/fiber/v3"
)

// NewService tạo ShortFilmService, cần Deps.Store
func NewService(deps apirouter.Deps) (*filmsvc.ShortFilmService, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("shortfilm service cần object store")
	}
	films, err := basesvc.FromRegistry[models.ShortFilm](global.MongoDB_ColNames.ShortFilms)
	if err != nil {
		return nil, err
	}
	apps, err := basesvc.FromRegistry[appmodels.Application](global.MongoDB_ColNames.Applications)
	if err != nil {
		return nil, err
	}
	return filmsvc.NewShortFilmService(films, apps, deps.Store), nil
}

// Register đăng ký /applications/:id/shortfilms và /shortfilms/:id
func Register(v1 fiber.Router, r *apirouter.Router) error {
	service, err := NewService(r.Deps())
	if err != nil {
		return fmt.Errorf("failed to create shortfilm service: %w", err)
	}
	h := filmhdl.NewShortFilmHandler(service)

	r.Mount(v1, "/applications", []fiber.Handler{r.RequireAuth()},
		apirouter.GET("/:id/shortfilms", h.HandleListByApplication),
		apirouter.POST("/:id/shortfilms", h.HandleUpload),
	)
	r.Mount(v1, "/shortfilms", []fiber.Handler{r.RequireAuth()},
		apirouter.GET("/:id", h.HandleGet),
		apirouter.DELETE("/:id", h.HandleDelete),
	)
	return nil
}
