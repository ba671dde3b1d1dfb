// Package router đăng ký route bình luận cho hồ sơ và phim ngắn.
package router

import (
	"fmt"

	appmodels "film_camp/internal/api/application/models"
	basesvc "film_camp/internal/api/base/service"
	reviewhdl "film_camp/internal/api/review/handler"
	models "film_camp/internal/api/review/models"
	reviewsvc "film_camp/internal/api/review/service"
	apirouter "film_camp/internal/api/router"
	filmmodels "film_camp/internal/api/shortfilm/models"
	"film_camp/internal/global"

	"github.com/gofiber/fiber/v3"
)

// NewService tạo ReviewService cho hai loại đối tượng cha: hồ sơ và phim ngắn
func NewService(deps apirouter.Deps) (*reviewsvc.ReviewService, error) {
	names := global.MongoDB_ColNames
	apps, err := basesvc.FromRegistry[appmodels.Application](names.Applications)
	if err != nil {
		return nil, err
	}
	films, err := basesvc.FromRegistry[filmmodels.ShortFilm](names.ShortFilms)
	if err != nil {
		return nil, err
	}
	appComments, err := basesvc.FromRegistry[models.Comment](names.ApplicationComments)
	if err != nil {
		return nil, err
	}
	filmComments, err := basesvc.FromRegistry[models.Comment](names.ShortFilmComments)
	if err != nil {
		return nil, err
	}
	if deps.Tx == nil {
		return nil, fmt.Errorf("review service cần transactor")
	}

	return reviewsvc.NewReviewService(deps.Tx, map[string]reviewsvc.Source{
		models.KindApplication: {Comments: appComments, Parents: reviewsvc.NewParentStore[appmodels.Application](apps)},
		models.KindShortFilm:   {Comments: filmComments, Parents: reviewsvc.NewParentStore[filmmodels.ShortFilm](films)},
	}), nil
}

// Register đăng ký /applications/:id/comments và /shortfilms/:id/comments
func Register(v1 fiber.Router, r *apirouter.Router) error {
	service, err := NewService(r.Deps())
	if err != nil {
		return fmt.Errorf("failed to create review service: %w", err)
	}
	appHandler := reviewhdl.NewReviewHandler(service, models.KindApplication)
	filmHandler := reviewhdl.NewReviewHandler(service, models.KindShortFilm)

	r.Mount(v1, "/applications", []fiber.Handler{r.RequireAuth()},
		apirouter.GET("/:id/comments", appHandler.HandleList),
		apirouter.POST("/:id/comments", appHandler.HandleAdd),
		apirouter.PUT("/:id/comments/:commentId", appHandler.HandleEdit),
	)
	r.Mount(v1, "/shortfilms", []fiber.Handler{r.RequireAuth()},
		apirouter.GET("/:id/comments", filmHandler.HandleList),
		apirouter.POST("/:id/comments", filmHandler.HandleAdd),
		apirouter.PUT("/:id/comments/:commentId", filmHandler.HandleEdit),
	)
	return nil
}
