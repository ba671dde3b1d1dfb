// Package router đăng ký route điều hướng form dưới /applications/:id/steps.
package router

import (
	"fmt"

	approuter "film_camp/internal/api/application/router"
	formhdl "film_camp/internal/api/form/handler"
	formsvc "film_camp/internal/api/form/service"
	memberrouter "film_camp/internal/api/member/router"
	apirouter "film_camp/internal/api/router"

	"github.com/gofiber/fiber/v3"
)

// NewService tạo FormService trên ApplicationService và MemberService
func NewService(deps apirouter.Deps) (*formsvc.FormService, error) {
	drafts, err := approuter.NewService(deps)
	if err != nil {
		return nil, err
	}
	teachers, err := memberrouter.NewService(deps)
	if err != nil {
		return nil, err
	}
	return formsvc.NewFormService(drafts, teachers), nil
}

// Register đăng ký các bước form, dùng chung group /applications
func Register(v1 fiber.Router, r *apirouter.Router) error {
	service, err := NewService(r.Deps())
	if err != nil {
		return fmt.Errorf("failed to create form service: %w", err)
	}
	h := formhdl.NewFormHandler(service)

	r.Mount(v1, "/applications", []fiber.Handler{r.RequireAuth()},
		apirouter.POST("/:id/steps/next", h.HandleNext),
		apirouter.POST("/:id/steps/previous", h.HandlePrevious),
		apirouter.POST("/:id/steps/submit", h.HandleSubmit),
		apirouter.GET("/:id/steps/:step/validate", h.HandleValidate),
	)
	return nil
}
