package projecthdl

import (
	basehdl "film_camp/internal/api/base/handler"
	projectdto "film_camp/internal/api/project/dto"
	projectsvc "film_camp/internal/api/project/service"

	"github.com/gofiber/fiber/v3"
)

// ProjectHandler xử lý các request đọc dự án
type ProjectHandler struct {
	*basehdl.BaseHandler
	service *projectsvc.ProjectService
}

// NewProjectHandler tạo ProjectHandler
func NewProjectHandler(service *projectsvc.ProjectService) *ProjectHandler {
	return &ProjectHandler{BaseHandler: basehdl.NewBaseHandler(), service: service}
}

// HandleList trả về danh sách dự án
func (h *ProjectHandler) HandleList(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var q projectdto.ProjectListQuery
		if err := h.ParseRequestQuery(c, &q); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		projects, err := h.service.List(c.Context(), h.Session(c), q)
		h.HandleResponse(c, projects, err)
		return nil
	})
}

// HandleGet trả về chi tiết dự án
func (h *ProjectHandler) HandleGet(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		project, err := h.service.Get(c.Context(), h.Session(c), c.Params("id"))
		h.HandleResponse(c, project, err)
		return nil
	})
}
