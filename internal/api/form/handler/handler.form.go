package formhdl

import (
	"strconv"

	appdto "film_camp/internal/api/application/dto"
	basehdl "film_camp/internal/api/base/handler"
	formsvc "film_camp/internal/api/form/service"
	"film_camp/internal/common"

	"github.com/gofiber/fiber/v3"
)

// FormHandler xử lý điều hướng các bước form đăng ký
type FormHandler struct {
	*basehdl.BaseHandler
	service *formsvc.FormService
}

// NewFormHandler tạo FormHandler
func NewFormHandler(service *formsvc.FormService) *FormHandler {
	return &FormHandler{BaseHandler: basehdl.NewBaseHandler(), service: service}
}

// HandleNext lưu dữ liệu của bước hiện tại và chuyển sang bước sau
func (h *FormHandler) HandleNext(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var patch appdto.ApplicationPatch
		if err := h.ParseRequestBody(c, &patch); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		app, err := h.service.Next(c.Context(), h.Session(c), c.Params("id"), &patch)
		h.HandleResponse(c, app, err)
		return nil
	})
}

// HandlePrevious lùi một bước
func (h *FormHandler) HandlePrevious(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		app, err := h.service.Previous(c.Context(), h.Session(c), c.Params("id"))
		h.HandleResponse(c, app, err)
		return nil
	})
}

// HandleSubmit nộp hồ sơ từ bước xem lại
func (h *FormHandler) HandleSubmit(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		app, err := h.service.Submit(c.Context(), h.Session(c), c.Params("id"))
		h.HandleResponse(c, app, err)
		return nil
	})
}

// HandleValidate kiểm tra một bước trên dữ liệu đã lưu
func (h *FormHandler) HandleValidate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		step, err := strconv.Atoi(c.Params("step"))
		if err != nil {
			h.HandleResponse(c, nil, common.NewValidationError(common.FieldError{Field: "step", Message: "Bước không hợp lệ"}))
			return nil
		}
		result, err := h.service.Check(c.Context(), h.Session(c), c.Params("id"), step)
		h.HandleResponse(c, result, err)
		return nil
	})
}
