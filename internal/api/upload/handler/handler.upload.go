package uploadhdl

import (
	basehdl "film_camp/internal/api/base/handler"
	uploaddto "film_camp/internal/api/upload/dto"
	uploadsvc "film_camp/internal/api/upload/service"
	"film_camp/internal/global"

	"github.com/gofiber/fiber/v3"
)

// UploadHandler xử lý upload file
type UploadHandler struct {
	*basehdl.BaseHandler
	service *uploadsvc.UploadService
}

// NewUploadHandler tạo UploadHandler
func NewUploadHandler(service *uploadsvc.UploadService) *UploadHandler {
	return &UploadHandler{BaseHandler: basehdl.NewBaseHandler(), service: service}
}

// HandleUploadProjectFile nhận multipart gồm "file" và "applicationId"
func (h *UploadHandler) HandleUploadProjectFile(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		form := uploaddto.ProjectFileForm{ApplicationID: c.FormValue("applicationId")}
		if err := global.ValidateStruct(&form); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		file, closeFile, err := h.FormFile(c, "file")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		defer closeFile()

		pf, err := h.service.UploadProjectFile(c.Context(), h.Session(c), form.ApplicationID, file)
		h.HandleResponse(c, pf, err)
		return nil
	})
}

// HandleDeleteProjectFile gỡ file dự án khỏi hồ sơ
func (h *UploadHandler) HandleDeleteProjectFile(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input uploaddto.DeleteProjectFileInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		err := h.service.DeleteProjectFile(c.Context(), h.Session(c), &input)
		h.HandleResponse(c, nil, err)
		return nil
	})
}

// HandleUploadProfileImage nhận ảnh đại diện (field "file")
func (h *UploadHandler) HandleUploadProfileImage(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		file, closeFile, err := h.FormFile(c, "file")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		defer closeFile()

		obj, err := h.service.UploadProfileImage(c.Context(), h.Session(c), file)
		h.HandleResponse(c, obj, err)
		return nil
	})
}

// HandleDeleteByURL xóa file theo URL tải
func (h *UploadHandler) HandleDeleteByURL(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input uploaddto.DeleteByURLInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		err := h.service.DeleteByURL(c.Context(), h.Session(c), input.URL)
		h.HandleResponse(c, nil, err)
		return nil
	})
}
