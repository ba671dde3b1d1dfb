package filmhdl

import (
	basehdl "film_camp/internal/api/base/handler"
	filmdto "film_camp/internal/api/shortfilm/dto"
	filmsvc "film_camp/internal/api/shortfilm/service"
	"film_camp/internal/global"

	"github.com/gofiber/fiber/v3"
)

// ShortFilmHandler xử lý các request phim ngắn
type ShortFilmHandler struct {
	*basehdl.BaseHandler
	service *filmsvc.ShortFilmService
}

// NewShortFilmHandler tạo ShortFilmHandler
func NewShortFilmHandler(service *filmsvc.ShortFilmService) *ShortFilmHandler {
	return &ShortFilmHandler{BaseHandler: basehdl.NewBaseHandler(), service: service}
}

// HandleUpload nhận video multipart (field "file", "title")
func (h *ShortFilmHandler) HandleUpload(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		form := filmdto.UploadForm{Title: c.FormValue("title")}
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

		film, err := h.service.Upload(c.Context(), h.Session(c), c.Params("id"), file, form.Title)
		h.HandleResponse(c, film, err)
		return nil
	})
}

// HandleListByApplication trả về phim ngắn của hồ sơ
func (h *ShortFilmHandler) HandleListByApplication(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		films, err := h.service.ListByApplication(c.Context(), h.Session(c), c.Params("id"))
		h.HandleResponse(c, films, err)
		return nil
	})
}

// HandleGet trả về phim ngắn
func (h *ShortFilmHandler) HandleGet(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		film, err := h.service.Get(c.Context(), h.Session(c), c.Params("id"))
		h.HandleResponse(c, film, err)
		return nil
	})
}

// HandleDelete xóa phim ngắn
func (h *ShortFilmHandler) HandleDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		err := h.service.Delete(c.Context(), h.Session(c), c.Params("id"))
		h.HandleResponse(c, nil, err)
		return nil
	})
}
