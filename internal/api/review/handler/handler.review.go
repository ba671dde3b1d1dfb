package reviewhdl

import (
	basehdl "film_camp/internal/api/base/handler"
	reviewdto "film_camp/internal/api/review/dto"
	models "film_camp/internal/api/review/models"
	reviewsvc "film_camp/internal/api/review/service"

	"github.com/gofiber/fiber/v3"
)

// ReviewHandler xử lý bình luận cho một loại đối tượng cha
type ReviewHandler struct {
	*basehdl.BaseHandler
	service *reviewsvc.ReviewService
	kind    string
}

// NewReviewHandler tạo ReviewHandler cho kind (models.KindApplication hoặc models.KindShortFilm)
func NewReviewHandler(service *reviewsvc.ReviewService, kind string) *ReviewHandler {
	return &ReviewHandler{BaseHandler: basehdl.NewBaseHandler(), service: service, kind: kind}
}

func (h *ReviewHandler) parent(c fiber.Ctx) models.ParentRef {
	return models.ParentRef{Kind: h.kind, ID: c.Params("id")}
}

// HandleList trả về bình luận, ?visible= là số bình luận muốn hiện
func (h *ReviewHandler) HandleList(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var q reviewdto.CommentListQuery
		if err := h.ParseRequestQuery(c, &q); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		page, err := h.service.ListComments(c.Context(), h.Session(c), h.parent(c), q.Visible)
		h.HandleResponse(c, page, err)
		return nil
	})
}

// HandleAdd thêm bình luận
func (h *ReviewHandler) HandleAdd(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input reviewdto.CommentInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		comment, err := h.service.AddComment(c.Context(), h.Session(c), h.parent(c), &input)
		h.HandleResponse(c, comment, err)
		return nil
	})
}

// HandleEdit sửa bình luận của chính mình
func (h *ReviewHandler) HandleEdit(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input reviewdto.CommentInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		comment, err := h.service.EditComment(c.Context(), h.Session(c), h.parent(c), c.Params("commentId"), &input)
		h.HandleResponse(c, comment, err)
		return nil
	})
}
