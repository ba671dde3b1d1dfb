package apphdl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	appdto "film_camp/internal/api/application/dto"
	appsvc "film_camp/internal/api/application/service"
	basehdl "film_camp/internal/api/base/handler"
	"film_camp/internal/api/events"
	"film_camp/internal/common"
	"film_camp/internal/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/valyala/fasthttp"
)

// HeartbeatInterval là chu kỳ gửi comment giữ kết nối SSE qua proxy
const HeartbeatInterval = 25 * time.Second

// ApplicationHandler xử lý các request về hồ sơ đăng ký
type ApplicationHandler struct {
	*basehdl.BaseHandler
	service *appsvc.ApplicationService
	hub     *events.Hub
}

// NewApplicationHandler tạo ApplicationHandler. hub nil thì /stream trả lỗi.
func NewApplicationHandler(service *appsvc.ApplicationService, hub *events.Hub) *ApplicationHandler {
	return &ApplicationHandler{BaseHandler: basehdl.NewBaseHandler(), service: service, hub: hub}
}

// HandleEnsureDraft mở hồ sơ nháp cho dự án, chưa có thì tạo
func (h *ApplicationHandler) HandleEnsureDraft(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input appdto.EnsureDraftInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		app, err := h.service.EnsureDraft(c.Context(), h.Session(c), input.ProjectID)
		h.HandleResponse(c, app, err)
		return nil
	})
}

// HandleListMine trả về hồ sơ của người dùng hiện tại
func (h *ApplicationHandler) HandleListMine(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		apps, err := h.service.ListMine(c.Context(), h.Session(c))
		h.HandleResponse(c, apps, err)
		return nil
	})
}

// HandleSuggestGroupName gợi ý tên nhóm theo tên trường
func (h *ApplicationHandler) HandleSuggestGroupName(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var q appdto.SuggestGroupNameQuery
		if err := h.ParseRequestQuery(c, &q); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		name, err := h.service.SuggestGroupName(c.Context(), q.School)
		h.HandleResponse(c, fiber.Map{"groupName": name}, err)
		return nil
	})
}

// HandleGet trả về hồ sơ
func (h *ApplicationHandler) HandleGet(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		app, err := h.service.Get(c.Context(), h.Session(c), c.Params("id"))
		h.HandleResponse(c, app, err)
		return nil
	})
}

// HandleDetail trả về hồ sơ cùng thành viên, phim ngắn, bình luận
func (h *ApplicationHandler) HandleDetail(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		detail, err := h.service.Detail(c.Context(), h.Session(c), c.Params("id"))
		h.HandleResponse(c, detail, err)
		return nil
	})
}

// HandleSaveDraft lưu nháp
func (h *ApplicationHandler) HandleSaveDraft(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var patch appdto.ApplicationPatch
		if err := h.ParseRequestBody(c, &patch); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		app, err := h.service.SaveDraft(c.Context(), h.Session(c), c.Params("id"), &patch)
		h.HandleResponse(c, app, err)
		return nil
	})
}

// HandleCancel hủy hồ sơ đã nộp
func (h *ApplicationHandler) HandleCancel(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		app, err := h.service.Cancel(c.Context(), h.Session(c), c.Params("id"))
		h.HandleResponse(c, app, err)
		return nil
	})
}

// HandleListForReview trả về danh sách hồ sơ cho ban giám khảo
func (h *ApplicationHandler) HandleListForReview(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var q appdto.ReviewListQuery
		if err := h.ParseRequestQuery(c, &q); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		page, err := h.service.ListForReview(c.Context(), h.Session(c), &q)
		h.HandleResponse(c, page, err)
		return nil
	})
}

// HandleSetStatus đổi trạng thái hồ sơ
func (h *ApplicationHandler) HandleSetStatus(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input appdto.SetStatusInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		id := c.Params("id")
		app, err := h.service.SetStatus(c.Context(), h.Session(c), id, &input)
		if err == nil {
			logger.LogResource("application.status", "application", id, c, map[string]interface{}{"status": input.Status})
		}
		h.HandleResponse(c, app, err)
		return nil
	})
}

// HandleStats trả về số hồ sơ theo trạng thái
func (h *ApplicationHandler) HandleStats(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var q appdto.StatsQuery
		if err := h.ParseRequestQuery(c, &q); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		stats, err := h.service.Stats(c.Context(), h.Session(c), &q)
		h.HandleResponse(c, stats, err)
		return nil
	})
}

// HandleStream mở Server-Sent Events cho các thay đổi của hồ sơ, thành viên, bình luận
func (h *ApplicationHandler) HandleStream(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id := c.Params("id")
		if _, err := h.service.Get(c.Context(), h.Session(c), id); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if h.hub == nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeInternalServer, "Luồng sự kiện chưa được bật", common.StatusServiceUnavailable, nil))
			return nil
		}

		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("X-Accel-Buffering", "no")

		ch, cancel := h.hub.Subscribe(id)
		log := logger.WithRequest(c).WithField("application_id", id)
		log.Info("📡 [STREAM] Client bắt đầu theo dõi hồ sơ")

		c.RequestCtx().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer cancel()
			ticker := time.NewTicker(HeartbeatInterval)
			defer ticker.Stop()

			fmt.Fprintf(w, "event: ready\ndata: {\"applicationId\":%q}\n\n", id)
			if err := w.Flush(); err != nil {
				return
			}
			for {
				select {
				case e, ok := <-ch:
					if !ok {
						return
					}
					data, err := json.Marshal(e)
					if err != nil {
						log.WithError(err).Warn("📡 [STREAM] Không mã hóa được sự kiện")
						continue
					}
					fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.CollectionName, data)
				case <-ticker.C:
					fmt.Fprint(w, ": ping\n\n")
				}
				if err := w.Flush(); err != nil {
					log.Info("📡 [STREAM] Client ngắt kết nối")
					return
				}
			}
		}))
		return nil
	})
}
