// Package basehdl chứa các tiện ích dùng chung cho Fiber handler: parse request, phản hồi chuẩn, recover panic.
package basehdl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"

	basemodels "film_camp/internal/api/base/models"
	"film_camp/internal/common"
	"film_camp/internal/global"
	"film_camp/internal/logger"
	"film_camp/internal/session"
	"film_camp/internal/storage"

	"github.com/gofiber/fiber/v3"
)

// BaseHandler được embed vào các domain handler
type BaseHandler struct{}

// NewBaseHandler tạo BaseHandler
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// JSONResponse trả về JSON với Content-Type có charset=utf-8
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// SafeHandler bọc handler với recover để luôn trả response cho client khi có panic
func (h *BaseHandler) SafeHandler(c fiber.Ctx, handler func() error) error {
	defer func() {
		if r := recover(); r != nil {
			logger.WithRequest(c).WithFields(map[string]interface{}{
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("💥 [HANDLER] Panic trong handler")

			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeInternalServer,
				fmt.Sprintf("Lỗi hệ thống không mong muốn: %v", r),
				common.StatusInternalServerError,
				nil,
			))
		}
	}()
	return handler()
}

// HandleResponse chuẩn hóa response: {code, message, data, status} hoặc {code, message, details, status:"error"}
func (h *BaseHandler) HandleResponse(c fiber.Ctx, data interface{}, err error) {
	if err != nil {
		WriteError(c, err)
		return
	}
	JSONResponse(c, common.StatusOK, fiber.Map{
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    data,
		"status":  "success",
	})
}

// WriteError ghi error response. Lỗi không phải *common.Error được che thành lỗi hệ thống.
func WriteError(c fiber.Ctx, err error) {
	var customErr *common.Error
	if errors.As(err, &customErr) {
		if customErr.StatusCode >= common.StatusInternalServerError {
			logger.WithRequest(c).WithError(err).WithField("details", customErr.Details).Error("❌ [HANDLER] Lỗi hệ thống")
		}
		JSONResponse(c, customErr.StatusCode, fiber.Map{
			"code":    customErr.Code.Code,
			"message": customErr.Message,
			"details": customErr.Details,
			"status":  "error",
		})
		return
	}

	logger.WithRequest(c).WithError(err).Error("❌ [HANDLER] Lỗi không xác định")
	JSONResponse(c, common.StatusInternalServerError, fiber.Map{
		"code":    common.ErrCodeInternalServer.Code,
		"message": err.Error(),
		"status":  "error",
	})
}

// ParseRequestBody decode JSON body (UseNumber) rồi validate theo struct tag
func (h *BaseHandler) ParseRequestBody(c fiber.Ctx, input interface{}) error {
	decoder := json.NewDecoder(bytes.NewReader(c.Body()))
	decoder.UseNumber()
	if err := decoder.Decode(input); err != nil {
		return common.WithDetails(common.ErrInvalidFormat, err.Error())
	}
	return global.ValidateStruct(input)
}

// ParseRequestQuery bind query string vào struct rồi validate
func (h *BaseHandler) ParseRequestQuery(c fiber.Ctx, input interface{}) error {
	if err := c.Bind().Query(input); err != nil {
		return common.WithDetails(common.ErrInvalidFormat, err.Error())
	}
	return global.ValidateStruct(input)
}

// ParsePagination đọc ?page=&limit=
func (h *BaseHandler) ParsePagination(c fiber.Ctx, defaultLimit, maxLimit int64) (page, limit int64) {
	page, _ = strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ = strconv.ParseInt(c.Query("limit", strconv.FormatInt(defaultLimit, 10)), 10, 64)
	return basemodels.NormalizePage(page, limit, maxLimit)
}

// Session lấy phiên đăng nhập do middleware gắn vào, nil khi chưa đăng nhập
func (h *BaseHandler) Session(c fiber.Ctx) *session.Session {
	sess, _ := c.Locals(session.LocalsKey).(*session.Session)
	return sess
}

// RequireParam đọc path param bắt buộc
func (h *BaseHandler) RequireParam(c fiber.Ctx, name string) (string, error) {
	v := c.Params(name)
	if v == "" {
		return "", common.NewValidationError(common.FieldError{Field: name, Message: name + " là bắt buộc"})
	}
	return v, nil
}

// FormFile mở file multipart trong field name. Caller gọi close sau khi dùng xong.
func (h *BaseHandler) FormFile(c fiber.Ctx, name string) (storage.File, func(), error) {
	fh, err := c.FormFile(name)
	if err != nil {
		return storage.File{}, nil, common.NewValidationError(common.FieldError{Field: name, Message: "Thiếu file"})
	}
	f, err := fh.Open()
	if err != nil {
		return storage.File{}, nil, common.WithDetails(common.ErrInvalidFormat, err.Error())
	}
	return storage.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
