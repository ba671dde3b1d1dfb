package logger

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// ContextKey là kiểu key cho các giá trị log gắn vào context
type ContextKey string

const (
	RequestIDKey ContextKey = "requestID"
	UserIDKey    ContextKey = "userID"
)

// ContextWithRequest gắn request id và user id vào context để service log lại được
func ContextWithRequest(ctx context.Context, requestID, userID string) context.Context {
	if requestID != "" {
		ctx = context.WithValue(ctx, RequestIDKey, requestID)
	}
	if userID != "" {
		ctx = context.WithValue(ctx, UserIDKey, userID)
	}
	return ctx
}

// WithContext trả về entry kèm request_id / user_id lấy từ context
func WithContext(ctx context.Context) *logrus.Entry {
	entry := GetAppLogger().WithContext(ctx)
	if ctx == nil {
		return entry
	}
	if v := ctx.Value(RequestIDKey); v != nil {
		entry = entry.WithField("request_id", v)
	}
	if v := ctx.Value(UserIDKey); v != nil {
		entry = entry.WithField("user_id", v)
	}
	return entry
}

// RequestID lấy request id do middleware requestid sinh ra
func RequestID(c fiber.Ctx) string {
	if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
		return rid
	}
	if rid := c.Get("X-Request-ID"); rid != "" {
		return rid
	}
	return c.GetRespHeader("X-Request-ID")
}

// WithRequest trả về entry kèm thông tin request Fiber
func WithRequest(c fiber.Ctx) *logrus.Entry {
	fields := logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"ip":     c.IP(),
	}
	if rid := RequestID(c); rid != "" {
		fields["request_id"] = rid
	}
	if uid, ok := c.Locals("user_id").(string); ok && uid != "" {
		fields["user_id"] = uid
	}
	return GetAppLogger().WithFields(fields)
}

// WithModule trả về entry gắn tên module (dùng cho FilterHook)
func WithModule(module string) *logrus.Entry {
	return GetAppLogger().WithField("module", module)
}
