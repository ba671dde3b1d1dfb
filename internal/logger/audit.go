package logger

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// LogAction ghi một hành động audit (đổi trạng thái hồ sơ, đổi vai trò, xóa thành viên, ...)
func LogAction(action string, c fiber.Ctx, details map[string]interface{}) {
	fields := logrus.Fields{
		"action":     action,
		"ip":         c.IP(),
		"user_agent": c.Get("User-Agent"),
		"details":    details,
	}
	if uid, ok := c.Locals("user_id").(string); ok {
		fields["user_id"] = uid
	}
	if rid := RequestID(c); rid != "" {
		fields["request_id"] = rid
	}
	GetAuditLogger().WithFields(fields).Info("Audit log")
}

// LogResource ghi audit cho thao tác trên một tài nguyên cụ thể
func LogResource(action, resourceType, resourceID string, c fiber.Ctx, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["resource_type"] = resourceType
	details["resource_id"] = resourceID
	LogAction(action, c, details)
}

// Audit ghi audit từ service, request_id / user_id lấy từ context do middleware gắn vào
func Audit(ctx context.Context, action string, details map[string]interface{}) {
	fields := logrus.Fields{
		"action":  action,
		"details": details,
	}
	if ctx != nil {
		if v := ctx.Value(RequestIDKey); v != nil {
			fields["request_id"] = v
		}
		if v := ctx.Value(UserIDKey); v != nil {
			fields["user_id"] = v
		}
	}
	GetAuditLogger().WithFields(fields).Info("Audit log")
}
