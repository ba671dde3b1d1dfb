// Package middleware chứa các Fiber middleware xác thực và phân quyền.
package middleware

import (
	"context"
	"strings"

	"film_camp/internal/common"
	"film_camp/internal/logger"
	"film_camp/internal/session"

	"github.com/gofiber/fiber/v3"
)

// SessionResolver chuyển token phiên đăng nhập thành Session
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*session.Session, error)
}

// bearerToken lấy token từ header Authorization, hoặc ?token= cho EventSource (không gửi được header)
func bearerToken(c fiber.Ctx) string {
	if h := c.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("token")
}

func attach(c fiber.Ctx, sess *session.Session) {
	c.Locals(session.LocalsKey, sess)
	c.Locals("user_id", sess.UserID)
	c.SetContext(logger.ContextWithRequest(c.Context(), logger.RequestID(c), sess.UserID))
}

// AuthMiddleware yêu cầu token hợp lệ. roles khác rỗng thì session phải có một trong các vai trò.
func AuthMiddleware(resolver SessionResolver, roles ...string) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			logger.WithRequest(c).Warn("❌ [AUTH] Thiếu Authorization header")
			return HandleErrorResponse(c, common.ErrNotAuthenticated)
		}

		sess, err := resolver.Resolve(c.Context(), token)
		if err != nil {
			return HandleErrorResponse(c, err)
		}
		if len(roles) > 0 && !sess.HasRole(roles...) {
			logger.WithRequest(c).WithFields(map[string]interface{}{
				"user_id": sess.UserID,
				"role":    sess.Role,
				"require": roles,
			}).Warn("❌ [AUTH] Không đủ quyền")
			return HandleErrorResponse(c, common.ErrForbidden)
		}

		attach(c, sess)
		return c.Next()
	}
}

// OptionalAuth gắn session khi có token hợp lệ, không có thì vẫn cho đi tiếp
func OptionalAuth(resolver SessionResolver) fiber.Handler {
	return func(c fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if sess, err := resolver.Resolve(c.Context(), token); err == nil {
				attach(c, sess)
			}
		}
		return c.Next()
	}
}
