package authhdl

import (
	authdto "film_camp/internal/api/auth/dto"
	authsvc "film_camp/internal/api/auth/service"
	basehdl "film_camp/internal/api/base/handler"
	"film_camp/internal/logger"

	"github.com/gofiber/fiber/v3"
)

// UserHandler xử lý các request xác thực và quản lý người dùng
type UserHandler struct {
	*basehdl.BaseHandler
	userService *authsvc.UserService
}

// NewUserHandler tạo instance mới của UserHandler
func NewUserHandler(userService *authsvc.UserService) *UserHandler {
	return &UserHandler{BaseHandler: basehdl.NewBaseHandler(), userService: userService}
}

// HandleRegister đăng ký bằng email/mật khẩu
func (h *UserHandler) HandleRegister(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.RegisterInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		result, err := h.userService.Register(c.Context(), &input)
		h.HandleResponse(c, result, err)
		return nil
	})
}

// HandleLogin đăng nhập bằng email/mật khẩu
func (h *UserHandler) HandleLogin(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.LoginInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		result, err := h.userService.Login(c.Context(), &input)
		h.HandleResponse(c, result, err)
		return nil
	})
}

// HandleLoginWithFirebase đăng nhập bằng Firebase ID token
func (h *UserHandler) HandleLoginWithFirebase(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.FirebaseLoginInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		result, err := h.userService.LoginWithFirebase(c.Context(), &input)
		h.HandleResponse(c, result, err)
		return nil
	})
}

// HandlePasswordReset gửi email đặt lại mật khẩu
func (h *UserHandler) HandlePasswordReset(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.PasswordResetInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		err := h.userService.SendPasswordReset(c.Context(), &input)
		h.HandleResponse(c, nil, err)
		return nil
	})
}

// HandleLogout xử lý đăng xuất người dùng
func (h *UserHandler) HandleLogout(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		err := h.userService.Logout(c.Context(), h.Session(c))
		h.HandleResponse(c, nil, err)
		return nil
	})
}

// HandleMe lấy thông tin profile của người dùng
func (h *UserHandler) HandleMe(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		user, err := h.userService.Me(c.Context(), h.Session(c))
		h.HandleResponse(c, user, err)
		return nil
	})
}

// HandleUpdateProfile cập nhật profile
func (h *UserHandler) HandleUpdateProfile(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.UpdateProfileInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		user, err := h.userService.UpdateProfile(c.Context(), h.Session(c), &input)
		h.HandleResponse(c, user, err)
		return nil
	})
}

// HandleSearchUsers tìm người dùng theo email (admin)
func (h *UserHandler) HandleSearchUsers(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var q authdto.UserSearchQuery
		if err := h.ParseRequestQuery(c, &q); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		users, err := h.userService.SearchUsers(c.Context(), h.Session(c), &q)
		h.HandleResponse(c, users, err)
		return nil
	})
}

// HandleUpdateRole đổi vai trò người dùng (admin)
func (h *UserHandler) HandleUpdateRole(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := h.RequireParam(c, "id")
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var input authdto.UpdateRoleInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		user, err := h.userService.UpdateRole(c.Context(), h.Session(c), userID, &input)
		if err == nil {
			logger.LogResource("user.role", "user", userID, c, map[string]interface{}{"role": input.Role})
		}
		h.HandleResponse(c, user, err)
		return nil
	})
}
