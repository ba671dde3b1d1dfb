package authdto

import (
	models "film_camp/internal/api/auth/models"
)

// RegisterInput đầu vào đăng ký bằng email/mật khẩu.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"required,max=200,no_xss"`
}

// LoginInput đầu vào đăng nhập bằng email/mật khẩu.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// FirebaseLoginInput đầu vào đăng nhập bằng Firebase ID token.
type FirebaseLoginInput struct {
	IDToken string `json:"idToken" validate:"required"`
}

// PasswordResetInput đầu vào yêu cầu đặt lại mật khẩu.
type PasswordResetInput struct {
	Email string `json:"email" validate:"required,email"`
}

// UpdateProfileInput đầu vào cập nhật hồ sơ cá nhân, field nil giữ nguyên.
type UpdateProfileInput struct {
	FullName      *string `json:"fullName" validate:"omitempty,max=200,no_xss"`
	FullNameEng   *string `json:"fullNameEng" validate:"omitempty,max=200,no_xss"`
	Nickname      *string `json:"nickname" validate:"omitempty,max=100,no_xss"`
	Birthday      *string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	Gender        *string `json:"gender" validate:"omitempty,member_gender"`
	PhoneNumber   *string `json:"phoneNumber" validate:"omitempty,max=20"`
	Bio           *string `json:"bio" validate:"omitempty,max=2000,no_xss"`
	UserType      *string `json:"userType" validate:"omitempty,oneof=school-student college-student teacher government staff"`
	InstituteName *string `json:"instituteName" validate:"omitempty,max=300,no_xss"`
	SchoolLevel   *string `json:"schoolLevel" validate:"omitempty,max=50"`
	CollegeLevel  *string `json:"collegeLevel" validate:"omitempty,max=50"`
	Faculty       *string `json:"faculty" validate:"omitempty,max=200,no_xss"`
	Province      *string `json:"province" validate:"omitempty,max=100"`
	Organization  *string `json:"organization" validate:"omitempty,max=300,no_xss"`
}

// UserSearchQuery tìm người dùng theo tiền tố email; bỏ trống để lấy người có vai trò khác viewer.
type UserSearchQuery struct {
	Email string `query:"email"`
}

// UpdateRoleInput đầu vào đổi vai trò người dùng.
type UpdateRoleInput struct {
	Role string `json:"role" validate:"required,oneof=admin editor commentor viewer"`
}

// AuthResult là kết quả đăng nhập / đăng ký
type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}
