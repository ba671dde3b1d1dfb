// Package session định nghĩa phiên đăng nhập được truyền tường minh vào các service.
package session

import (
	"film_camp/internal/common"
)

// Vai trò người dùng
const (
	RoleAdmin     = "admin"
	RoleEditor    = "editor"
	RoleCommentor = "commentor"
	RoleViewer    = "viewer"
)

// Roles là danh sách vai trò hợp lệ
var Roles = []string{RoleAdmin, RoleEditor, RoleCommentor, RoleViewer}

// Session là danh tính người dùng hiện tại cùng hồ sơ cơ bản
type Session struct {
	UserID          string `json:"userId"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	FullName        string `json:"fullName"`
	Nickname        string `json:"nickname"`
	Phone           string `json:"phone"`
	Gender          string `json:"gender"`
	Birthday        string `json:"birthday"` // YYYY-MM-DD
	School          string `json:"school"`
	EducationLevel  string `json:"educationLevel"`
	ProfileImageURL string `json:"profileImageUrl"`
}

// HasRole kiểm tra vai trò của session thuộc danh sách roles
func (s *Session) HasRole(roles ...string) bool {
	if s == nil {
		return false
	}
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

// IsStaff là admin hoặc editor
func (s *Session) IsStaff() bool {
	return s.HasRole(RoleAdmin, RoleEditor)
}

// CanReview là người được phép bình luận và chấm điểm
func (s *Session) CanReview() bool {
	return s.HasRole(RoleAdmin, RoleEditor, RoleCommentor)
}

// Require trả về ErrNotAuthenticated khi chưa đăng nhập
func Require(s *Session) error {
	if s == nil || s.UserID == "" {
		return common.ErrNotAuthenticated
	}
	return nil
}

// RequireRole yêu cầu đăng nhập và có một trong các vai trò
func RequireRole(s *Session, roles ...string) error {
	if err := Require(s); err != nil {
		return err
	}
	if !s.HasRole(roles...) {
		return common.ErrForbidden
	}
	return nil
}

// IsValidRole kiểm tra role có trong danh sách
func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// LocalsKey là key Fiber Locals chứa *Session do middleware xác thực gắn vào
const LocalsKey = "session"
