// Package models - model thành viên nhóm của hồ sơ đăng ký.
package models

// Vai trò trong nhóm. Ngoài các giá trị này người dùng có thể nhập vai trò tự do.
const (
	RoleAdmin          = "admin"
	RoleTeacher        = "teacher"
	RoleDirector       = "director"
	RoleProducer       = "producer"
	RoleScreenwriter   = "screenwriter"
	RoleCinematography = "cinematography"
	RoleEditor         = "editor"
	RoleSound          = "sound"
	RoleActor          = "actor"
)

// Member là một thành viên trong nhóm
type Member struct {
	ID            string `json:"id" bson:"_id"`
	ApplicationID string `json:"applicationId" bson:"applicationId" index:"single:1"`

	FullNameTH string   `json:"fullNameTH" bson:"fullNameTH"`
	FullNameEN string   `json:"fullNameEN" bson:"fullNameEN"`
	Nickname   string   `json:"nickname" bson:"nickname"`
	Gender     string   `json:"gender" bson:"gender"`
	Age        int      `json:"age" bson:"age"`
	Birthday   string   `json:"birthday" bson:"birthday"`
	Roles      []string `json:"roles" bson:"roles"`
	Email      string   `json:"email" bson:"email"`
	Phone      string   `json:"phone" bson:"phone"`
	UserID     string   `json:"userId,omitempty" bson:"userId,omitempty"`

	IsOwner            bool `json:"isOwner" bson:"isOwner"`
	IsAdmin            bool `json:"isAdmin" bson:"isAdmin"`
	IsTeacherAttending bool `json:"isTeacherAttending" bson:"isTeacherAttending"`
	Stay               bool `json:"stay" bson:"stay"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// HasRole kiểm tra thành viên có vai trò role
func (m *Member) HasRole(role string) bool {
	for _, r := range m.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// NeedsContact cho biết vai trò yêu cầu email và số điện thoại
func NeedsContact(roles []string) bool {
	for _, r := range roles {
		if r == RoleAdmin || r == RoleTeacher {
			return true
		}
	}
	return false
}
