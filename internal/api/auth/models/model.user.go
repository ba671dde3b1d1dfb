// Package models - model người dùng (User) thuộc domain auth.
package models

// Loại người dùng
const (
	UserTypeSchoolStudent  = "school-student"
	UserTypeCollegeStudent = "college-student"
	UserTypeTeacher        = "teacher"
	UserTypeGovernment     = "government"
	UserTypeStaff          = "staff"
)

// UserTypes là danh sách loại người dùng hợp lệ
var UserTypes = []string{UserTypeSchoolStudent, UserTypeCollegeStudent, UserTypeTeacher, UserTypeGovernment, UserTypeStaff}

// User định nghĩa mô hình người dùng, _id là Firebase UID.
// Token là JWT phiên đăng nhập hiện tại, đăng nhập lại hoặc đăng xuất sẽ thay thế / xóa token này.
type User struct {
	ID               string `json:"id" bson:"_id"`
	Email            string `json:"email" bson:"email,omitempty" index:"unique,sparse"`
	Role             string `json:"role" bson:"role" index:"single:1"`
	FullName         string `json:"fullName" bson:"fullName"`
	FullNameEng      string `json:"fullNameEng,omitempty" bson:"fullNameEng,omitempty"`
	Nickname         string `json:"nickname,omitempty" bson:"nickname,omitempty"`
	Birthday         string `json:"birthday,omitempty" bson:"birthday,omitempty"` // YYYY-MM-DD
	Gender           string `json:"gender,omitempty" bson:"gender,omitempty"`
	PhoneNumber      string `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty"`
	Bio              string `json:"bio,omitempty" bson:"bio,omitempty"`
	UserType         string `json:"userType,omitempty" bson:"userType,omitempty"`
	InstituteName    string `json:"instituteName,omitempty" bson:"instituteName,omitempty"`
	SchoolLevel      string `json:"schoolLevel,omitempty" bson:"schoolLevel,omitempty"`
	CollegeLevel     string `json:"collegeLevel,omitempty" bson:"collegeLevel,omitempty"`
	Faculty          string `json:"faculty,omitempty" bson:"faculty,omitempty"`
	Province         string `json:"province,omitempty" bson:"province,omitempty"`
	Organization     string `json:"organization,omitempty" bson:"organization,omitempty"`
	ProfileImageURL  string `json:"profileImageUrl,omitempty" bson:"profileImageUrl,omitempty"`
	ProfileImagePath string `json:"-" bson:"profileImagePath,omitempty"`
	ProfileCompleted bool   `json:"profileCompleted" bson:"profileCompleted"`
	Token            string `json:"-" bson:"token"`
	IsBlock          bool   `json:"-" bson:"isBlock"`
	CreatedAt        int64  `json:"createdAt" bson:"createdAt"`
	UpdatedAt        int64  `json:"updatedAt" bson:"updatedAt"`
}

// EducationLevel là cấp học hiển thị trên hồ sơ: cấp phổ thông hoặc đại học tùy loại người dùng
func (u *User) EducationLevel() string {
	if u.CollegeLevel != "" {
		return u.CollegeLevel
	}
	return u.SchoolLevel
}

// IsProfileComplete kiểm tra các trường bắt buộc trước khi được nộp hồ sơ
func (u *User) IsProfileComplete() bool {
	return u.FullName != "" && u.Nickname != "" && u.Birthday != "" && u.Gender != "" &&
		u.PhoneNumber != "" && u.UserType != "" && u.InstituteName != ""
}
