package memberdto

// MemberInput đầu vào thêm thành viên
type MemberInput struct {
	FullNameTH         string   `json:"fullNameTH" validate:"required,max=200,no_xss"`
	FullNameEN         string   `json:"fullNameEN" validate:"omitempty,max=200,no_xss"`
	Nickname           string   `json:"nickname" validate:"omitempty,max=100,no_xss"`
	Gender             string   `json:"gender" validate:"required,member_gender"`
	Age                *int     `json:"age" validate:"omitempty,min=0,max=120"`
	Birthday           string   `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	Roles              []string `json:"roles" validate:"required,min=1,dive,required,max=100,no_xss"`
	Email              string   `json:"email" validate:"omitempty,email,max=200"`
	Phone              string   `json:"phone" validate:"omitempty,max=20"`
	IsTeacherAttending bool     `json:"isTeacherAttending"`
	Stay               *bool    `json:"stay"`
}

// MemberPatch là các field được sửa, nil giữ nguyên
type MemberPatch struct {
	FullNameTH         *string  `json:"fullNameTH" validate:"omitempty,min=1,max=200,no_xss"`
	FullNameEN         *string  `json:"fullNameEN" validate:"omitempty,max=200,no_xss"`
	Nickname           *string  `json:"nickname" validate:"omitempty,max=100,no_xss"`
	Gender             *string  `json:"gender" validate:"omitempty,member_gender"`
	Age                *int     `json:"age" validate:"omitempty,min=0,max=120"`
	Birthday           *string  `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	Roles              []string `json:"roles" validate:"omitempty,min=1,dive,required,max=100,no_xss"`
	Email              *string  `json:"email" validate:"omitempty,max=200"`
	Phone              *string  `json:"phone" validate:"omitempty,max=20"`
	IsTeacherAttending *bool    `json:"isTeacherAttending"`
	Stay               *bool    `json:"stay"`
}

// StayInput đánh dấu thành viên ở lại trại
type StayInput struct {
	Stay *bool `json:"stay" validate:"required"`
}

// TeacherInput là thông tin giáo viên cố vấn
type TeacherInput struct {
	Name  string `json:"name" validate:"required,max=200,no_xss"`
	Phone string `json:"phone" validate:"required,max=20"`
	Email string `json:"email" validate:"omitempty,max=200"`
}
