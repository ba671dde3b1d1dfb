// Package models - model hồ sơ đăng ký (Application) thuộc domain application.
package models

import "fmt"

// Trạng thái hồ sơ
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
	StatusGraduated = "graduated"
	StatusCancelled = "cancelled"
)

// Statuses là danh sách trạng thái hợp lệ
var Statuses = []string{StatusDraft, StatusSubmitted, StatusApproved, StatusGraduated, StatusCancelled}

// Trạng thái duyệt
const (
	ReviewPending  = "pending"
	ReviewReviewed = "reviewed"
)

// transitions là bảng chuyển trạng thái hợp lệ, mọi cặp khác bị từ chối
var transitions = map[string][]string{
	StatusDraft:     {StatusSubmitted},
	StatusSubmitted: {StatusApproved, StatusCancelled},
	StatusApproved:  {StatusGraduated},
}

// CanTransition kiểm tra from -> to có trong bảng chuyển trạng thái
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ApplicationID là id hồ sơ do người dùng tự tạo cho một dự án
func ApplicationID(projectID, userID string) string {
	return fmt.Sprintf("%s_%s", projectID, userID)
}

// ProjectFile là file đính kèm hồ sơ
type ProjectFile struct {
	Name string `json:"name" bson:"name"`
	URL  string `json:"url" bson:"url"`
}

// CameraGear nhóm thiết bị quay
type CameraGear struct {
	Included bool   `json:"included" bson:"included"`
	Body     bool   `json:"body" bson:"body"`
	Tripod   bool   `json:"tripod" bson:"tripod"`
	Monitor  bool   `json:"monitor" bson:"monitor"`
	Details  string `json:"details" bson:"details"`
}

// SoundGear nhóm thiết bị thu âm
type SoundGear struct {
	Included    bool   `json:"included" bson:"included"`
	ShotgunMic  bool   `json:"shotgunMic" bson:"shotgunMic"`
	WirelessMic bool   `json:"wirelessMic" bson:"wirelessMic"`
	BoomMic     bool   `json:"boomMic" bson:"boomMic"`
	Recorder    bool   `json:"recorder" bson:"recorder"`
	Details     string `json:"details" bson:"details"`
}

// LightingGear nhóm thiết bị ánh sáng
type LightingGear struct {
	Included bool   `json:"included" bson:"included"`
	Details  string `json:"details" bson:"details"`
}

// ComputerGear nhóm thiết bị dựng phim
type ComputerGear struct {
	Included bool   `json:"included" bson:"included"`
	MacBook  bool   `json:"macBook" bson:"macBook"`
	PC       bool   `json:"pc" bson:"pc"`
	SSD      bool   `json:"ssd" bson:"ssd"`
	HDD      bool   `json:"hdd" bson:"hdd"`
	Monitor  bool   `json:"monitor" bson:"monitor"`
	Details  string `json:"details" bson:"details"`
}

// EquipmentSet là bốn nhóm thiết bị
type EquipmentSet struct {
	Camera   CameraGear   `json:"camera" bson:"camera"`
	Sound    SoundGear    `json:"sound" bson:"sound"`
	Lighting LightingGear `json:"lighting" bson:"lighting"`
	Computer ComputerGear `json:"computer" bson:"computer"`
}

// Equipment gồm thiết bị đội tự mang và thiết bị cần ban tổ chức hỗ trợ
type Equipment struct {
	BroughtByTeam          EquipmentSet `json:"broughtByTeam" bson:"broughtByTeam"`
	RequestedFromOrganizer EquipmentSet `json:"requestedFromOrganizer" bson:"requestedFromOrganizer"`
}

// Application là hồ sơ đăng ký của một nhóm cho một dự án
type Application struct {
	ID           string `json:"id" bson:"_id"`
	ProjectID    string `json:"projectId" bson:"projectId" index:"compound:app_project_user"`
	UserID       string `json:"userId" bson:"userId" index:"compound:app_project_user"`
	ProjectTitle string `json:"projectTitle" bson:"projectTitle"`

	// Thông tin liên hệ
	FullName       string `json:"fullName" bson:"fullName"`
	FullNameEN     string `json:"fullNameEN" bson:"fullNameEN"`
	Nickname       string `json:"nickname" bson:"nickname"`
	Email          string `json:"email" bson:"email"`
	Phone          string `json:"phone" bson:"phone"`
	Gender         string `json:"gender" bson:"gender"`
	Age            int    `json:"age" bson:"age"`
	School         string `json:"school" bson:"school" index:"single:1"`
	SchoolAddress  string `json:"schoolAddress" bson:"schoolAddress"`
	SchoolMapURL   string `json:"schoolMapUrl" bson:"schoolMapUrl"`
	EducationLevel string `json:"educationLevel" bson:"educationLevel"`
	AdvisorName    string `json:"advisorName" bson:"advisorName"`
	AdvisorPhone   string `json:"advisorPhone" bson:"advisorPhone"`
	AdvisorEmail   string `json:"advisorEmail" bson:"advisorEmail"`

	// Thông tin nhóm
	GroupName        string `json:"groupName" bson:"groupName"`
	GroupDescription string `json:"groupDescription" bson:"groupDescription"`
	GroupPhotoURL    string `json:"groupPhotoUrl" bson:"groupPhotoUrl"`

	// Thông tin dự án phim
	ProjectTheme      string        `json:"projectTheme" bson:"projectTheme"`
	ShortFilmTitle    string        `json:"shortFilmTitle" bson:"shortFilmTitle"`
	Logline           string        `json:"logline" bson:"logline"`
	ProjectMotivation string        `json:"projectMotivation" bson:"projectMotivation"`
	PortfolioText     string        `json:"portfolioText" bson:"portfolioText"`
	ProjectFiles      []ProjectFile `json:"projectFiles" bson:"projectFiles"`
	Equipment         Equipment     `json:"equipment" bson:"equipment"`

	// Quy trình
	Status          string `json:"status" bson:"status" index:"single:1"`
	CurrentStep     int    `json:"currentStep" bson:"currentStep"`
	AdvisorSavedKey string `json:"-" bson:"advisorSavedKey"`
	SubmittedAt     int64  `json:"submittedAt,omitempty" bson:"submittedAt,omitempty" index:"single:-1"`

	// Duyệt
	ReviewStatus string  `json:"reviewStatus,omitempty" bson:"reviewStatus,omitempty"`
	ReviewedBy   string  `json:"reviewedBy,omitempty" bson:"reviewedBy,omitempty"`
	ReviewedAt   int64   `json:"reviewedAt,omitempty" bson:"reviewedAt,omitempty"`
	ReviewNotes  string  `json:"reviewNotes,omitempty" bson:"reviewNotes,omitempty"`
	Rating       float64 `json:"rating" bson:"rating"`
	CommentCount int     `json:"commentCount" bson:"commentCount"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// IsOwnedBy cho biết userID là người tạo hồ sơ
func (a *Application) IsOwnedBy(userID string) bool {
	return userID != "" && a.UserID == userID
}
