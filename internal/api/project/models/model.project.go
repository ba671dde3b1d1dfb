// Package models - model dự án (Project) thuộc domain project. Dự án chỉ được đọc.
package models

// Trạng thái dự án
const (
	StatusComingSoon = "coming-soon"
	StatusOpen       = "open"
	StatusReviewing  = "reviewing"
	StatusClosed     = "closed"
	StatusArchived   = "archived"
)

// ContactPerson là người liên hệ của dự án
type ContactPerson struct {
	ID           string `json:"id" bson:"id"`
	FullName     string `json:"fullName" bson:"fullName"`
	ProfileImage string `json:"profileImage,omitempty" bson:"profileImage,omitempty"`
}

// Project là một trại phim / khóa học mà người dùng nộp hồ sơ
type Project struct {
	ID                  string          `json:"id" bson:"_id"`
	Title               string          `json:"title" bson:"title"`
	ShortDescription    string          `json:"shortDescription,omitempty" bson:"shortDescription,omitempty"`
	Description         string          `json:"description" bson:"description"`
	Status              string          `json:"status" bson:"status" index:"single:1"`
	IsPublic            bool            `json:"isPublic" bson:"isPublic"`
	ImageURL            string          `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	StartDate           string          `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate             string          `json:"endDate,omitempty" bson:"endDate,omitempty"`
	ApplicationDeadline string          `json:"applicationDeadline,omitempty" bson:"applicationDeadline,omitempty"`
	VenueName           string          `json:"venueName,omitempty" bson:"venueName,omitempty"`
	VenueCoordinates    string          `json:"venueCoordinates,omitempty" bson:"venueCoordinates,omitempty"`
	Province            string          `json:"province,omitempty" bson:"province,omitempty" index:"single:1"`
	OrganizerName       string          `json:"organizerName,omitempty" bson:"organizerName,omitempty"`
	TargetArea          string          `json:"targetArea,omitempty" bson:"targetArea,omitempty"`
	MaxAttendees        int             `json:"maxAttendees,omitempty" bson:"maxAttendees,omitempty"`
	Tags                []string        `json:"tags" bson:"tags"`
	ContactPersons      []ContactPerson `json:"contactPersons" bson:"contactPersons"`
	CreatedAt           int64           `json:"createdAt" bson:"createdAt"`
	UpdatedAt           int64           `json:"updatedAt" bson:"updatedAt"`
}

