// Package models - model phim ngắn nhóm nộp sau khóa học.
package models

// ShortFilm là video phim ngắn của một hồ sơ
type ShortFilm struct {
	ID            string  `json:"id" bson:"_id"`
	ApplicationID string  `json:"applicationId" bson:"applicationId" index:"single:1"`
	Title         string  `json:"title" bson:"title"`
	VideoURL      string  `json:"videoUrl" bson:"videoUrl"`
	StoragePath   string  `json:"-" bson:"storagePath"`
	GroupName     string  `json:"groupName" bson:"groupName"`
	School        string  `json:"school" bson:"school"`
	ContentType   string  `json:"contentType" bson:"contentType"`
	Size          int64   `json:"size" bson:"size"`
	Rating        float64 `json:"rating" bson:"rating"`
	CommentCount  int     `json:"commentCount" bson:"commentCount"`
	UploadedBy    string  `json:"uploadedBy" bson:"uploadedBy"`
	CreatedAt     int64   `json:"createdAt" bson:"createdAt"`
	UpdatedAt     int64   `json:"updatedAt" bson:"updatedAt"`
}
