// Package models - model bình luận chấm điểm của ban giám khảo.
package models

// Loại đối tượng được bình luận
const (
	KindApplication = "application"
	KindShortFilm   = "shortfilm"
)

// ParentRef trỏ tới đối tượng được bình luận
type ParentRef struct {
	Kind string
	ID   string
}

// Comment là một bình luận kèm điểm 1-5
type Comment struct {
	ID         string `json:"id" bson:"_id"`
	ParentID   string `json:"parentId" bson:"parentId" index:"compound:comment_parent_created"`
	UserID     string `json:"userId" bson:"userId"`
	UserName   string `json:"userName" bson:"userName"`
	UserAvatar string `json:"userAvatar,omitempty" bson:"userAvatar,omitempty"`
	Text       string `json:"text" bson:"text"`
	Rating     int    `json:"rating" bson:"rating"`
	Edited     bool   `json:"edited" bson:"edited"`
	CreatedAt  int64  `json:"createdAt" bson:"createdAt" index:"compound:comment_parent_created,order:-1"`
	UpdatedAt  int64  `json:"updatedAt" bson:"updatedAt"`
}
