package reviewdto

import (
	models "film_camp/internal/api/review/models"
)

// CommentInput đầu vào thêm hoặc sửa bình luận
type CommentInput struct {
	Text   string `json:"text" validate:"required,max=5000,no_xss"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
}

// CommentListQuery là số bình luận đang hiển thị, mỗi lần xem thêm tăng PageSize
type CommentListQuery struct {
	Visible int `query:"visible" validate:"omitempty,min=0"`
}

// CommentPage là một trang bình luận, mới nhất trước
type CommentPage struct {
	Items   []models.Comment `json:"items"`
	Visible int              `json:"visible"`
	Total   int              `json:"total"`
	HasMore bool             `json:"hasMore"`
}
