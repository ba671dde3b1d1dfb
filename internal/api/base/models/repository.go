// Package models chứa các kiểu dùng chung cho layer base (kết quả phân trang).
package models

// PaginateResult là kết quả phân trang
type PaginateResult[T any] struct {
	Page      int64 `json:"page"`      // Trang hiện tại (bắt đầu từ 1)
	Limit     int64 `json:"limit"`     // Số mục mỗi trang
	ItemCount int64 `json:"itemCount"` // Số mục trong trang hiện tại
	Items     []T   `json:"items"`
	Total     int64 `json:"total"`     // Tổng số mục
	TotalPage int64 `json:"totalPage"` // Tổng số trang
}

// NewPaginateResult tính ItemCount và TotalPage từ items / total
func NewPaginateResult[T any](items []T, page, limit, total int64) *PaginateResult[T] {
	if items == nil {
		items = []T{}
	}
	var totalPage int64
	if total > 0 && limit > 0 {
		totalPage = (total + limit - 1) / limit
	}
	return &PaginateResult[T]{
		Page:      page,
		Limit:     limit,
		ItemCount: int64(len(items)),
		Items:     items,
		Total:     total,
		TotalPage: totalPage,
	}
}

// NormalizePage chuẩn hóa page >= 1, limit trong (0, maxLimit]
func NormalizePage(page, limit, maxLimit int64) (int64, int64) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
