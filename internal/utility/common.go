// Package utility chứa các hàm tiện ích dùng chung: chuyển đổi bson, tính tuổi, điểm đánh giá,
// chuẩn hóa tên, khởi tạo Firebase.
package utility

import (
	"fmt"
	"runtime/debug"

	"film_camp/internal/logger"
)

// GoProtect chạy f và bắt panic, ghi log thay vì làm sập process
func GoProtect(name string, f func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.GetAppLogger().WithFields(map[string]interface{}{
				"worker": name,
				"panic":  fmt.Sprint(r),
				"stack":  string(debug.Stack()),
			}).Error("💥 [PANIC] Đã bắt panic trong goroutine")
		}
	}()
	f()
}

// Contains kiểm tra item có trong slice không
func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}
