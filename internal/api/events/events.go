// Package events phát sự kiện khi dữ liệu thay đổi qua BaseServiceMongoImpl.
// Các phản ứng (xóa cache, đẩy SSE cho client đang xem hồ sơ) đăng ký qua OnDataChanged.
package events

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"film_camp/internal/logger"
)

// Các loại thao tác CRUD
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// DataChangeEvent mô tả một thay đổi dữ liệu.
// Document là bản ghi sau khi thay đổi, với delete là bản ghi trước khi xóa.
type DataChangeEvent struct {
	CollectionName string      `json:"collection"`
	Operation      string      `json:"operation"`
	Document       interface{} `json:"document,omitempty"`
}

// DataChangeHandler xử lý sự kiện thay đổi dữ liệu
type DataChangeHandler func(ctx context.Context, e DataChangeEvent)

var (
	handlers   []DataChangeHandler
	handlersMu sync.RWMutex
)

// OnDataChanged đăng ký handler, gọi lúc khởi động
func OnDataChanged(h DataChangeHandler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	handlers = append(handlers, h)
}

// EmitDataChanged phát sự kiện tới mọi handler, mỗi handler một goroutine.
// Context của request có thể đã bị hủy khi handler chạy nên handler dùng context riêng.
func EmitDataChanged(ctx context.Context, e DataChangeEvent) {
	handlersMu.RLock()
	list := make([]DataChangeHandler, len(handlers))
	copy(list, handlers)
	handlersMu.RUnlock()

	bg := context.WithoutCancel(ctx)
	for _, h := range list {
		go func(fn DataChangeHandler) {
			defer func() {
				if r := recover(); r != nil {
					logger.GetAppLogger().WithFields(map[string]interface{}{
						"collection": e.CollectionName,
						"operation":  e.Operation,
						"panic":      fmt.Sprint(r),
					}).Error("📣 [EVENTS] Handler panic")
				}
			}()
			fn(bg, e)
		}(h)
	}
}

// StringField lấy giá trị string của field (theo tên field Go) từ document bằng reflection.
// Trả về "" nếu không có field hoặc field không phải string.
func StringField(doc interface{}, fieldName string) string {
	if doc == nil {
		return ""
	}
	val := reflect.ValueOf(doc)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return ""
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return ""
	}
	f := val.FieldByName(fieldName)
	if !f.IsValid() || f.Kind() != reflect.String {
		return ""
	}
	return f.String()
}
