// Package global chứa các biến toàn cục được khởi tạo một lần khi server khởi động.
package global

import (
	"film_camp/config"
	"film_camp/internal/registry"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	Users               string // Người dùng (id = Firebase UID)
	Projects            string // Dự án / trại phim (chỉ đọc)
	Applications        string // Hồ sơ đăng ký
	ApplicationMembers  string // Thành viên đoàn của hồ sơ
	ApplicationComments string // Bình luận + chấm điểm hồ sơ
	ShortFilms          string // Phim ngắn đã nộp
	ShortFilmComments   string // Bình luận + chấm điểm phim ngắn
	DeliveryQueue       string // Hàng đợi email
}

// Các biến toàn cục
var (
	Validate         *validator.Validate       // Validator dùng chung
	Translator       ut.Translator             // Dịch lỗi validator sang thông báo tiếng Anh
	MongoDB_Session  *mongo.Client             // Kết nối MongoDB
	MongoDB_Database *mongo.Database           // Database đang dùng
	ServerConfig     *config.Configuration     // Cấu hình server
	MongoDB_ColNames = MongoDB_CollectionName{ // Tên các collection
		Users:               "users",
		Projects:            "projects",
		Applications:        "applications",
		ApplicationMembers:  "application_members",
		ApplicationComments: "application_comments",
		ShortFilms:          "shortfilms",
		ShortFilmComments:   "shortfilm_comments",
		DeliveryQueue:       "delivery_queue",
	}
)

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
