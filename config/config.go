package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng.
// Được đọc một lần khi khởi động, không thay đổi trong suốt vòng đời process.
type Configuration struct {
	Address      string `env:"ADDRESS" envDefault:"8080"`       // Cổng server
	JwtSecret    string `env:"JWT_SECRET,required"`            // Bí mật ký JWT phiên đăng nhập
	JwtTTLHours  int    `env:"JWT_TTL_HOURS" envDefault:"168"` // Thời gian sống của JWT (giờ)
	ItemsPerPage int64  `env:"ITEMS_PER_PAGE" envDefault:"10"` // Số hồ sơ mỗi trang ở màn hình duyệt

	// MongoDB
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`        // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME" envDefault:"film_camp"`  // Tên cơ sở dữ liệu
	MongoDB_Transactions  bool   `env:"MONGODB_TRANSACTIONS" envDefault:"true"` // Tắt khi chạy MongoDB standalone (không có replica set)

	// CORS + rate limit
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`           // Số request tối đa trong window (0 = tắt)
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`         // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`      // Bật/tắt rate limiting

	// Firebase
	FirebaseProjectID           string `env:"FIREBASE_PROJECT_ID"`                                     // Firebase Project ID
	FirebaseCredentialsPath     string `env:"FIREBASE_CREDENTIALS_PATH"`                               // Đường dẫn service account JSON
	FirebaseAPIKey              string `env:"FIREBASE_API_KEY"`                                        // Web API Key, dùng cho signInWithPassword
	FirebaseStorageBucket       string `env:"FIREBASE_STORAGE_BUCKET"`                                 // Bucket lưu video, file dự án, ảnh đại diện
	UseFirebaseEmulator         bool   `env:"USE_FIREBASE_EMULATOR" envDefault:"false"`                // Dùng Firebase Emulator Suite khi phát triển
	FirebaseAuthEmulatorHost    string `env:"FIREBASE_AUTH_EMULATOR_HOST" envDefault:"localhost:9099"` // Host Auth emulator
	FirebaseStorageEmulatorHost string `env:"STORAGE_EMULATOR_HOST" envDefault:"localhost:9199"`       // Host Storage emulator
	FirebaseAdminUID            string `env:"FIREBASE_ADMIN_UID"`                                      // UID được nâng quyền admin khi khởi động

	// Cache
	RedisURL string `env:"REDIS_URL"` // Bỏ trống để dùng cache trong bộ nhớ

	// Email (gửi thông báo trạng thái hồ sơ, link đặt lại mật khẩu)
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"no-reply@filmcamp.local"`

	FrontendURL  string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"` // URL frontend
	RollbarToken string `env:"ROLLBAR_TOKEN"`                                   // Bỏ trống để tắt Rollbar
	Environment  string `env:"GO_ENV" envDefault:"development"`

	// TLS/HTTPS
	EnableTLS   bool   `env:"ENABLE_TLS" envDefault:"false"` // Bật HTTPS
	TLSCertFile string `env:"TLS_CERT_FILE"`                 // Đường dẫn file certificate (.crt hoặc .pem)
	TLSKeyFile  string `env:"TLS_KEY_FILE"`                  // Đường dẫn file private key (.key)
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Đi ngược lên cho tới khi gặp config/env
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", env))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig đọc file env (nếu có) rồi parse biến môi trường vào Configuration.
// Không có file env vẫn chạy được khi biến môi trường đã được set sẵn (docker, systemd).
func NewConfig() (*Configuration, error) {
	if envPath := getEnvPath(); envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.UseFirebaseEmulator {
		// Firebase Admin SDK và cloud storage client tự đọc các biến này
		_ = os.Setenv("FIREBASE_AUTH_EMULATOR_HOST", cfg.FirebaseAuthEmulatorHost)
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.FirebaseStorageEmulatorHost)
	}

	return &cfg, nil
}
