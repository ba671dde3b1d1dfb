package logger

import (
	"os"
	"strconv"
	"strings"
)

// LogConfig chứa cấu hình cho hệ thống logging
type LogConfig struct {
	Level  string // trace, debug, info, warn, error, fatal
	Format string // json, text
	Output string // file, stdout, both

	// Rotation (lumberjack)
	MaxSize    int  // MB
	MaxBackups int  // Số file cũ giữ lại
	MaxAge     int  // Số ngày giữ lại
	Compress   bool // Nén file cũ

	LogPath   string
	AppFile   string
	AuditFile string

	// Bộ lọc, phân cách bằng dấu phẩy, rỗng hoặc "*" = cho phép tất cả
	FilterModules string
	FilterLevels  string
	FilterPaths   string

	// Buffer của AsyncHook
	BufferSize int
}

// DefaultConfig trả về cấu hình mặc định theo GO_ENV, sau đó override bằng các biến LOG_*
func DefaultConfig() *LogConfig {
	cfg := &LogConfig{
		Level:      "info",
		Format:     "json",
		Output:     "both",
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     7,
		Compress:   true,
		LogPath:    "./logs",
		AppFile:    "app.log",
		AuditFile:  "audit.log",
		BufferSize: 1000,
	}

	if goEnv := os.Getenv("GO_ENV"); goEnv == "" || goEnv == "development" {
		cfg.Level = "debug"
		cfg.Format = "text"
	}

	overrideString(&cfg.Level, "LOG_LEVEL", true)
	overrideString(&cfg.Format, "LOG_FORMAT", true)
	overrideString(&cfg.Output, "LOG_OUTPUT", true)
	overrideString(&cfg.LogPath, "LOG_PATH", false)
	overrideString(&cfg.AppFile, "LOG_APP_FILE", false)
	overrideString(&cfg.AuditFile, "LOG_AUDIT_FILE", false)
	overrideString(&cfg.FilterModules, "LOG_FILTER_MODULES", true)
	overrideString(&cfg.FilterLevels, "LOG_FILTER_LEVELS", true)
	overrideString(&cfg.FilterPaths, "LOG_FILTER_PATHS", true)

	overrideInt(&cfg.MaxSize, "LOG_MAX_SIZE", 1)
	overrideInt(&cfg.MaxBackups, "LOG_MAX_BACKUPS", 0)
	overrideInt(&cfg.MaxAge, "LOG_MAX_AGE", 1)
	overrideInt(&cfg.BufferSize, "LOG_BUFFER_SIZE", 1)

	if v := os.Getenv("LOG_COMPRESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Compress = b
		}
	}

	return cfg
}

func overrideString(dst *string, key string, lower bool) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if lower {
		v = strings.ToLower(v)
	}
	*dst = v
}

func overrideInt(dst *int, key string, min int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil && n >= min {
		*dst = n
	}
}
