// Package logger cung cấp các logger logrus có tên (app, audit) ghi ra file xoay vòng và stdout.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	loggers   = make(map[string]*logrus.Logger)
	asyncs    []*AsyncHook
	loggersMu sync.Mutex

	config      *LogConfig
	rollbarHook logrus.Hook
)

// Init khởi tạo hệ thống logging. cfg nil = DefaultConfig()
func Init(cfg *LogConfig) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	loggersMu.Lock()
	config = cfg
	loggersMu.Unlock()

	if cfg.Output == "file" || cfg.Output == "both" {
		if err := os.MkdirAll(cfg.LogPath, 0755); err != nil {
			return fmt.Errorf("failed to create logs directory: %w", err)
		}
	}
	return nil
}

// GetLogger trả về logger theo tên, tạo mới nếu chưa có
func GetLogger(name string) *logrus.Logger {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if config == nil {
		config = DefaultConfig()
	}

	if l, ok := loggers[name]; ok {
		return l
	}

	l := createLogger(name)
	loggers[name] = l
	return l
}

// GetAppLogger trả về logger chính của ứng dụng
func GetAppLogger() *logrus.Logger {
	return GetLogger("app")
}

// GetAuditLogger trả về logger cho audit
func GetAuditLogger() *logrus.Logger {
	return GetLogger("audit")
}

// Close đợi các AsyncHook ghi hết log đang chờ. Gọi khi tắt server.
func Close() {
	loggersMu.Lock()
	hooks := asyncs
	asyncs = nil
	loggersMu.Unlock()

	for _, h := range hooks {
		_ = h.Close()
	}
}

func createLogger(name string) *logrus.Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	l.SetFormatter(newFormatter(config.Format))

	var writers []io.Writer
	if config.Output == "file" || config.Output == "both" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   logFilePath(name),
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
			Compress:   config.Compress,
		})
	}
	if config.Output == "stdout" || config.Output == "both" {
		writers = append(writers, os.Stdout)
	}

	// FilterHook phải đứng trước AsyncHook để entry đã được đánh dấu khi vào hàng đợi
	l.AddHook(NewFilterHook(config))
	if rollbarHook != nil {
		l.AddHook(rollbarHook)
	}
	if len(writers) > 0 {
		async := NewAsyncHook(writers, config.BufferSize)
		asyncs = append(asyncs, async)
		l.AddHook(async)
		l.SetOutput(io.Discard)
	}

	l.SetReportCaller(true)
	return l
}

func newFormatter(format string) logrus.Formatter {
	const ts = "2006-01-02 15:04:05.000"
	if format == "json" {
		return &logrus.JSONFormatter{
			TimestampFormat: ts,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyMsg:   "message",
				logrus.FieldKeyFunc:  "function",
				logrus.FieldKeyFile:  "file",
				logrus.FieldKeyLevel: "level",
			},
		}
	}
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: ts,
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			parts := strings.Split(f.Function, ".")
			return parts[len(parts)-1], fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
		},
	}
}

func logFilePath(name string) string {
	filename := name + ".log"
	switch name {
	case "app":
		filename = config.AppFile
	case "audit":
		filename = config.AuditFile
	}
	return filepath.Join(config.LogPath, filename)
}
