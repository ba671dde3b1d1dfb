// Package cache cung cấp cache key/value có TTL: Redis khi cấu hình REDIS_URL, ngược lại lưu trong bộ nhớ.
// Giá trị được mã hóa JSON ở cả hai backend.
package cache

import (
	"context"
	"time"

	"film_camp/config"
	"film_camp/internal/logger"
)

// Cache là kho key/value có TTL
type Cache interface {
	// Get giải mã giá trị vào dest, trả về false khi không có key
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Key prefix dùng chung
const (
	PrefixSession  = "session:"
	PrefixProjects = "projects:"
)

// New chọn backend theo cấu hình. Redis không kết nối được thì dùng bộ nhớ.
func New(cfg *config.Configuration) Cache {
	if cfg.RedisURL != "" {
		rc, err := NewRedisCache(cfg.RedisURL)
		if err == nil {
			logger.GetAppLogger().Info("🧠 [CACHE] Dùng Redis")
			return rc
		}
		logger.GetAppLogger().WithError(err).Warn("🧠 [CACHE] Không kết nối được Redis, chuyển sang cache bộ nhớ")
	}
	return NewMemoryCache(time.Minute)
}
