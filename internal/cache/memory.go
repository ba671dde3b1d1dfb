package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryItem struct {
	data    []byte
	expires time.Time
}

// MemoryCache lưu giá trị trong map, dọn các key hết hạn theo chu kỳ
type MemoryCache struct {
	items    map[string]memoryItem
	mu       sync.RWMutex
	stopChan chan struct{}
	once     sync.Once
	now      func() time.Time
}

// NewMemoryCache tạo cache bộ nhớ với chu kỳ dọn dẹp cleanup
func NewMemoryCache(cleanup time.Duration) *MemoryCache {
	c := &MemoryCache{
		items:    make(map[string]memoryItem),
		stopChan: make(chan struct{}),
		now:      time.Now,
	}
	go c.cleanupLoop(cleanup)
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || (!item.expires.IsZero() && c.now().After(item.expires)) {
		return false, nil
	}
	if err := json.Unmarshal(item.data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set lưu value, ttl <= 0 nghĩa là không hết hạn
func (c *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	item := memoryItem{data: data}
	if ttl > 0 {
		item.expires = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.items[key] = item
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

// Close dừng goroutine dọn dẹp
func (c *MemoryCache) Close() error {
	c.once.Do(func() { close(c.stopChan) })
	return nil
}

func (c *MemoryCache) cleanupLoop(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := c.now()
			c.mu.Lock()
			for k, item := range c.items {
				if !item.expires.IsZero() && now.After(item.expires) {
					delete(c.items, k)
				}
			}
			c.mu.Unlock()
		case <-c.stopChan:
			return
		}
	}
}
