package basesvctest

import (
	"context"
	"sync"
)

type snapshotter interface {
	snapshot() func()
}

// MemoryTransactor tuần tự hóa các transaction và khôi phục dữ liệu của các store khi fn trả lỗi
type MemoryTransactor struct {
	mu     sync.Mutex
	stores []snapshotter
	Runs   int
}

// NewMemoryTransactor nhận các MemoryService tham gia transaction
func NewMemoryTransactor(stores ...snapshotter) *MemoryTransactor {
	return &MemoryTransactor{stores: stores}
}

func (t *MemoryTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Runs++

	restores := make([]func(), 0, len(t.stores))
	for _, s := range t.stores {
		restores = append(restores, s.snapshot())
	}
	if err := fn(ctx); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}
