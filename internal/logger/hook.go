package logger

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"
)

// filteredKey được FilterHook gắn vào entry bị lọc, AsyncHook bỏ qua các entry này
const filteredKey = "_filtered"

// AsyncHook đưa log entry vào channel và ghi ra writers trong goroutine riêng,
// request handling không bao giờ bị block bởi I/O của file log.
type AsyncHook struct {
	writers []io.Writer
	entries chan *logrus.Entry
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
}

// NewAsyncHook tạo hook và khởi động goroutine ghi log
func NewAsyncHook(writers []io.Writer, bufferSize int) *AsyncHook {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	h := &AsyncHook{
		writers: writers,
		entries: make(chan *logrus.Entry, bufferSize),
	}
	h.wg.Add(1)
	go h.run()
	return h
}

func (h *AsyncHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire không block: khi buffer đầy entry bị bỏ
func (h *AsyncHook) Fire(entry *logrus.Entry) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		h.write(entry)
		return nil
	}

	select {
	case h.entries <- snapshot(entry):
	default:
	}
	return nil
}

// snapshot sao chép entry vì logrus có thể tái sử dụng entry sau khi Fire trả về
func snapshot(entry *logrus.Entry) *logrus.Entry {
	cp := *entry
	cp.Buffer = nil
	cp.Data = make(logrus.Fields, len(entry.Data))
	for k, v := range entry.Data {
		cp.Data[k] = v
	}
	return &cp
}

func (h *AsyncHook) run() {
	defer h.wg.Done()
	for entry := range h.entries {
		h.safeWrite(entry)
	}
}

func (h *AsyncHook) safeWrite(entry *logrus.Entry) {
	defer func() {
		if r := recover(); r != nil {
			// Không dùng logger ở đây để tránh vòng lặp
			fmt.Fprintf(os.Stderr, "[LOGGER PANIC] %v\n%s", r, debug.Stack())
		}
	}()
	h.write(entry)
}

func (h *AsyncHook) write(entry *logrus.Entry) {
	if filtered, _ := entry.Data[filteredKey].(bool); filtered {
		return
	}
	delete(entry.Data, filteredKey)

	var (
		data []byte
		err  error
	)
	if entry.Logger != nil && entry.Logger.Formatter != nil {
		data, err = entry.Logger.Formatter.Format(entry)
	} else {
		var line string
		line, err = entry.String()
		data = []byte(line)
	}
	if err != nil {
		return
	}

	for _, w := range h.writers {
		_, _ = w.Write(data)
	}
}

// Close đóng hàng đợi và đợi ghi hết các entry còn lại
func (h *AsyncHook) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	close(h.entries)
	h.mu.Unlock()

	h.wg.Wait()
	return nil
}
