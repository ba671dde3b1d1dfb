package events

import (
	"context"
	"sync"
)

// Hub phân phối sự kiện theo topic (ví dụ id hồ sơ) tới các subscriber đang mở SSE
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[chan DataChangeEvent]struct{}
	buffer int
}

// NewHub tạo hub, buffer là số sự kiện tối đa mỗi subscriber được giữ trước khi bị bỏ
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{subs: make(map[string]map[chan DataChangeEvent]struct{}), buffer: buffer}
}

// Subscribe đăng ký nhận sự kiện của topic. Gọi cancel khi client ngắt kết nối.
func (h *Hub) Subscribe(topic string) (<-chan DataChangeEvent, func()) {
	ch := make(chan DataChangeEvent, h.buffer)

	h.mu.Lock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[chan DataChangeEvent]struct{})
	}
	h.subs[topic][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[topic], ch)
			if len(h.subs[topic]) == 0 {
				delete(h.subs, topic)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish gửi sự kiện tới mọi subscriber của topic, không block: subscriber chậm sẽ mất sự kiện
func (h *Hub) Publish(topic string, e DataChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[topic] {
		select {
		case ch <- e:
		default:
		}
	}
}

// SubscriberCount trả về số subscriber của topic
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}

// Forward trả về handler đẩy sự kiện thay đổi dữ liệu vào hub.
// fields ánh xạ tên collection sang tên field Go chứa topic, collection không có trong map bị bỏ qua.
func (h *Hub) Forward(fields map[string]string) DataChangeHandler {
	return func(_ context.Context, e DataChangeEvent) {
		field, ok := fields[e.CollectionName]
		if !ok {
			return
		}
		if topic := StringField(e.Document, field); topic != "" {
			h.Publish(topic, e)
		}
	}
}
