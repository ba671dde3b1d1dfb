package delivery

import (
	"context"
	"time"

	"film_camp/internal/logger"
)

// Processor đọc hàng đợi theo chu kỳ và gửi thư
type Processor struct {
	queue     *Queue
	sender    Sender
	interval  time.Duration
	batchSize int
}

// NewProcessor tạo processor với chu kỳ 5 giây, mỗi lần tối đa 10 thư
func NewProcessor(queue *Queue, sender Sender) *Processor {
	return &Processor{
		queue:     queue,
		sender:    sender,
		interval:  5 * time.Second,
		batchSize: 10,
	}
}

// Start chạy tới khi ctx bị hủy. Panic trong vòng lặp được recover và khởi động lại sau một khoảng chờ tăng dần.
func (p *Processor) Start(ctx context.Context) {
	retryDelay := 5 * time.Second
	const maxRetryDelay = 60 * time.Second

	go p.cleanupLoop(ctx)

	for ctx.Err() == nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.GetAppLogger().WithFields(map[string]interface{}{
						"panic": r,
					}).Error("📦 [DELIVERY] Processor panic, sẽ tự khởi động lại sau khi delay")
					select {
					case <-time.After(retryDelay):
					case <-ctx.Done():
					}
					retryDelay *= 2
					if retryDelay > maxRetryDelay {
						retryDelay = maxRetryDelay
					}
				}
			}()

			ticker := time.NewTicker(p.interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					p.RunOnce(ctx)
				}
			}
		}()
	}
}

// RunOnce xử lý một lô thư, trả về số thư đã gửi thành công
func (p *Processor) RunOnce(ctx context.Context) int {
	log := logger.GetAppLogger()

	items, err := p.queue.FindPending(ctx, p.batchSize)
	if err != nil {
		log.WithError(err).Error("📦 [DELIVERY] Không lấy được thư pending")
		return 0
	}

	sent := 0
	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		if p.process(ctx, item) {
			sent++
		}
	}
	return sent
}

func (p *Processor) process(ctx context.Context, item QueueItem) bool {
	log := logger.GetAppLogger()

	claimed, ok, err := p.queue.Claim(ctx, item)
	if err != nil {
		log.WithError(err).WithField("queueItemId", item.ID).Error("📦 [DELIVERY] Không nhận được thư")
		return false
	}
	if !ok {
		return false
	}

	if sendErr := p.sender.Send(ctx, claimed); sendErr != nil {
		failed, err := p.queue.RetryOrFail(ctx, claimed, sendErr)
		entry := log.WithError(sendErr).WithFields(map[string]interface{}{
			"queueItemId": claimed.ID,
			"retryCount":  claimed.RetryCount + 1,
			"item":        describe(claimed),
		})
		if err != nil {
			entry.WithField("updateError", err.Error()).Error("📦 [DELIVERY] Không cập nhật được trạng thái retry")
		} else if failed {
			entry.Error("📦 [DELIVERY] Gửi thư thất bại, đã hết lượt thử")
		} else {
			entry.Warn("📦 [DELIVERY] Gửi thư thất bại, sẽ thử lại")
		}
		return false
	}

	if err := p.queue.MarkSent(ctx, claimed.ID); err != nil {
		log.WithError(err).WithField("queueItemId", claimed.ID).Error("📦 [DELIVERY] Không đánh dấu được thư đã gửi")
	}
	return true
}

// cleanupLoop xóa thư đã xử lý cũ hơn 7 ngày, chạy mỗi giờ
func (p *Processor) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.queue.CleanupSent(ctx, 7*24*time.Hour)
			if err != nil {
				logger.GetAppLogger().WithError(err).Error("📦 [CLEANUP] Không dọn được hàng đợi thư")
				continue
			}
			if n > 0 {
				logger.GetAppLogger().WithField("deleted", n).Info("📦 [CLEANUP] Đã dọn hàng đợi thư")
			}
		}
	}
}
