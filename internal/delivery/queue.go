// Package delivery gửi e-mail thông báo qua hàng đợi delivery_queue và một processor chạy nền.
package delivery

import (
	"context"
	"time"

	basesvc "film_camp/internal/api/base/service"
	"film_camp/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultMaxRetries = 3
	staleAfter        = 5 * time.Minute
)

// Queue ghi và lấy thư từ collection delivery_queue
type Queue struct {
	store basesvc.BaseServiceMongo[QueueItem]
	now   func() time.Time
}

// NewQueue tạo Queue trên store
func NewQueue(store basesvc.BaseServiceMongo[QueueItem]) *Queue {
	return &Queue{store: store, now: time.Now}
}

// Enqueue thêm thư vào hàng đợi với trạng thái pending
func (q *Queue) Enqueue(ctx context.Context, msg Message) error {
	item, err := q.store.InsertOne(ctx, QueueItem{
		EventType:  msg.EventType,
		Recipient:  msg.To,
		Subject:    msg.Subject,
		Body:       msg.HTML,
		Status:     StatusPending,
		MaxRetries: defaultMaxRetries,
	})
	if err != nil {
		logger.GetAppLogger().WithError(err).WithFields(map[string]interface{}{
			"eventType": msg.EventType,
			"recipient": msg.To,
		}).Error("📦 [DELIVERY] Không thể thêm thư vào hàng đợi")
		return err
	}

	logger.GetAppLogger().WithFields(map[string]interface{}{
		"queueItemId": item.ID,
		"eventType":   msg.EventType,
	}).Debug("📦 [DELIVERY] Đã thêm thư vào hàng đợi")
	return nil
}

// FindPending trả về các thư pending đã tới hạn retry, hoặc processing quá lâu (stale)
func (q *Queue) FindPending(ctx context.Context, limit int) ([]QueueItem, error) {
	now := q.now().UnixMilli()
	filter := bson.M{
		"$or": []bson.M{
			{"status": StatusPending, "nextRetryAt": bson.M{"$lte": now}},
			{"status": StatusProcessing, "updatedAt": bson.M{"$lt": now - staleAfter.Milliseconds()}},
		},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit))
	return q.store.Find(ctx, filter, opts)
}

// Claim chuyển thư sang processing bằng update có điều kiện trạng thái.
// Trả về false khi worker khác đã nhận thư.
func (q *Queue) Claim(ctx context.Context, item QueueItem) (QueueItem, bool, error) {
	filter := bson.M{"_id": item.ID, "status": item.Status}
	if item.Status == StatusProcessing {
		filter["updatedAt"] = item.UpdatedAt
	}
	claimed, err := q.store.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"status": StatusProcessing}})
	if err != nil {
		if isNotFound(err) {
			return item, false, nil
		}
		return item, false, err
	}
	return claimed, true, nil
}

// MarkSent đánh dấu đã gửi
func (q *Queue) MarkSent(ctx context.Context, id string) error {
	_, err := q.store.UpdateById(ctx, id, bson.M{"$set": bson.M{
		"status": StatusSent,
		"sentAt": q.now().UnixMilli(),
	}, "$unset": bson.M{"error": ""}})
	return err
}

// RetryOrFail tăng retryCount và hẹn lại sau 2^n giây, hết lượt thì đánh dấu failed
func (q *Queue) RetryOrFail(ctx context.Context, item QueueItem, cause error) (failed bool, err error) {
	retry := item.RetryCount + 1
	if retry < item.MaxRetries {
		delay := time.Duration(1<<retry) * time.Second
		_, err = q.store.UpdateById(ctx, item.ID, bson.M{"$set": bson.M{
			"status":      StatusPending,
			"retryCount":  retry,
			"nextRetryAt": q.now().Add(delay).UnixMilli(),
			"error":       cause.Error(),
		}})
		return false, err
	}

	_, err = q.store.UpdateById(ctx, item.ID, bson.M{"$set": bson.M{
		"status":     StatusFailed,
		"retryCount": retry,
		"error":      cause.Error(),
	}})
	return true, err
}

// CleanupSent xóa thư đã gửi hoặc thất bại cũ hơn olderThan
func (q *Queue) CleanupSent(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := q.now().Add(-olderThan).UnixMilli()
	return q.store.DeleteMany(ctx, bson.M{
		"status":    bson.M{"$in": []string{StatusSent, StatusFailed}},
		"updatedAt": bson.M{"$lt": cutoff},
	})
}
