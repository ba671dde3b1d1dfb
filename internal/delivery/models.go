package delivery

// Trạng thái của một thư trong hàng đợi
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusSent       = "sent"
	StatusFailed     = "failed"
)

// Loại sự kiện sinh ra thư
const (
	EventApplicationStatus = "application_status"
	EventPasswordReset     = "password_reset"
)

// QueueItem là một thư chờ gửi (collection delivery_queue)
type QueueItem struct {
	ID          string `json:"id,omitempty" bson:"_id,omitempty"`
	EventType   string `json:"eventType" bson:"eventType" index:"single:1"`
	Recipient   string `json:"recipient" bson:"recipient"`
	Subject     string `json:"subject" bson:"subject"`
	Body        string `json:"body" bson:"body"` // HTML
	Status      string `json:"status" bson:"status" index:"compound:status_next_retry"`
	RetryCount  int    `json:"retryCount" bson:"retryCount"`
	MaxRetries  int    `json:"maxRetries" bson:"maxRetries"`
	NextRetryAt int64  `json:"nextRetryAt" bson:"nextRetryAt" index:"compound:status_next_retry"`
	Error       string `json:"error,omitempty" bson:"error,omitempty"`
	SentAt      int64  `json:"sentAt,omitempty" bson:"sentAt,omitempty"`
	CreatedAt   int64  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt" bson:"updatedAt"`
}

// Message là thư đã dựng sẵn nội dung
type Message struct {
	EventType string
	To        string
	Subject   string
	HTML      string
}
