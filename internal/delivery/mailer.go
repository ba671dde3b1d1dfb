package delivery

import (
	"context"
	"errors"
	"fmt"

	"film_camp/config"
	"film_camp/internal/common"
	"film_camp/internal/logger"

	"gopkg.in/gomail.v2"
)

// Sender gửi một thư
type Sender interface {
	Send(ctx context.Context, item QueueItem) error
}

// SMTPSender gửi thư qua SMTP bằng gomail
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender tạo sender từ cấu hình SMTP
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *SMTPSender) Send(ctx context.Context, item QueueItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", item.Recipient)
	msg.SetHeader("Subject", item.Subject)
	msg.SetBody("text/html", item.Body)
	return s.dialer.DialAndSend(msg)
}

// LogSender chỉ ghi log, dùng khi chưa cấu hình SMTP
type LogSender struct{}

func (LogSender) Send(_ context.Context, item QueueItem) error {
	logger.GetAppLogger().WithFields(map[string]interface{}{
		"recipient": item.Recipient,
		"subject":   item.Subject,
		"eventType": item.EventType,
	}).Info("📦 [DELIVERY] SMTP chưa cấu hình, bỏ qua gửi thư")
	return nil
}

// NewSender chọn SMTPSender khi có SMTP_HOST, ngược lại LogSender
func NewSender(cfg *config.Configuration) Sender {
	if cfg.SMTPHost == "" {
		return LogSender{}
	}
	return NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
}

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}

func describe(item QueueItem) string {
	return fmt.Sprintf("%s -> %s", item.EventType, item.Recipient)
}
