package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// NoopSender logs sends instead of delivering them. It is the default
// when SPARK_RESEND_API_KEY is unset, so local development never mails
// real coaches.
type NoopSender struct{}

func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the would-be delivery and fabricates a message ID so the
// outbox can mark the entry done.
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	slog.Info("noop_email_send", "to", req.To, "subject", req.Subject)
	return SendResult{
		MessageID: fmt.Sprintf("noop-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}
