package email

import (
	"context"
	"log/slog"
	"time"

	"spark/internal/adapters/http/perf"
)

// TimedSender decorates a Sender with timing. Provider latency shows up
// on the admin perf dashboard next to request and query timings, keyed
// by recipient domain so one slow provider route is visible.
type TimedSender struct {
	inner     Sender
	collector *perf.Collector
}

// NewTimedSender wraps inner. A nil collector passes sends through
// untimed.
func NewTimedSender(inner Sender, collector *perf.Collector) *TimedSender {
	return &TimedSender{inner: inner, collector: collector}
}

func (s *TimedSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	start := time.Now()
	result, err := s.inner.Send(ctx, req)
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		slog.Warn("email_send_failed", "subject", req.Subject, "duration_ms", durationMs, "error", err)
	}
	if s.collector != nil {
		s.collector.Record(perf.Entry{
			Kind:       perf.KindEmail,
			Path:       recipientDomain(req),
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
	return result, err
}

// recipientDomain labels a send by the first recipient's mail domain.
func recipientDomain(req SendRequest) string {
	if len(req.To) == 0 {
		return "unknown"
	}
	addr := req.To[0]
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == '@' {
			return addr[i+1:]
		}
	}
	return "unknown"
}
