package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"spark/internal/adapters/http/perf"
)

type stubSender struct {
	err   error
	calls int
}

func (s *stubSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	s.calls++
	if s.err != nil {
		return SendResult{}, s.err
	}
	return SendResult{MessageID: "stub-1", SentAt: time.Now()}, nil
}

func TestTimedSenderRecordsSample(t *testing.T) {
	collector := perf.NewCollector(16)
	stub := &stubSender{}
	s := NewTimedSender(stub, collector)

	result, err := s.Send(context.Background(), SendRequest{
		To:      []string{"coach@example.org"},
		Subject: "Registration received",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.MessageID != "stub-1" {
		t.Errorf("MessageID = %q, want stub-1", result.MessageID)
	}

	emails := collector.Snapshot(time.Time{}, 10).SlowestEmails
	if len(emails) != 1 {
		t.Fatalf("got %d email stats, want 1", len(emails))
	}
	if emails[0].Path != "example.org" {
		t.Errorf("sample label = %q, want recipient domain", emails[0].Path)
	}
}

func TestTimedSenderPassesThroughError(t *testing.T) {
	collector := perf.NewCollector(16)
	wantErr := errors.New("provider down")
	s := NewTimedSender(&stubSender{err: wantErr}, collector)

	_, err := s.Send(context.Background(), SendRequest{To: []string{"a@b.org"}})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
	// Failed sends are still timed.
	if collector.TotalRecorded() != 1 {
		t.Errorf("recorded %d samples, want 1", collector.TotalRecorded())
	}
}

func TestTimedSenderNilCollector(t *testing.T) {
	stub := &stubSender{}
	s := NewTimedSender(stub, nil)

	if _, err := s.Send(context.Background(), SendRequest{To: []string{"a@b.org"}}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("inner sends = %d, want 1", stub.calls)
	}
}

func TestRecipientDomain(t *testing.T) {
	cases := []struct {
		to   []string
		want string
	}{
		{[]string{"coach@example.org"}, "example.org"},
		{[]string{"first@a.org", "second@b.org"}, "a.org"},
		{[]string{"not-an-address"}, "unknown"},
		{nil, "unknown"},
	}
	for _, c := range cases {
		if got := recipientDomain(SendRequest{To: c.to}); got != c.want {
			t.Errorf("recipientDomain(%v) = %q, want %q", c.to, got, c.want)
		}
	}
}

func TestNoopSenderReturnsMessageID(t *testing.T) {
	s := NewNoopSender()
	result, err := s.Send(context.Background(), SendRequest{To: []string{"a@b.org"}, Subject: "hi"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.MessageID == "" {
		t.Error("noop send returned empty MessageID")
	}
	if result.SentAt.IsZero() {
		t.Error("noop send returned zero SentAt")
	}
}
