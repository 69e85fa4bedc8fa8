package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "spark/internal/adapters/email"
	domain "spark/internal/domain/outbox"
)

// OutboxStoreForRetry defines the store interface needed by the retry loop.
type OutboxStoreForRetry interface {
	GetByID(ctx context.Context, id string) (domain.Entry, error)
	Save(ctx context.Context, e domain.Entry) error
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)
}

// RetryOutboxDeps holds dependencies for the outbox retry pass.
type RetryOutboxDeps struct {
	OutboxStore OutboxStoreForRetry
	Sender      emailAdapter.Sender
	Now         func() time.Time
}

// ExecuteRetryOutbox replays queued email sends that are past their backoff
// window. Entries that keep failing are marked failed at max attempts.
// PRE: Deps are valid and the store is connected
// POST: Every eligible entry was attempted once; results logged
func ExecuteRetryOutbox(ctx context.Context, deps RetryOutboxDeps) error {
	entries, err := deps.OutboxStore.ListPending(ctx, 100)
	if err != nil {
		return fmt.Errorf("list retryable outbox entries: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	slog.Info("outbox_retry_start", "count", len(entries))

	baseDelay := 1 * time.Minute
	maxDelay := 1 * time.Hour
	now := deps.Now()

	var succeeded, failed, skipped int
	for _, entry := range entries {
		if !entry.LastAttemptedAt.IsZero() &&
			now.Before(entry.LastAttemptedAt.Add(entry.NextRetryDelay(baseDelay, maxDelay))) {
			skipped++
			continue
		}

		entry.MarkAttempt(now)
		messageID, err := replayEmail(ctx, deps.Sender, entry)
		if err != nil {
			entry.MarkFailed(err)
			failed++
			slog.Warn("outbox_retry_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "error", err.Error())
		} else {
			entry.MarkSuccess(messageID)
			succeeded++
			slog.Info("outbox_retry_succeeded", "entry_id", entry.ID, "attempt", entry.Attempts, "message_id", messageID)
		}

		if saveErr := deps.OutboxStore.Save(ctx, entry); saveErr != nil {
			slog.Error("outbox_retry_save_failed", "entry_id", entry.ID, "error", saveErr.Error())
		}
	}

	slog.Info("outbox_retry_complete", "succeeded", succeeded, "failed", failed, "skipped", skipped)
	return nil
}

// ExecuteRetryOutboxEntry replays a single entry immediately, bypassing the
// backoff window (staff-triggered retry).
// PRE: entryID is non-empty
// POST: Entry attempted and saved, or an error if it is terminal
func ExecuteRetryOutboxEntry(ctx context.Context, deps RetryOutboxDeps, entryID string) error {
	entry, err := deps.OutboxStore.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	if entry.IsTerminal() {
		return fmt.Errorf("entry %s is in a terminal state and cannot be retried", entryID)
	}

	entry.MarkAttempt(deps.Now())
	messageID, sendErr := replayEmail(ctx, deps.Sender, entry)
	if sendErr != nil {
		entry.MarkFailed(sendErr)
	} else {
		entry.MarkSuccess(messageID)
	}
	if err := deps.OutboxStore.Save(ctx, entry); err != nil {
		return fmt.Errorf("save outbox entry: %w", err)
	}
	return sendErr
}

// ExecuteAbandonOutboxEntry marks an entry as abandoned by staff.
// PRE: entryID is non-empty
// POST: Entry status set to abandoned
func ExecuteAbandonOutboxEntry(ctx context.Context, deps RetryOutboxDeps, entryID string) error {
	entry, err := deps.OutboxStore.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	entry.MarkAbandoned()
	return deps.OutboxStore.Save(ctx, entry)
}

// replayEmail decodes an entry's payload and sends it.
func replayEmail(ctx context.Context, sender emailAdapter.Sender, entry domain.Entry) (string, error) {
	if entry.ActionType != domain.ActionTypeEmail {
		return "", fmt.Errorf("unknown action type: %s", entry.ActionType)
	}
	var req emailAdapter.SendRequest
	if err := json.Unmarshal([]byte(entry.Payload), &req); err != nil {
		return "", fmt.Errorf("unmarshal email payload: %w", err)
	}
	result, err := sender.Send(ctx, req)
	if err != nil {
		return "", err
	}
	return result.MessageID, nil
}

// StartOutboxRetryScheduler starts a background goroutine that periodically
// replays queued emails.
// PRE: Context is valid, deps are initialized
// POST: Goroutine started; returns a cancel function
func StartOutboxRetryScheduler(ctx context.Context, deps RetryOutboxDeps, interval time.Duration) func() {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := ExecuteRetryOutbox(ctx, deps); err != nil {
					slog.Error("outbox_retry_scheduler_error", "error", err.Error())
				}
			}
		}
	}()

	return cancel
}
