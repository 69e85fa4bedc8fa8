package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"spark/internal/domain/contact"
)

// ContactStore defines the interface for contact message persistence.
type ContactStore interface {
	Save(ctx context.Context, m contact.Message) error
}

// ContactNotifier forwards contact messages to staff.
type ContactNotifier interface {
	ContactAdminAlert(ctx context.Context, m contact.Message)
}

// SubmitContactInput carries a contact-form submission.
type SubmitContactInput struct {
	Name    string
	Email   string
	Subject string
	Body    string
}

// SubmitContactDeps holds dependencies for SubmitContact.
type SubmitContactDeps struct {
	ContactStore ContactStore
	Notifier     ContactNotifier
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSubmitContact validates and persists a contact message, then
// forwards it to staff best-effort.
// PRE: Deps are fully populated
// POST: Message persisted; returns its ID
func ExecuteSubmitContact(ctx context.Context, input SubmitContactInput, deps SubmitContactDeps) (string, error) {
	m := contact.Message{
		ID:        deps.GenerateID(),
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Subject:   strings.TrimSpace(input.Subject),
		Body:      strings.TrimSpace(input.Body),
		CreatedAt: deps.Now(),
	}
	if err := m.Validate(); err != nil {
		return "", fieldError("", err.Error())
	}

	if err := deps.ContactStore.Save(ctx, m); err != nil {
		return "", transientError(KindPersistence, "could not save your message, please try again", err)
	}

	slog.Info("contact_event", "event", "message_received", "message_id", m.ID, "subject", m.Subject)

	deps.Notifier.ContactAdminAlert(ctx, m)
	return m.ID, nil
}
