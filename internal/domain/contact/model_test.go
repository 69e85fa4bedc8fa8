package contact_test

import (
	"strings"
	"testing"

	"spark/internal/domain/contact"
)

// TestMessageValidation tests validation of contact messages.
func TestMessageValidation(t *testing.T) {
	tests := []struct {
		name    string
		msg     contact.Message
		wantErr error
	}{
		{
			name: "valid message",
			msg: contact.Message{
				ID:      "m-1",
				Name:    "Amina Noor",
				Email:   "amina@example.com",
				Subject: "Volunteering",
				Body:    "I would like to help at the event.",
			},
			wantErr: nil,
		},
		{
			name:    "empty name",
			msg:     contact.Message{Email: "a@b.com", Body: "hi"},
			wantErr: contact.ErrEmptyName,
		},
		{
			name:    "bad email",
			msg:     contact.Message{Name: "A", Email: "nope", Body: "hi"},
			wantErr: contact.ErrInvalidEmail,
		},
		{
			name:    "empty body",
			msg:     contact.Message{Name: "A", Email: "a@b.com", Body: "  "},
			wantErr: contact.ErrEmptyBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.msg.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestMessageValidation_BodyTooLong tests the body length cap.
func TestMessageValidation_BodyTooLong(t *testing.T) {
	m := contact.Message{
		Name:  "A",
		Email: "a@b.com",
		Body:  strings.Repeat("x", contact.MaxBodyLength+1),
	}
	if err := m.Validate(); err == nil {
		t.Error("expected error for over-long body")
	}
}
