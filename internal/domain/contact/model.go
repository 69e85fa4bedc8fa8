package contact

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxSubjectLength = 200
	MaxBodyLength    = 5000
)

// Domain errors
var (
	ErrEmptyName    = errors.New("name cannot be empty")
	ErrInvalidEmail = errors.New("email must be valid")
	ErrEmptyBody    = errors.New("message body cannot be empty")
)

// Message is a contact-form submission.
type Message struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Body      string
	CreatedAt time.Time
}

// Validate checks if the Message has valid data.
// PRE: Message struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (m *Message) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if !strings.Contains(m.Email, "@") {
		return ErrInvalidEmail
	}
	if len(m.Subject) > MaxSubjectLength {
		return errors.New("subject cannot exceed 200 characters")
	}
	if strings.TrimSpace(m.Body) == "" {
		return ErrEmptyBody
	}
	if len(m.Body) > MaxBodyLength {
		return errors.New("message cannot exceed 5000 characters")
	}
	return nil
}
