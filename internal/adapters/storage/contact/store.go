package contact

import (
	"context"

	domain "spark/internal/domain/contact"
)

// Store defines the interface for contact message persistence.
type Store interface {
	// Save persists a contact message to the database.
	// PRE: entity has been validated
	// POST: Entity is persisted (insert or update)
	Save(ctx context.Context, m domain.Message) error

	// List returns all contact messages, newest first.
	// PRE: none
	// POST: Returns every message ordered by created_at desc
	List(ctx context.Context) ([]domain.Message, error)
}
