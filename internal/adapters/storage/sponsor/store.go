package sponsor

import (
	"context"

	domain "spark/internal/domain/sponsor"
)

// Store defines the interface for sponsor registration persistence.
type Store interface {
	// GetByID retrieves a sponsor by its ID.
	// PRE: id is non-empty
	// POST: Returns the sponsor or an error if not found
	GetByID(ctx context.Context, id string) (domain.Sponsor, error)

	// Save persists a sponsor to the database.
	// PRE: entity has been validated
	// POST: Entity is persisted (insert or update)
	Save(ctx context.Context, sp domain.Sponsor) error

	// ExistsActive reports whether the contact already has an active
	// sponsorship under the same company name.
	// PRE: contactEmail is lowercase, companyName is non-empty
	// POST: Returns true when a pending or approved row matches
	ExistsActive(ctx context.Context, contactEmail, companyName string) (bool, error)

	// List returns all sponsors, newest first.
	// PRE: none
	// POST: Returns every sponsor ordered by created_at desc
	List(ctx context.Context) ([]domain.Sponsor, error)
}
