package team

import (
	"context"

	domain "spark/internal/domain/team"
)

// Store defines the interface for team registration persistence.
type Store interface {
	// GetByID retrieves a team with its full roster.
	// PRE: id is non-empty
	// POST: Returns the team or an error if not found
	GetByID(ctx context.Context, id string) (domain.Team, error)

	// Save persists a team and its roster atomically.
	// PRE: entity has been validated
	// POST: Team row and player rows are persisted (insert or update)
	Save(ctx context.Context, t domain.Team) error

	// ExistsActive reports whether the coach already has an active
	// registration under the same team name.
	// PRE: coachEmail is lowercase, teamName is non-empty
	// POST: Returns true when a pending, approved, or waitlisted row matches
	ExistsActive(ctx context.Context, coachEmail, teamName string) (bool, error)

	// List returns all teams with rosters, newest first.
	// PRE: none
	// POST: Returns every team ordered by created_at desc
	List(ctx context.Context) ([]domain.Team, error)
}
