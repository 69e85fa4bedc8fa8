package sponsor

import (
	"errors"
	"strings"
	"time"
)

// Sponsorship level constants
const (
	LevelPlatinum = "platinum"
	LevelGold     = "gold"
	LevelSilver   = "silver"
	LevelBronze   = "bronze"
)

// Registration status constants; only pending/approved block re-registration.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Domain errors
var (
	ErrUnknownLevel     = errors.New("unknown sponsorship level")
	ErrEmptyCompany     = errors.New("company name cannot be empty")
	ErrEmptyContactName = errors.New("contact name cannot be empty")
	ErrInvalidEmail     = errors.New("contact email must be valid")
	ErrEmptyPhone       = errors.New("contact phone cannot be empty")
)

// levelAmounts maps sponsorship levels to their fixed amount in cents.
var levelAmounts = map[string]int{
	LevelPlatinum: 500000,
	LevelGold:     250000,
	LevelSilver:   100000,
	LevelBronze:   50000,
}

// LevelAmount returns the fixed amount in cents for a sponsorship level.
// PRE: level is the raw value from the submission
// POST: Returns the amount, or ErrUnknownLevel (fail closed, no fallback)
func LevelAmount(level string) (int, error) {
	amount, ok := levelAmounts[level]
	if !ok {
		return 0, ErrUnknownLevel
	}
	return amount, nil
}

// Sponsor is the aggregate created on a successful sponsor registration.
type Sponsor struct {
	ID            string
	CompanyName   string
	ContactName   string
	ContactEmail  string // normalized to lowercase
	ContactPhone  string
	Level         string
	AmountCents   int // derived from Level at creation, immutable
	Website       string
	Comments      string
	PaymentMethod string
	PaymentStatus string
	Status        string
	CreatedAt     time.Time
}

// Validate checks if the Sponsor has valid data.
// PRE: Sponsor struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (s *Sponsor) Validate() error {
	if strings.TrimSpace(s.CompanyName) == "" {
		return ErrEmptyCompany
	}
	if strings.TrimSpace(s.ContactName) == "" {
		return ErrEmptyContactName
	}
	if !strings.Contains(s.ContactEmail, "@") {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(s.ContactPhone) == "" {
		return ErrEmptyPhone
	}
	if _, err := LevelAmount(s.Level); err != nil {
		return err
	}
	return nil
}

// BlocksReRegistration reports whether this sponsor's status blocks a new
// submission with the same contact email and company name.
// INVARIANT: Sponsor fields are not mutated
func (s *Sponsor) BlocksReRegistration() bool {
	return s.Status == StatusPending || s.Status == StatusApproved
}
