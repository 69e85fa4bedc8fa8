package team

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Roster size bounds, enforced at creation and never relaxed.
const (
	MinRosterSize = 5
	MaxRosterSize = 10
)

// Payment method constants
const (
	PaymentMethodCheck   = "check"
	PaymentMethodZelle   = "zelle"
	PaymentMethodVenmo   = "venmo"
	PaymentMethodGateway = "gateway"
)

// Payment status constants. pending -> processing -> completed;
// pending/processing -> failed or cancelled. Terminal states are never left.
const (
	PaymentPending    = "pending"
	PaymentProcessing = "processing"
	PaymentCompleted  = "completed"
	PaymentFailed     = "failed"
	PaymentCancelled  = "cancelled"
)

// Registration status constants. Lifecycle is managed by back-office staff;
// only pending/approved/waitlisted block re-registration.
const (
	StatusPending    = "pending"
	StatusApproved   = "approved"
	StatusWaitlisted = "waitlisted"
	StatusRejected   = "rejected"
)

// Domain errors
var (
	ErrRosterSize         = errors.New("team must have between 5 and 10 players")
	ErrInvalidTransition  = errors.New("invalid payment status transition")
	ErrAlreadyTerminal    = errors.New("payment is already in a terminal state")
	ErrEmptyTeamName      = errors.New("team name cannot be empty")
	ErrEmptyOrganization  = errors.New("organization cannot be empty")
	ErrEmptyCity          = errors.New("city cannot be empty")
	ErrInvalidCoachEmail  = errors.New("coach email must be valid")
	ErrEmptyCoachName     = errors.New("coach name cannot be empty")
	ErrEmptyCoachPhone    = errors.New("coach phone cannot be empty")
	ErrInvalidMethod      = errors.New("payment method must be check, zelle, venmo, or gateway")
	ErrEmptyEmergency     = errors.New("emergency contact name, phone, and relationship are required")
	ErrInvalidGender      = errors.New("gender bracket must be 'boys' or 'girls'")
)

// ValidPaymentMethods contains all accepted payment method values.
var ValidPaymentMethods = []string{PaymentMethodCheck, PaymentMethodZelle, PaymentMethodVenmo, PaymentMethodGateway}

// Gender bracket constants
const (
	GenderBoys  = "boys"
	GenderGirls = "girls"
)

// Player is owned exclusively by a Team. Created during roster build,
// never independently persisted.
type Player struct {
	Name              string
	DateOfBirth       time.Time
	PhotoPath         string // stored upload reference; empty when the tier does not require one
	PhotoOriginalName string
	AgeAtRegistration int // computed once against the submission timestamp
}

// EmergencyContact is the required contact triple on every team.
type EmergencyContact struct {
	Name         string
	Phone        string
	Relationship string
}

// Team is the root aggregate created on a successful registration submission.
type Team struct {
	ID                  string
	TeamName            string
	Organization        string
	City                string
	Tier                string
	Gender              string
	CoachName           string
	CoachEmail          string // normalized to lowercase
	CoachPhone          string
	Players             []Player // ordered, length in [MinRosterSize, MaxRosterSize]
	Emergency           EmergencyContact
	RegistrationFee     int // cents, derived from tier at creation, immutable
	PaymentMethod       string
	PaymentStatus       string
	RegistrationStatus  string
	SpecialRequirements string
	Comments            string
	CreatedAt           time.Time
}

// Validate checks if the Team has valid data.
// PRE: Team struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Roster size is within [5, 10]; coach email contains '@'
func (t *Team) Validate() error {
	if strings.TrimSpace(t.TeamName) == "" {
		return ErrEmptyTeamName
	}
	if len(t.TeamName) > MaxNameLength {
		return errors.New("team name cannot exceed 100 characters")
	}
	if strings.TrimSpace(t.Organization) == "" {
		return ErrEmptyOrganization
	}
	if strings.TrimSpace(t.City) == "" {
		return ErrEmptyCity
	}
	if t.Gender != GenderBoys && t.Gender != GenderGirls {
		return ErrInvalidGender
	}
	if strings.TrimSpace(t.CoachName) == "" {
		return ErrEmptyCoachName
	}
	if !strings.Contains(t.CoachEmail, "@") {
		return ErrInvalidCoachEmail
	}
	if strings.TrimSpace(t.CoachPhone) == "" {
		return ErrEmptyCoachPhone
	}
	if len(t.Players) < MinRosterSize || len(t.Players) > MaxRosterSize {
		return ErrRosterSize
	}
	if strings.TrimSpace(t.Emergency.Name) == "" ||
		strings.TrimSpace(t.Emergency.Phone) == "" ||
		strings.TrimSpace(t.Emergency.Relationship) == "" {
		return ErrEmptyEmergency
	}
	if !isValidPaymentMethod(t.PaymentMethod) {
		return ErrInvalidMethod
	}
	return nil
}

// FinalizeAges computes every player's AgeAtRegistration against asOf.
// PRE: All players have a DateOfBirth set
// POST: AgeAtRegistration is cached on each player; never recomputed later
func (t *Team) FinalizeAges(asOf time.Time) {
	for i := range t.Players {
		t.Players[i].AgeAtRegistration = AgeAt(t.Players[i].DateOfBirth, asOf)
	}
}

// BlocksReRegistration reports whether this team's registration status blocks
// a new submission with the same coach email and team name.
// INVARIANT: Team fields are not mutated
func (t *Team) BlocksReRegistration() bool {
	return t.RegistrationStatus == StatusPending ||
		t.RegistrationStatus == StatusApproved ||
		t.RegistrationStatus == StatusWaitlisted
}

// paymentTerminal reports whether the current payment status is terminal.
func (t *Team) paymentTerminal() bool {
	return t.PaymentStatus == PaymentCompleted ||
		t.PaymentStatus == PaymentFailed ||
		t.PaymentStatus == PaymentCancelled
}

// MarkPaymentProcessing transitions payment from pending to processing.
// PRE: PaymentStatus is pending
// POST: PaymentStatus is processing
func (t *Team) MarkPaymentProcessing() error {
	if t.PaymentStatus != PaymentPending {
		return ErrInvalidTransition
	}
	t.PaymentStatus = PaymentProcessing
	return nil
}

// MarkPaymentCompleted transitions payment to completed.
// PRE: PaymentStatus is pending or processing
// POST: PaymentStatus is completed (terminal)
func (t *Team) MarkPaymentCompleted() error {
	if t.paymentTerminal() {
		return ErrAlreadyTerminal
	}
	t.PaymentStatus = PaymentCompleted
	return nil
}

// MarkPaymentFailed transitions payment to failed.
// PRE: PaymentStatus is pending or processing
// POST: PaymentStatus is failed (terminal)
func (t *Team) MarkPaymentFailed() error {
	if t.paymentTerminal() {
		return ErrAlreadyTerminal
	}
	t.PaymentStatus = PaymentFailed
	return nil
}

// MarkPaymentCancelled transitions payment to cancelled.
// PRE: PaymentStatus is pending or processing
// POST: PaymentStatus is cancelled (terminal)
func (t *Team) MarkPaymentCancelled() error {
	if t.paymentTerminal() {
		return ErrAlreadyTerminal
	}
	t.PaymentStatus = PaymentCancelled
	return nil
}

func isValidPaymentMethod(method string) bool {
	for _, m := range ValidPaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}
