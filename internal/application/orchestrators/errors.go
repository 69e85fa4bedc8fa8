package orchestrators

import "fmt"

// ErrorKind tags a SubmissionError with its place in the error taxonomy.
type ErrorKind string

// Validation kinds are surfaced verbatim with enough detail to fix the
// input. Transient kinds (upload, persistence) are surfaced as a generic
// try-again class after guaranteed rollback of partial side effects.
const (
	KindMissingRequiredField  ErrorKind = "missing_required_field"
	KindMissingPlayerField    ErrorKind = "missing_player_field"
	KindMissingIdentityPhoto  ErrorKind = "missing_identity_photo"
	KindRosterSizeViolation   ErrorKind = "roster_size_violation"
	KindInvalidTier           ErrorKind = "invalid_tier"
	KindAgeEligibility        ErrorKind = "age_eligibility_violation"
	KindDuplicateRegistration ErrorKind = "duplicate_registration"
	KindUploadFailure         ErrorKind = "upload_failure"
	KindPersistence           ErrorKind = "persistence_error"
)

// SubmissionError is the tagged failure value returned by the registration
// workflows. PlayerIndex is -1 when the error is not player-scoped.
type SubmissionError struct {
	Kind        ErrorKind
	Field       string
	PlayerIndex int
	Message     string
	cause       error
}

// Error implements the error interface.
func (e *SubmissionError) Error() string {
	if e.PlayerIndex >= 0 {
		return fmt.Sprintf("%s (player %d): %s", e.Kind, e.PlayerIndex, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying infrastructure error, if any.
func (e *SubmissionError) Unwrap() error {
	return e.cause
}

// Transient reports whether the failure is infrastructure-side rather than
// a problem with the submitted input.
// INVARIANT: Error fields are not mutated
func (e *SubmissionError) Transient() bool {
	return e.Kind == KindUploadFailure || e.Kind == KindPersistence
}

// fieldError builds a top-level missing/invalid field error.
func fieldError(field, message string) *SubmissionError {
	return &SubmissionError{
		Kind:        KindMissingRequiredField,
		Field:       field,
		PlayerIndex: -1,
		Message:     message,
	}
}

// playerError builds a player-scoped validation error.
func playerError(kind ErrorKind, index int, field, message string) *SubmissionError {
	return &SubmissionError{
		Kind:        kind,
		Field:       field,
		PlayerIndex: index,
		Message:     message,
	}
}

// transientError wraps an infrastructure failure.
func transientError(kind ErrorKind, message string, cause error) *SubmissionError {
	return &SubmissionError{
		Kind:        kind,
		PlayerIndex: -1,
		Message:     message,
		cause:       cause,
	}
}
