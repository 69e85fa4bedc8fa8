package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"spark/internal/adapters/storage"
	"spark/internal/domain/payment"
	"spark/internal/domain/sponsor"
)

// SponsorStore defines the interface for sponsor persistence.
type SponsorStore interface {
	ExistsActive(ctx context.Context, contactEmail, companyName string) (bool, error)
	Save(ctx context.Context, s sponsor.Sponsor) error
}

// SponsorNotifier dispatches the post-registration sponsor emails.
type SponsorNotifier interface {
	SponsorConfirmation(ctx context.Context, s sponsor.Sponsor, instructions *payment.Instructions)
	SponsorAdminAlert(ctx context.Context, s sponsor.Sponsor)
}

// RegisterSponsorInput carries the raw sponsor submission.
type RegisterSponsorInput struct {
	CompanyName   string
	ContactName   string
	ContactEmail  string
	ContactPhone  string
	Level         string
	Website       string
	Comments      string
	PaymentMethod string
}

// RegisterSponsorDeps holds dependencies for RegisterSponsor.
type RegisterSponsorDeps struct {
	SponsorStore SponsorStore
	Notifier     SponsorNotifier
	GenerateID   func() string
	Now          func() time.Time
}

// RegisterSponsorResult is returned on a successful sponsor submission.
type RegisterSponsorResult struct {
	SponsorID    string
	ReferenceID  string
	AmountCents  int
	Instructions *payment.Instructions
}

// ExecuteRegisterSponsor coordinates sponsor registration: validation,
// duplicate pre-check, persistence, best-effort notifications, and payment
// instructions for the sponsorship amount.
// PRE: Deps are fully populated
// POST: On success a pending Sponsor is persisted and its ID returned
func ExecuteRegisterSponsor(ctx context.Context, input RegisterSponsorInput, deps RegisterSponsorDeps) (RegisterSponsorResult, error) {
	required := []struct{ name, value string }{
		{"companyName", input.CompanyName},
		{"contactName", input.ContactName},
		{"contactEmail", input.ContactEmail},
		{"contactPhone", input.ContactPhone},
		{"level", input.Level},
		{"paymentMethod", input.PaymentMethod},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return RegisterSponsorResult{}, fieldError(f.name, f.name+" is required")
		}
	}

	contactEmail := strings.ToLower(strings.TrimSpace(input.ContactEmail))
	companyName := strings.TrimSpace(input.CompanyName)

	exists, err := deps.SponsorStore.ExistsActive(ctx, contactEmail, companyName)
	if err != nil {
		return RegisterSponsorResult{}, transientError(KindPersistence, "could not verify existing sponsorships, please try again", err)
	}
	if exists {
		return RegisterSponsorResult{}, &SubmissionError{
			Kind:        KindDuplicateRegistration,
			PlayerIndex: -1,
			Message:     fmt.Sprintf("a sponsorship for %q under this contact email is already on file", companyName),
		}
	}

	amount, err := sponsor.LevelAmount(input.Level)
	if err != nil {
		return RegisterSponsorResult{}, &SubmissionError{
			Kind:        KindInvalidTier,
			Field:       "level",
			PlayerIndex: -1,
			Message:     fmt.Sprintf("sponsorship level %q is not recognized", input.Level),
		}
	}

	s := sponsor.Sponsor{
		ID:            deps.GenerateID(),
		CompanyName:   companyName,
		ContactName:   strings.TrimSpace(input.ContactName),
		ContactEmail:  contactEmail,
		ContactPhone:  strings.TrimSpace(input.ContactPhone),
		Level:         input.Level,
		AmountCents:   amount,
		Website:       strings.TrimSpace(input.Website),
		Comments:      strings.TrimSpace(input.Comments),
		PaymentMethod: input.PaymentMethod,
		PaymentStatus: "pending",
		Status:        sponsor.StatusPending,
		CreatedAt:     deps.Now(),
	}
	if err := s.Validate(); err != nil {
		return RegisterSponsorResult{}, fieldError("", err.Error())
	}

	if err := deps.SponsorStore.Save(ctx, s); err != nil {
		if storage.IsUniqueViolation(err) {
			return RegisterSponsorResult{}, &SubmissionError{
				Kind:        KindDuplicateRegistration,
				PlayerIndex: -1,
				Message:     fmt.Sprintf("a sponsorship for %q under this contact email is already on file", companyName),
			}
		}
		return RegisterSponsorResult{}, transientError(KindPersistence, "could not save the sponsorship, please try again", err)
	}

	slog.Info("sponsor_event", "event", "sponsor_registered", "sponsor_id", s.ID,
		"company", s.CompanyName, "level", s.Level)

	referenceID := "SPARK-" + shortIDUpper(s.ID)
	instructions := payment.Resolve(s.PaymentMethod, s.AmountCents, referenceID, s.CompanyName)

	deps.Notifier.SponsorConfirmation(ctx, s, instructions)
	deps.Notifier.SponsorAdminAlert(ctx, s)

	return RegisterSponsorResult{
		SponsorID:    s.ID,
		ReferenceID:  referenceID,
		AmountCents:  s.AmountCents,
		Instructions: instructions,
	}, nil
}
