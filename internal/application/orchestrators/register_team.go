package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"spark/internal/adapters/storage"
	"spark/internal/adapters/upload"
	"spark/internal/domain/payment"
	"spark/internal/domain/team"
	"spark/internal/domain/tier"
)

// TeamStore defines the interface for team persistence.
type TeamStore interface {
	// ExistsActive reports whether a team with the same coach email and team
	// name exists in a registration status that blocks re-registration.
	ExistsActive(ctx context.Context, coachEmail, teamName string) (bool, error)
	Save(ctx context.Context, t team.Team) error
}

// TeamNotifier dispatches the post-registration emails. Implementations are
// best-effort: they log failures and never return them to the workflow.
type TeamNotifier interface {
	TeamConfirmation(ctx context.Context, t team.Team, instructions *payment.Instructions)
	TeamAdminAlert(ctx context.Context, t team.Team)
}

// RegisterTeamInput carries the raw submission for the registration workflow.
type RegisterTeamInput struct {
	TeamName     string
	Organization string
	City         string
	Tier         string
	Gender       string

	CoachName  string
	CoachEmail string
	CoachPhone string

	EmergencyName         string
	EmergencyPhone        string
	EmergencyRelationship string

	PaymentMethod       string
	SpecialRequirements string
	Comments            string

	Players []RawPlayer
	Files   []UploadedFile
}

// RegisterTeamDeps holds dependencies for RegisterTeam.
type RegisterTeamDeps struct {
	TeamStore  TeamStore
	Uploads    upload.Store
	Notifier   TeamNotifier
	GenerateID func() string
	Now        func() time.Time
}

// RegisterTeamResult is returned on a successful submission.
type RegisterTeamResult struct {
	TeamID       string
	ReferenceID  string // human-traceable payment reference
	FeeCents     int
	Instructions *payment.Instructions // nil for gateway payments
}

// requiredTeamFields maps field names to extractors for step 1 validation.
type requiredTeamField struct {
	name  string
	value func(RegisterTeamInput) string
}

var requiredTeamFields = []requiredTeamField{
	{"teamName", func(in RegisterTeamInput) string { return in.TeamName }},
	{"organization", func(in RegisterTeamInput) string { return in.Organization }},
	{"city", func(in RegisterTeamInput) string { return in.City }},
	{"tier", func(in RegisterTeamInput) string { return in.Tier }},
	{"gender", func(in RegisterTeamInput) string { return in.Gender }},
	{"coachName", func(in RegisterTeamInput) string { return in.CoachName }},
	{"coachEmail", func(in RegisterTeamInput) string { return in.CoachEmail }},
	{"coachPhone", func(in RegisterTeamInput) string { return in.CoachPhone }},
	{"emergencyName", func(in RegisterTeamInput) string { return in.EmergencyName }},
	{"emergencyPhone", func(in RegisterTeamInput) string { return in.EmergencyPhone }},
	{"emergencyRelationship", func(in RegisterTeamInput) string { return in.EmergencyRelationship }},
	{"paymentMethod", func(in RegisterTeamInput) string { return in.PaymentMethod }},
}

// ExecuteRegisterTeam runs the team registration workflow: required-field
// validation, duplicate pre-check, roster build with photo uploads, tier and
// age eligibility checks, persistence, best-effort notifications, and
// payment-instruction resolution.
//
// A failed submission never leaves orphaned uploads or a partial team row;
// it is all-or-nothing from the caller's point of view.
//
// PRE: Deps are fully populated
// POST: On success a pending Team is persisted and its ID returned; on
// failure a *SubmissionError describes exactly what to fix
func ExecuteRegisterTeam(ctx context.Context, input RegisterTeamInput, deps RegisterTeamDeps) (RegisterTeamResult, error) {
	// Step 1: top-level required fields, including the emergency triple.
	for _, f := range requiredTeamFields {
		if strings.TrimSpace(f.value(input)) == "" {
			return RegisterTeamResult{}, fieldError(f.name, f.name+" is required")
		}
	}

	coachEmail := strings.ToLower(strings.TrimSpace(input.CoachEmail))
	teamName := strings.TrimSpace(input.TeamName)

	// Step 2: duplicate pre-check before any side effects.
	exists, err := deps.TeamStore.ExistsActive(ctx, coachEmail, teamName)
	if err != nil {
		return RegisterTeamResult{}, transientError(KindPersistence, "could not verify existing registrations, please try again", err)
	}
	if exists {
		return RegisterTeamResult{}, &SubmissionError{
			Kind:        KindDuplicateRegistration,
			PlayerIndex: -1,
			Message:     fmt.Sprintf("a registration for team %q under this coach email is already on file", teamName),
		}
	}

	// Tier resolution happens before the roster build because the identity
	// photo requirement comes from the tier policy. Unknown tiers fail
	// closed; no fallback fee.
	policy, err := tier.Lookup(input.Tier)
	if err != nil {
		return RegisterTeamResult{}, &SubmissionError{
			Kind:        KindInvalidTier,
			Field:       "tier",
			PlayerIndex: -1,
			Message:     fmt.Sprintf("tier %q is not a recognized division", input.Tier),
		}
	}

	teamID := deps.GenerateID()
	now := deps.Now()

	// Step 3: roster build. No uploads survive its failure.
	players, storedRefs, subErr := buildRoster(ctx, teamName, teamID, policy, input.Players, input.Files, deps.Uploads)
	if subErr != nil {
		return RegisterTeamResult{}, subErr
	}

	// Steps 4-5: construct the aggregate, fix ages against the submission
	// timestamp, and verify tier eligibility.
	t := team.Team{
		ID:           teamID,
		TeamName:     teamName,
		Organization: strings.TrimSpace(input.Organization),
		City:         strings.TrimSpace(input.City),
		Tier:         policy.ID,
		Gender:       input.Gender,
		CoachName:    strings.TrimSpace(input.CoachName),
		CoachEmail:   coachEmail,
		CoachPhone:   strings.TrimSpace(input.CoachPhone),
		Players:      players,
		Emergency: team.EmergencyContact{
			Name:         strings.TrimSpace(input.EmergencyName),
			Phone:        strings.TrimSpace(input.EmergencyPhone),
			Relationship: strings.TrimSpace(input.EmergencyRelationship),
		},
		RegistrationFee:     policy.FeeCents,
		PaymentMethod:       input.PaymentMethod,
		PaymentStatus:       team.PaymentPending,
		RegistrationStatus:  team.StatusPending,
		SpecialRequirements: strings.TrimSpace(input.SpecialRequirements),
		Comments:            strings.TrimSpace(input.Comments),
		CreatedAt:           now,
	}
	t.FinalizeAges(now)

	for i, p := range t.Players {
		if !policy.Eligible(p.AgeAtRegistration) {
			rollbackUploads(ctx, deps.Uploads, storedRefs)
			return RegisterTeamResult{}, playerError(KindAgeEligibility, i, "dateOfBirth",
				fmt.Sprintf("player age %d is outside the %s range of %d-%d",
					p.AgeAtRegistration, policy.DisplayName, policy.MinAge, policy.MaxAge))
		}
	}

	if err := t.Validate(); err != nil {
		rollbackUploads(ctx, deps.Uploads, storedRefs)
		return RegisterTeamResult{}, fieldError("", err.Error())
	}

	// A hosted-gateway payment session is opened by the caller after this
	// workflow returns; such teams start in processing rather than pending.
	if t.PaymentMethod == team.PaymentMethodGateway {
		if err := t.MarkPaymentProcessing(); err != nil {
			rollbackUploads(ctx, deps.Uploads, storedRefs)
			return RegisterTeamResult{}, transientError(KindPersistence, "could not initialize payment state", err)
		}
	}

	// Step 6: persist. The storage layer enforces coach email + team name
	// uniqueness for non-terminal registrations, closing the race two
	// concurrent submissions can win against the step 2 pre-check.
	if err := deps.TeamStore.Save(ctx, t); err != nil {
		rollbackUploads(ctx, deps.Uploads, storedRefs)
		if storage.IsUniqueViolation(err) {
			return RegisterTeamResult{}, &SubmissionError{
				Kind:        KindDuplicateRegistration,
				PlayerIndex: -1,
				Message:     fmt.Sprintf("a registration for team %q under this coach email is already on file", teamName),
			}
		}
		return RegisterTeamResult{}, transientError(KindPersistence, "could not save the registration, please try again", err)
	}

	slog.Info("team_event", "event", "team_registered", "team_id", t.ID, "team_name", t.TeamName,
		"tier", t.Tier, "players", len(t.Players), "payment_method", t.PaymentMethod)

	// Step 8: resolve payment instructions before dispatching emails so the
	// coach confirmation can include them.
	referenceID := "SPARK-" + shortIDUpper(t.ID)
	instructions := payment.Resolve(t.PaymentMethod, t.RegistrationFee, referenceID, t.TeamName)

	// Step 7: best-effort notifications. The registration is already
	// committed; nothing past this point may fail the submission.
	deps.Notifier.TeamConfirmation(ctx, t, instructions)
	deps.Notifier.TeamAdminAlert(ctx, t)

	return RegisterTeamResult{
		TeamID:       t.ID,
		ReferenceID:  referenceID,
		FeeCents:     t.RegistrationFee,
		Instructions: instructions,
	}, nil
}
