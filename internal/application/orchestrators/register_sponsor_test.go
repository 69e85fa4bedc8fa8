package orchestrators

import (
	"context"
	"errors"
	"testing"

	"spark/internal/domain/payment"
	"spark/internal/domain/sponsor"
	"spark/internal/domain/team"
)

type mockSponsorStore struct {
	exists    bool
	existsErr error
	saveErr   error
	saved     []sponsor.Sponsor
}

func (m *mockSponsorStore) ExistsActive(ctx context.Context, contactEmail, companyName string) (bool, error) {
	return m.exists, m.existsErr
}

func (m *mockSponsorStore) Save(ctx context.Context, s sponsor.Sponsor) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, s)
	return nil
}

type mockSponsorNotifier struct {
	confirmations int
	adminAlerts   int
	lastInstr     *payment.Instructions
}

func (m *mockSponsorNotifier) SponsorConfirmation(ctx context.Context, s sponsor.Sponsor, instructions *payment.Instructions) {
	m.confirmations++
	m.lastInstr = instructions
}

func (m *mockSponsorNotifier) SponsorAdminAlert(ctx context.Context, s sponsor.Sponsor) {
	m.adminAlerts++
}

func validSponsorInput() RegisterSponsorInput {
	return RegisterSponsorInput{
		CompanyName:   "Crescent Market",
		ContactName:   "Yusuf Ali",
		ContactEmail:  "Yusuf@Crescent.Test",
		ContactPhone:  "555-0200",
		Level:         sponsor.LevelGold,
		Website:       "https://crescent.test",
		PaymentMethod: team.PaymentMethodZelle,
	}
}

func sponsorDeps(store *mockSponsorStore, notifier *mockSponsorNotifier) RegisterSponsorDeps {
	return RegisterSponsorDeps{
		SponsorStore: store,
		Notifier:     notifier,
		GenerateID:   fixedID,
		Now:          fixedTime,
	}
}

func TestRegisterSponsor_Success(t *testing.T) {
	store := &mockSponsorStore{}
	notifier := &mockSponsorNotifier{}

	result, err := ExecuteRegisterSponsor(context.Background(), validSponsorInput(), sponsorDeps(store, notifier))
	if err != nil {
		t.Fatalf("ExecuteRegisterSponsor failed: %v", err)
	}

	if result.SponsorID != fixedTeamID {
		t.Errorf("SponsorID = %q, want %q", result.SponsorID, fixedTeamID)
	}
	if result.AmountCents != 250000 {
		t.Errorf("AmountCents = %d, want 250000", result.AmountCents)
	}
	if result.ReferenceID != "SPARK-11111111" {
		t.Errorf("ReferenceID = %q", result.ReferenceID)
	}
	if result.Instructions == nil {
		t.Fatal("Instructions = nil, want zelle instructions")
	}

	if len(store.saved) != 1 {
		t.Fatalf("saved %d sponsors, want 1", len(store.saved))
	}
	saved := store.saved[0]
	if saved.ContactEmail != "yusuf@crescent.test" {
		t.Errorf("ContactEmail = %q, want lowercase", saved.ContactEmail)
	}
	if saved.Status != sponsor.StatusPending {
		t.Errorf("Status = %q, want pending", saved.Status)
	}
	if notifier.confirmations != 1 || notifier.adminAlerts != 1 {
		t.Errorf("notifications = %d/%d, want 1/1", notifier.confirmations, notifier.adminAlerts)
	}
}

func TestRegisterSponsor_MissingFields(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*RegisterSponsorInput)
	}{
		{"companyName", func(in *RegisterSponsorInput) { in.CompanyName = "" }},
		{"contactEmail", func(in *RegisterSponsorInput) { in.ContactEmail = " " }},
		{"level", func(in *RegisterSponsorInput) { in.Level = "" }},
		{"paymentMethod", func(in *RegisterSponsorInput) { in.PaymentMethod = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			input := validSponsorInput()
			tt.mutate(&input)
			_, err := ExecuteRegisterSponsor(context.Background(), input, sponsorDeps(&mockSponsorStore{}, &mockSponsorNotifier{}))
			subErr := asSubmissionError(t, err, KindMissingRequiredField)
			if subErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", subErr.Field, tt.field)
			}
		})
	}
}

func TestRegisterSponsor_UnknownLevel(t *testing.T) {
	input := validSponsorInput()
	input.Level = "diamond"

	_, err := ExecuteRegisterSponsor(context.Background(), input, sponsorDeps(&mockSponsorStore{}, &mockSponsorNotifier{}))
	subErr := asSubmissionError(t, err, KindInvalidTier)
	if subErr.Field != "level" {
		t.Errorf("Field = %q, want level", subErr.Field)
	}
}

func TestRegisterSponsor_Duplicate(t *testing.T) {
	store := &mockSponsorStore{exists: true}
	_, err := ExecuteRegisterSponsor(context.Background(), validSponsorInput(), sponsorDeps(store, &mockSponsorNotifier{}))
	asSubmissionError(t, err, KindDuplicateRegistration)
	if len(store.saved) != 0 {
		t.Error("duplicate submission reached Save")
	}
}

func TestRegisterSponsor_SaveUniqueViolation(t *testing.T) {
	store := &mockSponsorStore{saveErr: errors.New("UNIQUE constraint failed: sponsor.contact_email")}
	_, err := ExecuteRegisterSponsor(context.Background(), validSponsorInput(), sponsorDeps(store, &mockSponsorNotifier{}))
	asSubmissionError(t, err, KindDuplicateRegistration)
}

func TestRegisterSponsor_SaveFailure(t *testing.T) {
	store := &mockSponsorStore{saveErr: errors.New("disk I/O error")}
	notifier := &mockSponsorNotifier{}

	_, err := ExecuteRegisterSponsor(context.Background(), validSponsorInput(), sponsorDeps(store, notifier))
	subErr := asSubmissionError(t, err, KindPersistence)
	if !subErr.Transient() {
		t.Error("persistence failure should be transient")
	}
	if notifier.confirmations != 0 {
		t.Error("notification sent for failed submission")
	}
}
