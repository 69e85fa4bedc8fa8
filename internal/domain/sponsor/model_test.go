package sponsor_test

import (
	"testing"

	"spark/internal/domain/sponsor"
)

// TestSponsorValidation tests validation of Sponsor.
func TestSponsorValidation(t *testing.T) {
	valid := sponsor.Sponsor{
		ID:            "sp-001",
		CompanyName:   "Crescent Foods",
		ContactName:   "Yusuf Khan",
		ContactEmail:  "yusuf@crescentfoods.com",
		ContactPhone:  "555-0110",
		Level:         sponsor.LevelGold,
		AmountCents:   250000,
		PaymentMethod: "check",
		PaymentStatus: "pending",
		Status:        sponsor.StatusPending,
	}

	tests := []struct {
		name    string
		mutate  func(*sponsor.Sponsor)
		wantErr error
	}{
		{name: "valid sponsor", mutate: func(*sponsor.Sponsor) {}, wantErr: nil},
		{name: "empty company", mutate: func(s *sponsor.Sponsor) { s.CompanyName = " " }, wantErr: sponsor.ErrEmptyCompany},
		{name: "empty contact name", mutate: func(s *sponsor.Sponsor) { s.ContactName = "" }, wantErr: sponsor.ErrEmptyContactName},
		{name: "bad email", mutate: func(s *sponsor.Sponsor) { s.ContactEmail = "nope" }, wantErr: sponsor.ErrInvalidEmail},
		{name: "empty phone", mutate: func(s *sponsor.Sponsor) { s.ContactPhone = "" }, wantErr: sponsor.ErrEmptyPhone},
		{name: "unknown level", mutate: func(s *sponsor.Sponsor) { s.Level = "diamond" }, wantErr: sponsor.ErrUnknownLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			if err := s.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestLevelAmount tests the fixed level amounts and fail-closed lookup.
func TestLevelAmount(t *testing.T) {
	tests := []struct {
		level   string
		want    int
		wantErr bool
	}{
		{sponsor.LevelPlatinum, 500000, false},
		{sponsor.LevelGold, 250000, false},
		{sponsor.LevelSilver, 100000, false},
		{sponsor.LevelBronze, 50000, false},
		{"diamond", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := sponsor.LevelAmount(tt.level)
		if tt.wantErr {
			if err != sponsor.ErrUnknownLevel {
				t.Errorf("LevelAmount(%q) error = %v, want ErrUnknownLevel", tt.level, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("LevelAmount(%q) = %d, %v, want %d, nil", tt.level, got, err, tt.want)
		}
	}
}
