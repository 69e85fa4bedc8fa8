package orchestrators

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"spark/internal/adapters/upload"
	"spark/internal/domain/tier"
)

func TestPhotoFieldName(t *testing.T) {
	if got := photoFieldName(0); got != "players[0][photo]" {
		t.Errorf("photoFieldName(0) = %q", got)
	}
	if got := photoFieldName(9); got != "players[9][photo]" {
		t.Errorf("photoFieldName(9) = %q", got)
	}
}

func TestFindFile(t *testing.T) {
	files := []UploadedFile{
		{FieldName: "players[2][photo]", OriginalName: "two.jpg"},
		{FieldName: "players[0][photo]", OriginalName: "zero.jpg"},
	}

	if f := findFile(files, 0); f == nil || f.OriginalName != "zero.jpg" {
		t.Errorf("findFile(0) = %+v, want zero.jpg", f)
	}
	if f := findFile(files, 2); f == nil || f.OriginalName != "two.jpg" {
		t.Errorf("findFile(2) = %+v, want two.jpg", f)
	}
	if f := findFile(files, 1); f != nil {
		t.Errorf("findFile(1) = %+v, want nil", f)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("11111111-2222-3333-4444-555555555555"); got != "11111111" {
		t.Errorf("shortID = %q, want 11111111", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID short input = %q, want abc", got)
	}
}

func TestPhotoKey(t *testing.T) {
	got := photoKey("The Falcons!", "11111111-2222-3333-4444-555555555555", "Omar Al-Rashid", 3, "IMG_0042.JPG")
	want := "players/the-falcons-11111111/omar-al-rashid-3.jpg"
	if got != want {
		t.Errorf("photoKey = %q, want %q", got, want)
	}
}

func TestBuildRoster_OrderPreserved(t *testing.T) {
	policy, _ := tier.Lookup(tier.Middle)
	raw := make([]RawPlayer, 6)
	for i := range raw {
		raw[i] = RawPlayer{Name: fmt.Sprintf("Player %d", i), DateOfBirth: "2013-03-10"}
	}

	players, stored, subErr := buildRoster(context.Background(), "Falcons", fixedTeamID, policy, raw, nil, upload.NewMemoryStore())
	if subErr != nil {
		t.Fatalf("buildRoster failed: %v", subErr)
	}
	if len(stored) != 0 {
		t.Errorf("stored %d uploads for photo-free tier, want 0", len(stored))
	}
	for i, p := range players {
		if p.Name != fmt.Sprintf("Player %d", i) {
			t.Errorf("player %d = %q, out of order", i, p.Name)
		}
	}
}

func TestBuildRoster_InvalidDate(t *testing.T) {
	policy, _ := tier.Lookup(tier.Middle)
	raw := make([]RawPlayer, 5)
	for i := range raw {
		raw[i] = RawPlayer{Name: fmt.Sprintf("P%d", i), DateOfBirth: "2013-03-10"}
	}
	raw[1].DateOfBirth = "03/10/2013"

	_, _, subErr := buildRoster(context.Background(), "Falcons", fixedTeamID, policy, raw, nil, upload.NewMemoryStore())
	if subErr == nil {
		t.Fatal("expected error for malformed date, got nil")
	}
	if subErr.Kind != KindMissingPlayerField || subErr.PlayerIndex != 1 {
		t.Errorf("got %q at index %d, want %q at 1", subErr.Kind, subErr.PlayerIndex, KindMissingPlayerField)
	}
}

func TestBuildRoster_OptionalPhotoStored(t *testing.T) {
	// Photos are accepted even for tiers that do not require them.
	policy, _ := tier.Lookup(tier.Elementary)
	raw := make([]RawPlayer, 5)
	for i := range raw {
		raw[i] = RawPlayer{Name: fmt.Sprintf("P%d", i), DateOfBirth: "2017-03-10"}
	}
	files := []UploadedFile{
		{FieldName: photoFieldName(2), OriginalName: "p2.png", Data: []byte("png")},
	}
	uploads := upload.NewMemoryStore()

	players, stored, subErr := buildRoster(context.Background(), "Falcons", fixedTeamID, policy, raw, files, uploads)
	if subErr != nil {
		t.Fatalf("buildRoster failed: %v", subErr)
	}
	if len(stored) != 1 || uploads.Len() != 1 {
		t.Fatalf("stored = %d refs, %d files; want 1, 1", len(stored), uploads.Len())
	}
	if players[2].PhotoPath == "" || players[2].PhotoOriginalName != "p2.png" {
		t.Errorf("player 2 photo not attached: %+v", players[2])
	}
	if players[0].PhotoPath != "" {
		t.Errorf("player 0 has unexpected photo %q", players[0].PhotoPath)
	}
}

func TestBuildRoster_ValidationBeforeUploads(t *testing.T) {
	// An invalid later index must prevent any earlier photo from being stored.
	policy, _ := tier.Lookup(tier.HighSchool)
	raw := make([]RawPlayer, 5)
	var files []UploadedFile
	for i := range raw {
		raw[i] = RawPlayer{Name: fmt.Sprintf("P%d", i), DateOfBirth: "2010-03-10"}
		files = append(files, UploadedFile{FieldName: photoFieldName(i), OriginalName: "p.jpg", Data: []byte("x")})
	}
	raw[4].Name = ""
	uploads := upload.NewMemoryStore()

	_, _, subErr := buildRoster(context.Background(), "Falcons", fixedTeamID, policy, raw, files, uploads)
	if subErr == nil {
		t.Fatal("expected error for missing name, got nil")
	}
	if uploads.Len() != 0 {
		t.Errorf("uploads stored before validation finished: %d", uploads.Len())
	}
}

func TestRollbackUploads_SwallowsDeleteErrors(t *testing.T) {
	ctx := context.Background()
	uploads := upload.NewMemoryStore()
	sf, err := uploads.Store(ctx, strings.NewReader("data"), "k1", "a.jpg")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	uploads.DeleteErr = fmt.Errorf("permission denied")

	// Must not panic or escalate.
	rollbackUploads(ctx, uploads, []string{sf.Reference})
	if uploads.Len() != 1 {
		t.Errorf("Len = %d, want 1 (delete was injected to fail)", uploads.Len())
	}
}
