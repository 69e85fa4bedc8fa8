package orchestrators

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"spark/internal/adapters/upload"
	"spark/internal/domain/team"
	"spark/internal/domain/tier"
)

// RawPlayer carries one indexed group of player form fields, still unparsed.
type RawPlayer struct {
	Name        string
	DateOfBirth string // "2006-01-02" form value
}

// UploadedFile carries one uploaded file keyed by its form field name,
// e.g. "players[3][photo]".
type UploadedFile struct {
	FieldName    string
	OriginalName string
	Data         []byte
}

// photoFieldName returns the form field name for a player's identity photo.
func photoFieldName(index int) string {
	return fmt.Sprintf("players[%d][photo]", index)
}

// findFile locates the uploaded file for a player index, if any.
// The file collection is order-independent; only the field name matters.
func findFile(files []UploadedFile, index int) *UploadedFile {
	want := photoFieldName(index)
	for i := range files {
		if files[i].FieldName == want {
			return &files[i]
		}
	}
	return nil
}

// photoKey derives the namespaced, human-traceable storage key for a
// player's identity photo.
func photoKey(teamName, teamID, playerName string, index int, originalName string) string {
	ext := strings.ToLower(path.Ext(originalName))
	return fmt.Sprintf("players/%s-%s/%s-%d%s",
		upload.SanitizeSegment(teamName),
		shortID(teamID),
		upload.SanitizeSegment(playerName),
		index,
		ext,
	)
}

// shortID returns the collision-resistant prefix of a team ID used in
// storage keys and payment references.
func shortID(teamID string) string {
	id := strings.ReplaceAll(teamID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return id
}

// buildRoster parses raw per-index player fields plus uploaded files into a
// validated roster and stores every identity photo through the upload store.
//
// Field validation runs first for every index; photos are only uploaded once
// the whole roster shape is known to be valid, fanned out concurrently and
// joined before returning. On any upload failure every photo stored in this
// attempt is deleted before the error is returned; delete failures are
// logged, never escalated, so partial cleanup cannot mask the original error.
//
// PRE: policy is the resolved tier policy for the team
// POST: On success returns the roster in submission order plus the stored
// upload references the caller needs for workflow-level rollback
func buildRoster(ctx context.Context, teamName, teamID string, policy tier.Policy, rawPlayers []RawPlayer, files []UploadedFile, uploads upload.Store) ([]team.Player, []string, *SubmissionError) {
	players := make([]team.Player, 0, len(rawPlayers))
	photos := make(map[int]*UploadedFile)

	for i, raw := range rawPlayers {
		name := strings.TrimSpace(raw.Name)
		dob := strings.TrimSpace(raw.DateOfBirth)
		if name == "" {
			return nil, nil, playerError(KindMissingPlayerField, i, "playerName", "player name is required")
		}
		if dob == "" {
			return nil, nil, playerError(KindMissingPlayerField, i, "dateOfBirth", "date of birth is required")
		}
		parsed, err := time.Parse("2006-01-02", dob)
		if err != nil {
			return nil, nil, playerError(KindMissingPlayerField, i, "dateOfBirth", fmt.Sprintf("date of birth %q is not a valid date", dob))
		}

		file := findFile(files, i)
		if policy.RequiresIdentityPhoto && file == nil {
			return nil, nil, playerError(KindMissingIdentityPhoto, i, photoFieldName(i), "identity photo upload is required for this division")
		}
		if file != nil {
			photos[i] = file
		}

		players = append(players, team.Player{Name: name, DateOfBirth: parsed})
	}

	if len(players) < team.MinRosterSize || len(players) > team.MaxRosterSize {
		return nil, nil, &SubmissionError{
			Kind:        KindRosterSizeViolation,
			PlayerIndex: -1,
			Message:     fmt.Sprintf("team must register %d to %d players, got %d", team.MinRosterSize, team.MaxRosterSize, len(players)),
		}
	}

	// Fan out the photo uploads; they are independent I/O with no ordering
	// requirement among themselves. Join before the roster is returned.
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		stored    []string
		uploadErr error
	)
	for i, file := range photos {
		wg.Add(1)
		go func(index int, f *UploadedFile) {
			defer wg.Done()
			key := photoKey(teamName, teamID, players[index].Name, index, f.OriginalName)
			result, err := uploads.Store(ctx, bytes.NewReader(f.Data), key, f.OriginalName)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if uploadErr == nil {
					uploadErr = fmt.Errorf("store photo for player %d: %w", index, err)
				}
				return
			}
			stored = append(stored, result.Reference)
			players[index].PhotoPath = result.Reference
			players[index].PhotoOriginalName = f.OriginalName
		}(i, file)
	}
	wg.Wait()

	if uploadErr != nil {
		rollbackUploads(ctx, uploads, stored)
		return nil, nil, transientError(KindUploadFailure, "one or more photo uploads failed, please try again", uploadErr)
	}

	return players, stored, nil
}

// rollbackUploads deletes every stored upload reference from a failed
// attempt. Delete failures are logged and swallowed.
// PRE: refs were returned by uploads.Store during this attempt
// POST: Every deletable reference is gone; the caller's error is unaffected
func rollbackUploads(ctx context.Context, uploads upload.Store, refs []string) {
	for _, ref := range refs {
		if err := uploads.Delete(ctx, ref); err != nil {
			slog.Warn("upload_rollback_failed", "reference", ref, "error", err.Error())
		}
	}
}
