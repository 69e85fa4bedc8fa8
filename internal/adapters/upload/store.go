// Package upload persists registration file uploads (player identity
// photos) behind a single Store capability with swappable backends.
package upload

import (
	"context"
	"io"
	"strings"
)

// StoredFile is the handle returned for a persisted upload.
type StoredFile struct {
	Reference    string // backend key, used for later deletion
	URL          string // where the artifact can be fetched by staff
	OriginalName string // filename as uploaded
}

// Store is the interface for upload persistence.
// Delete is tolerant by contract: callers log its error and move on, so a
// partial cleanup failure never masks the error that triggered the cleanup.
type Store interface {
	Store(ctx context.Context, r io.Reader, key, originalName string) (StoredFile, error)
	Delete(ctx context.Context, reference string) error
}

// SanitizeSegment turns free text into a path-safe, human-traceable segment.
// PRE: s is arbitrary user input
// POST: Returns lowercase text with runs of non-alphanumerics collapsed to '-'
func SanitizeSegment(s string) string {
	var b strings.Builder
	lastDash := true // suppress leading dash
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
