package upload_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spark/internal/adapters/upload"
)

// TestSanitizeSegment tests path-segment sanitization.
func TestSanitizeSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Falcons", "falcons"},
		{"Al-Huda SPARK!", "al-huda-spark"},
		{"  spaced  out  ", "spaced-out"},
		{"../../etc/passwd", "etc-passwd"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := upload.SanitizeSegment(tt.in); got != tt.want {
			t.Errorf("SanitizeSegment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestLocalStore_RoundTrip tests store and delete on a temp directory.
func TestLocalStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := upload.NewLocalStore(dir, "/uploads")
	ctx := context.Background()

	stored, err := store.Store(ctx, strings.NewReader("photo-bytes"), "players/falcons-abc123/amir-0.jpg", "amir.jpg")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if stored.Reference != "players/falcons-abc123/amir-0.jpg" {
		t.Errorf("unexpected reference %q", stored.Reference)
	}
	if stored.URL != "/uploads/players/falcons-abc123/amir-0.jpg" {
		t.Errorf("unexpected URL %q", stored.URL)
	}

	data, err := os.ReadFile(filepath.Join(dir, "players", "falcons-abc123", "amir-0.jpg"))
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != "photo-bytes" {
		t.Errorf("stored content = %q", data)
	}

	if err := store.Delete(ctx, stored.Reference); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "players", "falcons-abc123", "amir-0.jpg")); !os.IsNotExist(err) {
		t.Error("file still exists after delete")
	}

	// Deleting again is not an error
	if err := store.Delete(ctx, stored.Reference); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}
}

// TestLocalStore_RejectsTraversal tests that '..' keys are rejected.
func TestLocalStore_RejectsTraversal(t *testing.T) {
	store := upload.NewLocalStore(t.TempDir(), "/uploads")
	if _, err := store.Store(context.Background(), strings.NewReader("x"), "../escape.jpg", "escape.jpg"); err == nil {
		t.Error("expected error for traversal key")
	}
	if err := store.Delete(context.Background(), "../escape.jpg"); err == nil {
		t.Error("expected error for traversal reference")
	}
}

// TestMemoryStore tests the in-memory backend and its failure injection.
func TestMemoryStore(t *testing.T) {
	store := upload.NewMemoryStore()
	ctx := context.Background()

	stored, err := store.Store(ctx, strings.NewReader("abc"), "k1", "one.jpg")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if data, ok := store.Get(stored.Reference); !ok || string(data) != "abc" {
		t.Errorf("Get(%q) = %q, %v", stored.Reference, data, ok)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}

	store.StoreErrAfter = 1
	if _, err := store.Store(ctx, strings.NewReader("def"), "k2", "two.jpg"); err == nil {
		t.Error("expected injected store failure")
	}

	if err := store.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() after delete = %d, want 0", store.Len())
	}
}
