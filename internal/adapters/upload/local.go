package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore persists uploads on the local filesystem under a root directory.
type LocalStore struct {
	root    string
	baseURL string // public URL prefix mapped to root, e.g. "/uploads"
}

// NewLocalStore creates a LocalStore rooted at dir.
// PRE: dir is a writable directory path; baseURL is the public prefix
// POST: Returns a ready-to-use store; directories are created on demand
func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{root: dir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Store writes the upload to disk under the given key.
// PRE: key is a sanitized relative path (no "..'); r yields the file bytes
// POST: File written; returns reference (key) and public URL
func (s *LocalStore) Store(ctx context.Context, r io.Reader, key, originalName string) (StoredFile, error) {
	if strings.Contains(key, "..") {
		return StoredFile{}, fmt.Errorf("invalid upload key %q", key)
	}
	path := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return StoredFile{}, fmt.Errorf("create upload directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return StoredFile{}, fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		// Remove the partial file so a failed store leaves nothing behind
		os.Remove(path)
		return StoredFile{}, fmt.Errorf("write upload file: %w", err)
	}

	slog.Info("upload_stored", "backend", "local", "key", key, "original_name", originalName)
	return StoredFile{
		Reference:    key,
		URL:          s.baseURL + "/" + key,
		OriginalName: originalName,
	}, nil
}

// Delete removes a stored upload.
// PRE: reference was returned by a prior Store call
// POST: File removed; missing files are not an error
func (s *LocalStore) Delete(ctx context.Context, reference string) error {
	if strings.Contains(reference, "..") {
		return fmt.Errorf("invalid upload reference %q", reference)
	}
	path := filepath.Join(s.root, filepath.FromSlash(reference))
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}
