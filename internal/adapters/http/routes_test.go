package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"spark/internal/adapters/http/middleware"
)

// Drives a registration through NewMux so the full middleware chain is
// exercised, token handshake included, not just the bare handler.
func TestNewMuxTeamRegistration(t *testing.T) {
	setupTest(t)
	handler := NewMux(t.TempDir(), stores, perfCollector)

	get := httptest.NewRequest("GET", "/api/tiers", nil)
	rrGet := httptest.NewRecorder()
	handler.ServeHTTP(rrGet, get)
	if rrGet.Code != http.StatusOK {
		t.Fatalf("GET /api/tiers through chain: status %d", rrGet.Code)
	}
	token := rrGet.Header().Get(middleware.CSRFTokenHeader)
	if token == "" {
		t.Fatal("tiers response did not expose a CSRF token")
	}

	body, contentType := teamForm(t, 6)
	post := httptest.NewRequest("POST", "/api/register/team", body)
	post.Header.Set("Content-Type", contentType)
	post.Header.Set(middleware.CSRFTokenHeader, token)
	for _, c := range rrGet.Result().Cookies() {
		post.AddCookie(c)
	}

	rrPost := httptest.NewRecorder()
	handler.ServeHTTP(rrPost, post)
	if rrPost.Code != http.StatusCreated {
		t.Fatalf("multipart registration through chain: status %d, body %s", rrPost.Code, rrPost.Body.String())
	}

	var resp struct {
		TeamID      string `json:"teamId"`
		ReferenceID string `json:"referenceId"`
	}
	if err := json.NewDecoder(rrPost.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TeamID == "" || resp.ReferenceID == "" {
		t.Errorf("response = %+v, want team and reference IDs", resp)
	}
}

func TestNewMuxRejectsTokenlessMultipart(t *testing.T) {
	setupTest(t)
	handler := NewMux(t.TempDir(), stores, perfCollector)

	body, contentType := teamForm(t, 6)
	post := httptest.NewRequest("POST", "/api/register/team", body)
	post.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, post)
	if rr.Code != http.StatusForbidden {
		t.Errorf("tokenless multipart status = %d, want 403", rr.Code)
	}
}

func TestUploadsRouteServesPhotosForStaff(t *testing.T) {
	setupTest(t)
	dir := t.TempDir()
	photo := []byte("jpeg-bytes")
	if err := os.WriteFile(filepath.Join(dir, "photo.jpg"), photo, 0o644); err != nil {
		t.Fatalf("write photo: %v", err)
	}
	SetUploadDir(dir)
	t.Cleanup(func() { uploadDir = "" })

	mux := http.NewServeMux()
	registerRoutes(mux)

	req := withSession(httptest.NewRequest("GET", "/uploads/photo.jpg", nil), adminSession)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("staff fetch status = %d", rr.Code)
	}
	if rr.Body.String() != string(photo) {
		t.Errorf("body = %q, want stored photo bytes", rr.Body.String())
	}
}

func TestUploadsRouteDisabledWithoutDir(t *testing.T) {
	setupTest(t)
	uploadDir = ""

	mux := http.NewServeMux()
	registerRoutes(mux)

	req := withSession(httptest.NewRequest("GET", "/uploads/photo.jpg", nil), adminSession)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when no upload dir is configured", rr.Code)
	}
}
