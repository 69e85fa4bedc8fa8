package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"spark/internal/adapters/http/middleware"
	"spark/internal/application/orchestrators"
	"spark/internal/domain/tier"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// submissionErrorStatus maps the workflow error taxonomy onto HTTP status
// codes: transient failures are retryable, duplicates conflict, everything
// else is a client validation problem.
func submissionErrorStatus(e *orchestrators.SubmissionError) int {
	if e.Transient() {
		return http.StatusServiceUnavailable
	}
	if e.Kind == orchestrators.KindDuplicateRegistration {
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

// writeSubmissionError renders a SubmissionError as a structured JSON body
// the form frontend can map back onto fields.
func writeSubmissionError(w http.ResponseWriter, e *orchestrators.SubmissionError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(submissionErrorStatus(e))
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"kind":        string(e.Kind),
			"field":       e.Field,
			"playerIndex": e.PlayerIndex,
			"message":     e.Message,
		},
	})
}

// handleWorkflowError writes a SubmissionError if err is one, otherwise a
// generic 500.
func handleWorkflowError(w http.ResponseWriter, err error) {
	var subErr *orchestrators.SubmissionError
	if errors.As(err, &subErr) {
		writeSubmissionError(w, subErr)
		return
	}
	internalError(w, err)
}

// registerRoutes attaches all application routes to the mux.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", handleHome)
	mux.HandleFunc("/pages/", handlePage)

	mux.HandleFunc("/api/health", handleHealth)
	mux.HandleFunc("/api/tiers", handleTiers)
	mux.HandleFunc("/api/register/team", handleRegisterTeam)
	mux.HandleFunc("/api/register/sponsor", handleRegisterSponsor)
	mux.HandleFunc("/api/contact", handleContact)

	mux.HandleFunc("/api/admin/login", handleAdminLogin)
	mux.HandleFunc("/api/admin/logout", handleAdminLogout)

	staff := middleware.RequireRole("admin", "staff")
	// Identity photos referenced by team records, for roster review.
	mux.Handle("/uploads/", staff(http.HandlerFunc(handleUploadFile)))
	mux.Handle("/api/admin/teams", staff(http.HandlerFunc(handleAdminTeams)))
	mux.Handle("/api/admin/sponsors", staff(http.HandlerFunc(handleAdminSponsors)))
	mux.Handle("/api/admin/contacts", staff(http.HandlerFunc(handleAdminContacts)))

	admin := middleware.RequireRole("admin")
	mux.Handle("/api/admin/outbox", admin(http.HandlerFunc(handleAdminOutbox)))
	mux.Handle("/api/admin/outbox/", admin(http.HandlerFunc(handleAdminOutbox)))
	mux.Handle("/api/admin/perf", admin(http.HandlerFunc(handleAdminPerf)))
}

// handleHealth handles GET /api/health
func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// tierResponse is the public shape of a competitive tier.
type tierResponse struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	MinAge                int    `json:"minAge"`
	MaxAge                int    `json:"maxAge"`
	FeeCents              int    `json:"feeCents"`
	RequiresIdentityPhoto bool   `json:"requiresIdentityPhoto"`
}

// handleTiers handles GET /api/tiers
func handleTiers(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	policies := tier.All()
	out := make([]tierResponse, 0, len(policies))
	for _, p := range policies {
		out = append(out, tierResponse{
			ID:                    p.ID,
			Name:                  p.DisplayName,
			MinAge:                p.MinAge,
			MaxAge:                p.MaxAge,
			FeeCents:              p.FeeCents,
			RequiresIdentityPhoto: p.RequiresIdentityPhoto,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// contentDir holds the markdown sources for the marketing pages.
// Tests can point it at a fixture directory.
var contentDir = "web/content"

var pageShellTmpl = template.Must(template.New("pageShell").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} — Alhuda SPARK</title>
<link rel="stylesheet" href="/static/site.css">
</head>
<body>
<main class="page">
{{.Content}}
</main>
</body>
</html>
`))

// validSlug accepts lowercase page slugs only; anything else is a 404, which
// also closes off path traversal through the slug.
func validSlug(slug string) bool {
	if slug == "" || len(slug) > 64 {
		return false
	}
	for _, c := range slug {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return false
		}
	}
	return true
}

// renderPage reads a markdown page by slug and renders it into the HTML shell.
func renderPage(w http.ResponseWriter, r *http.Request, slug string) {
	md, err := os.ReadFile(filepath.Join(contentDir, slug+".md"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	var body bytes.Buffer
	if err := mdRenderer.Convert(md, &body); err != nil {
		internalError(w, err)
		return
	}

	title := strings.ToUpper(slug[:1]) + slug[1:]
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	pageShellTmpl.Execute(w, map[string]any{
		"Title":   strings.ReplaceAll(title, "-", " "),
		"Content": template.HTML(body.String()),
	})
}

// handleHome handles GET /
func handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	renderPage(w, r, "home")
}

// handlePage handles GET /pages/{slug}
func handlePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	slug := strings.TrimPrefix(r.URL.Path, "/pages/")
	if !validSlug(slug) {
		http.NotFound(w, r)
		return
	}
	renderPage(w, r, slug)
}
