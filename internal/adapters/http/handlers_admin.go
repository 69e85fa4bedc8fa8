package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"spark/internal/adapters/http/middleware"
	"spark/internal/application/orchestrators"
	"spark/internal/domain/outbox"
)

// loginRequest is the JSON shape of a staff login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleAdminLogin handles POST /api/admin/login
func handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}
		req.Email = r.FormValue("email")
		req.Password = r.FormValue("password")
	} else {
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
	}

	input := orchestrators.LoginInput{Email: req.Email, Password: req.Password}
	deps := orchestrators.LoginDeps{AccountStore: stores.AccountStore}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
	if err != nil {
		if errors.Is(err, orchestrators.ErrAccountLocked) {
			http.Error(w, err.Error(), http.StatusLocked)
			return
		}
		http.Error(w, "invalid email or password", http.StatusUnauthorized)
		return
	}

	token, err := sessions.Create(result.AccountID, result.Email, result.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"email": result.Email,
		"role":  result.Role,
	})
}

// handleAdminLogout handles POST /api/admin/logout
func handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if cookie, err := r.Cookie("spark_session"); err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleAdminTeams handles GET /api/admin/teams
func handleAdminTeams(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	teams, err := stores.TeamStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(teams)
}

// handleAdminSponsors handles GET /api/admin/sponsors
func handleAdminSponsors(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sponsors, err := stores.SponsorStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sponsors)
}

// handleAdminContacts handles GET /api/admin/contacts
func handleAdminContacts(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	messages, err := stores.ContactStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

// handleAdminOutbox handles the outbox maintenance endpoints.
// Routes: GET /api/admin/outbox (list failed entries),
// POST /api/admin/outbox/:id/retry, POST /api/admin/outbox/:id/abandon
func handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case "GET":
		limit := 50
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			if n, err := strconv.Atoi(limitStr); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}

		var entries []outbox.Entry
		var err error
		if r.URL.Query().Get("status") == "pending" {
			entries, err = stores.OutboxStore.ListPending(ctx, limit)
		} else {
			entries, err = stores.OutboxStore.ListFailed(ctx, limit)
		}
		if err != nil {
			internalError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)

	case "POST":
		// Path shape: /api/admin/outbox/:id/:action
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 5 {
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}
		entryID := parts[3]
		action := parts[4]

		deps := orchestrators.RetryOutboxDeps{
			OutboxStore: stores.OutboxStore,
			Sender:      mailer.Sender,
			Now:         timeNow,
		}

		switch action {
		case "retry":
			if err := orchestrators.ExecuteRetryOutboxEntry(ctx, deps, entryID); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"status": "retry triggered"})

		case "abandon":
			if err := orchestrators.ExecuteAbandonOutboxEntry(ctx, deps, entryID); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"status": "abandoned"})

		default:
			http.Error(w, "unknown action", http.StatusBadRequest)
		}

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleAdminPerf handles GET /api/admin/perf
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	windowMinutes := 60
	if windowStr := r.URL.Query().Get("window"); windowStr != "" {
		if n, err := strconv.Atoi(windowStr); err == nil && n > 0 && n <= 24*60 {
			windowMinutes = n
		}
	}

	snap := perfCollector.Snapshot(timeNow().Add(-time.Duration(windowMinutes)*time.Minute), 20)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

// handleUploadFile serves stored identity photos at GET /uploads/{key}.
// Gated behind the staff role at route registration.
func handleUploadFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if uploadDir == "" {
		http.NotFound(w, r)
		return
	}
	http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))).ServeHTTP(w, r)
}
