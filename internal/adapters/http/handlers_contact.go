package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"spark/internal/application/orchestrators"
)

// contactRequest is the JSON shape of a contact-form submission.
type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// handleContact handles POST /api/contact
func handleContact(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req contactRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}
		req = contactRequest{
			Name:    r.FormValue("name"),
			Email:   r.FormValue("email"),
			Subject: r.FormValue("subject"),
			Body:    r.FormValue("body"),
		}
	} else {
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
	}

	input := orchestrators.SubmitContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Body:    req.Body,
	}
	deps := orchestrators.SubmitContactDeps{
		ContactStore: stores.ContactStore,
		Notifier:     mailer,
		GenerateID:   generateID,
		Now:          timeNow,
	}

	messageID, err := orchestrators.ExecuteSubmitContact(r.Context(), input, deps)
	if err != nil {
		handleWorkflowError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"messageId": messageID})
}
