package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"spark/internal/application/orchestrators"
)

// sponsorRequest is the JSON shape of a sponsor submission.
type sponsorRequest struct {
	CompanyName   string `json:"companyName"`
	ContactName   string `json:"contactName"`
	ContactEmail  string `json:"contactEmail"`
	ContactPhone  string `json:"contactPhone"`
	Level         string `json:"level"`
	Website       string `json:"website"`
	Comments      string `json:"comments"`
	PaymentMethod string `json:"paymentMethod"`
}

// handleRegisterSponsor handles POST /api/register/sponsor
func handleRegisterSponsor(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req sponsorRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}
		req = sponsorRequest{
			CompanyName:   r.FormValue("companyName"),
			ContactName:   r.FormValue("contactName"),
			ContactEmail:  r.FormValue("contactEmail"),
			ContactPhone:  r.FormValue("contactPhone"),
			Level:         r.FormValue("level"),
			Website:       r.FormValue("website"),
			Comments:      r.FormValue("comments"),
			PaymentMethod: r.FormValue("paymentMethod"),
		}
	} else {
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
	}

	input := orchestrators.RegisterSponsorInput{
		CompanyName:   req.CompanyName,
		ContactName:   req.ContactName,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
		Level:         req.Level,
		Website:       req.Website,
		Comments:      req.Comments,
		PaymentMethod: req.PaymentMethod,
	}
	deps := orchestrators.RegisterSponsorDeps{
		SponsorStore: stores.SponsorStore,
		Notifier:     mailer,
		GenerateID:   generateID,
		Now:          timeNow,
	}

	result, err := orchestrators.ExecuteRegisterSponsor(r.Context(), input, deps)
	if err != nil {
		handleWorkflowError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"sponsorId":    result.SponsorID,
		"referenceId":  result.ReferenceID,
		"amountCents":  result.AmountCents,
		"instructions": toInstructionsResponse(result.Instructions),
	})
}
