package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"spark/internal/application/orchestrators"
	"spark/internal/domain/payment"
)

// maxUploadBytes bounds a whole team submission including identity photos.
const maxUploadBytes = 20 << 20

// maxRosterScan bounds the indexed-field scan; anything past it is noise.
const maxRosterScan = 50

// instructionsResponse is the public shape of payment instructions.
type instructionsResponse struct {
	Method string   `json:"method"`
	Title  string   `json:"title"`
	Amount string   `json:"amount"`
	Steps  []string `json:"steps"`
	PayTo  string   `json:"payTo"`
	Memo   string   `json:"memo"`
}

func toInstructionsResponse(in *payment.Instructions) *instructionsResponse {
	if in == nil {
		return nil
	}
	return &instructionsResponse{
		Method: in.Method,
		Title:  in.Title,
		Amount: in.Amount,
		Steps:  in.Steps,
		PayTo:  in.PayTo,
		Memo:   in.Memo,
	}
}

// handleRegisterTeam handles POST /api/register/team (multipart form).
//
// Player fields arrive indexed: players[0][name], players[0][dateOfBirth],
// players[0][photo], and so on. The photo part is optional per tier.
func handleRegisterTeam(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.RegisterTeamInput{
		TeamName:     r.FormValue("teamName"),
		Organization: r.FormValue("organization"),
		City:         r.FormValue("city"),
		Tier:         r.FormValue("tier"),
		Gender:       r.FormValue("gender"),

		CoachName:  r.FormValue("coachName"),
		CoachEmail: r.FormValue("coachEmail"),
		CoachPhone: r.FormValue("coachPhone"),

		EmergencyName:         r.FormValue("emergencyName"),
		EmergencyPhone:        r.FormValue("emergencyPhone"),
		EmergencyRelationship: r.FormValue("emergencyRelationship"),

		PaymentMethod:       r.FormValue("paymentMethod"),
		SpecialRequirements: r.FormValue("specialRequirements"),
		Comments:            r.FormValue("comments"),
	}

	players, files, err := parseRoster(r)
	if err != nil {
		http.Error(w, "could not read uploaded photos", http.StatusBadRequest)
		return
	}
	input.Players = players
	input.Files = files

	deps := orchestrators.RegisterTeamDeps{
		TeamStore:  stores.TeamStore,
		Uploads:    uploads,
		Notifier:   mailer,
		GenerateID: generateID,
		Now:        timeNow,
	}

	result, err := orchestrators.ExecuteRegisterTeam(r.Context(), input, deps)
	if err != nil {
		handleWorkflowError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"teamId":       result.TeamID,
		"referenceId":  result.ReferenceID,
		"feeCents":     result.FeeCents,
		"instructions": toInstructionsResponse(result.Instructions),
	})
}

// parseRoster scans the indexed player fields and photo parts out of a parsed
// multipart form. The scan stops at the first index with neither field nor
// photo; validation of what was found belongs to the workflow.
func parseRoster(r *http.Request) ([]orchestrators.RawPlayer, []orchestrators.UploadedFile, error) {
	var players []orchestrators.RawPlayer
	var files []orchestrators.UploadedFile

	for i := 0; i < maxRosterScan; i++ {
		name := r.FormValue(fmt.Sprintf("players[%d][name]", i))
		dob := r.FormValue(fmt.Sprintf("players[%d][dateOfBirth]", i))
		photoField := fmt.Sprintf("players[%d][photo]", i)
		headers := r.MultipartForm.File[photoField]

		if name == "" && dob == "" && len(headers) == 0 {
			break
		}

		players = append(players, orchestrators.RawPlayer{Name: name, DateOfBirth: dob})

		if len(headers) > 0 {
			f, err := headers[0].Open()
			if err != nil {
				return nil, nil, err
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, nil, err
			}
			files = append(files, orchestrators.UploadedFile{
				FieldName:    photoField,
				OriginalName: headers[0].Filename,
				Data:         data,
			})
		}
	}

	return players, files, nil
}
