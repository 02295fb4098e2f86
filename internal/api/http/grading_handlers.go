package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/cs-expo/expograde/internal/auth/middleware"
	"github.com/cs-expo/expograde/internal/group"
	"github.com/cs-expo/expograde/internal/rubric"
)

type submitGradeReq struct {
	PresenterScores group.Score `json:"presenterScores"`
	ThesisScores    group.Score `json:"thesisScores"`
}

// POST /groups/{groupID}/grades
// The panelist is taken from the token, never the body: a panelist can only
// ever submit their own grade. Resubmission replaces the previous one.
func SubmitGradeHandler(store group.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := strings.TrimSpace(chi.URLParam(r, "groupID"))
		if groupID == "" {
			http.Error(w, "groupID required", http.StatusBadRequest)
			return
		}
		panelistID := authmw.SubjectFromContext(r.Context())
		if panelistID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req submitGradeReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		g, err := store.SubmitGrade(r.Context(), groupID, panelistID, req.PresenterScores, req.ThesisScores)
		if err != nil {
			writeSubmitErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(g)
	}
}

func writeSubmitErr(w http.ResponseWriter, err error) {
	var incomplete *rubric.IncompleteError
	var outOfRange *rubric.OutOfRangeError
	switch {
	case errors.As(err, &incomplete), errors.As(err, &outOfRange):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		writeGroupErr(w, err)
	}
}
