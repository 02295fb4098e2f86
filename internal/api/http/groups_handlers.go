package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cs-expo/expograde/internal/group"
)

type groupReq struct {
	Name            string   `json:"name"`
	ProjectTitle    string   `json:"projectTitle"`
	Members         []string `json:"members"`
	Panel1ID        string   `json:"panel1Id"`
	Panel2ID        string   `json:"panel2Id"`
	ExternalPanelID string   `json:"externalPanelId"`
}

// GET /groups
func ListGroupsHandler(store group.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := group.ListOpts{Status: group.Status(r.URL.Query().Get("status"))}
		groups, err := store.ListGroups(r.Context(), opts)
		if err != nil {
			http.Error(w, "list groups: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(groups)
	}
}

// GET /groups/{groupID}
func GetGroupHandler(store group.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "groupID"))
		if id == "" {
			http.Error(w, "groupID required", http.StatusBadRequest)
			return
		}
		g, err := store.GetGroup(r.Context(), id)
		if err != nil {
			writeGroupErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(g)
	}
}

// POST /groups
func CreateGroupHandler(store group.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req groupReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}
		g, err := store.CreateGroup(r.Context(), group.Group{
			Name:            req.Name,
			ProjectTitle:    req.ProjectTitle,
			Members:         req.Members,
			Panel1ID:        req.Panel1ID,
			Panel2ID:        req.Panel2ID,
			ExternalPanelID: req.ExternalPanelID,
		})
		if err != nil {
			writeGroupErr(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(g)
	}
}

// PUT /groups/{groupID}
func UpdateGroupHandler(store group.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "groupID"))
		var req groupReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		g, err := store.UpdateGroup(r.Context(), group.Group{
			ID:              id,
			Name:            req.Name,
			ProjectTitle:    req.ProjectTitle,
			Members:         req.Members,
			Panel1ID:        req.Panel1ID,
			Panel2ID:        req.Panel2ID,
			ExternalPanelID: req.ExternalPanelID,
		})
		if err != nil {
			writeGroupErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(g)
	}
}

// DELETE /groups/{groupID}
func DeleteGroupHandler(store group.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "groupID"))
		if err := store.DeleteGroup(r.Context(), id); err != nil {
			writeGroupErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}
}

// DELETE /groups
func DeleteAllGroupsHandler(store group.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteAllGroups(r.Context()); err != nil {
			http.Error(w, "delete groups: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}
}

// POST /groups/bulk takes a JSON array of {name, projectTitle}; existing
// names are skipped, matching the spreadsheet import behavior.
func BulkCreateGroupsHandler(store group.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reqs []groupReq
		if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
			http.Error(w, "expected JSON array", http.StatusBadRequest)
			return
		}
		groups := make([]group.Group, 0, len(reqs))
		for _, req := range reqs {
			if req.Name == "" {
				continue
			}
			groups = append(groups, group.Group{Name: req.Name, ProjectTitle: req.ProjectTitle})
		}
		res, err := store.BulkCreateGroups(r.Context(), groups)
		if err != nil {
			http.Error(w, "bulk create: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(res)
	}
}

func writeGroupErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, group.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, group.ErrDuplicateName):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, group.ErrSamePanelist):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, group.ErrNotAssigned):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
