package http

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cs-expo/expograde/internal/group"
)

type masterlistRow struct {
	GroupID        string `json:"groupId"`
	GroupName      string `json:"groupName"`
	ProjectTitle   string `json:"projectTitle"`
	ExternalPanel  string `json:"externalPanel"`
	ChairPanel     string `json:"chairPanel"`
	InternalPanel  string `json:"internalPanel"`
	Status         string `json:"status"`
	PresenterScore string `json:"presenterScore"` // "87.50%" or "N/A"
	ThesisScore    string `json:"thesisScore"`
}

// GET /reports/masterlist
// Per-category averages for every group. Scores stay "N/A" until grading is
// complete; this path never uses the conflated dashboard score.
func MasterlistHandler(store group.Store, db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := store.ListGroups(r.Context(), group.ListOpts{})
		if err != nil {
			http.Error(w, "list groups: "+err.Error(), http.StatusInternalServerError)
			return
		}
		names, err := userNames(r.Context(), db)
		if err != nil {
			http.Error(w, "users: "+err.Error(), http.StatusInternalServerError)
			return
		}
		rows := make([]masterlistRow, 0, len(groups))
		for _, g := range groups {
			row := masterlistRow{
				GroupID:        g.ID,
				GroupName:      g.Name,
				ProjectTitle:   g.ProjectTitle,
				ExternalPanel:  nameOr(names, g.ExternalPanelID),
				ChairPanel:     nameOr(names, g.Panel1ID),
				InternalPanel:  nameOr(names, g.Panel2ID),
				Status:         string(g.Status),
				PresenterScore: "N/A",
				ThesisScore:    "N/A",
			}
			if g.Status == group.StatusCompleted && len(g.Grades) > 0 {
				row.PresenterScore = fmt.Sprintf("%.2f%%", group.PresenterAverage(g))
				row.ThesisScore = fmt.Sprintf("%.2f%%", group.ThesisAverage(g))
			}
			rows = append(rows, row)
		}
		_ = json.NewEncoder(w).Encode(rows)
	}
}

// GET /reports/dashboard.csv
// Summary export: one line per group with its panel names, status, and the
// pass/fail remark from the conflated final score.
func DashboardCSVHandler(store group.Store, db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := store.ListGroups(r.Context(), group.ListOpts{Status: group.Status(r.URL.Query().Get("status"))})
		if err != nil {
			http.Error(w, "list groups: "+err.Error(), http.StatusInternalServerError)
			return
		}
		names, err := userNames(r.Context(), db)
		if err != nil {
			http.Error(w, "users: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="dashboard_summary.csv"`)
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"Group Name", "Project Title", "Panel 1", "Panel 2", "External Panel", "Status", "Final Score", "Remark"})
		for _, g := range groups {
			score, remark := "N/A", "N/A"
			if g.Status == group.StatusCompleted {
				final := group.FinalScore(g)
				score = fmt.Sprintf("%.2f", final)
				remark = group.Remark(final)
			}
			_ = cw.Write([]string{
				g.Name,
				g.ProjectTitle,
				nameOr(names, g.Panel1ID),
				nameOr(names, g.Panel2ID),
				nameOr(names, g.ExternalPanelID),
				string(g.Status),
				score,
				remark,
			})
		}
		cw.Flush()
	}
}

func userNames(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT id,name FROM users`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}

func nameOr(names map[string]string, id string) string {
	if n, ok := names[id]; ok && id != "" {
		return n
	}
	return "N/A"
}
