package http

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cs-expo/expograde/internal/group"
	"github.com/cs-expo/expograde/internal/storage"
)

// Backup round-trips the full system state: users keep their password hashes
// so a restore leaves every account usable.

type backupUser struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	PasswordHash string `json:"password_hash"`
}

type backupGrade struct {
	ID              string      `json:"id"`
	PanelistID      string      `json:"panelistId"`
	PresenterScores group.Score `json:"presenterScores"`
	ThesisScores    group.Score `json:"thesisScores"`
	Submitted       bool        `json:"submitted"`
}

type backupGroup struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	ProjectTitle    string        `json:"projectTitle"`
	Members         []string      `json:"members"`
	Panel1ID        string        `json:"panel1Id,omitempty"`
	Panel2ID        string        `json:"panel2Id,omitempty"`
	ExternalPanelID string        `json:"externalPanelId,omitempty"`
	Status          string        `json:"status"`
	Grades          []backupGrade `json:"grades"`
}

type backupDoc struct {
	Users  []backupUser  `json:"users"`
	Groups []backupGroup `json:"groups"`
}

// GET /system/backup
// Streams the snapshot to the caller and archives a copy in the snapshot
// store. Archival failure is logged, not fatal: the caller still has the data.
func BackupHandler(db *sql.DB, snaps storage.SnapshotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := collectBackup(r.Context(), db)
		if err != nil {
			http.Error(w, "backup: "+err.Error(), http.StatusInternalServerError)
			return
		}
		buf, err := json.Marshal(doc)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if snaps != nil {
			if _, err := snaps.Put(storage.TimestampedName(time.Now()), bytes.NewReader(buf)); err != nil {
				log.Printf("snapshot archive failed: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="expograde_backup.json"`)
		_, _ = w.Write(buf)
	}
}

// GET /system/backup/latest
// Serves the most recent archived snapshot, for machines where the original
// download was lost.
func LatestBackupHandler(snaps storage.SnapshotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, rc, err := snaps.Latest()
		if err != nil {
			http.Error(w, "no archived backups", http.StatusNotFound)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		_, _ = io.Copy(w, rc)
	}
}

// POST /system/restore
// Replaces all state with the uploaded snapshot in one transaction; a failed
// restore leaves the previous state untouched.
func RestoreHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc backupDoc
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := applyRestore(r.Context(), db, doc); err != nil {
			http.Error(w, "restore: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}
}

func collectBackup(ctx context.Context, db *sql.DB) (backupDoc, error) {
	var doc backupDoc

	urows, err := db.QueryContext(ctx, `SELECT id,name,email,role,password_hash FROM users ORDER BY name`)
	if err != nil {
		return doc, err
	}
	defer urows.Close()
	doc.Users = []backupUser{}
	for urows.Next() {
		var u backupUser
		if err := urows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash); err != nil {
			return doc, err
		}
		doc.Users = append(doc.Users, u)
	}
	if err := urows.Err(); err != nil {
		return doc, err
	}

	grows, err := db.QueryContext(ctx, `SELECT id,name,project_title,members_json,panel1_id,panel2_id,external_panel_id,status FROM groups ORDER BY name`)
	if err != nil {
		return doc, err
	}
	defer grows.Close()
	doc.Groups = []backupGroup{}
	byID := map[string]int{}
	for grows.Next() {
		var g backupGroup
		var mjson string
		var p1, p2, ext sql.NullString
		if err := grows.Scan(&g.ID, &g.Name, &g.ProjectTitle, &mjson, &p1, &p2, &ext, &g.Status); err != nil {
			return doc, err
		}
		g.Panel1ID, g.Panel2ID, g.ExternalPanelID = p1.String, p2.String, ext.String
		if err := json.Unmarshal([]byte(mjson), &g.Members); err != nil {
			g.Members = []string{}
		}
		g.Grades = []backupGrade{}
		byID[g.ID] = len(doc.Groups)
		doc.Groups = append(doc.Groups, g)
	}
	if err := grows.Err(); err != nil {
		return doc, err
	}

	prows, err := db.QueryContext(ctx, `SELECT id,group_id,panelist_id,presenter_scores_json,thesis_scores_json,submitted FROM panel_grades`)
	if err != nil {
		return doc, err
	}
	defer prows.Close()
	for prows.Next() {
		var gr backupGrade
		var groupID, pjson, tjson string
		var submitted int
		if err := prows.Scan(&gr.ID, &groupID, &gr.PanelistID, &pjson, &tjson, &submitted); err != nil {
			return doc, err
		}
		gr.Submitted = submitted != 0
		_ = json.Unmarshal([]byte(pjson), &gr.PresenterScores)
		_ = json.Unmarshal([]byte(tjson), &gr.ThesisScores)
		if i, ok := byID[groupID]; ok {
			doc.Groups[i].Grades = append(doc.Groups[i].Grades, gr)
		}
	}
	return doc, prows.Err()
}

func applyRestore(ctx context.Context, db *sql.DB, doc backupDoc) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	// grades cascade from groups; users last so the FK references are gone
	for _, stmt := range []string{`DELETE FROM groups`, `DELETE FROM users`} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return
		}
	}

	for _, u := range doc.Users {
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO users (id,name,email,role,password_hash) VALUES ($1,$2,$3,$4,$5)`,
			u.ID, u.Name, u.Email, u.Role, u.PasswordHash); err != nil {
			return
		}
	}

	for _, g := range doc.Groups {
		if g.ID == "" {
			g.ID = uuid.NewString()
		}
		if g.Members == nil {
			g.Members = []string{}
		}
		var mj []byte
		if mj, err = json.Marshal(g.Members); err != nil {
			return
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO groups (id,name,project_title,members_json,panel1_id,panel2_id,external_panel_id,status)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			g.ID, g.Name, g.ProjectTitle, string(mj),
			nullIfEmpty(g.Panel1ID), nullIfEmpty(g.Panel2ID), nullIfEmpty(g.ExternalPanelID), g.Status); err != nil {
			return
		}
		for _, gr := range g.Grades {
			if gr.ID == "" {
				gr.ID = uuid.NewString()
			}
			var pj, tj []byte
			if pj, err = json.Marshal(gr.PresenterScores); err != nil {
				return
			}
			if tj, err = json.Marshal(gr.ThesisScores); err != nil {
				return
			}
			submitted := 0
			if gr.Submitted {
				submitted = 1
			}
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO panel_grades (id,group_id,panelist_id,presenter_scores_json,thesis_scores_json,submitted)
				 VALUES ($1,$2,$3,$4,$5,$6)`,
				gr.ID, g.ID, gr.PanelistID, string(pj), string(tj), submitted); err != nil {
				return
			}
		}
	}

	return
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
