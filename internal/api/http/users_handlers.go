package http

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cs-expo/expograde/internal/rbac"
)

type userRow struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password,omitempty"` // plaintext on create/update only, never echoed
}

// bulkDefaultPassword is assigned to imported accounts; users are expected to
// change it on first login.
const bulkDefaultPassword = "password"

// GET /users?role=Panel
func ListUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := r.URL.Query().Get("role")
		var rows *sql.Rows
		var err error
		if role == "" {
			rows, err = db.QueryContext(r.Context(), `SELECT id,name,email,role FROM users ORDER BY name`)
		} else {
			rows, err = db.QueryContext(r.Context(), `SELECT id,name,email,role FROM users WHERE role=$1 ORDER BY name`, role)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()
		out := []userRow{}
		for rows.Next() {
			var u userRow
			if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			out = append(out, u)
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// POST /users
func CreateUserHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req userRow
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Name == "" || req.Email == "" || req.Password == "" {
			http.Error(w, "name, email and password required", http.StatusBadRequest)
			return
		}
		if !validRole(req.Role) {
			http.Error(w, "invalid role: "+req.Role, http.StatusBadRequest)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		id := uuid.NewString()
		_, err = db.ExecContext(r.Context(),
			`INSERT INTO users (id,name,email,role,password_hash) VALUES ($1,$2,$3,$4,$5)`,
			id, req.Name, req.Email, req.Role, string(hash))
		if err != nil {
			if isUniqueViolation(err) {
				http.Error(w, "email already exists", http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(userRow{ID: id, Name: req.Name, Email: req.Email, Role: req.Role})
	}
}

// PUT /users/{userID}. Password only changes when one is supplied.
func UpdateUserHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "userID"))
		var req userRow
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if !validRole(req.Role) {
			http.Error(w, "invalid role: "+req.Role, http.StatusBadRequest)
			return
		}
		var res sql.Result
		var err error
		if req.Password != "" {
			var hash []byte
			hash, err = bcrypt.GenerateFromPassword([]byte(req.Password), 10)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			res, err = db.ExecContext(r.Context(),
				`UPDATE users SET name=$1, email=$2, role=$3, password_hash=$4 WHERE id=$5`,
				req.Name, req.Email, req.Role, string(hash), id)
		} else {
			res, err = db.ExecContext(r.Context(),
				`UPDATE users SET name=$1, email=$2, role=$3 WHERE id=$4`,
				req.Name, req.Email, req.Role, id)
		}
		if err != nil {
			if isUniqueViolation(err) {
				http.Error(w, "email already exists", http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(userRow{ID: id, Name: req.Name, Email: req.Email, Role: req.Role})
	}
}

// DELETE /users/{userID}. Panel slots referencing the user go NULL via the
// schema, which can regress a group's status on its next recompute.
func DeleteUserHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "userID"))
		res, err := db.ExecContext(r.Context(), `DELETE FROM users WHERE id=$1`, id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}
}

// POST /users/bulk takes a JSON array in the body or a CSV file= in multipart
// form.
// Accounts whose email or name already exists are skipped, not updated.
func BulkCreateUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []userRow
		ct := r.Header.Get("Content-Type")
		if strings.HasPrefix(ct, "multipart/form-data") {
			f, _, err := r.FormFile("file")
			if err != nil {
				http.Error(w, "file required", http.StatusBadRequest)
				return
			}
			defer f.Close()
			rows, err = parseUserCSV(f)
			if err != nil {
				http.Error(w, "bad csv: "+err.Error(), http.StatusBadRequest)
				return
			}
		} else {
			if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
				http.Error(w, "expected JSON array or multipart file", http.StatusBadRequest)
				return
			}
		}

		added, skipped, err := bulkInsertUsers(r.Context(), db, rows)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]int{"addedCount": added, "skippedCount": skipped})
	}
}

func parseUserCSV(r io.Reader) ([]userRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	hdr, err := cr.Read()
	if err != nil {
		return nil, err
	}
	idx := map[string]int{}
	for i, h := range hdr {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, k := range []string{"name", "email", "role"} {
		if _, ok := idx[k]; !ok {
			return nil, errors.New("missing column: " + k)
		}
	}
	var rows []userRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, userRow{
			Name:  strings.TrimSpace(rec[idx["name"]]),
			Email: strings.TrimSpace(rec[idx["email"]]),
			Role:  strings.TrimSpace(rec[idx["role"]]),
		})
	}
	return rows, nil
}

func bulkInsertUsers(ctx context.Context, db *sql.DB, rows []userRow) (added, skipped int, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	// One hash for the whole batch; the default password is shared anyway.
	hash, err := bcrypt.GenerateFromPassword([]byte(bulkDefaultPassword), 10)
	if err != nil {
		return
	}
	for _, u := range rows {
		if u.Name == "" || u.Email == "" {
			skipped++
			continue
		}
		if !validRole(u.Role) {
			err = errors.New("invalid role: " + u.Role)
			return
		}
		var exists int
		scanErr := tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE email=$1 OR name=$2`, u.Email, u.Name).Scan(&exists)
		switch {
		case scanErr == nil:
			skipped++
			continue
		case errors.Is(scanErr, sql.ErrNoRows):
		default:
			err = scanErr
			return
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO users (id,name,email,role,password_hash) VALUES ($1,$2,$3,$4,$5)`,
			uuid.NewString(), u.Name, u.Email, u.Role, string(hash)); err != nil {
			return
		}
		added++
	}
	return
}

func validRole(role string) bool {
	switch role {
	case rbac.RoleAdmin, rbac.RoleAdviser, rbac.RolePanel, rbac.RoleExternalPanel:
		return true
	}
	return false
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
