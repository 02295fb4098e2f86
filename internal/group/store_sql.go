package group

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// SQLStore persists groups and panel grades through database/sql. Works
// against both sqlite and postgres; score maps and the member list are stored
// as JSON text so the two drivers share one schema shape.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) CreateGroup(ctx context.Context, g Group) (Group, error) {
	if g.Panel1ID != "" && g.Panel1ID == g.Panel2ID {
		return Group{}, ErrSamePanelist
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.Members == nil {
		g.Members = []string{}
	}
	mj, err := json.Marshal(g.Members)
	if err != nil {
		return Group{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO groups (id,name,project_title,members_json,panel1_id,panel2_id,external_panel_id,status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		g.ID, g.Name, g.ProjectTitle, string(mj),
		nullable(g.Panel1ID), nullable(g.Panel2ID), nullable(g.ExternalPanelID),
		string(StatusNotStarted))
	if err != nil {
		if isUniqueViolation(err) {
			return Group{}, ErrDuplicateName
		}
		return Group{}, err
	}
	return s.GetGroup(ctx, g.ID)
}

func (s *SQLStore) GetGroup(ctx context.Context, id string) (Group, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,name,project_title,members_json,panel1_id,panel2_id,external_panel_id,status
		FROM groups WHERE id=$1`, id)
	g, err := scanGroup(row)
	if err != nil {
		return Group{}, err
	}
	grades, err := s.gradesFor(ctx, s.db, id)
	if err != nil {
		return Group{}, err
	}
	g.Grades = grades
	return g, nil
}

func (s *SQLStore) ListGroups(ctx context.Context, opts ListOpts) ([]Group, error) {
	q := `SELECT id,name,project_title,members_json,panel1_id,panel2_id,external_panel_id,status FROM groups`
	args := []any{}
	if opts.Status != "" {
		q += ` WHERE status=$1`
		args = append(args, string(opts.Status))
	}
	q += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		g.Grades = []PanelGrade{}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// One pass over all grades, bucketed by group.
	grows, err := s.db.QueryContext(ctx, `SELECT group_id,panelist_id,presenter_scores_json,thesis_scores_json,submitted FROM panel_grades`)
	if err != nil {
		return nil, err
	}
	defer grows.Close()
	byGroup := map[string][]PanelGrade{}
	for grows.Next() {
		var groupID string
		gr, err := scanGrade(grows, &groupID)
		if err != nil {
			return nil, err
		}
		byGroup[groupID] = append(byGroup[groupID], gr)
	}
	if err := grows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if grades, ok := byGroup[out[i].ID]; ok {
			out[i].Grades = grades
		}
	}
	if out == nil {
		out = []Group{}
	}
	return out, nil
}

func (s *SQLStore) UpdateGroup(ctx context.Context, g Group) (Group, error) {
	if g.Panel1ID != "" && g.Panel1ID == g.Panel2ID {
		return Group{}, ErrSamePanelist
	}
	if g.Members == nil {
		g.Members = []string{}
	}
	mj, err := json.Marshal(g.Members)
	if err != nil {
		return Group{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Group{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE groups SET name=$1, project_title=$2, members_json=$3, panel1_id=$4, panel2_id=$5, external_panel_id=$6 WHERE id=$7`,
		g.Name, g.ProjectTitle, string(mj),
		nullable(g.Panel1ID), nullable(g.Panel2ID), nullable(g.ExternalPanelID), g.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Group{}, ErrDuplicateName
		}
		return Group{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Group{}, ErrNotFound
	}

	// Reassignment invalidates the cached status, so recompute it in the same
	// transaction from the new slots against the existing grades.
	if err := s.recomputeStatus(ctx, tx, g.ID); err != nil {
		return Group{}, err
	}
	if err := tx.Commit(); err != nil {
		return Group{}, err
	}
	return s.GetGroup(ctx, g.ID)
}

func (s *SQLStore) DeleteGroup(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM groups WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) DeleteAllGroups(ctx context.Context) error {
	// panel_grades cascade from groups
	_, err := s.db.ExecContext(ctx, `DELETE FROM groups`)
	return err
}

func (s *SQLStore) BulkCreateGroups(ctx context.Context, groups []Group) (BulkResult, error) {
	var res BulkResult
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, err
	}
	defer tx.Rollback()

	for _, g := range groups {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM groups WHERE name=$1`, g.Name).Scan(&exists)
		switch {
		case err == nil:
			res.Skipped++
			continue
		case errors.Is(err, sql.ErrNoRows):
			// free to insert
		default:
			return BulkResult{}, err
		}
		title := g.ProjectTitle
		if title == "" {
			title = "TBA"
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO groups (id,name,project_title,members_json,status)
			VALUES ($1,$2,$3,'[]',$4)`,
			uuid.NewString(), g.Name, title, string(StatusNotStarted)); err != nil {
			return BulkResult{}, err
		}
		res.Added++
	}
	if err := tx.Commit(); err != nil {
		return BulkResult{}, err
	}
	return res, nil
}

func (s *SQLStore) SubmitGrade(ctx context.Context, groupID, panelistID string, presenter, thesis Score) (Group, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Group{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT id,name,project_title,members_json,panel1_id,panel2_id,external_panel_id,status
		FROM groups WHERE id=$1`, groupID)
	g, err := scanGroup(row)
	if err != nil {
		return Group{}, err
	}
	if err := validateSubmission(g, panelistID, presenter, thesis); err != nil {
		return Group{}, err
	}

	pj, err := json.Marshal(presenter)
	if err != nil {
		return Group{}, err
	}
	tj, err := json.Marshal(thesis)
	if err != nil {
		return Group{}, err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO panel_grades (id,group_id,panelist_id,presenter_scores_json,thesis_scores_json,submitted)
		VALUES ($1,$2,$3,$4,$5,1)
		ON CONFLICT (group_id,panelist_id)
		DO UPDATE SET presenter_scores_json=EXCLUDED.presenter_scores_json,
		              thesis_scores_json=EXCLUDED.thesis_scores_json,
		              submitted=1`,
		uuid.NewString(), groupID, panelistID, string(pj), string(tj))
	if err != nil {
		return Group{}, err
	}

	// Status must land in the same transaction as the upsert; a crash between
	// the two writes would otherwise leave the cache inconsistent.
	if err := s.recomputeStatus(ctx, tx, groupID); err != nil {
		return Group{}, err
	}
	if err := tx.Commit(); err != nil {
		return Group{}, err
	}
	return s.GetGroup(ctx, groupID)
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) recomputeStatus(ctx context.Context, q execQuerier, groupID string) error {
	row := q.QueryRowContext(ctx, `SELECT panel1_id,panel2_id,external_panel_id FROM groups WHERE id=$1`, groupID)
	var p1, p2, ext sql.NullString
	if err := row.Scan(&p1, &p2, &ext); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	g := Group{Panel1ID: p1.String, Panel2ID: p2.String, ExternalPanelID: ext.String}

	grades, err := s.gradesFor(ctx, q, groupID)
	if err != nil {
		return err
	}
	status := ComputeStatus(g.AssignedPanelists(), grades)
	_, err = q.ExecContext(ctx, `UPDATE groups SET status=$1 WHERE id=$2`, string(status), groupID)
	return err
}

func (s *SQLStore) gradesFor(ctx context.Context, q execQuerier, groupID string) ([]PanelGrade, error) {
	rows, err := q.QueryContext(ctx, `SELECT group_id,panelist_id,presenter_scores_json,thesis_scores_json,submitted
		FROM panel_grades WHERE group_id=$1`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []PanelGrade{}
	for rows.Next() {
		var groupID string
		gr, err := scanGrade(rows, &groupID)
		if err != nil {
			return nil, err
		}
		out = append(out, gr)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGroup(row scanner) (Group, error) {
	var g Group
	var mjson string
	var p1, p2, ext sql.NullString
	var status string
	if err := row.Scan(&g.ID, &g.Name, &g.ProjectTitle, &mjson, &p1, &p2, &ext, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Group{}, ErrNotFound
		}
		return Group{}, err
	}
	g.Panel1ID, g.Panel2ID, g.ExternalPanelID = p1.String, p2.String, ext.String
	g.Status = Status(status)
	if err := json.Unmarshal([]byte(mjson), &g.Members); err != nil {
		g.Members = []string{}
	}
	return g, nil
}

func scanGrade(row scanner, groupID *string) (PanelGrade, error) {
	var gr PanelGrade
	var pjson, tjson string
	var submitted int
	if err := row.Scan(groupID, &gr.PanelistID, &pjson, &tjson, &submitted); err != nil {
		return PanelGrade{}, err
	}
	gr.Submitted = submitted != 0
	if err := json.Unmarshal([]byte(pjson), &gr.PresenterScores); err != nil {
		gr.PresenterScores = Score{}
	}
	if err := json.Unmarshal([]byte(tjson), &gr.ThesisScores); err != nil {
		gr.ThesisScores = Score{}
	}
	return gr, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
