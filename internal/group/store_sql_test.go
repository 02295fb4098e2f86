package group

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/cs-expo/expograde/internal/db"
	"github.com/cs-expo/expograde/internal/rubric"
)

// openTestStore gives each test its own in-memory sqlite database, with the
// panelist rows the groups table references.
func openTestStore(t *testing.T) *SQLStore {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	h, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	if err := db.EnsureSchema(ctx, h, db.DriverSQLite); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	for _, u := range []struct{ id, name, email string }{
		{"p1", "Dr. Reyes", "reyes@expo.test"},
		{"p2", "Prof. Cruz", "cruz@expo.test"},
		{"p3", "Engr. Lim", "lim@expo.test"},
	} {
		if _, err := h.ExecContext(ctx, `INSERT INTO users (id,name,email,role,password_hash) VALUES ($1,$2,$3,$4,$5)`,
			u.id, u.name, u.email, "Panel", "x"); err != nil {
			t.Fatalf("seed user %s: %v", u.id, err)
		}
	}
	return NewSQLStore(h)
}

func TestSQLStoreSubmitLifecycle(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	g, err := store.CreateGroup(ctx, Group{
		Name:         "Team Atlas",
		ProjectTitle: "Seismic Early Warning",
		Members:      []string{"Ana", "Ben"},
		Panel1ID:     "p1",
		Panel2ID:     "p2",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.Status != StatusNotStarted {
		t.Fatalf("status = %q, want Not Started", g.Status)
	}

	got, err := store.SubmitGrade(ctx, g.ID, "p1", presenterAt(80), thesisAt(70))
	if err != nil {
		t.Fatalf("submit p1: %v", err)
	}
	if got.Status != StatusInProgress {
		t.Fatalf("status = %q, want In Progress", got.Status)
	}

	got, err = store.SubmitGrade(ctx, g.ID, "p2", presenterAt(90), thesisAt(60))
	if err != nil {
		t.Fatalf("submit p2: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("status = %q, want Completed", got.Status)
	}
	approx(t, FinalScore(got), 75.0)

	// persisted status matches the derived one
	fresh, err := store.GetGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fresh.Status != StatusCompleted || len(fresh.Grades) != 2 {
		t.Fatalf("reloaded group: status=%q grades=%d", fresh.Status, len(fresh.Grades))
	}
}

func TestSQLStoreResubmitKeepsSingleRow(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	g, err := store.CreateGroup(ctx, Group{Name: "Team Atlas", Panel1ID: "p1", Panel2ID: "p2"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.SubmitGrade(ctx, g.ID, "p1", presenterAt(40), thesisAt(40)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	got, err := store.SubmitGrade(ctx, g.ID, "p1", presenterAt(95), thesisAt(85))
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if len(got.Grades) != 1 {
		t.Fatalf("resubmission left %d grade rows, want 1", len(got.Grades))
	}
	approx(t, PercentageFor(rubric.BestPresenter, got.Grades[0].PresenterScores), 95.0)
}

func TestSQLStoreSubmitValidation(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	g, err := store.CreateGroup(ctx, Group{Name: "Team Atlas", Panel1ID: "p1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.SubmitGrade(ctx, "missing", "p1", presenterAt(80), thesisAt(70)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown group: got %v, want ErrNotFound", err)
	}
	if _, err := store.SubmitGrade(ctx, g.ID, "p3", presenterAt(80), thesisAt(70)); !errors.Is(err, ErrNotAssigned) {
		t.Fatalf("unassigned panelist: got %v, want ErrNotAssigned", err)
	}
	fresh, _ := store.GetGroup(ctx, g.ID)
	if len(fresh.Grades) != 0 || fresh.Status != StatusNotStarted {
		t.Fatalf("rejected submission left state behind: %+v", fresh)
	}
}

func TestSQLStoreReassignmentRecomputesStatus(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	g, err := store.CreateGroup(ctx, Group{Name: "Team Atlas", Panel1ID: "p1", Panel2ID: "p2"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.SubmitGrade(ctx, g.ID, "p1", presenterAt(80), thesisAt(70)); err != nil {
		t.Fatalf("submit p1: %v", err)
	}
	got, err := store.SubmitGrade(ctx, g.ID, "p2", presenterAt(90), thesisAt(60))
	if err != nil {
		t.Fatalf("submit p2: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("status = %q, want Completed", got.Status)
	}

	got.Panel2ID = "p3"
	updated, err := store.UpdateGroup(ctx, got)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != StatusInProgress {
		t.Fatalf("after reassignment status = %q, want In Progress", updated.Status)
	}
	if _, ok := updated.GradeFor("p2"); !ok {
		t.Fatal("orphaned grade row was lost on reassignment")
	}
}

func TestSQLStoreDuplicateName(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if _, err := store.CreateGroup(ctx, Group{Name: "Team Atlas"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.CreateGroup(ctx, Group{Name: "Team Atlas"}); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("duplicate name: got %v, want ErrDuplicateName", err)
	}
}

func TestSQLStoreListEmbedsGrades(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	a, err := store.CreateGroup(ctx, Group{Name: "alpha", Panel1ID: "p1"})
	if err != nil {
		t.Fatalf("create alpha: %v", err)
	}
	if _, err := store.CreateGroup(ctx, Group{Name: "beta", Panel1ID: "p2"}); err != nil {
		t.Fatalf("create beta: %v", err)
	}
	if _, err := store.SubmitGrade(ctx, a.ID, "p1", presenterAt(75), thesisAt(75)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	groups, err := store.ListGroups(ctx, ListOpts{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(groups) != 2 || groups[0].Name != "alpha" || groups[1].Name != "beta" {
		t.Fatalf("listing order/count wrong: %+v", groups)
	}
	if len(groups[0].Grades) != 1 || len(groups[1].Grades) != 0 {
		t.Fatalf("grade embedding wrong: alpha=%d beta=%d", len(groups[0].Grades), len(groups[1].Grades))
	}

	done, err := store.ListGroups(ctx, ListOpts{Status: StatusCompleted})
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if len(done) != 1 || done[0].Name != "alpha" {
		t.Fatalf("completed filter = %+v, want just alpha", done)
	}
}

func TestSQLStoreDeleteCascades(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	g, err := store.CreateGroup(ctx, Group{Name: "Team Atlas", Panel1ID: "p1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.SubmitGrade(ctx, g.ID, "p1", presenterAt(80), thesisAt(80)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := store.DeleteGroup(ctx, g.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteGroup(ctx, g.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
	if _, err := store.GetGroup(ctx, g.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: got %v, want ErrNotFound", err)
	}
}

func TestSQLStoreBulkCreate(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if _, err := store.CreateGroup(ctx, Group{Name: "alpha"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	res, err := store.BulkCreateGroups(ctx, []Group{
		{Name: "alpha"},
		{Name: "beta"},
		{Name: "gamma", ProjectTitle: "Harvest Planner"},
	})
	if err != nil {
		t.Fatalf("bulk create: %v", err)
	}
	if res.Added != 2 || res.Skipped != 1 {
		t.Fatalf("bulk result = %+v, want 2 added / 1 skipped", res)
	}
	groups, err := store.ListGroups(ctx, ListOpts{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("group count = %d, want 3", len(groups))
	}
	for _, g := range groups {
		if g.Name == "beta" && g.ProjectTitle != "TBA" {
			t.Fatalf("beta project title = %q, want TBA", g.ProjectTitle)
		}
	}
}
