package group

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/cs-expo/expograde/internal/rubric"
)

func newTestGroup(t *testing.T, store Store) Group {
	t.Helper()
	g, err := store.CreateGroup(context.Background(), Group{
		Name:         "Team Rocket",
		ProjectTitle: "Pocket Monster Tracker",
		Members:      []string{"Jessie", "James"},
		Panel1ID:     "p1",
		Panel2ID:     "p2",
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if g.Status != StatusNotStarted {
		t.Fatalf("new group status = %q, want Not Started", g.Status)
	}
	return g
}

func TestSubmitGradeLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	g := newTestGroup(t, store)

	// first panelist: In Progress
	got, err := store.SubmitGrade(ctx, g.ID, "p1", presenterAt(80), thesisAt(70))
	if err != nil {
		t.Fatalf("submit p1: %v", err)
	}
	if got.Status != StatusInProgress {
		t.Fatalf("after one of two submissions status = %q, want In Progress", got.Status)
	}
	if len(got.Grades) != 1 || !got.Grades[0].Submitted {
		t.Fatalf("grades after first submit: %+v", got.Grades)
	}

	// second panelist: Completed (external slot unset, so two suffice)
	got, err = store.SubmitGrade(ctx, g.ID, "p2", presenterAt(90), thesisAt(60))
	if err != nil {
		t.Fatalf("submit p2: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("after both submissions status = %q, want Completed", got.Status)
	}
	approx(t, FinalScore(got), 75.0)
}

func TestSubmitGradeIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	g := newTestGroup(t, store)

	first, err := store.SubmitGrade(ctx, g.ID, "p1", presenterAt(80), thesisAt(70))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	second, err := store.SubmitGrade(ctx, g.ID, "p1", presenterAt(80), thesisAt(70))
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if len(second.Grades) != 1 {
		t.Fatalf("resubmission appended a grade: %d records", len(second.Grades))
	}
	if !reflect.DeepEqual(first.Grades, second.Grades) || first.Status != second.Status {
		t.Fatalf("identical resubmission changed state:\n first: %+v\nsecond: %+v", first, second)
	}
}

func TestSubmitGradeReplacesScores(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	g := newTestGroup(t, store)

	if _, err := store.SubmitGrade(ctx, g.ID, "p1", presenterAt(40), thesisAt(40)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	got, err := store.SubmitGrade(ctx, g.ID, "p1", presenterAt(100), thesisAt(100))
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	gr, ok := got.GradeFor("p1")
	if !ok {
		t.Fatal("grade missing after resubmit")
	}
	approx(t, PercentageFor(rubric.BestPresenter, gr.PresenterScores), 100.0)
}

func TestSubmitGradeRejections(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	g := newTestGroup(t, store)

	if _, err := store.SubmitGrade(ctx, "nope", "p1", presenterAt(80), thesisAt(70)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown group: got %v, want ErrNotFound", err)
	}
	if _, err := store.SubmitGrade(ctx, g.ID, "stranger", presenterAt(80), thesisAt(70)); !errors.Is(err, ErrNotAssigned) {
		t.Fatalf("unassigned panelist: got %v, want ErrNotAssigned", err)
	}

	// incomplete rubric rejected with no partial state
	partial := presenterAt(80)
	delete(partial, "stays_on_topic")
	var incomplete *rubric.IncompleteError
	if _, err := store.SubmitGrade(ctx, g.ID, "p1", partial, thesisAt(70)); !errors.As(err, &incomplete) {
		t.Fatalf("incomplete rubric: got %v, want IncompleteError", err)
	}

	over := presenterAt(80)
	over["preparedness"] = 41
	var rangeErr *rubric.OutOfRangeError
	if _, err := store.SubmitGrade(ctx, g.ID, "p1", over, thesisAt(70)); !errors.As(err, &rangeErr) {
		t.Fatalf("out-of-range score: got %v, want OutOfRangeError", err)
	}

	fresh, err := store.GetGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(fresh.Grades) != 0 || fresh.Status != StatusNotStarted {
		t.Fatalf("rejected submissions mutated the group: %+v", fresh)
	}
}

func TestReassignmentRegressesStatus(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	g := newTestGroup(t, store)

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

	// swapping in a panelist who has not graded reopens the group
	got.Panel2ID = "p3"
	updated, err := store.UpdateGroup(ctx, got)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != StatusInProgress {
		t.Fatalf("after reassignment status = %q, want In Progress", updated.Status)
	}
	// the orphaned grade stays on record
	if _, ok := updated.GradeFor("p2"); !ok {
		t.Fatal("orphaned grade was dropped on reassignment")
	}
}

func TestUpdateGroupIgnoresCallerStatus(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	g := newTestGroup(t, store)

	g.Status = StatusCompleted // caller cannot force completion
	updated, err := store.UpdateGroup(ctx, g)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != StatusNotStarted {
		t.Fatalf("status = %q, want Not Started (derived, not caller-set)", updated.Status)
	}
}

func TestCreateGroupConstraints(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	newTestGroup(t, store)

	if _, err := store.CreateGroup(ctx, Group{Name: "Team Rocket"}); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("duplicate name: got %v, want ErrDuplicateName", err)
	}
	if _, err := store.CreateGroup(ctx, Group{Name: "Solo", Panel1ID: "x", Panel2ID: "x"}); !errors.Is(err, ErrSamePanelist) {
		t.Fatalf("same chair and internal: got %v, want ErrSamePanelist", err)
	}
}

func TestBulkCreateGroupsSkipsExisting(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	newTestGroup(t, store)

	res, err := store.BulkCreateGroups(ctx, []Group{
		{Name: "Team Rocket"}, // exists
		{Name: "Team Aqua", ProjectTitle: "Tide Watch"},
		{Name: "Team Magma"},
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
		if g.Name == "Team Magma" && g.ProjectTitle != "TBA" {
			t.Fatalf("missing project title should default to TBA, got %q", g.ProjectTitle)
		}
	}
}

func TestListGroupsFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	for _, name := range []string{"zeta", "alpha", "mike"} {
		if _, err := store.CreateGroup(ctx, Group{Name: name, Panel1ID: "p1"}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	groups, err := store.ListGroups(ctx, ListOpts{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"alpha", "mike", "zeta"}
	for i, w := range want {
		if groups[i].Name != w {
			t.Fatalf("order[%d] = %q, want %q", i, groups[i].Name, w)
		}
	}

	g := groups[0]
	if _, err := store.SubmitGrade(ctx, g.ID, "p1", presenterAt(50), thesisAt(50)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	done, err := store.ListGroups(ctx, ListOpts{Status: StatusCompleted})
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if len(done) != 1 || done[0].Name != "alpha" {
		t.Fatalf("completed filter = %+v, want just alpha", done)
	}
}

func TestStoreIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	g := newTestGroup(t, store)

	got, err := store.GetGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Members[0] = "Meowth"
	again, _ := store.GetGroup(ctx, g.ID)
	if again.Members[0] != "Jessie" {
		t.Fatal("store state mutated through a returned copy")
	}
}
