package group

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// memoryStore keeps everything behind one mutex; the lock spans the grade
// upsert and the status recompute so concurrent submissions for the same group
// cannot race to a stale status.
type memoryStore struct {
	mu     sync.RWMutex
	groups map[string]Group
}

// NewInMemoryStore returns a Store backed by process memory. Used in tests and
// for single-node demos without a database.
func NewInMemoryStore() Store {
	return &memoryStore{groups: map[string]Group{}}
}

func (m *memoryStore) CreateGroup(_ context.Context, g Group) (Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.groups {
		if existing.Name == g.Name {
			return Group{}, ErrDuplicateName
		}
	}
	if g.Panel1ID != "" && g.Panel1ID == g.Panel2ID {
		return Group{}, ErrSamePanelist
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.Members == nil {
		g.Members = []string{}
	}
	g.Grades = []PanelGrade{}
	g.Status = StatusNotStarted
	m.groups[g.ID] = g
	return clone(g), nil
}

func (m *memoryStore) GetGroup(_ context.Context, id string) (Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[id]
	if !ok {
		return Group{}, ErrNotFound
	}
	return clone(g), nil
}

func (m *memoryStore) ListGroups(_ context.Context, opts ListOpts) ([]Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Group, 0, len(m.groups))
	for _, g := range m.groups {
		if opts.Status != "" && g.Status != opts.Status {
			continue
		}
		out = append(out, clone(g))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryStore) UpdateGroup(_ context.Context, g Group) (Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.groups[g.ID]
	if !ok {
		return Group{}, ErrNotFound
	}
	if g.Panel1ID != "" && g.Panel1ID == g.Panel2ID {
		return Group{}, ErrSamePanelist
	}
	cur.Name = g.Name
	cur.ProjectTitle = g.ProjectTitle
	cur.Members = g.Members
	if cur.Members == nil {
		cur.Members = []string{}
	}
	cur.Panel1ID = g.Panel1ID
	cur.Panel2ID = g.Panel2ID
	cur.ExternalPanelID = g.ExternalPanelID
	// Reassignment can regress a Completed group; status always follows the
	// live assignment, never the caller's value.
	cur.Status = ComputeStatus(cur.AssignedPanelists(), cur.Grades)
	m.groups[cur.ID] = cur
	return clone(cur), nil
}

func (m *memoryStore) DeleteGroup(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[id]; !ok {
		return ErrNotFound
	}
	delete(m.groups, id)
	return nil
}

func (m *memoryStore) DeleteAllGroups(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups = map[string]Group{}
	return nil
}

func (m *memoryStore) BulkCreateGroups(_ context.Context, groups []Group) (BulkResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res BulkResult
	taken := make(map[string]struct{}, len(m.groups))
	for _, g := range m.groups {
		taken[g.Name] = struct{}{}
	}
	for _, g := range groups {
		if _, ok := taken[g.Name]; ok {
			res.Skipped++
			continue
		}
		if g.ProjectTitle == "" {
			g.ProjectTitle = "TBA"
		}
		g.ID = uuid.NewString()
		g.Members = []string{}
		g.Grades = []PanelGrade{}
		g.Status = StatusNotStarted
		g.Panel1ID, g.Panel2ID, g.ExternalPanelID = "", "", ""
		m.groups[g.ID] = g
		taken[g.Name] = struct{}{}
		res.Added++
	}
	return res, nil
}

func (m *memoryStore) SubmitGrade(_ context.Context, groupID, panelistID string, presenter, thesis Score) (Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[groupID]
	if !ok {
		return Group{}, ErrNotFound
	}
	if err := validateSubmission(g, panelistID, presenter, thesis); err != nil {
		return Group{}, err
	}
	g.Grades = upsertGrade(g.Grades, PanelGrade{
		PanelistID:      panelistID,
		PresenterScores: presenter,
		ThesisScores:    thesis,
		Submitted:       true,
	})
	g.Status = ComputeStatus(g.AssignedPanelists(), g.Grades)
	m.groups[groupID] = g
	return clone(g), nil
}

// clone deep-copies a group so callers cannot mutate store state through the
// returned slices and maps.
func clone(g Group) Group {
	out := g
	out.Members = append([]string(nil), g.Members...)
	out.Grades = make([]PanelGrade, len(g.Grades))
	for i, gr := range g.Grades {
		cp := gr
		cp.PresenterScores = cloneScore(gr.PresenterScores)
		cp.ThesisScores = cloneScore(gr.ThesisScores)
		out.Grades[i] = cp
	}
	return out
}

func cloneScore(s Score) Score {
	if s == nil {
		return nil
	}
	out := make(Score, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
