package group

import "context"

// ListOpts filters group listings.
type ListOpts struct {
	Status Status // optional; zero value lists all
}

// BulkResult reports the outcome of a bulk import.
type BulkResult struct {
	Added   int `json:"addedCount"`
	Skipped int `json:"skippedCount"`
}

// Store is the persistence boundary for groups and their panel grades. Both
// implementations (in-memory and SQL) guarantee that SubmitGrade's upsert and
// the status recompute are atomic: concurrent submissions from two panelists
// cannot leave the stored status stale relative to the grade set.
type Store interface {
	CreateGroup(ctx context.Context, g Group) (Group, error)
	GetGroup(ctx context.Context, id string) (Group, error)
	ListGroups(ctx context.Context, opts ListOpts) ([]Group, error) // name order, grades embedded
	// UpdateGroup replaces the group's name, title, members and panel
	// assignment, then recomputes status from the new assignment against the
	// existing grades. The incoming Status and Grades fields are ignored.
	UpdateGroup(ctx context.Context, g Group) (Group, error)
	DeleteGroup(ctx context.Context, id string) error
	DeleteAllGroups(ctx context.Context) error
	BulkCreateGroups(ctx context.Context, groups []Group) (BulkResult, error)

	// SubmitGrade upserts the (groupID, panelistID) grade with both score maps
	// replaced and Submitted set, recomputes the group's status in the same
	// critical section, and returns the updated group with its full grade list.
	SubmitGrade(ctx context.Context, groupID, panelistID string, presenter, thesis Score) (Group, error)
}
