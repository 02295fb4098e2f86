package group

import "errors"

var (
	// ErrNotFound is returned when a referenced group does not exist.
	ErrNotFound = errors.New("group not found")

	// ErrDuplicateName is returned when creating a group whose name is taken.
	ErrDuplicateName = errors.New("group name already exists")

	// ErrNotAssigned is returned when a panelist submits a grade for a group
	// whose panel they do not sit on. Rejected before any mutation.
	ErrNotAssigned = errors.New("panelist is not assigned to this group")

	// ErrSamePanelist is returned when a group update would put the same
	// person in both the chair and internal panel slots.
	ErrSamePanelist = errors.New("chair and internal panel cannot be the same person")
)
