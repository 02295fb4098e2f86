package group

// ComputeStatus derives a group's grading status from its assigned panelists
// and the grades on record. A group is Completed only when it has at least one
// assigned panelist and every assigned panelist has a submitted grade; the
// non-empty guard keeps an unassigned group from being vacuously complete.
// Grades from panelists who are no longer assigned still count toward the
// submitted set but cannot complete a group on their own.
func ComputeStatus(assigned []string, grades []PanelGrade) Status {
	submitted := make(map[string]struct{}, len(grades))
	for _, g := range grades {
		if g.Submitted {
			submitted[g.PanelistID] = struct{}{}
		}
	}

	if len(assigned) > 0 {
		all := true
		for _, id := range assigned {
			if _, ok := submitted[id]; !ok {
				all = false
				break
			}
		}
		if all {
			return StatusCompleted
		}
	}
	if len(submitted) > 0 {
		return StatusInProgress
	}
	return StatusNotStarted
}
