package group

import "github.com/cs-expo/expograde/internal/rubric"

// validateSubmission runs the preconditions shared by every store: the
// panelist must hold one of the group's panel slots and both rubrics must be
// complete and in range. Nothing is mutated when it fails.
func validateSubmission(g Group, panelistID string, presenter, thesis Score) error {
	assigned := false
	for _, id := range g.AssignedPanelists() {
		if id == panelistID {
			assigned = true
			break
		}
	}
	if !assigned {
		return ErrNotAssigned
	}
	if err := rubric.Validate(rubric.BestPresenter, presenter); err != nil {
		return err
	}
	if err := rubric.Validate(rubric.BestThesis, thesis); err != nil {
		return err
	}
	return nil
}

// upsertGrade replaces the panelist's existing grade or appends a new one.
func upsertGrade(grades []PanelGrade, ng PanelGrade) []PanelGrade {
	for i, gr := range grades {
		if gr.PanelistID == ng.PanelistID {
			grades[i] = ng
			return grades
		}
	}
	return append(grades, ng)
}
