package group

// Score maps a rubric criterion ID to the points awarded for it.
type Score map[string]float64

// PanelGrade is one panelist's evaluation of one group. There is at most one
// per (group, panelist) pair; resubmission replaces both score maps.
type PanelGrade struct {
	PanelistID      string `json:"panelistId"`
	PresenterScores Score  `json:"presenterScores"`
	ThesisScores    Score  `json:"thesisScores"`
	Submitted       bool   `json:"submitted"`
}

// Status is a group's grading progress. The wire values match what the
// frontend displays.
type Status string

const (
	StatusNotStarted Status = "Not Started"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Group is a student capstone group and its panel assignment. The three panel
// slots (chair, internal, external) may each be unset. Status is derived from
// the grades and recomputed on every grade or assignment write.
type Group struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	ProjectTitle    string       `json:"projectTitle"`
	Members         []string     `json:"members"`
	Panel1ID        string       `json:"panel1Id,omitempty"`
	Panel2ID        string       `json:"panel2Id,omitempty"`
	ExternalPanelID string       `json:"externalPanelId,omitempty"`
	Status          Status       `json:"status"`
	Grades          []PanelGrade `json:"grades"`
}

// AssignedPanelists returns the group's panel slots with unset ones dropped.
func (g Group) AssignedPanelists() []string {
	out := make([]string, 0, 3)
	for _, id := range []string{g.Panel1ID, g.Panel2ID, g.ExternalPanelID} {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// GradeFor returns the group's grade from the given panelist, if any.
func (g Group) GradeFor(panelistID string) (PanelGrade, bool) {
	for _, gr := range g.Grades {
		if gr.PanelistID == panelistID {
			return gr, true
		}
	}
	return PanelGrade{}, false
}
