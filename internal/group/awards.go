package group

import "sort"

// AwardEntry is one ranked group in an award category.
type AwardEntry struct {
	GroupID      string  `json:"groupId"`
	GroupName    string  `json:"groupName"`
	ProjectTitle string  `json:"projectTitle"`
	Score        float64 `json:"score"`
}

// Awards holds the top-ranked groups for the two award categories.
type Awards struct {
	TopPresenters []AwardEntry `json:"topPresenters"`
	TopTheses     []AwardEntry `json:"topTheses"`
}

const awardListSize = 3

// RankAwards ranks completed groups by per-category average and returns the
// top three of each. Groups that are not Completed, or that somehow carry no
// grades, are excluded outright rather than ranked at zero. Ties keep the
// input order; callers pass groups in the store's name order, so equal scores
// resolve alphabetically.
func RankAwards(groups []Group) Awards {
	presenters := make([]AwardEntry, 0, len(groups))
	theses := make([]AwardEntry, 0, len(groups))

	for _, g := range groups {
		if g.Status != StatusCompleted || len(g.Grades) == 0 {
			continue
		}
		presenters = append(presenters, AwardEntry{
			GroupID:      g.ID,
			GroupName:    g.Name,
			ProjectTitle: g.ProjectTitle,
			Score:        PresenterAverage(g),
		})
		theses = append(theses, AwardEntry{
			GroupID:      g.ID,
			GroupName:    g.Name,
			ProjectTitle: g.ProjectTitle,
			Score:        ThesisAverage(g),
		})
	}

	sort.SliceStable(presenters, func(i, j int) bool { return presenters[i].Score > presenters[j].Score })
	sort.SliceStable(theses, func(i, j int) bool { return theses[i].Score > theses[j].Score })

	if len(presenters) > awardListSize {
		presenters = presenters[:awardListSize]
	}
	if len(theses) > awardListSize {
		theses = theses[:awardListSize]
	}
	return Awards{TopPresenters: presenters, TopTheses: theses}
}
