package group

import "github.com/cs-expo/expograde/internal/rubric"

// PassingScore is the inclusive threshold (in percent) for a "Passed" remark.
const PassingScore = 75.0

// PercentageFor converts raw criterion scores into a percentage of the
// rubric's maximum. Awarded values are clamped to [0, weight] so a malformed
// record can never push a percentage past 100. An empty rubric yields 0.
func PercentageFor(items []rubric.Item, s Score) float64 {
	max := rubric.Max(items)
	if max <= 0 {
		return 0
	}
	raw := 0.0
	for _, it := range items {
		v := s[it.ID]
		if v < 0 {
			v = 0
		}
		if v > it.Weight {
			v = it.Weight
		}
		raw += v
	}
	return (raw / max) * 100
}

// FinalScore is the conflated pass/fail number shown on the dashboard: each
// panelist's presenter and thesis percentages are averaged together, then
// averaged across panelists. It deliberately folds the two award categories
// into a single remark score; award ranking uses the per-category averages
// instead, and the two must stay separate. Groups that are not Completed, or
// have no grades, score 0.
func FinalScore(g Group) float64 {
	if g.Status != StatusCompleted || len(g.Grades) == 0 {
		return 0
	}
	total := 0.0
	for _, gr := range g.Grades {
		total += PercentageFor(rubric.BestPresenter, gr.PresenterScores)
		total += PercentageFor(rubric.BestThesis, gr.ThesisScores)
	}
	return total / float64(len(g.Grades)*2)
}

// Remark maps a final score to its pass/fail label. The threshold is
// inclusive: exactly 75 passes.
func Remark(finalScore float64) string {
	if finalScore >= PassingScore {
		return "Passed"
	}
	return "Failed"
}

// PresenterAverage averages the presenter-rubric percentage across all of the
// group's grades. Kept independent from FinalScore: the masterlist and award
// ranking need per-category numbers, not the conflated remark score.
func PresenterAverage(g Group) float64 {
	return categoryAverage(g, rubric.BestPresenter, func(gr PanelGrade) Score { return gr.PresenterScores })
}

// ThesisAverage averages the thesis-rubric percentage across all of the
// group's grades.
func ThesisAverage(g Group) float64 {
	return categoryAverage(g, rubric.BestThesis, func(gr PanelGrade) Score { return gr.ThesisScores })
}

func categoryAverage(g Group, items []rubric.Item, pick func(PanelGrade) Score) float64 {
	if len(g.Grades) == 0 {
		return 0
	}
	total := 0.0
	for _, gr := range g.Grades {
		total += PercentageFor(items, pick(gr))
	}
	return total / float64(len(g.Grades))
}
