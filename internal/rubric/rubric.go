package rubric

import "fmt"

// Item is one weighted criterion of a rubric. Weight is the maximum number of
// points the criterion can award; the sum of weights is the rubric's max score.
type Item struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
	Levels      []Level `json:"levels,omitempty"`
}

// Level is a scoring band shown to panelists (display metadata only; the
// aggregation math never reads it).
type Level struct {
	Points      string  `json:"points"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// Max returns the rubric's maximum achievable score.
func Max(items []Item) float64 {
	total := 0.0
	for _, it := range items {
		total += it.Weight
	}
	return total
}

// Validate checks that scores covers every criterion and that each awarded
// score is within [0, weight]. A submission with gaps or out-of-range values
// is rejected before it reaches storage.
func Validate(items []Item, scores map[string]float64) error {
	for _, it := range items {
		v, ok := scores[it.ID]
		if !ok {
			return &IncompleteError{Criterion: it.ID}
		}
		if v < 0 || v > it.Weight {
			return &OutOfRangeError{Criterion: it.ID, Score: v, Weight: it.Weight}
		}
	}
	return nil
}

// IncompleteError reports a submission missing a criterion score.
type IncompleteError struct {
	Criterion string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("rubric incomplete: no score for criterion %q", e.Criterion)
}

// OutOfRangeError reports a score outside a criterion's weight.
type OutOfRangeError struct {
	Criterion string
	Score     float64
	Weight    float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("score %.2f for criterion %q out of range [0, %.0f]", e.Score, e.Criterion, e.Weight)
}
