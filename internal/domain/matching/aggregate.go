package matching

import "sort"

// Aggregate sums value*weight over the sub-scores and returns them ordered by
// contribution, highest first. Equal contributions keep a fixed dimension order.
func Aggregate(subs []SubScore) (float64, []SubScore) {
	ordered := make([]SubScore, len(subs))
	copy(ordered, subs)

	score := 0.0
	for _, s := range ordered {
		score += clamp01(s.Value) * s.Weight
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		ci, cj := ordered[i].Contribution(), ordered[j].Contribution()
		if ci != cj {
			return ci > cj
		}
		return dimensionOrder[ordered[i].Dimension] < dimensionOrder[ordered[j].Dimension]
	})

	return clamp01(score), ordered
}
