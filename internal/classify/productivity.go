package classify

import "github.com/runnerr0/retrace/internal/storage"

// ProductivityScore maps a set of (category, duration) pairs to a single
// score in [0,1]: the duration-weighted average of the categories' fixed
// weights. An empty or zero-duration input yields 0.
func ProductivityScore(breakdown []storage.CategoryDuration) float64 {
	var weighted float64
	var total int64

	for _, cd := range breakdown {
		if cd.Seconds <= 0 {
			continue
		}
		cat := ParseCategory(cd.Category)
		weighted += cat.Weight() * float64(cd.Seconds)
		total += cd.Seconds
	}

	if total == 0 {
		return 0
	}

	score := weighted / float64(total)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
