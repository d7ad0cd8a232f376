package experiment

// MeanRelativeError averages (cost-optimal)/optimal over the run results.
// Returns 0 when no optimum is known or the result set is empty.
func MeanRelativeError(costs []float64, optimal *float64) float64 {
	if optimal == nil || *optimal <= 0 || len(costs) == 0 {
		return 0
	}
	var sum float64
	for _, c := range costs {
		sum += (c - *optimal) / *optimal
	}
	return sum / float64(len(costs))
}

// BestCost returns the minimum cost over the run results, or 0 when empty.
func BestCost(costs []float64) float64 {
	if len(costs) == 0 {
		return 0
	}
	best := costs[0]
	for _, c := range costs[1:] {
		if c < best {
			best = c
		}
	}
	return best
}
