package babi_dataset

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// LengthStats summarizes story lengths against the length limit.
type LengthStats struct {
	Total        int
	Limit        int
	Exceeding    int
	ExceedingPct float64
	Remaining    int
	Max          int
	Mean         float64
	Median       float64
}

// ComputeLengthStats
// Summarizes `lengths`. With no limit, the effective limit is the longest
// story, so nothing counts as exceeding it.
func ComputeLengthStats(lengths []int, limit *int) LengthStats {
	stats := LengthStats{Total: len(lengths)}
	if len(lengths) == 0 {
		if limit != nil {
			stats.Limit = *limit
		}
		return stats
	}

	sorted := make([]float64, len(lengths))
	for idx, length := range lengths {
		sorted[idx] = float64(length)
	}
	sort.Float64s(sorted)
	stats.Max = int(floats.Max(sorted))
	stats.Mean = stat.Mean(sorted, nil)
	stats.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)

	if limit != nil {
		stats.Limit = *limit
	} else {
		stats.Limit = stats.Max
	}
	for _, length := range lengths {
		if length > stats.Limit {
			stats.Exceeding++
		}
	}
	stats.Remaining = stats.Total - stats.Exceeding
	stats.ExceedingPct = 100.0 * float64(stats.Exceeding) /
		float64(stats.Total)
	return stats
}
