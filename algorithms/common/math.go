package common

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic statistical helpers shared by the analysis packages, backed by gonum

// Mean calculates the arithmetic mean of a slice using gonum.
// An empty slice has no mean and yields NaN.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	return stat.Mean(data, nil)
}

// Percentile calculates the p-th percentile (p between 0 and 1) of the
// empirical distribution
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 || p < 0 || p > 1 {
		return math.NaN()
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// LinRegression performs ordinary least squares and returns slope, intercept, r².
// Fewer than two points cannot define a line; all three results are NaN then.
func LinRegression(x, y []float64) (slope, intercept, rSquared float64) {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN(), math.NaN(), math.NaN()
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	rSquared = stat.RSquared(x, y, nil, alpha, beta)
	if math.IsInf(rSquared, 0) {
		rSquared = math.NaN()
	}

	return beta, alpha, rSquared
}

// ArgMax returns the index of the first occurrence of the maximum, skipping
// NaN, or -1 when data holds no number
func ArgMax(data []float64) int {
	best := -1
	for i, v := range data {
		if math.IsNaN(v) {
			continue
		}
		if best < 0 || v > data[best] {
			best = i
		}
	}
	return best
}

// IsFlat reports whether every non-NaN value in data is identical. Data with
// no numbers at all is flat.
func IsFlat(data []float64) bool {
	numbers := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) {
			numbers = append(numbers, v)
		}
	}
	if len(numbers) == 0 {
		return true
	}
	return floats.Max(numbers) == floats.Min(numbers)
}
