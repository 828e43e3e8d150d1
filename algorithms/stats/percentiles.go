package stats

import (
	"fmt"
	"math"
	"sort"
)

// PercentileMethod represents different methods for calculating percentiles
type PercentileMethod int

const (
	// Linear interpolation between closest ranks (numpy/scipy default, R-7)
	Linear PercentileMethod = iota

	// Lower value of the two closest ranks
	Lower

	// Higher value of the two closest ranks
	Higher

	// Midpoint of the two closest ranks
	Midpoint
)

// QuartileInfo contains quartile-specific information
type QuartileInfo struct {
	Q1  float64 `json:"q1"`  // First quartile (25th percentile)
	Q2  float64 `json:"q2"`  // Second quartile (50th percentile, median)
	Q3  float64 `json:"q3"`  // Third quartile (75th percentile)
	IQR float64 `json:"iqr"` // Interquartile range (Q3 - Q1)
}

// Percentiles computes order statistics of amplitude traces. The noise
// floor of a spectrum analyzer trace is read as its first quartile.
type Percentiles struct {
	method PercentileMethod
}

// NewPercentiles creates a new percentile calculator with linear interpolation
func NewPercentiles() *Percentiles {
	return &Percentiles{method: Linear}
}

// NewPercentilesWithMethod creates a percentile calculator with the given method
func NewPercentilesWithMethod(method PercentileMethod) *Percentiles {
	return &Percentiles{method: method}
}

// CalculatePercentile computes a single percentile value (0..100).
// NaN samples are ignored.
func (p *Percentiles) CalculatePercentile(data []float64, percentile float64) (float64, error) {
	if percentile < 0 || percentile > 100 {
		return 0, fmt.Errorf("percentile must be between 0 and 100, got %v", percentile)
	}

	values := sortedFinite(data)
	if len(values) == 0 {
		return 0, fmt.Errorf("empty data")
	}

	return p.calculatePercentile(values, percentile/100.0), nil
}

// Quartiles returns Q1, median, Q3 and the interquartile range
func (p *Percentiles) Quartiles(data []float64) (QuartileInfo, error) {
	values := sortedFinite(data)
	if len(values) == 0 {
		return QuartileInfo{}, fmt.Errorf("empty data")
	}

	q1 := p.calculatePercentile(values, 0.25)
	q2 := p.calculatePercentile(values, 0.50)
	q3 := p.calculatePercentile(values, 0.75)

	return QuartileInfo{Q1: q1, Q2: q2, Q3: q3, IQR: q3 - q1}, nil
}

func sortedFinite(data []float64) []float64 {
	values := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	sort.Float64s(values)
	return values
}

func (p *Percentiles) calculatePercentile(sortedData []float64, q float64) float64 {
	if len(sortedData) == 1 {
		return sortedData[0]
	}

	switch p.method {
	case Lower:
		return p.lowerValue(sortedData, q)
	case Higher:
		return p.higherValue(sortedData, q)
	case Midpoint:
		return p.midpointValue(sortedData, q)
	default:
		return p.linearInterpolation(sortedData, q)
	}
}

// rank returns the 0-based fractional position h = (n-1)q and its bounds
func rank(n int, q float64) (h float64, lower, upper int) {
	h = float64(n-1) * q
	lower = int(math.Floor(h))
	upper = int(math.Ceil(h))
	if upper > n-1 {
		upper = n - 1
	}
	if lower > n-1 {
		lower = n - 1
	}
	return h, lower, upper
}

// linearInterpolation implements the numpy default
func (p *Percentiles) linearInterpolation(data []float64, q float64) float64 {
	h, lower, upper := rank(len(data), q)
	if lower == upper {
		return data[lower]
	}
	fraction := h - float64(lower)
	return data[lower] + fraction*(data[upper]-data[lower])
}

func (p *Percentiles) lowerValue(data []float64, q float64) float64 {
	_, lower, _ := rank(len(data), q)
	return data[lower]
}

func (p *Percentiles) higherValue(data []float64, q float64) float64 {
	_, _, upper := rank(len(data), q)
	return data[upper]
}

func (p *Percentiles) midpointValue(data []float64, q float64) float64 {
	_, lower, upper := rank(len(data), q)
	return (data[lower] + data[upper]) / 2.0
}
