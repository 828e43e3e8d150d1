package common

import "math"

// MilliwattToDB converts a power in mW to dBm. Zero power maps to -Inf and
// negative power to NaN, the same as log10 itself.
func MilliwattToDB(mw float64) float64 {
	return 10 * math.Log10(mw)
}

// DBToMilliwatt converts dBm back to mW
func DBToMilliwatt(db float64) float64 {
	return math.Pow(10, db/10)
}

// MilliwattsToDB converts every element; the input is left untouched
func MilliwattsToDB(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = MilliwattToDB(v)
	}
	return out
}

// DBsToMilliwatt converts every element; the input is left untouched
func DBsToMilliwatt(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = DBToMilliwatt(v)
	}
	return out
}
