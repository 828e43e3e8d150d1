package resonance

import (
	"fmt"
	"maps"
	"math"
	"strings"
)

// DefaultScoreThreshold marks the confidence below which a crossing is
// suspect: the sweep is too sparse near the crossing or the crossing fell
// off the edge of the sweep.
const DefaultScoreThreshold = 0.95

// Point names one of the half-power frequencies
type Point string

const (
	F1 Point = "f1" // -3 dB, low side
	F2 Point = "f2" // -3 dB, high side
	F3 Point = "f3" // -6 dB, low side
	F4 Point = "f4" // -6 dB, high side
)

// Score maps each located point to 1 - |distance from the queried level|.
// 1.0 means a sample sits exactly on the level.
type Score map[Point]float64

// Result is a snapshot of one resonance analysis
type Result struct {
	Name      string  `yaml:"name" json:"name"`
	FMax      float64 `yaml:"fmax" json:"fmax"`             // frequency of the peak sample
	PeakLevel float64 `yaml:"peak_level" json:"peak_level"` // amplitude of the peak sample, dB
	F1        float64 `yaml:"f1" json:"f1"`
	F2        float64 `yaml:"f2" json:"f2"`
	F3        float64 `yaml:"f3" json:"f3"` // NaN unless the -6 dB search ran
	F4        float64 `yaml:"f4" json:"f4"` // NaN unless the -6 dB search ran
	F0        float64 `yaml:"f0" json:"f0"` // (F1 + F2) / 2
	BW        float64 `yaml:"bw" json:"bw"` // F2 - F1
	Q         float64 `yaml:"q" json:"q"`   // F0 / BW
	BW6       float64 `yaml:"bw6" json:"bw6"`
	A         float64 `yaml:"a" json:"a"` // rising-edge slope, dB per frequency unit

	score     Score
	threshold float64
}

// Score returns the confidence of one point, NaN if it was not located
func (r *Result) Score(p Point) float64 {
	if v, ok := r.score[p]; ok {
		return v
	}
	return math.NaN()
}

// Scores returns a copy of every confidence value
func (r *Result) Scores() Score {
	out := make(Score, len(r.score))
	maps.Copy(out, r.score)
	return out
}

// LowConfidence lists the points scoring under the analyzer's threshold, in
// F1..F4 order
func (r *Result) LowConfidence() []Point {
	var out []Point
	for _, p := range []Point{F1, F2, F3, F4} {
		if v, ok := r.score[p]; ok && (v < r.threshold || math.IsNaN(v)) {
			out = append(out, p)
		}
	}
	return out
}

// Field is one labelled value of Describe
type Field struct {
	Key   string
	Value float64
}

// Describe returns the summary values in display order
func (r *Result) Describe() []Field {
	fields := []Field{
		{"f1", r.F1},
		{"f2", r.F2},
	}
	if !math.IsNaN(r.F3) || !math.IsNaN(r.F4) {
		fields = append(fields, Field{"f3", r.F3}, Field{"f4", r.F4})
	}
	fields = append(fields,
		Field{"f0", r.F0},
		Field{"fmax", r.FMax},
		Field{"BW", r.BW},
	)
	if !math.IsNaN(r.BW6) {
		fields = append(fields, Field{"BW6", r.BW6})
	}
	fields = append(fields, Field{"Q", r.Q})
	if !math.IsNaN(r.A) {
		fields = append(fields, Field{"a", r.A})
	}
	return fields
}

func (r *Result) String() string {
	var b strings.Builder
	if r.Name != "" {
		fmt.Fprintf(&b, "%s\n", r.Name)
	}
	for _, f := range r.Describe() {
		fmt.Fprintf(&b, "  %-5s %g\n", f.Key, f.Value)
	}
	for _, p := range []Point{F1, F2, F3, F4} {
		if v, ok := r.score[p]; ok {
			fmt.Fprintf(&b, "  score[%s] %.4f\n", p, v)
		}
	}
	return b.String()
}
