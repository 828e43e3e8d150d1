package resonance

import (
	"math"
	"sort"

	"github.com/RyanBlaney/sonido-rf/series"
)

// Match is one sample annotated with its distance from a target level
type Match struct {
	Frequency float64 `json:"frequency"`
	Amplitude float64 `json:"amplitude"`
	Distance  float64 `json:"distance"` // |amplitude - target|
}

// Nearest ranks every sample of s by how close it sits to the series' own
// peak minus drop dB. The closest match comes first; ties keep index order.
func Nearest(s *series.Series, drop float64) []Match {
	peak, i := s.Max()
	if i < 0 {
		return []Match{}
	}
	return NearestTo(s, peak.Amplitude-drop)
}

// NearestTo ranks every sample of s by its distance from an absolute level.
// A linear scan is used because sweeps are not monotonic away from the peak.
func NearestTo(s *series.Series, level float64) []Match {
	matches := make([]Match, s.Len())
	for i := range matches {
		p := s.At(i)
		matches[i] = Match{
			Frequency: p.Frequency,
			Amplitude: p.Amplitude,
			Distance:  math.Abs(p.Amplitude - level),
		}
	}

	// NaN amplitudes (dropped samples) sort last
	sort.SliceStable(matches, func(a, b int) bool {
		da, db := matches[a].Distance, matches[b].Distance
		if math.IsNaN(db) {
			return !math.IsNaN(da)
		}
		return da < db
	})
	return matches
}
