// Package resonance characterizes a resonant circuit from a swept amplitude
// response: peak, -3 dB / -6 dB crossings, bandwidth, Q and rising-edge slope.
package resonance

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-rf/algorithms/common"
	"github.com/RyanBlaney/sonido-rf/logging"
	"github.com/RyanBlaney/sonido-rf/series"
)

// MinPoints is the smallest sweep that can hold a peak with a crossing on
// each side
const MinPoints = 3

const (
	halfPowerDrop    = 3.0
	quarterPowerDrop = 6.0
)

var (
	ErrTooFewPoints = errors.New("series has too few points")
	ErrNoPeak       = errors.New("series has no distinguishable peak")
)

// Analyzer locates half-power points on frequency sweeps
type Analyzer struct {
	config    *Config
	overrides map[Point]float64
	logger    logging.Logger
}

// Option customizes an Analyzer
type Option func(*Analyzer)

// WithOverride pins a point to an operator-chosen frequency; the matching
// search is skipped and the point scores 1
func WithOverride(p Point, frequency float64) Option {
	return func(a *Analyzer) {
		a.overrides[p] = frequency
	}
}

// WithLogger replaces the component logger
func WithLogger(logger logging.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAnalyzer creates an analyzer; a nil config means DefaultConfig
func NewAnalyzer(config *Config, opts ...Option) *Analyzer {
	if config == nil {
		config = DefaultConfig()
	}

	a := &Analyzer{
		config:    config,
		overrides: make(map[Point]float64),
		logger: logging.WithFields(logging.Fields{
			"component": "resonance_analyzer",
		}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the full characterization on one sweep
func (a *Analyzer) Analyze(s *series.Series) (*Result, error) {
	if err := a.config.Validate(); err != nil {
		return nil, err
	}
	if s.Len() < MinPoints {
		return nil, fmt.Errorf("%w: %d < %d", ErrTooFewPoints, s.Len(), MinPoints)
	}
	if s.IsFlat() {
		return nil, ErrNoPeak
	}

	logger := a.logger.WithFields(logging.Fields{
		"series": s.Name(),
		"mode":   a.config.Mode.String(),
	})

	if a.config.SmoothWidth > 1 {
		smoothed, err := series.Smooth(s, a.config.SmoothWidth)
		if err != nil {
			return nil, err
		}
		s = smoothed
	}

	// smoothing spreads NaN over the whole trace
	peak, i := s.Max()
	if i < 0 {
		return nil, ErrNoPeak
	}
	result := &Result{
		Name:      s.Name(),
		FMax:      peak.Frequency,
		PeakLevel: peak.Amplitude,
		F3:        math.NaN(),
		F4:        math.NaN(),
		BW6:       math.NaN(),
		A:         math.NaN(),
		score:     make(Score),
		threshold: a.config.ScoreThreshold,
	}

	result.F1, result.F2 = a.locate(result, s, peak, halfPowerDrop, F1, F2)
	if a.config.SixDB {
		result.F3, result.F4 = a.locate(result, s, peak, quarterPowerDrop, F3, F4)
		result.BW6 = result.F4 - result.F3
	}

	result.F0 = (result.F1 + result.F2) / 2
	result.BW = result.F2 - result.F1
	result.Q = quality(result.F0, result.BW)

	if a.config.Slope {
		edge := s.Between(result.F1, result.FMax)
		result.A, _, _ = common.LinRegression(edge.Frequencies(), edge.Amplitudes())
	}

	for _, p := range result.LowConfidence() {
		logger.Warn("Low confidence half-power point, check the sweep density and edges", logging.Fields{
			"point": string(p),
			"score": result.score[p],
		})
	}

	logger.Debug("Resonance analysis completed", logging.Fields{
		"fmax": result.FMax,
		"f0":   result.F0,
		"bw":   result.BW,
		"q":    result.Q,
	})

	return result, nil
}

// crossings returns the best low-side and high-side matches for peak - drop
func (a *Analyzer) crossings(s *series.Series, peak series.Point, drop float64) (lo, hi Match) {
	level := peak.Amplitude - drop

	if a.config.Mode == WholeSeries {
		ranked := NearestTo(s, level)
		lo, hi = ranked[0], ranked[1]
		if hi.Frequency < lo.Frequency {
			lo, hi = hi, lo
		}
		return lo, hi
	}

	lower, upper := s.Split(peak.Frequency)
	lo = NearestTo(lower, level)[0]

	// peak on the last sample: nothing above it, report the peak itself so
	// the score (1 - drop) flags the truncated sweep
	if upper.Len() == 0 {
		return lo, Match{Frequency: peak.Frequency, Amplitude: peak.Amplitude, Distance: drop}
	}
	hi = NearestTo(upper, level)[0]
	return lo, hi
}

// locate fills one low/high pair, skipping the search when both are pinned
func (a *Analyzer) locate(r *Result, s *series.Series, peak series.Point, drop float64, low, high Point) (float64, float64) {
	var lo, hi Match
	_, pinnedLow := a.overrides[low]
	_, pinnedHigh := a.overrides[high]
	if !pinnedLow || !pinnedHigh {
		lo, hi = a.crossings(s, peak, drop)
	}
	return a.resolve(r, low, lo), a.resolve(r, high, hi)
}

func (a *Analyzer) resolve(r *Result, p Point, m Match) float64 {
	if f, ok := a.overrides[p]; ok {
		r.score[p] = 1
		return f
	}
	r.score[p] = 1 - math.Abs(m.Distance)
	return m.Frequency
}

// quality is f0 / bw with the zero-bandwidth case spelled out: a collapsed
// bandwidth gives ±Inf, or NaN when f0 is also zero
func quality(f0, bw float64) float64 {
	if bw == 0 {
		if f0 == 0 || math.IsNaN(f0) {
			return math.NaN()
		}
		return math.Inf(int(math.Copysign(1, f0)))
	}
	return f0 / bw
}
