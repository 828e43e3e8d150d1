// Package snr estimates signal-to-noise ratios of spectrum analyzer traces.
// The noise floor of a trace is its first quartile and the signal is read at,
// and averaged around, a probe frequency.
package snr

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-rf/algorithms/common"
	"github.com/RyanBlaney/sonido-rf/algorithms/stats"
	"github.com/RyanBlaney/sonido-rf/logging"
	"github.com/RyanBlaney/sonido-rf/series"
)

const (
	// DefaultWindow is the half-width of the averaging band around the probe
	// frequency, in the trace's frequency unit
	DefaultWindow = 0.02

	// DefaultNoisePercentile reads the noise floor as the first quartile
	DefaultNoisePercentile = 25.0
)

var ErrEmptySeries = errors.New("series is empty")

// Config holds describer settings
type Config struct {
	Window          float64 `yaml:"window" json:"window"`                     // averaging half-width around the probe
	NoisePercentile float64 `yaml:"noise_percentile" json:"noise_percentile"` // 0..100
}

// DefaultConfig returns a first-quartile noise floor and a ±0.02 band
func DefaultConfig() *Config {
	return &Config{
		Window:          DefaultWindow,
		NoisePercentile: DefaultNoisePercentile,
	}
}

// Validate checks the band and percentile
func (c *Config) Validate() error {
	if c.Window < 0 || math.IsNaN(c.Window) {
		return fmt.Errorf("window must be non-negative, got %v", c.Window)
	}
	if c.NoisePercentile < 0 || c.NoisePercentile > 100 || math.IsNaN(c.NoisePercentile) {
		return fmt.Errorf("noise_percentile must be within 0..100, got %v", c.NoisePercentile)
	}
	return nil
}

// Stat is the signal-to-noise summary of one trace
type Stat struct {
	Name       string  `yaml:"name" json:"name"`
	Probe      float64 `yaml:"probe" json:"probe"`             // requested frequency
	Frequency  float64 `yaml:"frequency" json:"frequency"`     // sample frequency nearest the probe
	AtFreq     float64 `yaml:"at_freq" json:"at_freq"`         // amplitude at Frequency
	Signal     float64 `yaml:"signal" json:"signal"`           // mean amplitude within Probe ± Window, NaN if no sample falls inside
	NoiseFloor float64 `yaml:"noise_floor" json:"noise_floor"` // NoisePercentile of the whole trace
	SN         float64 `yaml:"sn" json:"sn"`                   // max(AtFreq, Signal) - NoiseFloor
}

// Describer computes Stats over traces
type Describer struct {
	config      *Config
	percentiles *stats.Percentiles
	logger      logging.Logger
}

// NewDescriber creates a describer; a nil config means DefaultConfig
func NewDescriber(config *Config) *Describer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Describer{
		config:      config,
		percentiles: stats.NewPercentiles(),
		logger: logging.WithFields(logging.Fields{
			"component": "snr_describer",
		}),
	}
}

// Describe summarizes every column of t at the probe frequency, in column order
func (d *Describer) Describe(t *series.Table, probe float64) ([]Stat, error) {
	out := make([]Stat, 0, len(t.Columns()))
	for _, name := range t.Columns() {
		s, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		st, err := d.DescribeSeries(s, probe)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		out = append(out, st)
	}
	return out, nil
}

// DescribeSeries summarizes one trace at the probe frequency
func (d *Describer) DescribeSeries(s *series.Series, probe float64) (Stat, error) {
	if err := d.config.Validate(); err != nil {
		return Stat{}, err
	}
	i := s.NearestIndex(probe)
	if i < 0 {
		return Stat{}, ErrEmptySeries
	}

	at := s.At(i)
	band := s.Between(probe-d.config.Window, probe+d.config.Window)
	signal := common.Mean(band.Amplitudes())

	noise, err := d.percentiles.CalculatePercentile(s.Amplitudes(), d.config.NoisePercentile)
	if err != nil {
		return Stat{}, fmt.Errorf("failed to estimate noise floor: %w", err)
	}

	if math.Abs(at.Frequency-probe) > d.config.Window {
		d.logger.Warn("No sample within the averaging band, using nearest", logging.Fields{
			"series":  s.Name(),
			"probe":   probe,
			"nearest": at.Frequency,
		})
	}

	return Stat{
		Name:       s.Name(),
		Probe:      probe,
		Frequency:  at.Frequency,
		AtFreq:     at.Amplitude,
		Signal:     signal,
		NoiseFloor: noise,
		SN:         maxIgnoringNaN(at.Amplitude, signal) - noise,
	}, nil
}

// Describe runs a default describer over t
func Describe(t *series.Table, probe float64) ([]Stat, error) {
	return NewDescriber(nil).Describe(t, probe)
}

func maxIgnoringNaN(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	}
	return math.Max(a, b)
}
