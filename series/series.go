// Package series holds frequency-indexed amplitude traces as read from a
// network or spectrum analyzer.
package series

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/RyanBlaney/sonido-rf/algorithms/common"
)

var (
	ErrLengthMismatch = errors.New("frequency and amplitude lengths differ")
	ErrNonMonotonic   = errors.New("frequency index is not non-decreasing")
	ErrNaNFrequency   = errors.New("frequency index contains NaN")
)

// Point is one sample of a sweep
type Point struct {
	Frequency float64 `json:"frequency"`
	Amplitude float64 `json:"amplitude"` // dB unless converted with ToMilliwatt
}

// Series is an ordered frequency -> amplitude mapping. It is never mutated
// after construction; accessors hand out copies.
type Series struct {
	name  string
	freqs []float64
	amps  []float64
}

// New builds a series from parallel frequency and amplitude slices. The
// frequency index must be non-decreasing.
func New(name string, freqs, amps []float64) (*Series, error) {
	if len(freqs) != len(amps) {
		return nil, fmt.Errorf("%w: %d frequencies, %d amplitudes", ErrLengthMismatch, len(freqs), len(amps))
	}
	for i, f := range freqs {
		if math.IsNaN(f) {
			return nil, fmt.Errorf("%w at row %d", ErrNaNFrequency, i)
		}
		if i > 0 && f < freqs[i-1] {
			return nil, fmt.Errorf("%w: %v follows %v at row %d", ErrNonMonotonic, f, freqs[i-1], i)
		}
	}

	s := &Series{
		name:  name,
		freqs: make([]float64, len(freqs)),
		amps:  make([]float64, len(amps)),
	}
	copy(s.freqs, freqs)
	copy(s.amps, amps)
	return s, nil
}

// FromPoints builds a series from samples in frequency order
func FromPoints(name string, points []Point) (*Series, error) {
	freqs := make([]float64, len(points))
	amps := make([]float64, len(points))
	for i, p := range points {
		freqs[i] = p.Frequency
		amps[i] = p.Amplitude
	}
	return New(name, freqs, amps)
}

// Name returns the label the series was created with (usually a file base name)
func (s *Series) Name() string { return s.name }

// Len returns the number of samples
func (s *Series) Len() int { return len(s.freqs) }

// At returns sample i
func (s *Series) At(i int) Point {
	return Point{Frequency: s.freqs[i], Amplitude: s.amps[i]}
}

// Frequencies returns a copy of the frequency index
func (s *Series) Frequencies() []float64 {
	out := make([]float64, len(s.freqs))
	copy(out, s.freqs)
	return out
}

// Amplitudes returns a copy of the amplitude column
func (s *Series) Amplitudes() []float64 {
	out := make([]float64, len(s.amps))
	copy(out, s.amps)
	return out
}

// Points returns every sample in index order
func (s *Series) Points() []Point {
	out := make([]Point, len(s.freqs))
	for i := range s.freqs {
		out[i] = s.At(i)
	}
	return out
}

// Max returns the first sample holding the maximum amplitude and its index.
// The index is -1 for an empty series.
func (s *Series) Max() (Point, int) {
	i := common.ArgMax(s.amps)
	if i < 0 {
		return Point{Frequency: math.NaN(), Amplitude: math.NaN()}, -1
	}
	return s.At(i), i
}

// IsFlat reports whether every amplitude is the same
func (s *Series) IsFlat() bool {
	return common.IsFlat(s.amps)
}

// Split partitions the series at frequency f: lower holds f' <= f, upper f' > f
func (s *Series) Split(f float64) (lower, upper *Series) {
	cut := sort.Search(len(s.freqs), func(i int) bool { return s.freqs[i] > f })
	return s.slice(0, cut), s.slice(cut, len(s.freqs))
}

// Between returns the samples with lo <= frequency <= hi
func (s *Series) Between(lo, hi float64) *Series {
	start := sort.SearchFloat64s(s.freqs, lo)
	end := sort.Search(len(s.freqs), func(i int) bool { return s.freqs[i] > hi })
	if end < start {
		end = start
	}
	return s.slice(start, end)
}

// NearestIndex returns the index of the sample whose frequency is closest to
// f, the lower one on a tie, or -1 for an empty series
func (s *Series) NearestIndex(f float64) int {
	if len(s.freqs) == 0 {
		return -1
	}
	i := sort.SearchFloat64s(s.freqs, f)
	switch {
	case i == 0:
		return 0
	case i == len(s.freqs):
		return len(s.freqs) - 1
	case f-s.freqs[i-1] <= s.freqs[i]-f:
		return i - 1
	default:
		return i
	}
}

func (s *Series) slice(start, end int) *Series {
	out := &Series{
		name:  s.name,
		freqs: make([]float64, end-start),
		amps:  make([]float64, end-start),
	}
	copy(out.freqs, s.freqs[start:end])
	copy(out.amps, s.amps[start:end])
	return out
}

func (s *Series) withAmplitudes(amps []float64) *Series {
	out := &Series{
		name:  s.name,
		freqs: make([]float64, len(s.freqs)),
		amps:  amps,
	}
	copy(out.freqs, s.freqs)
	return out
}

// ToDB returns a copy of s with amplitudes converted from mW to dBm
func ToDB(s *Series) *Series {
	return s.withAmplitudes(common.MilliwattsToDB(s.amps))
}

// ToMilliwatt returns a copy of s with amplitudes converted from dBm to mW
func ToMilliwatt(s *Series) *Series {
	return s.withAmplitudes(common.DBsToMilliwatt(s.amps))
}

// Smooth returns a copy of s with amplitudes run through a Hamming kernel of
// the given odd width
func Smooth(s *Series, width int) (*Series, error) {
	amps, err := common.HammingSmooth(s.amps, width)
	if err != nil {
		return nil, err
	}
	return s.withAmplitudes(amps), nil
}
