package capbank

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// MaxBits bounds the bank size; 2^24 rows is already tens of millions of
// lines of export
const MaxBits = 24

var (
	ErrInvalidParams   = errors.New("invalid capacitor bank parameters")
	ErrIndexOutOfRange = errors.New("row index out of range")
	ErrUnknownColumn   = errors.New("unknown column")
)

// Offset selects where CInitial enters the capacitance sum
type Offset int

const (
	// OffsetPerBit adds CInitial to every bit weight: bit i is
	// CInitial + CRes*2^i. This is the default.
	OffsetPerBit Offset = iota

	// OffsetGlobal uses CRes*2^i per bit and adds CInitial once to every
	// row. Deprecated: kept to reproduce tables exported by older tooling.
	OffsetGlobal
)

func (o Offset) String() string {
	switch o {
	case OffsetPerBit:
		return "per_bit"
	case OffsetGlobal:
		return "global"
	default:
		return fmt.Sprintf("Offset(%d)", int(o))
	}
}

// ParseOffset accepts "per_bit" or "global"
func ParseOffset(s string) (Offset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "per_bit", "per-bit", "perbit":
		return OffsetPerBit, nil
	case "global":
		return OffsetGlobal, nil
	default:
		return OffsetPerBit, fmt.Errorf("unknown offset convention %q (want per_bit or global)", s)
	}
}

func (o Offset) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Offset) UnmarshalText(text []byte) error {
	parsed, err := ParseOffset(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Params describes one binary-weighted capacitor bank tuned against a fixed
// inductor. Capacitances are in pF, inductance in mH.
type Params struct {
	CInitial  float64 `yaml:"c_initial" json:"c_initial"`   // smallest capacitor
	CRes      float64 `yaml:"c_res" json:"c_res"`           // resolution, doubled per bit
	CNum      int     `yaml:"c_num" json:"c_num"`           // number of switched capacitors
	LmH       float64 `yaml:"lmh" json:"lmh"`               // inductance
	CParallel float64 `yaml:"c_parallel" json:"c_parallel"` // fixed capacitance across the bank, 0 for none
	CSeries   float64 `yaml:"c_series" json:"c_series"`     // fixed capacitance in series, 0 for none
	Offset    Offset  `yaml:"offset" json:"offset"`
}

// Validate rejects parameters that cannot produce a table
func (p Params) Validate() error {
	if p.CNum < 1 || p.CNum > MaxBits {
		return fmt.Errorf("%w: c_num must be within 1..%d, got %d", ErrInvalidParams, MaxBits, p.CNum)
	}
	if !(p.LmH > 0) || math.IsInf(p.LmH, 0) {
		return fmt.Errorf("%w: lmh must be a positive inductance, got %v", ErrInvalidParams, p.LmH)
	}
	for name, v := range map[string]float64{
		"c_initial":  p.CInitial,
		"c_res":      p.CRes,
		"c_parallel": p.CParallel,
		"c_series":   p.CSeries,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidParams, name, v)
		}
	}
	if p.Offset != OffsetPerBit && p.Offset != OffsetGlobal {
		return fmt.Errorf("%w: unknown offset convention %d", ErrInvalidParams, int(p.Offset))
	}
	return nil
}

// Weights returns the per-bit capacitances cInitial + cRes*2^i, LSB first
func Weights(cInitial, cRes float64, n int) []float64 {
	if n < 0 {
		n = 0
	}
	w := make([]float64, n)
	for i := range w {
		w[i] = cInitial + cRes*math.Ldexp(1, i)
	}
	return w
}

// ResonantFrequencyKHz is the LC resonance 1/(2π√(LC)) for L in mH and C in
// pF, in kHz. A non-positive capacitance has no finite resonance and gives
// +Inf.
func ResonantFrequencyKHz(lmH, cpF float64) float64 {
	if cpF <= 0 || lmH <= 0 {
		return math.Inf(1)
	}
	return 1 / (2 * math.Pi * math.Sqrt(lmH*1e-3*cpF*1e-12)) / 1000
}

// SeriesCombine folds a fixed series capacitor into c. A zero capacitance
// stays zero rather than dividing by it.
func SeriesCombine(c, series float64) float64 {
	if series == 0 || c == 0 {
		return c
	}
	return 1 / (1/c + 1/series)
}
