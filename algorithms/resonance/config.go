package resonance

import (
	"fmt"
	"strings"
)

// Mode selects how the half-power crossings are searched
type Mode int

const (
	// SplitAtPeak searches f <= fmax for F1 and f > fmax for F2. This keeps
	// both crossings on opposite sides of the peak and is the default.
	SplitAtPeak Mode = iota

	// WholeSeries takes the two samples nearest the target level over the
	// entire sweep. Useful for asymmetric or noisy sweeps, but both picks can
	// land on the same side of the peak.
	WholeSeries
)

func (m Mode) String() string {
	switch m {
	case SplitAtPeak:
		return "split"
	case WholeSeries:
		return "whole"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "split" or "whole"
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "split":
		return SplitAtPeak, nil
	case "whole":
		return WholeSeries, nil
	default:
		return SplitAtPeak, fmt.Errorf("unknown search mode %q (want split or whole)", s)
	}
}

// MarshalText lets Mode appear as a plain string in yaml/json config
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText parses the config string form
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Config holds analyzer settings
type Config struct {
	Mode           Mode    `yaml:"mode" json:"mode"`                       // split or whole
	SixDB          bool    `yaml:"six_db" json:"six_db"`                   // also locate the -6 dB points
	Slope          bool    `yaml:"slope" json:"slope"`                     // fit the rising edge F1..fmax
	ScoreThreshold float64 `yaml:"score_threshold" json:"score_threshold"` // warn below this confidence
	SmoothWidth    int     `yaml:"smooth_width" json:"smooth_width"`       // odd Hamming width, 0/1 disables
}

// DefaultConfig returns the settings used by the sana command
func DefaultConfig() *Config {
	return &Config{
		Mode:           SplitAtPeak,
		SixDB:          false,
		Slope:          true,
		ScoreThreshold: DefaultScoreThreshold,
		SmoothWidth:    0,
	}
}

// Validate checks the settings that cannot be corrected silently
func (c *Config) Validate() error {
	if c.Mode != SplitAtPeak && c.Mode != WholeSeries {
		return fmt.Errorf("invalid search mode %d", int(c.Mode))
	}
	if c.SmoothWidth > 1 && c.SmoothWidth%2 == 0 {
		return fmt.Errorf("smooth_width must be odd, got %d", c.SmoothWidth)
	}
	if c.SmoothWidth < 0 {
		return fmt.Errorf("smooth_width must not be negative, got %d", c.SmoothWidth)
	}
	return nil
}
