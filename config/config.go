// Package config loads the YAML settings shared by the command line tools
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-rf/algorithms/capbank"
	"github.com/RyanBlaney/sonido-rf/algorithms/resonance"
	"github.com/RyanBlaney/sonido-rf/algorithms/snr"
	"github.com/RyanBlaney/sonido-rf/instrument"
	"github.com/RyanBlaney/sonido-rf/logging"
)

// LoggingConfig selects the log backend
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // text or json
	Color  bool   `yaml:"color" json:"color"`   // ANSI colors for text output
}

// Config is the top-level settings file
type Config struct {
	Logging    LoggingConfig     `yaml:"logging" json:"logging"`
	Resonance  resonance.Config  `yaml:"resonance" json:"resonance"`
	Bank       capbank.Params    `yaml:"bank" json:"bank"`
	SNR        snr.Config        `yaml:"snr" json:"snr"`
	Instrument instrument.Config `yaml:"instrument" json:"instrument"`
}

// DefaultConfig returns the settings used when no file is given
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Color:  true,
		},
		Resonance: *resonance.DefaultConfig(),
		Bank: capbank.Params{
			CInitial: 0,
			CRes:     10,
			CNum:     4,
			LmH:      12.5,
			Offset:   capbank.OffsetPerBit,
		},
		SNR:        *snr.DefaultConfig(),
		Instrument: *instrument.DefaultConfig(),
	}
}

// LoadConfig reads a YAML file over the defaults; keys missing from the file
// keep their default values
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filename, err)
	}
	return config, nil
}

// Validate checks every section
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format: unknown format %q (want text or json)", c.Logging.Format)
	}
	if err := c.Resonance.Validate(); err != nil {
		return fmt.Errorf("resonance: %w", err)
	}
	if err := c.Bank.Validate(); err != nil {
		return fmt.Errorf("bank: %w", err)
	}
	if err := c.SNR.Validate(); err != nil {
		return fmt.Errorf("snr: %w", err)
	}
	if _, err := instrument.ParseMachine(string(c.Instrument.Machine)); err != nil {
		return fmt.Errorf("instrument: %w", err)
	}
	return nil
}

// NewLogger builds the configured logger writing to w
func (c LoggingConfig) NewLogger(w io.Writer) (logging.Logger, error) {
	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	var logger logging.Logger
	switch strings.ToLower(c.Format) {
	case "json":
		logger = logging.NewZapLogger(w, level)
	case "", "text":
		l := logging.NewWriterLogger(w)
		l.SetColors(c.Color)
		logger = l
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Format)
	}

	logger.SetLevel(level)
	return logger, nil
}

// InstallLogger builds the configured logger and makes it the global one.
// Components pick up the global logger when they are constructed, so call
// this before building analyzers or readers.
func (c *Config) InstallLogger(w io.Writer) error {
	logger, err := c.Logging.NewLogger(w)
	if err != nil {
		return err
	}
	logging.SetGlobalLogger(logger)
	return nil
}
