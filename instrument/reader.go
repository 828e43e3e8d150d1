// Package instrument imports the CSV traces saved by bench instruments. Each
// machine writes a fixed-length preamble before frequency,amplitude rows.
package instrument

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/RyanBlaney/sonido-rf/logging"
	"github.com/RyanBlaney/sonido-rf/series"
)

// Machine identifies the instrument that wrote a file
type Machine string

const (
	N5071  Machine = "N5071"  // Keysight ENA network analyzer
	N9010A Machine = "N9010A" // Keysight EXA spectrum analyzer
)

// skipRows counts the preamble lines up to and including the column header
var skipRows = map[Machine]int{
	N5071:  3,
	N9010A: 44,
}

var (
	ErrUnknownMachine = errors.New("unknown instrument")
	ErrNoFiles        = errors.New("no files given")
	ErrNoData         = errors.New("no data rows")
	ErrIndexMismatch  = errors.New("frequency index differs from the first file")
)

// ParseMachine accepts the model names, case-insensitively. "A9010" is an
// older alias of N9010A.
func ParseMachine(s string) (Machine, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "N5071", "N5071C":
		return N5071, nil
	case "N9010A", "N9010", "A9010":
		return N9010A, nil
	default:
		return "", fmt.Errorf("%w %q (want N5071 or N9010A)", ErrUnknownMachine, s)
	}
}

// SkipRows returns the preamble length of a machine's export
func (m Machine) SkipRows() (int, error) {
	n, ok := skipRows[m]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownMachine, string(m))
	}
	return n, nil
}

// Config selects the machine format. SkipRows overrides the machine's
// preamble length when positive.
type Config struct {
	Machine  Machine `yaml:"machine" json:"machine"`
	SkipRows int     `yaml:"skip_rows" json:"skip_rows"`
}

// DefaultConfig reads network analyzer exports
func DefaultConfig() *Config {
	return &Config{Machine: N5071}
}

// Reader turns instrument exports into series
type Reader struct {
	machine Machine
	skip    int
	logger  logging.Logger
}

// NewReader creates a reader for config; a nil config means DefaultConfig
func NewReader(config *Config) (*Reader, error) {
	if config == nil {
		config = DefaultConfig()
	}
	machine, err := ParseMachine(string(config.Machine))
	if err != nil {
		return nil, err
	}
	skip, _ := machine.SkipRows()
	if config.SkipRows > 0 {
		skip = config.SkipRows
	}

	return &Reader{
		machine: machine,
		skip:    skip,
		logger: logging.WithFields(logging.Fields{
			"component": "instrument_reader",
			"machine":   string(machine),
		}),
	}, nil
}

// ReadSeries reads one file; the series is named after the file's base name
// without extension
func (r *Reader) ReadSeries(path string) (*series.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace: %w", err)
	}
	defer f.Close()

	s, err := r.Decode(ColumnName(path), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Decode parses one export from src
func (r *Reader) Decode(name string, src io.Reader) (*series.Series, error) {
	br := bufio.NewReader(src)
	for i := 0; i < r.skip; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("%w: preamble shorter than %d lines", ErrNoData, r.skip)
			}
			return nil, err
		}
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var freqs, amps []float64
	line := r.skip
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse csv: %w", err)
		}
		line++

		// trailers such as END close the data block
		freq, err := parseField(record, 0)
		if err != nil {
			r.logger.Debug("Stopping at non-numeric row", logging.Fields{
				"series": name,
				"line":   line,
			})
			break
		}
		amp, err := parseField(record, 1)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		freqs = append(freqs, freq)
		amps = append(amps, amp)
	}

	if len(freqs) == 0 {
		return nil, ErrNoData
	}
	return series.New(name, freqs, amps)
}

// Read loads every file into one table keyed by the first file's
// frequencies, one column per file
func (r *Reader) Read(paths ...string) (*series.Table, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}

	var table *series.Table
	var index []float64
	for _, path := range paths {
		s, err := r.ReadSeries(path)
		if err != nil {
			return nil, err
		}

		if table == nil {
			index = s.Frequencies()
			if table, err = series.NewTable(index); err != nil {
				return nil, err
			}
		} else if err := sameIndex(index, s.Frequencies()); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		if err := table.AddColumn(s.Name(), s.Amplitudes()); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	r.logger.Info("Traces imported", logging.Fields{
		"files": len(paths),
		"rows":  table.Len(),
	})
	return table, nil
}

// Read loads files written by machine
func Read(machine Machine, paths ...string) (*series.Table, error) {
	r, err := NewReader(&Config{Machine: machine})
	if err != nil {
		return nil, err
	}
	return r.Read(paths...)
}

// ReadN5071 loads network analyzer exports
func ReadN5071(paths ...string) (*series.Table, error) {
	return Read(N5071, paths...)
}

// ReadN9010A loads spectrum analyzer exports
func ReadN9010A(paths ...string) (*series.Table, error) {
	return Read(N9010A, paths...)
}

// ColumnName is the base name of path without its extension
func ColumnName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func parseField(record []string, i int) (float64, error) {
	if i >= len(record) {
		return 0, fmt.Errorf("missing column %d", i+1)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
	if err != nil {
		return 0, fmt.Errorf("column %d: %w", i+1, err)
	}
	return v, nil
}

func sameIndex(want, got []float64) error {
	if len(want) != len(got) {
		return fmt.Errorf("%w: %d rows, want %d", series.ErrLengthMismatch, len(got), len(want))
	}
	for i := range want {
		if want[i] != got[i] {
			return fmt.Errorf("%w at row %d: %v != %v", ErrIndexMismatch, i, got[i], want[i])
		}
	}
	return nil
}
