// Package capbank builds switching tables for binary-weighted capacitor banks
// that tune an LC resonator, and proposes standard-value capacitor pairs for
// a target capacitance.
package capbank

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"go.uber.org/multierr"

	"github.com/RyanBlaney/sonido-rf/logging"
)

// Column names accepted by Sorted, WriteCSV and Export
const (
	ColumnIndex = "index"
	ColumnCpF   = "CpF"
	ColumnFkHz  = "fkHz"
)

// Row is one switch combination. Bits are LSB first: Bits[i] is the switch
// for weight i and the row index equals sum(Bits[i] << i).
type Row struct {
	Index int     `json:"index"`
	Bits  []bool  `json:"bits"`
	CpF   float64 `json:"cpf"`  // total capacitance after parallel/series terms
	FkHz  float64 `json:"fkhz"` // +Inf when CpF <= 0 (row 0 without fixed capacitance)
}

// Channels lists the 1-based switch numbers that are on
func (r Row) Channels() []int {
	out := []int{}
	for i, on := range r.Bits {
		if on {
			out = append(out, i+1)
		}
	}
	return out
}

func (r Row) clone() Row {
	r.Bits = append([]bool(nil), r.Bits...)
	return r
}

// Table holds all 2^CNum rows of a capacitor bank. Row 0 (no switch closed)
// is kept; without fixed capacitance it is non-physical and its FkHz is +Inf.
type Table struct {
	params  Params
	weights []float64
	rows    []Row
	logger  logging.Logger
}

// New enumerates every switch combination for p
func New(p Params) (*Table, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	base := 0.0
	weights := Weights(p.CInitial, p.CRes, p.CNum)
	if p.Offset == OffsetGlobal {
		base = p.CInitial
		weights = Weights(0, p.CRes, p.CNum)
	}

	t := &Table{
		params:  p,
		weights: weights,
		rows:    make([]Row, 1<<p.CNum),
		logger: logging.WithFields(logging.Fields{
			"component": "capbank_table",
		}),
	}

	for r := range t.rows {
		bits := make([]bool, p.CNum)
		c := base
		for i := range bits {
			if r&(1<<i) != 0 {
				bits[i] = true
				c += weights[i]
			}
		}
		c += p.CParallel
		c = SeriesCombine(c, p.CSeries)

		t.rows[r] = Row{
			Index: r,
			Bits:  bits,
			CpF:   c,
			FkHz:  ResonantFrequencyKHz(p.LmH, c),
		}
	}

	t.logger.Debug("Capacitor bank table generated", logging.Fields{
		"rows":   len(t.rows),
		"c_num":  p.CNum,
		"offset": p.Offset.String(),
		"max_pf": t.rows[len(t.rows)-1].CpF,
	})

	return t, nil
}

// Params returns the construction parameters
func (t *Table) Params() Params { return t.params }

// Len returns 2^CNum
func (t *Table) Len() int { return len(t.rows) }

// Weights returns the per-bit capacitances used as column headers
func (t *Table) Weights() []float64 {
	return append([]float64(nil), t.weights...)
}

// Row returns row i; negative indices count back from the end
func (t *Table) Row(i int) (Row, error) {
	j, err := t.resolve(i)
	if err != nil {
		return Row{}, err
	}
	return t.rows[j].clone(), nil
}

// Channels returns the 1-based switch numbers closed in row i. Negative
// indices count back from the end, so -1 is the all-on row.
func (t *Table) Channels(i int) ([]int, error) {
	j, err := t.resolve(i)
	if err != nil {
		return nil, err
	}
	return t.rows[j].Channels(), nil
}

// Rows returns a copy of every row in index order
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.clone()
	}
	return out
}

// CpF returns the capacitance column
func (t *Table) CpF() []float64 {
	out := make([]float64, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.CpF
	}
	return out
}

// FkHz returns the resonant frequency column
func (t *Table) FkHz() []float64 {
	out := make([]float64, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.FkHz
	}
	return out
}

// Sorted returns the rows ordered ascending by column ("" or "index" keeps
// index order). Ties keep index order.
func (t *Table) Sorted(column string) ([]Row, error) {
	rows := t.Rows()

	var key func(Row) float64
	switch column {
	case "", ColumnIndex:
		return rows, nil
	case ColumnCpF:
		key = func(r Row) float64 { return r.CpF }
	case ColumnFkHz:
		key = func(r Row) float64 { return r.FkHz }
	default:
		return nil, checkColumn(column)
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return key(rows[a]) < key(rows[b])
	})
	return rows, nil
}

// Filename encodes the construction parameters as
// init<ci>_res<cr>_pat<n>_l<lmh>.csv with every '.' replaced by 'p'
func (t *Table) Filename() string {
	parts := []string{
		"init" + formatFloat(t.params.CInitial),
		"res" + formatFloat(t.params.CRes),
		"pat" + strconv.Itoa(t.params.CNum),
		"l" + formatFloat(t.params.LmH),
	}
	return strings.ReplaceAll(strings.Join(parts, "_"), ".", "p") + ".csv"
}

// WriteCSV writes the table with an unnamed index column, one 0/1 column per
// weight, then CpF and fkHz
func (t *Table) WriteCSV(w io.Writer, sortBy string) error {
	rows, err := t.Sorted(sortBy)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(t.header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, 0, len(t.weights)+3)
	for _, r := range rows {
		record = append(record[:0], strconv.Itoa(r.Index))
		for _, on := range r.Bits {
			record = append(record, bitString(on))
		}
		record = append(record, formatFloat(r.CpF), formatFloat(r.FkHz))
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r.Index, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Export writes the table as Filename() inside dir ("" means the working
// directory) and returns the path written
func (t *Table) Export(dir, sortBy string) (path string, err error) {
	if dir == "" {
		dir = "."
	}
	if err := checkColumn(sortBy); err != nil {
		return "", err
	}
	path = filepath.Join(dir, t.Filename())

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	if err := t.WriteCSV(f, sortBy); err != nil {
		return path, fmt.Errorf("failed to export %s: %w", path, err)
	}

	t.logger.Info("Capacitor bank table exported", logging.Fields{
		"path": path,
		"rows": len(t.rows),
		"sort": sortBy,
	})
	return path, nil
}

// Dump prints every row as an aligned text table, optionally sorted
func (t *Table) Dump(w io.Writer, sortBy string) error {
	rows, err := t.Sorted(sortBy)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintln(tw, strings.Join(t.header(), "\t")+"\t"); err != nil {
		return err
	}
	for _, r := range rows {
		cells := make([]string, 0, len(r.Bits)+3)
		cells = append(cells, strconv.Itoa(r.Index))
		for _, on := range r.Bits {
			cells = append(cells, bitString(on))
		}
		cells = append(cells, formatFloat(r.CpF), formatFixed(r.FkHz))
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t"); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func checkColumn(column string) error {
	switch column {
	case "", ColumnIndex, ColumnCpF, ColumnFkHz:
		return nil
	}
	return fmt.Errorf("%w %q (want %s, %s or %s)", ErrUnknownColumn, column, ColumnIndex, ColumnCpF, ColumnFkHz)
}

func (t *Table) header() []string {
	h := make([]string, 0, len(t.weights)+3)
	h = append(h, "")
	for _, w := range t.weights {
		h = append(h, formatFloat(w))
	}
	return append(h, ColumnCpF, ColumnFkHz)
}

func (t *Table) resolve(i int) (int, error) {
	j := i
	if j < 0 {
		j += len(t.rows)
	}
	if j < 0 || j >= len(t.rows) {
		return 0, fmt.Errorf("%w: index %d with size %d", ErrIndexOutOfRange, i, len(t.rows))
	}
	return j, nil
}

func formatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatFixed prints six decimals like the interactive table view
func formatFixed(v float64) string {
	if math.IsInf(v, 0) {
		return formatFloat(v)
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func bitString(on bool) string {
	if on {
		return "1"
	}
	return "0"
}
