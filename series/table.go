package series

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownColumn   = errors.New("unknown column")
	ErrDuplicateColumn = errors.New("duplicate column")
)

// Table is a set of amplitude columns sharing one frequency index, one column
// per imported measurement file
type Table struct {
	index   []float64
	names   []string
	columns map[string][]float64
}

// NewTable creates an empty table over the given frequency index
func NewTable(index []float64) (*Table, error) {
	probe, err := New("", index, make([]float64, len(index)))
	if err != nil {
		return nil, err
	}
	return &Table{
		index:   probe.freqs,
		columns: make(map[string][]float64),
	}, nil
}

// AddColumn appends a named amplitude column. Its length must match the index.
func (t *Table) AddColumn(name string, values []float64) error {
	if _, exists := t.columns[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
	}
	if len(values) != len(t.index) {
		return fmt.Errorf("%w: column %q has %d rows, index has %d", ErrLengthMismatch, name, len(values), len(t.index))
	}

	col := make([]float64, len(values))
	copy(col, values)
	t.columns[name] = col
	t.names = append(t.names, name)
	return nil
}

// Len returns the number of rows
func (t *Table) Len() int { return len(t.index) }

// Index returns a copy of the frequency index
func (t *Table) Index() []float64 {
	out := make([]float64, len(t.index))
	copy(out, t.index)
	return out
}

// Columns returns the column names in insertion order
func (t *Table) Columns() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Column returns one column as a series keyed by the table index
func (t *Table) Column(name string) (*Series, error) {
	col, ok := t.columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return New(name, t.index, col)
}
