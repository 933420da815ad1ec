// Package table holds the in-memory representation of a single measurement
// file: an ordered set of named columns and the rows read beneath them.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Kind is the inferred type of a column.
type Kind string

const (
	KindNumeric Kind = "numeric"
	KindText    Kind = "text"
)

// Column describes one column of a Table.
type Column struct {
	// Header is the column label exactly as it appeared in the source file.
	Header string
	// Name is Header with any trailing unit annotation removed.
	Name string
	// Unit is the physical unit parsed from the header, e.g. "Hz" for "Frequency (Hz)".
	Unit string
	Kind Kind
}

// Shape is the (rows, columns) size of a Table.
type Shape struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

func (s Shape) String() string { return fmt.Sprintf("(%d, %d)", s.Rows, s.Cols) }

// Table is an immutable two-dimensional structure with named columns.
// Cells keep their source text; numeric access goes through Float.
type Table struct {
	cols []Column
	rows [][]string
}

// FromRecords builds a Table from a header and data rows. Every row must have
// exactly len(header) fields. Column kinds are inferred from the data.
func FromRecords(header []string, rows [][]string) (*Table, error) {
	hdr := make([]string, len(header))
	copy(hdr, header)
	cp := make([][]string, len(rows))
	for i, r := range rows {
		if len(r) != len(hdr) {
			return nil, fmt.Errorf("row %d: %w: got %d fields, want %d", i+1, ErrFieldCount, len(r), len(hdr))
		}
		row := make([]string, len(r))
		copy(row, r)
		cp[i] = row
	}
	return newTable(hdr, cp), nil
}

// newTable takes ownership of header and rows.
func newTable(header []string, rows [][]string) *Table {
	cols := make([]Column, len(header))
	for j, h := range header {
		name, unit := splitUnits(h)
		cols[j] = Column{Header: h, Name: name, Unit: unit, Kind: inferKind(rows, j)}
	}
	return &Table{cols: cols, rows: rows}
}

// Shape returns the current row and column count.
func (t *Table) Shape() Shape { return Shape{Rows: len(t.rows), Cols: len(t.cols)} }

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.rows) }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// Columns returns a copy of the column descriptors.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.cols))
	copy(out, t.cols)
	return out
}

// Headers returns the column headers in order.
func (t *Table) Headers() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Header
	}
	return out
}

// Column returns the descriptor at position j.
func (t *Table) Column(j int) (Column, error) {
	if j < 0 || j >= len(t.cols) {
		return Column{}, &IndexError{Position: j, NumCols: len(t.cols)}
	}
	return t.cols[j], nil
}

// ColumnIndex looks a column up by its full header or by its unit-less name.
// The full header wins when both would match.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for j, c := range t.cols {
		if c.Header == name {
			return j, true
		}
	}
	for j, c := range t.cols {
		if c.Name == name {
			return j, true
		}
	}
	return -1, false
}

// Row returns a copy of row i. Like slice indexing, it panics when i is out
// of range; use NumRows to bound loops.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Cell returns the raw text at row i, column j. It panics when either index
// is out of range.
func (t *Table) Cell(i, j int) string { return t.rows[i][j] }

// Float parses the cell at row i, column j. It reports false for empty or
// non-numeric cells and panics when either index is out of range.
func (t *Table) Float(i, j int) (float64, bool) {
	return parseNumeric(t.rows[i][j])
}

// WriteDelimited serializes the table, header first, using delim as the
// field separator.
func (t *Table) WriteDelimited(w io.Writer, delim rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delim
	if err := cw.Write(t.Headers()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// inferKind reports numeric when every non-empty cell parses as a number.
// A column with no values at all is text.
func inferKind(rows [][]string, j int) Kind {
	seen := false
	for _, r := range rows {
		v := r[j]
		if v == "" {
			continue
		}
		if _, ok := parseNumeric(v); !ok {
			return KindText
		}
		seen = true
	}
	if !seen {
		return KindText
	}
	return KindNumeric
}

func parseNumeric(s string) (float64, bool) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

var unitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(.*?)\s*\(([^)]+)\)\s*$`),  // e.g., Frequency (Hz)
	regexp.MustCompile(`^(.*?)\s*\[([^\]]+)\]\s*$`), // e.g., Impedance [Ohm]
}

func splitUnits(header string) (name string, unit string) {
	s := strings.TrimSpace(header)
	for _, re := range unitPatterns {
		if m := re.FindStringSubmatch(s); len(m) == 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[2])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}
