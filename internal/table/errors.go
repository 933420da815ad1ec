package table

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParse marks every failure to turn a file into a Table.
	ErrParse = errors.New("parse error")
	// ErrFieldCount indicates a row whose field count differs from the header.
	ErrFieldCount = errors.New("wrong number of fields")
	// ErrEmpty indicates a file without a header row.
	ErrEmpty = errors.New("no header row")
	// ErrEncoding indicates content that is not valid UTF-8.
	ErrEncoding = errors.New("invalid utf-8")
	// ErrIndexOutOfRange indicates a column position outside the table.
	ErrIndexOutOfRange = errors.New("column index out of range")
	// ErrSchemaMismatch indicates tables whose headers cannot be stacked.
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// ParseError reports why a file could not be loaded. Line is 0 when the
// failure is not tied to a specific line.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// IndexError reports a column position that does not exist.
type IndexError struct {
	Position int
	NumCols  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("column position %d out of range for %d columns", e.Position, e.NumCols)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }

// SchemaError reports the first table in a Concat call whose headers differ
// from the first table's.
type SchemaError struct {
	Index int
	Want  []string
	Got   []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %d: columns [%s] differ from [%s]", e.Index, strings.Join(e.Got, ", "), strings.Join(e.Want, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchemaMismatch }
