package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// LoadOptions controls how a measurement file is parsed.
type LoadOptions struct {
	// Delimiter separates fields. If 0, it is detected from the content.
	Delimiter rune
}

// DefaultLoadOptions matches the instrument export format: tab separated.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{Delimiter: DefaultDelimiter}
}

// Load reads the delimited file at path into a Table. The first row names the
// columns. Compressed files are unpacked transparently. Every failure is
// returned as a *ParseError.
func Load(path string, opt LoadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	r, err := decompress(f)
	if err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("decompress: %w", err)}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("read: %w", err)}
	}
	t, err := Parse(data, opt)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
			return nil, pe
		}
		return nil, &ParseError{Path: path, Err: err}
	}
	return t, nil
}

// Parse decodes already-read file content. Errors carry no path.
func Parse(data []byte, opt LoadOptions) (*Table, error) {
	if !utf8.Valid(data) {
		return nil, &ParseError{Err: ErrEncoding}
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	delim := opt.Delimiter
	if delim == 0 {
		delim = DetectDelimiter(data)
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	// Every record must match the header width.
	r.FieldsPerRecord = 0

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Err: ErrEmpty}
		}
		return nil, csvParseError(err)
	}
	header = trimFields(header)

	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, csvParseError(err)
		}
		rows = append(rows, trimFields(rec))
	}
	return newTable(header, rows), nil
}

func csvParseError(err error) error {
	var ce *csv.ParseError
	if errors.As(err, &ce) {
		if errors.Is(ce.Err, csv.ErrFieldCount) {
			return &ParseError{Line: ce.Line, Err: ErrFieldCount}
		}
		return &ParseError{Line: ce.Line, Err: ce.Err}
	}
	return &ParseError{Err: err}
}

func trimFields(rec []string) []string {
	out := make([]string, len(rec))
	for i, v := range rec {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
