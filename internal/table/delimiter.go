package table

import (
	"bytes"

	"github.com/csimplestring/go-csv/detector"
)

// DefaultDelimiter is used when detection finds nothing.
const DefaultDelimiter = '\t'

// DetectDelimiter returns the most likely field separator in data.
func DetectDelimiter(data []byte) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(bytes.NewReader(data), '"')
	if len(delimiters) > 0 && delimiters[0] != "" {
		return rune(delimiters[0][0])
	}
	return DefaultDelimiter
}
