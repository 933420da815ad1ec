package table

import (
	"archive/zip"
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"fmt"
	"io"

	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

// Compression identifies how a file's bytes are packed.
type Compression byte

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZip
	CompressionXZ
	CompressionZlib
	CompressionBZip2
)

// Ordered so that longer signatures are tried first.
var magicNumbers = []struct {
	c   Compression
	sig []byte
}{
	{CompressionXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{CompressionZip, []byte{0x50, 0x4b, 0x03, 0x04}},
	// An archive without entries starts with its end-of-directory record.
	{CompressionZip, []byte{0x50, 0x4b, 0x05, 0x06}},
	{CompressionGzip, []byte{0x1f, 0x8b, 0x08}},
	{CompressionBZip2, []byte{0x42, 0x5a, 0x68}},
	{CompressionZlib, []byte{0x78, 0x9c}},
}

// DetectCompression peeks at the head of r without consuming it.
func DetectCompression(r *bufio.Reader) Compression {
	head, _ := r.Peek(6)
	for _, m := range magicNumbers {
		if bytes.HasPrefix(head, m.sig) {
			return m.c
		}
	}
	return CompressionNone
}

// decompress wraps r so that reads yield the uncompressed content. Zip
// archives yield their first entry.
func decompress(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	switch DetectCompression(br) {
	case CompressionGzip:
		return gzip.NewReader(br)
	case CompressionZip:
		zr := zipstream.NewReader(br)
		if _, err := zr.Next(); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, zip.ErrFormat) {
				return nil, fmt.Errorf("zip archive has no entries: %w", ErrEmpty)
			}
			return nil, fmt.Errorf("zip entry: %w", err)
		}
		return zr, nil
	case CompressionXZ:
		return xz.NewReader(br, 0)
	case CompressionZlib:
		return zlib.NewReader(br)
	case CompressionBZip2:
		return bzip2.NewReader(br), nil
	}
	return br, nil
}
