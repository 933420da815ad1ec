package table

import (
	"archive/zip"
	"bufio"
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const packedSweep = "Index\tFrequency (Hz)\n1\t100\n2\t200\n"

// packedSweep compressed with xz (LZMA2, CRC32 check).
var xzSweep = []byte{
	0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00, 0x00, 0x01, 0x69, 0x22, 0xde, 0x36,
	0x02, 0x00, 0x21, 0x01, 0x16, 0x00, 0x00, 0x00, 0x74, 0x2f, 0xe5, 0xa3,
	0x01, 0x00, 0x20, 0x49, 0x6e, 0x64, 0x65, 0x78, 0x09, 0x46, 0x72, 0x65,
	0x71, 0x75, 0x65, 0x6e, 0x63, 0x79, 0x20, 0x28, 0x48, 0x7a, 0x29, 0x0a,
	0x31, 0x09, 0x31, 0x30, 0x30, 0x0a, 0x32, 0x09, 0x32, 0x30, 0x30, 0x0a,
	0x00, 0x00, 0x00, 0x00, 0x40, 0x6b, 0x55, 0x85, 0x00, 0x01, 0x35, 0x21,
	0xc3, 0x67, 0xde, 0xce, 0x90, 0x42, 0x99, 0x0d, 0x01, 0x00, 0x00, 0x00,
	0x00, 0x01, 0x59, 0x5a,
}

// packedSweep compressed with bzip2.
var bzip2Sweep = []byte{
	0x42, 0x5a, 0x68, 0x39, 0x31, 0x41, 0x59, 0x26, 0x53, 0x59, 0xe8, 0x57,
	0xfe, 0xb4, 0x00, 0x00, 0x09, 0xdd, 0x80, 0x00, 0x30, 0x40, 0x60, 0x70,
	0x00, 0x01, 0x60, 0x0e, 0x01, 0x32, 0x70, 0x20, 0x00, 0x22, 0x26, 0x41,
	0x90, 0x03, 0x4f, 0x50, 0xa0, 0x69, 0xa1, 0x91, 0x93, 0x12, 0x8a, 0xea,
	0xc5, 0xe6, 0x11, 0x25, 0x5a, 0xd4, 0xcc, 0xac, 0x9d, 0x20, 0x1f, 0xce,
	0x7d, 0x08, 0x07, 0xc5, 0xdc, 0x91, 0x4e, 0x14, 0x24, 0x3a, 0x15, 0xff,
	0xad, 0x00,
}

func gzipBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := io.WriteString(w, data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zlibBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := io.WriteString(w, data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// zipBytes builds an archive holding entries in order. Each entry is a
// name/content pair.
func zipBytes(t *testing.T, entries ...[2]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e[0])
		require.NoError(t, err)
		_, err = io.WriteString(w, e[1])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestLoadCompressedFormats(t *testing.T) {
	cases := []struct {
		name string
		file string
		data []byte
		want Compression
	}{
		{"plain", "sweep.txt", []byte(packedSweep), CompressionNone},
		{"gzip", "sweep.txt.gz", gzipBytes(t, packedSweep), CompressionGzip},
		{"zlib", "sweep.txt.z", zlibBytes(t, packedSweep), CompressionZlib},
		{"bzip2", "sweep.txt.bz2", bzip2Sweep, CompressionBZip2},
		{"xz", "sweep.txt.xz", xzSweep, CompressionXZ},
		// Only the first entry is read.
		{"zip", "sweep.zip", zipBytes(t, [2]string{"sweep.txt", packedSweep}, [2]string{"other.txt", "x\ty\tz\n"}), CompressionZip},
	}
	dir := t.TempDir()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectCompression(bufio.NewReader(bytes.NewReader(tc.data))))

			p := writeFile(t, dir, tc.file, tc.data)
			tb, err := Load(p, DefaultLoadOptions())
			require.NoError(t, err)
			assert.Equal(t, []string{"Index", "Frequency (Hz)"}, tb.Headers())
			assert.Equal(t, Shape{Rows: 2, Cols: 2}, tb.Shape())
			assert.Equal(t, "200", tb.Cell(1, 1))
		})
	}
}

func TestLoadEmptyZipIsParseError(t *testing.T) {
	p := writeFile(t, t.TempDir(), "empty.zip", zipBytes(t))

	_, err := Load(p, DefaultLoadOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))
	assert.True(t, errors.Is(err, ErrEmpty))
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, p, pe.Path)
}

func TestLoadTruncatedArchiveIsParseError(t *testing.T) {
	dir := t.TempDir()
	gz := gzipBytes(t, packedSweep)
	for name, data := range map[string][]byte{
		"cut.txt.gz": gz[:len(gz)-6],
		"cut.txt.xz": xzSweep[:40],
	} {
		_, err := Load(writeFile(t, dir, name, data), DefaultLoadOptions())
		assert.ErrorIs(t, err, ErrParse, name)
	}
}
