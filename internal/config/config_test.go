package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "./raw_data", c.DataRoot)
	assert.Equal(t, []string{".txt"}, c.Extensions)
	assert.Equal(t, "tab", c.Delimiter)
	assert.Equal(t, []int{0}, c.DropColumns)
	assert.Equal(t, 4, c.Workers)
	assert.Equal(t, "skip", c.Layout)
	assert.Equal(t, "text", c.ReportFormat)
}

func TestSaveThenLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	in := &Global{
		DataRoot:     "/data/eis",
		Extensions:   []string{".tsv", ".txt"},
		Delimiter:    "comma",
		DropColumns:  []int{0, -1},
		Workers:      2,
		Layout:       "abort",
		ReportFormat: "yaml",
		LogLevel:     "debug",
		LogFormat:    "json",
	}
	require.NoError(t, Save(in, path))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\ndata_root: /from/file\n"), 0o644))
	t.Setenv("LABAGG_DATA_ROOT", "/from/env")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", c.DataRoot)
	assert.Equal(t, 2, c.Workers)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedDefaultFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".labagg")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("workers: [unclosed\n"), 0o644))

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadDefaultFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".labagg")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("workers: 7\n"), 0o644))

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, c.Workers)
}

func TestParseDelimiter(t *testing.T) {
	cases := map[string]rune{
		"":      '\t',
		"tab":   '\t',
		"TAB":   '\t',
		"comma": ',',
		";":     ';',
		"pipe":  '|',
		"auto":  0,
		":":     ':',
		"°":     '°',
	}
	for in, want := range cases {
		got, err := ParseDelimiter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"tabs", `"`, "ab"} {
		_, err := ParseDelimiter(bad)
		assert.Error(t, err, bad)
	}
}
