package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags clears values and Changed state left over from earlier runs.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	require.NoError(t, err, "command %v failed", args)
	return out
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeSweep(t *testing.T, root string, rows int, parts ...string) {
	t.Helper()
	lines := []string{"idx\tFrequency (Hz)\t-Phase (°)"}
	for i := 0; i < rows; i++ {
		lines = append(lines, fmt.Sprintf("%d\t%d\t%d", i, (i+1)*10, i))
	}
	p := filepath.Join(append([]string{root}, parts...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func fixture(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "raw_data")
	writeSweep(t, root, 3, "unitA", "conc1", "a.txt")
	writeSweep(t, root, 3, "unitA", "conc1", "b.txt")
	writeSweep(t, root, 5, "unitA", "conc2", "c.txt")
	writeSweep(t, root, 2, "unitB", "conc1", "d.txt")
	return root
}

func TestCLI_AggregateCSV(t *testing.T) {
	isolateHome(t)
	root := fixture(t)

	out := runCmd(t, "aggregate", root, "--format", "csv", "--workers", "3")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "unit,concentration,files,rows,cols,largest", lines[0])
	assert.Equal(t, "unitA,conc1,2,6,2,true", lines[1])
	assert.Equal(t, "unitA,conc2,1,5,2,false", lines[2])
	assert.Equal(t, "unitB,conc1,1,2,2,true", lines[3])
}

func TestCLI_AggregateKeepAllColumns(t *testing.T) {
	isolateHome(t)
	root := fixture(t)

	conf := filepath.Join(t.TempDir(), "labagg.yaml")
	require.NoError(t, os.WriteFile(conf, []byte("drop_columns: []\n"), 0o644))

	out := runCmd(t, "--config", conf, "aggregate", root, "--format", "text")
	assert.Contains(t, out, "(6, 3)")
	assert.Contains(t, out, "CONCENTRATION")
}

func TestCLI_LargestYAML(t *testing.T) {
	isolateHome(t)
	root := fixture(t)

	out := runCmd(t, "largest", root, "--format", "yaml")
	assert.Contains(t, out, "concentration: conc1")
	assert.Contains(t, out, "rows: 6")
	assert.NotContains(t, out, "conc2")
}

func TestCLI_CatalogListsFiles(t *testing.T) {
	isolateHome(t)
	root := fixture(t)

	out := runCmd(t, "catalog", root, "--files")
	assert.Contains(t, out, "unitA\n")
	assert.Contains(t, out, "  conc1 (2 files)\n")
	assert.Contains(t, out, "    - a.txt\n")
	assert.Contains(t, out, "unitB\n")
}

func TestCLI_InvalidDropFails(t *testing.T) {
	isolateHome(t)
	root := fixture(t)

	_, err := execute(t, "aggregate", root, "--drop", "9")
	assert.Error(t, err)
}

func TestCLI_MissingRootFails(t *testing.T) {
	isolateHome(t)
	_, err := execute(t, "aggregate", filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := isolateHome(t)
	root := fixture(t)

	runCmd(t, "config", "set", "data_root", root)
	runCmd(t, "config", "set", "drop_columns", "0,-1")
	runCmd(t, "config", "set", "report_format", "csv")
	_, err := execute(t, "config", "set", "layout", "ignore")
	assert.Error(t, err)
	_, err = execute(t, "config", "set", "nope", "x")
	assert.Error(t, err)

	_, err = os.Stat(filepath.Join(home, ".labagg", "config.yaml"))
	require.NoError(t, err)

	out := runCmd(t, "config", "show")
	assert.Contains(t, out, "data_root: "+root)
	assert.Contains(t, out, "drop_columns: 0,-1")

	// Root and format now come from the saved config.
	out = runCmd(t, "aggregate")
	assert.Contains(t, out, "unitA,conc1,2,6,1,true")
}

func TestCLI_LargestWritesReportFile(t *testing.T) {
	isolateHome(t)
	root := fixture(t)
	dest := filepath.Join(t.TempDir(), "out", "largest.csv")

	out := runCmd(t, "largest", root, "--format", "csv", "-o", dest)
	assert.Contains(t, out, "Wrote "+dest)

	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "unit,concentration,files,rows,cols,largest\nunitA,conc1,2,6,2,true\nunitB,conc1,1,2,2,true\n", string(b))
}
