package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/KaramelBytes/labagg-cli/internal/aggregate"
	"github.com/KaramelBytes/labagg-cli/internal/catalog"
	cfgpkg "github.com/KaramelBytes/labagg-cli/internal/config"
	"github.com/KaramelBytes/labagg-cli/internal/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Pipeline flags shared by catalog, aggregate and largest.
var (
	plExtensions []string
	plDelimiter  string
	plDrop       []int
	plWorkers    int
	plLayout     string
	plFormat     string
)

func addPipelineFlags(c *cobra.Command) {
	c.Flags().StringSliceVar(&plExtensions, "ext", nil, "accepted file extensions, e.g. .txt,.tsv (default from config)")
	c.Flags().StringVar(&plDelimiter, "delimiter", "", "field delimiter: tab|comma|semicolon|pipe|auto or a single character")
	c.Flags().IntSliceVar(&plDrop, "drop", nil, "column positions to drop before concatenation; negative counts from the end")
	c.Flags().IntVar(&plWorkers, "workers", 0, "groups processed in parallel (default from config)")
	c.Flags().StringVar(&plLayout, "layout", "", "files too shallow to group: skip|abort")
	c.Flags().StringVar(&plFormat, "format", "", "report format: text|yaml|csv")
}

// pipelineSettings is the effective configuration of one invocation.
type pipelineSettings struct {
	root    string
	catalog catalog.Options
	build   aggregate.Options
	format  string
}

// resolveSettings merges config with the flags that were set explicitly.
func resolveSettings(cmd *cobra.Command, args []string) (*pipelineSettings, error) {
	g := cfgpkg.Defaults()
	if cfg != nil {
		g = *cfg
	}
	f := cmd.Flags()
	if len(args) > 0 {
		g.DataRoot = args[0]
	}
	if f.Changed("ext") {
		g.Extensions = plExtensions
	}
	if f.Changed("delimiter") {
		g.Delimiter = plDelimiter
	}
	if f.Changed("drop") {
		g.DropColumns = plDrop
	}
	if f.Changed("workers") {
		g.Workers = plWorkers
	}
	if f.Changed("layout") {
		g.Layout = plLayout
	}
	if f.Changed("format") {
		g.ReportFormat = plFormat
	}

	if strings.TrimSpace(g.DataRoot) == "" {
		return nil, fmt.Errorf("no data root: pass one as argument or set data_root")
	}
	delim, err := cfgpkg.ParseDelimiter(g.Delimiter)
	if err != nil {
		return nil, err
	}
	layout, err := catalog.ParseLayout(g.Layout)
	if err != nil {
		return nil, err
	}
	return &pipelineSettings{
		root:    g.DataRoot,
		catalog: catalog.Options{Extensions: g.Extensions, Layout: layout},
		build: aggregate.Options{
			Load:    table.LoadOptions{Delimiter: delim},
			Drop:    g.DropColumns,
			Workers: g.Workers,
			Logger:  logger,
		},
		format: g.ReportFormat,
	}, nil
}

func discover(s *pipelineSettings) (catalog.Catalog, error) {
	cat, issues, err := catalog.Discover(s.root, s.catalog)
	if err != nil {
		return nil, err
	}
	for _, is := range issues {
		logger.Warn("skipping directory", zap.String("dir", is.Dir), zap.Int("files", len(is.Files)), zap.Error(catalog.ErrInvalidLayout))
	}
	logger.Info("catalog built", zap.String("root", s.root), zap.Int("units", len(cat)), zap.Int("files", cat.Len()))
	return cat, nil
}

// runPipeline executes Discover → Load → Prune → Concatenate → Select.
func runPipeline(ctx context.Context, s *pipelineSettings) (*aggregate.Aggregated, map[string]*aggregate.Group, error) {
	cat, err := discover(s)
	if err != nil {
		return nil, nil, err
	}
	agg, err := aggregate.Build(ctx, cat, s.build)
	if err != nil {
		return nil, nil, err
	}
	return agg, aggregate.LargestPerUnit(agg), nil
}
