// Package aggregate turns a catalog of measurement files into one table per
// (unit, concentration) group and selects the largest group of each unit.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/KaramelBytes/labagg-cli/internal/catalog"
	"github.com/KaramelBytes/labagg-cli/internal/table"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options controls Build.
type Options struct {
	Load table.LoadOptions
	// Drop lists column positions removed from every file before concatenation.
	Drop []int
	// Workers bounds how many groups are processed at once. Values below 1
	// process groups one at a time.
	Workers int
	Logger  *zap.Logger
}

// Group is the concatenation of all files of one (unit, concentration) pair.
type Group struct {
	Unit          string
	Concentration string
	// Files lists the files whose rows made it into Table, in row order.
	Files []string
	Table *table.Table
	// Shape is recorded when the group is concatenated.
	Shape table.Shape
}

// Issue is a file or group left out of the result, with the reason.
type Issue struct {
	Unit          string
	Concentration string
	Path          string
	Err           error
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s/%s: %v", i.Unit, i.Concentration, i.Err)
}

// SchemaMismatchError reports a group whose files disagree on columns after
// pruning. Path is the first file that differs from the group's first file.
type SchemaMismatchError struct {
	Unit          string
	Concentration string
	Path          string
	Want          []string
	Got           []string
	Err           error
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("group %s/%s: %s: %v", e.Unit, e.Concentration, e.Path, e.Err)
}

func (e *SchemaMismatchError) Unwrap() error { return e.Err }

// Aggregated holds every group that could be built plus the issues met.
type Aggregated struct {
	Groups map[string]map[string]*Group
	Issues []Issue
}

// Units returns unit keys in lexicographic order.
func (a *Aggregated) Units() []string {
	out := make([]string, 0, len(a.Groups))
	for u := range a.Groups {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Concentrations returns the concentration keys of unit in lexicographic order.
func (a *Aggregated) Concentrations(unit string) []string {
	out := make([]string, 0, len(a.Groups[unit]))
	for c := range a.Groups[unit] {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Group returns one group.
func (a *Aggregated) Group(unit, concentration string) (*Group, bool) {
	g, ok := a.Groups[unit][concentration]
	return g, ok
}

type job struct {
	unit  string
	conc  string
	files []catalog.FileLocation
}

type groupResult struct {
	group  *Group
	issues []Issue
}

// Build loads, prunes and concatenates every group in cat.
//
// A file that fails to parse is skipped and reported in Issues. A group whose
// files disagree on columns is left out and reported in Issues. Issues are
// ordered by unit, concentration and path. An invalid Drop position aborts
// the whole build.
func Build(ctx context.Context, cat catalog.Catalog, opt Options) (*Aggregated, error) {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	var jobs []job
	for _, u := range cat.Units() {
		for _, c := range cat.Concentrations(u) {
			files := cat.Files(u, c)
			if len(files) == 0 {
				continue
			}
			jobs = append(jobs, job{unit: u, conc: c, files: files})
		}
	}

	workers := opt.Workers
	if workers < 1 {
		workers = 1
	}
	// Each worker owns one slot, so no locking is needed.
	results := make([]groupResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, j := range jobs {
		i, j := i, j // per-iteration copies (go.mod targets Go 1.21)
		g.Go(func() error {
			res, err := buildGroup(gctx, j, opt, log)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	agg := &Aggregated{Groups: map[string]map[string]*Group{}}
	for _, res := range results {
		agg.Issues = append(agg.Issues, res.issues...)
		if res.group == nil {
			continue
		}
		grp := res.group
		if agg.Groups[grp.Unit] == nil {
			agg.Groups[grp.Unit] = map[string]*Group{}
		}
		agg.Groups[grp.Unit][grp.Concentration] = grp
	}
	sort.SliceStable(agg.Issues, func(i, j int) bool {
		a, b := agg.Issues[i], agg.Issues[j]
		if a.Unit != b.Unit {
			return a.Unit < b.Unit
		}
		if a.Concentration != b.Concentration {
			return a.Concentration < b.Concentration
		}
		return a.Path < b.Path
	})
	log.Debug("aggregation finished",
		zap.Int("groups", len(jobs)),
		zap.Int("units", len(agg.Groups)),
		zap.Int("issues", len(agg.Issues)))
	return agg, nil
}

func buildGroup(ctx context.Context, j job, opt Options, log *zap.Logger) (groupResult, error) {
	var res groupResult
	glog := log.With(zap.String("unit", j.unit), zap.String("concentration", j.conc))

	var tables []*table.Table
	var paths []string
	for _, fl := range j.files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		t, err := table.Load(fl.Path, opt.Load)
		if err != nil {
			if !errors.Is(err, table.ErrParse) {
				return res, err
			}
			glog.Warn("skipping file", zap.String("path", fl.Path), zap.Error(err))
			res.issues = append(res.issues, Issue{Unit: j.unit, Concentration: j.conc, Path: fl.Path, Err: err})
			continue
		}
		if len(opt.Drop) > 0 {
			t, err = table.Drop(t, opt.Drop)
			if err != nil {
				return res, fmt.Errorf("%s: %w", fl.Path, err)
			}
		}
		tables = append(tables, t)
		paths = append(paths, fl.Path)
	}
	if len(tables) == 0 {
		glog.Warn("group has no loadable files")
		return res, nil
	}

	combined, err := table.Concat(tables...)
	if err != nil {
		var se *table.SchemaError
		if !errors.As(err, &se) {
			return res, err
		}
		mismatch := &SchemaMismatchError{
			Unit:          j.unit,
			Concentration: j.conc,
			Path:          paths[se.Index],
			Want:          se.Want,
			Got:           se.Got,
			Err:           err,
		}
		glog.Warn("dropping group", zap.Error(mismatch))
		res.issues = append(res.issues, Issue{Unit: j.unit, Concentration: j.conc, Path: paths[se.Index], Err: mismatch})
		return res, nil
	}
	res.group = &Group{
		Unit:          j.unit,
		Concentration: j.conc,
		Files:         paths,
		Table:         combined,
		Shape:         combined.Shape(),
	}
	glog.Debug("group built", zap.Int("files", len(paths)), zap.Stringer("shape", res.group.Shape))
	return res, nil
}
