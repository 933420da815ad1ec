// Package catalog discovers measurement files under a data root and groups
// them by the two directories that enclose them: unit, then concentration.
//
//	raw_data/<unit>/<concentration>/<file>
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates the root is missing or not a directory.
	ErrNotFound = errors.New("catalog root not found")
	// ErrInvalidLayout indicates files placed less than two directories below root.
	ErrInvalidLayout = errors.New("invalid layout: files must sit two directories below root")
)

// PathError ties a catalog failure to the offending path.
type PathError struct {
	Path string
	Err  error
	// Cause is the underlying filesystem error, if any.
	Cause error
}

func (e *PathError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v: %v", e.Path, e.Err, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// FileLocation is a discovered file and the group it belongs to.
type FileLocation struct {
	Path          string
	Unit          string
	Concentration string
}

// Catalog maps unit -> concentration -> files. File lists are sorted by path.
type Catalog map[string]map[string][]FileLocation

// Units returns unit keys in lexicographic order.
func (c Catalog) Units() []string {
	out := make([]string, 0, len(c))
	for u := range c {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Concentrations returns the concentration keys of unit in lexicographic order.
func (c Catalog) Concentrations(unit string) []string {
	out := make([]string, 0, len(c[unit]))
	for k := range c[unit] {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Files returns the files of one group.
func (c Catalog) Files(unit, concentration string) []FileLocation {
	return c[unit][concentration]
}

// Len returns the total number of files.
func (c Catalog) Len() int {
	n := 0
	for _, concs := range c {
		for _, files := range concs {
			n += len(files)
		}
	}
	return n
}

// Layout selects what Discover does with files that sit too shallow to be
// grouped.
type Layout string

const (
	// LayoutSkip records the directory as a LayoutIssue and keeps walking.
	LayoutSkip Layout = "skip"
	// LayoutAbort fails the whole discovery with ErrInvalidLayout.
	LayoutAbort Layout = "abort"
)

// ParseLayout validates a layout policy name. Empty means LayoutSkip.
func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(s))) {
	case "", LayoutSkip:
		return LayoutSkip, nil
	case LayoutAbort:
		return LayoutAbort, nil
	}
	return "", fmt.Errorf("unsupported layout policy: %s (use skip|abort)", s)
}

// Options controls discovery.
type Options struct {
	// Extensions lists accepted file suffixes, e.g. ".txt". Matching is case
	// insensitive. Empty accepts every file.
	Extensions []string
	Layout     Layout
}

// LayoutIssue is a directory whose files were skipped because it is not deep
// enough below root.
type LayoutIssue struct {
	Dir   string
	Files []string
}

func (li LayoutIssue) Error() string {
	return (&PathError{Path: li.Dir, Err: ErrInvalidLayout}).Error()
}

// Discover walks root and groups every matching file by its parent
// (concentration) and grandparent (unit) directory names, relative to root.
// Hidden entries are included. Symlinks are accepted when they resolve to a
// regular file; symlinked directories are not followed.
func Discover(root string, opt Options) (Catalog, []LayoutIssue, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, &PathError{Path: root, Err: ErrNotFound, Cause: err}
	}
	if !info.IsDir() {
		return nil, nil, &PathError{Path: root, Err: ErrNotFound, Cause: errors.New("not a directory")}
	}

	exts := normalizeExtensions(opt.Extensions)
	byDir := map[string][]string{}
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !matches(d.Name(), exts) {
			return nil
		}
		if !isRegularFile(path, d) {
			return nil
		}
		dir := filepath.Dir(path)
		byDir[dir] = append(byDir[dir], path)
		return nil
	})
	if walkErr != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", root, walkErr)
	}

	dirs := make([]string, 0, len(byDir))
	for d := range byDir {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	cat := Catalog{}
	var issues []LayoutIssue
	for _, dir := range dirs {
		files := byDir[dir]
		sort.Strings(files)
		unit, conc, ok := groupKey(root, dir)
		if !ok {
			if opt.Layout == LayoutAbort {
				return nil, nil, &PathError{Path: dir, Err: ErrInvalidLayout}
			}
			issues = append(issues, LayoutIssue{Dir: dir, Files: files})
			continue
		}
		if cat[unit] == nil {
			cat[unit] = map[string][]FileLocation{}
		}
		for _, f := range files {
			cat[unit][conc] = append(cat[unit][conc], FileLocation{Path: f, Unit: unit, Concentration: conc})
		}
	}
	// Two branches can end in the same unit/concentration pair.
	for _, concs := range cat {
		for _, files := range concs {
			sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
		}
	}
	return cat, issues, nil
}

// groupKey derives (unit, concentration) from the path of dir relative to
// root. It needs at least two segments.
func groupKey(root, dir string) (unit, conc string, ok bool) {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." {
		return "", "", false
	}
	segs := strings.Split(filepath.ToSlash(rel), "/")
	if len(segs) < 2 {
		return "", "", false
	}
	return segs[len(segs)-2], segs[len(segs)-1], true
}

func normalizeExtensions(in []string) []string {
	var out []string
	for _, e := range in {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}

func matches(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, e := range exts {
		if strings.HasSuffix(lower, e) {
			return true
		}
	}
	return false
}

// isRegularFile reports whether d is a regular file or a symlink to one.
func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
