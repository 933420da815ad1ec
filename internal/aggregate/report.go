package aggregate

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

// GroupRow is one line of a Report.
type GroupRow struct {
	Unit          string `yaml:"unit" csv:"unit"`
	Concentration string `yaml:"concentration" csv:"concentration"`
	Files         int    `yaml:"files" csv:"files"`
	Rows          int    `yaml:"rows" csv:"rows"`
	Cols          int    `yaml:"cols" csv:"cols"`
	Largest       bool   `yaml:"largest" csv:"largest"`
}

// IssueRow describes a skipped file or group.
type IssueRow struct {
	Unit          string `yaml:"unit"`
	Concentration string `yaml:"concentration"`
	Path          string `yaml:"path"`
	Error         string `yaml:"error"`
}

// Report is a printable summary of an aggregation run.
type Report struct {
	Groups []GroupRow `yaml:"groups"`
	Issues []IssueRow `yaml:"issues,omitempty"`
}

// NewReport summarizes agg. Groups are ordered by unit, then concentration;
// the largest group of each unit is flagged.
func NewReport(agg *Aggregated, largest map[string]*Group) *Report {
	r := &Report{}
	for _, u := range agg.Units() {
		for _, c := range agg.Concentrations(u) {
			g := agg.Groups[u][c]
			r.Groups = append(r.Groups, GroupRow{
				Unit:          u,
				Concentration: c,
				Files:         len(g.Files),
				Rows:          g.Shape.Rows,
				Cols:          g.Shape.Cols,
				Largest:       largest[u] == g,
			})
		}
	}
	for _, is := range agg.Issues {
		r.Issues = append(r.Issues, IssueRow{
			Unit:          is.Unit,
			Concentration: is.Concentration,
			Path:          is.Path,
			Error:         is.Err.Error(),
		})
	}
	return r
}

// WriteText renders an aligned table followed by the issues, if any.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "UNIT\tCONCENTRATION\tFILES\tSHAPE\t")
	for _, g := range r.Groups {
		mark := ""
		if g.Largest {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t(%d, %d)\t%s\n", g.Unit, g.Concentration, g.Files, g.Rows, g.Cols, mark)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(r.Issues) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("\nSkipped:\n")
	for _, is := range r.Issues {
		b.WriteString(fmt.Sprintf("- %s/%s: %s\n", is.Unit, is.Concentration, is.Error))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteYAML renders the whole report as YAML.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// WriteCSV renders the group rows as CSV. Issues are not included.
func (r *Report) WriteCSV(w io.Writer) error {
	rows := r.Groups
	if rows == nil {
		rows = []GroupRow{}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	return nil
}

// Write renders the report in the named format: text, yaml or csv.
func (r *Report) Write(w io.Writer, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return r.WriteText(w)
	case "yaml", "yml":
		return r.WriteYAML(w)
	case "csv":
		return r.WriteCSV(w)
	}
	return fmt.Errorf("unsupported report format: %s (use text|yaml|csv)", format)
}

// OnlyLargest returns a copy of r keeping only the largest group of each unit.
func (r *Report) OnlyLargest() *Report {
	out := &Report{Issues: r.Issues}
	for _, g := range r.Groups {
		if g.Largest {
			out.Groups = append(out.Groups, g)
		}
	}
	return out
}
