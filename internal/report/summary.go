package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/covidpolicy/gammaest/internal/checks"
	"github.com/covidpolicy/gammaest/pkg/types"
)

// Summary is everything the Markdown report shows.
type Summary struct {
	RunID    string
	Table    *types.GammaTable
	Findings []checks.Finding
}

// WriteSummary renders s as Markdown to path.
func WriteSummary(path string, s Summary) error {
	return createFile(path, func(f *os.File) error {
		return RenderSummary(f, s)
	})
}

// RenderSummary writes a Markdown report of s to w: the estimate table with
// one row per scope, the spread of each scope's estimates across delays, and
// any check findings. The report is built in memory and written once.
func RenderSummary(w io.Writer, s Summary) error {
	var buf bytes.Buffer
	t := s.Table
	fmt.Fprintf(&buf, "# Removal rate (gamma) estimates\n\nRun: %s\n\n", s.RunID)

	header := []string{types.ScopeIndexName}
	for _, d := range t.Delays {
		header = append(header, types.DelayLabel(d))
	}
	header = append(header, "min", "max")

	tw := newMarkdownTable(&buf)
	tw.SetHeader(header)
	for i, scope := range t.Scopes {
		row := []string{scope}
		var present []float64
		for j := range t.Delays {
			c := t.Cells[i][j]
			row = append(row, summaryCell(c))
			if !c.Missing() {
				present = append(present, c.Gamma)
			}
		}
		row = append(row, spread(present)...)
		tw.Append(row)
	}
	tw.Render()

	if len(s.Findings) > 0 {
		buf.WriteString("\n## Check findings\n\n")
		ft := newMarkdownTable(&buf)
		ft.SetHeader([]string{"rule", "severity", "scope", "delay", "value"})
		for _, f := range s.Findings {
			ft.Append([]string{f.Rule, f.Severity, f.Scope, strconv.Itoa(f.Delay), fmt.Sprintf("%.4g", f.Value)})
		}
		ft.Render()
	}

	if _, err := buf.WriteTo(w); err != nil {
		return errors.Wrap(err, "report: write summary")
	}
	return nil
}

func newMarkdownTable(w io.Writer) *tablewriter.Table {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	tw.SetCenterSeparator("|")
	return tw
}

// summaryCell shows the estimate with its observation count, or a dash.
func summaryCell(c types.Cell) string {
	if c.Missing() {
		return "-"
	}
	return fmt.Sprintf("%.4f (n=%d)", c.Gamma, c.Observations)
}

// spread returns the min and max of vals formatted, or dashes when empty.
func spread(vals []float64) []string {
	low, err := stats.Min(vals)
	if err != nil {
		return []string{"-", "-"}
	}
	high, err := stats.Max(vals)
	if err != nil {
		return []string{"-", "-"}
	}
	return []string{fmt.Sprintf("%.4f", low), fmt.Sprintf("%.4f", high)}
}
