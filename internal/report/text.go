package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/reqtrace/reqtrace/internal/trace"
	"github.com/reqtrace/reqtrace/internal/ui"
)

// TextReporter writes the terminal summary: a per-type coverage table,
// the defect narratives, and a one-line verdict.
type TextReporter struct {
	// ShowItems additionally lists every item with its coverage status.
	ShowItems bool
}

// NewTextReporter constructs a text reporter.
func NewTextReporter() *TextReporter {
	return &TextReporter{}
}

// Write renders the summary to w.
func (r *TextReporter) Write(res *trace.Result, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tCOVERED\tTOTAL\tCOVERAGE")
	for _, t := range res.ArtifactTypes() {
		s := res.CoverageSummary[t]
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n",
			t, s.Covered, s.Total,
			ui.RenderCoverage(s.Status, fmt.Sprintf("%.1f%%", s.Percentage)))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if r.ShowItems {
		fmt.Fprintln(w)
		itw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
		for i := range res.Items {
			li := &res.Items[i]
			loc := ""
			if li.Item.Location != nil {
				loc = li.Item.Location.String()
			}
			fmt.Fprintf(itw, "%s\t%s\t%s\t%s\n",
				ui.RenderCoverage(li.Coverage, string(li.Coverage)),
				li.Item.ID, li.Title(), ui.RenderMuted(loc))
		}
		if err := itw.Flush(); err != nil {
			return err
		}
	}

	if len(res.Defects) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Defects:")
		for _, desc := range res.DefectDescriptions() {
			fmt.Fprintf(w, "  %s\n", ui.RenderDefect(desc))
		}
		fmt.Fprintln(w)
		for _, msg := range res.DefectMessages() {
			fmt.Fprintf(w, "  %s\n", msg)
		}
	}

	fmt.Fprintln(w)
	verdict := ui.RenderOK("ok")
	if !res.Success {
		verdict = ui.RenderDefect("not ok")
	}
	fmt.Fprintf(w, "%d items, %d defects, %.1f%% coverage: %s\n",
		res.TotalItems, res.DefectCount, res.CoveragePercentage(), verdict)
	return nil
}
