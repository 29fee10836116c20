// Package report renders a trace result for humans and machines: an HTML
// report with per-item detail, a JSON dump of the full result, and a
// terminal summary.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/reqtrace/reqtrace/internal/model"
	"github.com/reqtrace/reqtrace/internal/trace"
)

// HTMLReporter renders a self-contained HTML page for one trace result.
type HTMLReporter struct {
	markdown goldmark.Markdown
}

// NewHTMLReporter constructs a reporter with GFM-flavored markdown
// rendering for item descriptions.
func NewHTMLReporter() *HTMLReporter {
	return &HTMLReporter{
		markdown: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Strikethrough,
				extension.TaskList,
			),
		),
	}
}

// htmlItem is one item prepared for the template: description converted
// from markdown, anchor made HTML-safe.
type htmlItem struct {
	ID          string
	Anchor      string
	Title       string
	Description template.HTML
	Status      model.Status
	Coverage    model.CoverageStatus
	IsDefect    bool
	Location    string
	Outgoing    []htmlLink
	Incoming    []htmlLink
	Needs       []string
	Tags        []string
}

type htmlLink struct {
	Target string
	Anchor string
	Status model.LinkStatus
}

type htmlSummaryRow struct {
	Type       string
	Total      int
	Covered    int
	Percentage string
	Status     model.CoverageStatus
}

type htmlPage struct {
	TotalItems  int
	DefectCount int
	Percentage  string
	Success     bool
	Summary     []htmlSummaryRow
	Defects     []string
	Items       []htmlItem
}

// WriteFile renders the report and writes it to path, creating parent
// directories as needed.
func (r *HTMLReporter) WriteFile(res *trace.Result, path string) error {
	page, err := r.buildPage(res)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, page); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write html report: %w", err)
	}
	return nil
}

func (r *HTMLReporter) buildPage(res *trace.Result) (*htmlPage, error) {
	items := make([]htmlItem, 0, len(res.Items))
	for i := range res.Items {
		li := &res.Items[i]
		hi := htmlItem{
			ID:       li.Item.ID.String(),
			Anchor:   anchorID(li.Item.ID),
			Title:    li.Title(),
			Status:   li.Item.Status,
			Coverage: li.Coverage,
			IsDefect: li.IsDefect,
			Needs:    li.Item.Needs,
			Tags:     li.Item.Tags,
		}
		if li.Item.Location != nil {
			hi.Location = li.Item.Location.String()
		}
		if li.Item.Description != "" {
			rendered, err := r.renderMarkdown(li.Item.Description)
			if err != nil {
				return nil, err
			}
			hi.Description = rendered
		}
		for _, link := range li.Outgoing {
			hi.Outgoing = append(hi.Outgoing, htmlLink{
				Target: link.Target.String(),
				Anchor: anchorID(link.Target),
				Status: link.Status,
			})
		}
		for _, link := range li.Incoming {
			if link.Source != nil {
				hi.Incoming = append(hi.Incoming, htmlLink{
					Target: link.Source.String(),
					Anchor: anchorID(*link.Source),
					Status: link.Status,
				})
			}
		}
		items = append(items, hi)
	}

	// Items that are covered by something come first; within each half,
	// sort by ID for a stable page.
	sort.SliceStable(items, func(a, b int) bool {
		ai, bi := len(items[a].Incoming) > 0, len(items[b].Incoming) > 0
		if ai != bi {
			return ai
		}
		return items[a].ID < items[b].ID
	})

	var summary []htmlSummaryRow
	for _, t := range res.ArtifactTypes() {
		s := res.CoverageSummary[t]
		summary = append(summary, htmlSummaryRow{
			Type:       t,
			Total:      s.Total,
			Covered:    s.Covered,
			Percentage: fmt.Sprintf("%.1f%%", s.Percentage),
			Status:     s.Status,
		})
	}

	return &htmlPage{
		TotalItems:  res.TotalItems,
		DefectCount: res.DefectCount,
		Percentage:  fmt.Sprintf("%.1f%%", res.CoveragePercentage()),
		Success:     res.Success,
		Summary:     summary,
		Defects:     res.DefectDescriptions(),
		Items:       items,
	}, nil
}

func (r *HTMLReporter) renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// anchorID turns an item ID into an HTML fragment identifier. Tildes are
// not valid in fragment names used by older tooling, so they become
// underscores.
func anchorID(id model.ItemID) string {
	return "item_" + strings.NewReplacer("~", "_", ":", "_", " ", "_", "-", "_").Replace(id.String())
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Requirement Trace Report</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem auto; max-width: 60rem; color: #24292f; }
h1, h2 { border-bottom: 1px solid #d0d7de; padding-bottom: .3rem; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #d0d7de; padding: .4rem .8rem; text-align: left; }
.covered { color: #1a7f37; }
.partial { color: #9a6700; }
.uncovered { color: #cf222e; }
.defect { border-left: 4px solid #cf222e; }
.item { border: 1px solid #d0d7de; border-radius: 6px; padding: .8rem 1rem; margin: 1rem 0; }
.meta { color: #57606a; font-size: .85rem; }
code { background: #f6f8fa; padding: .1rem .3rem; border-radius: 4px; }
</style>
</head>
<body>
<h1>Requirement Trace Report</h1>
<p>{{.TotalItems}} items, {{.DefectCount}} defects, {{.Percentage}} coverage —
{{if .Success}}<strong class="covered">OK</strong>{{else}}<strong class="uncovered">NOT OK</strong>{{end}}</p>

<h2>Coverage by Artifact Type</h2>
<table>
<tr><th>Type</th><th>Covered</th><th>Total</th><th>Coverage</th></tr>
{{range .Summary}}<tr><td>{{.Type}}</td><td>{{.Covered}}</td><td>{{.Total}}</td><td class="{{.Status}}">{{.Percentage}}</td></tr>
{{end}}</table>

{{if .Defects}}<h2>Defects</h2>
<ul>
{{range .Defects}}<li class="uncovered">{{.}}</li>
{{end}}</ul>
{{end}}

<h2>Items</h2>
{{range .Items}}<div class="item{{if .IsDefect}} defect{{end}}" id="{{.Anchor}}">
<h3><code>{{.ID}}</code> {{.Title}}</h3>
<p class="meta">status: {{.Status}} · coverage: <span class="{{.Coverage}}">{{.Coverage}}</span>{{if .Location}} · {{.Location}}{{end}}</p>
{{if .Description}}{{.Description}}{{end}}
{{if .Needs}}<p class="meta">needs: {{range .Needs}}{{.}} {{end}}</p>{{end}}
{{if .Tags}}<p class="meta">tags: {{range .Tags}}{{.}} {{end}}</p>{{end}}
{{if .Outgoing}}<p class="meta">covers:
{{range .Outgoing}}<a href="#{{.Anchor}}"><code>{{.Target}}</code></a> ({{.Status}}) {{end}}</p>{{end}}
{{if .Incoming}}<p class="meta">covered by:
{{range .Incoming}}<a href="#{{.Anchor}}"><code>{{.Target}}</code></a> ({{.Status}}) {{end}}</p>{{end}}
</div>
{{end}}
</body>
</html>
`))
