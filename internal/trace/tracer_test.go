package trace

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/reqtrace/reqtrace/internal/config"
	"github.com/reqtrace/reqtrace/internal/linker"
	"github.com/reqtrace/reqtrace/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func analyzeItems(items ...model.Item) *Result {
	return analyze(linker.New().Link(items))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestAnalyze_CoverageSummary(t *testing.T) {
	featID := model.NewItemID("feat", "login", 1)
	res := analyzeItems(
		model.NewItem(featID).Needs("req").Build(),
		model.NewItem(model.NewItemID("feat", "logout", 1)).Needs("req").Build(),
		model.NewItem(model.NewItemID("req", "login", 1)).Covers(featID).Build(),
	)

	feat := res.CoverageSummary["feat"]
	if feat.Total != 2 || feat.Covered != 1 {
		t.Errorf("feat summary = %+v, want total 2 covered 1", feat)
	}
	if feat.Percentage != 50.0 {
		t.Errorf("feat percentage = %v, want 50", feat.Percentage)
	}
	if feat.Status != model.CoveragePartial {
		t.Errorf("feat status = %q, want partial", feat.Status)
	}

	req := res.CoverageSummary["req"]
	if req.Total != 1 || req.Covered != 1 || req.Status != model.CoverageCovered {
		t.Errorf("req summary = %+v", req)
	}
	if req.Percentage != 100.0 {
		t.Errorf("req percentage = %v, want 100", req.Percentage)
	}
}

func TestAnalyze_PercentagesAreIndependent(t *testing.T) {
	// One feat is covered, the other is not. Per-type (needs-based)
	// coverage for feat is 50%, while the overall (defect-based) figure
	// counts 1 defect out of 3 items.
	featID := model.NewItemID("feat", "login", 1)
	res := analyzeItems(
		model.NewItem(featID).Needs("req").Build(),
		model.NewItem(model.NewItemID("feat", "logout", 1)).Needs("req").Build(),
		model.NewItem(model.NewItemID("req", "login", 1)).Covers(featID).Build(),
	)

	if got := res.CoverageSummary["feat"].Percentage; got != 50.0 {
		t.Errorf("needs-based feat percentage = %v, want 50", got)
	}
	overall := res.CoveragePercentage()
	want := float64(3-1) / 3.0 * 100.0
	if overall != want {
		t.Errorf("defect-based percentage = %v, want %v", overall, want)
	}
	if overall == res.CoverageSummary["feat"].Percentage {
		t.Error("the two coverage measures should diverge on this input")
	}
}

func TestAnalyze_SuccessFlag(t *testing.T) {
	res := analyzeItems(model.NewItem(model.NewItemID("utest", "done", 1)).Build())
	if !res.Success || res.DefectCount != 0 {
		t.Errorf("Success = %v, DefectCount = %d", res.Success, res.DefectCount)
	}
	if res.CoveragePercentage() != 100.0 {
		t.Errorf("CoveragePercentage = %v", res.CoveragePercentage())
	}

	res = analyzeItems(model.NewItem(model.NewItemID("req", "x", 1)).Needs("impl").Build())
	if res.Success || res.DefectCount != 1 {
		t.Errorf("Success = %v, DefectCount = %d", res.Success, res.DefectCount)
	}
}

func TestAnalyze_EmptyInput(t *testing.T) {
	res := analyzeItems()
	if !res.Success || res.TotalItems != 0 {
		t.Errorf("empty input: Success = %v, TotalItems = %d", res.Success, res.TotalItems)
	}
	if res.CoveragePercentage() != 100.0 {
		t.Errorf("CoveragePercentage = %v, want 100 on empty input", res.CoveragePercentage())
	}
}

func TestAnalyze_UncoveredNarrative(t *testing.T) {
	res := analyzeItems(model.NewItem(model.NewItemID("req", "x", 1)).Needs("impl").Build())
	if len(res.Defects) != 1 {
		t.Fatalf("got %d defects, want 1", len(res.Defects))
	}
	d := res.Defects[0]
	if d.Description != "Item req~x~1 needs coverage by impl" {
		t.Errorf("Description = %q", d.Description)
	}
	if d.Type != model.DefectUncovered {
		t.Errorf("Type = %q, want uncovered", d.Type)
	}
	if d.ItemID == nil || *d.ItemID != model.NewItemID("req", "x", 1) {
		t.Errorf("ItemID = %v", d.ItemID)
	}
}

func TestAnalyze_TerminatingItemHasNoNeedsClause(t *testing.T) {
	// A terminating item with a broken reference is defective, but its
	// narrative must not claim missing coverage.
	res := analyzeItems(
		model.NewItem(model.NewItemID("impl", "x", 1)).
			Covers(model.NewItemID("dsn", "ghost", 1)).
			Build(),
	)
	if len(res.Defects) != 1 {
		t.Fatalf("got %d defects, want 1", len(res.Defects))
	}
	desc := res.Defects[0].Description
	if desc != "Item impl~x~1 covers non-existing item dsn~ghost~1" {
		t.Errorf("Description = %q", desc)
	}
	if strings.Contains(desc, "needs coverage") {
		t.Errorf("terminating item narrative mentions needs: %q", desc)
	}
}

func TestAnalyze_MultiIssueNarrative(t *testing.T) {
	// Orphaned reference plus missing coverage on one item.
	res := analyzeItems(
		model.NewItem(model.NewItemID("dsn", "auth", 1)).
			Needs("impl").
			Covers(model.NewItemID("feat", "ghost", 1)).
			Build(),
	)
	if len(res.Defects) != 1 {
		t.Fatalf("got %d defects, want 1", len(res.Defects))
	}
	want := "Item dsn~auth~1 has multiple issues: covers non-existing item feat~ghost~1; needs coverage by impl"
	if res.Defects[0].Description != want {
		t.Errorf("Description = %q\nwant %q", res.Defects[0].Description, want)
	}
}

func TestAnalyze_NarrativeOrdering(t *testing.T) {
	// Outdated and orphaned links declared in reverse category order:
	// the narrative still lists orphaned first, then revision issues,
	// then the needs clause with types in declaration order.
	existing := model.NewItem(model.NewItemID("req", "base", 2)).Needs("dsn").Build()
	item := model.NewItem(model.NewItemID("dsn", "auth", 1)).
		Needs("impl", "utest").
		Covers(model.NewItemID("req", "base", 1)).  // outdated
		Covers(model.NewItemID("req", "ghost", 1)). // orphaned
		Build()

	res := analyzeItems(existing, item)
	var desc string
	for _, d := range res.Defects {
		if d.ItemID != nil && d.ItemID.Name == "auth" {
			desc = d.Description
		}
	}
	want := "Item dsn~auth~1 has multiple issues: " +
		"covers non-existing item req~ghost~1; " +
		"covers outdated revision of req~base~1; " +
		"needs coverage by impl, utest"
	if desc != want {
		t.Errorf("Description = %q\nwant %q", desc, want)
	}
}

func TestAnalyze_DuplicateNarrative(t *testing.T) {
	id := model.NewItemID("req", "x", 1)
	res := analyzeItems(
		model.NewItem(id).Build(),
		model.NewItem(id).Build(),
	)
	if len(res.Defects) != 2 {
		t.Fatalf("got %d defects, want 2", len(res.Defects))
	}
	for _, d := range res.Defects {
		if d.Description != "Item req~x~1 has duplicate ID req~x~1" {
			t.Errorf("Description = %q", d.Description)
		}
		if d.Type != model.DefectDuplicate {
			t.Errorf("Type = %q, want duplicate", d.Type)
		}
	}
}

func TestResult_DefectMessages(t *testing.T) {
	dupID := model.NewItemID("req", "dup", 1)
	res := analyzeItems(
		model.NewItem(model.NewItemID("req", "a", 1)).Needs("impl").Build(),
		model.NewItem(model.NewItemID("req", "b", 1)).Needs("impl").Build(),
		model.NewItem(model.NewItemID("req", "c", 1)).Needs("dsn").Build(),
		model.NewItem(dupID).Build(),
		model.NewItem(dupID).Build(),
		model.NewItem(model.NewItemID("impl", "x", 1)).
			Covers(model.NewItemID("dsn", "ghost", 1)).
			Build(),
	)

	want := []string{
		"2 item(s) need coverage by impl",
		"1 item(s) need coverage by dsn",
		"1 item(s) have orphaned coverage",
		"2 duplicate item(s) found",
	}
	got := res.DefectMessages()
	sortable := map[string]bool{}
	for _, m := range got {
		sortable[m] = true
	}
	for _, m := range want {
		if !sortable[m] {
			t.Errorf("missing message %q in %v", m, got)
		}
	}
	if len(got) != len(want) {
		t.Errorf("DefectMessages() = %v, want %d messages", got, len(want))
	}
}

func TestResult_DefectStatistics(t *testing.T) {
	res := analyzeItems(
		model.NewItem(model.NewItemID("req", "a", 1)).Needs("impl").Build(),
		model.NewItem(model.NewItemID("impl", "x", 1)).
			Covers(model.NewItemID("dsn", "ghost", 1)).
			Build(),
	)
	stats := res.DefectStatistics()
	if stats[model.DefectUncovered] != 1 || stats[model.DefectOrphaned] != 1 {
		t.Errorf("DefectStatistics() = %v", stats)
	}
}

func TestTracer_Run(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "docs/requirements.md", `# Login Feature
`+"`feat~login~1`"+`

Users can log in.

Needs: req

# Login Requirement
`+"`req~login~1`"+`

The system shall authenticate users.

Covers: feat~login~1
`)
	writeFile(t, dir, "src/auth.go", "package auth\n\n// [impl->dsn~auth~1]\n")

	cfg := config.Default()
	cfg.SourceDirs = []string{filepath.Join(dir, "src")}
	cfg.SpecDirs = []string{filepath.Join(dir, "docs")}

	res, err := New(cfg, testLogger()).Run()
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if res.TotalItems != 3 {
		t.Fatalf("TotalItems = %d, want 3", res.TotalItems)
	}

	// feat~login~1 is covered by req~login~1.
	for i := range res.Items {
		li := &res.Items[i]
		if li.Item.ID.Type == "feat" && !li.IsCovered() {
			t.Errorf("feat item not covered: %+v", li)
		}
	}

	// The tag item covers a non-existing design: one defect.
	if res.DefectCount != 1 {
		t.Fatalf("DefectCount = %d, want 1: %v", res.DefectCount, res.DefectDescriptions())
	}
	if res.Success {
		t.Error("Success should be false with defects present")
	}
}

func TestTracer_Run_SynthesizedTagItem(t *testing.T) {
	dir := t.TempDir()
	lines := make([]string, 10)
	lines[9] = "// [impl->dsn~auth~1]"
	writeFile(t, dir, "src/a.go", strings.Join(lines, "\n")+"\n")

	cfg := config.Default()
	cfg.SourceDirs = []string{filepath.Join(dir, "src")}
	cfg.SpecDirs = nil

	res, err := New(cfg, testLogger()).Run()
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.TotalItems != 1 {
		t.Fatalf("TotalItems = %d, want 1", res.TotalItems)
	}

	item := res.Items[0].Item
	if item.ID.Type != "impl" || item.ID.Revision != 0 {
		t.Errorf("ID = %v, want impl type and revision 0", item.ID)
	}
	wantCovers := []model.ItemID{model.NewItemID("dsn", "auth", 1)}
	if !reflect.DeepEqual(item.Covers, wantCovers) {
		t.Errorf("Covers = %v, want %v", item.Covers, wantCovers)
	}
	if item.Location == nil || item.Location.Line != 10 {
		t.Errorf("Location = %v, want line 10", item.Location)
	}
}

func TestTracer_Run_Idempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "docs/spec.md", "`req~x~1`\n\nNeeds: impl\n")
	writeFile(t, dir, "src/a.go", "// [impl->req~x~1]\n// [utest->dsn~gone~2]\n")

	cfg := config.Default()
	cfg.SourceDirs = []string{filepath.Join(dir, "src")}
	cfg.SpecDirs = []string{filepath.Join(dir, "docs")}

	first, err := New(cfg, testLogger()).Run()
	if err != nil {
		t.Fatal(err)
	}
	second, err := New(cfg, testLogger()).Run()
	if err != nil {
		t.Fatal(err)
	}

	if first.DefectCount != second.DefectCount {
		t.Errorf("defect counts differ: %d vs %d", first.DefectCount, second.DefectCount)
	}
	if first.CoveragePercentage() != second.CoveragePercentage() {
		t.Errorf("coverage differs: %v vs %v", first.CoveragePercentage(), second.CoveragePercentage())
	}
	if !reflect.DeepEqual(first.CoverageSummary, second.CoverageSummary) {
		t.Errorf("summaries differ:\n%v\n%v", first.CoverageSummary, second.CoverageSummary)
	}
	if !reflect.DeepEqual(first.DefectDescriptions(), second.DefectDescriptions()) {
		t.Errorf("defect narratives differ")
	}
}

func TestTracer_Run_AbortsOnMalformedRevision(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "docs/spec.md", "`req~x~99999999999`\n")

	cfg := config.Default()
	cfg.SourceDirs = nil
	cfg.SpecDirs = []string{filepath.Join(dir, "docs")}

	if _, err := New(cfg, testLogger()).Run(); err == nil {
		t.Fatal("expected error for malformed revision")
	}
}
