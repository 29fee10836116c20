// Package trace orchestrates a tracing run: it drives the importers over
// their configured roots, hands the merged item set to the linker, and
// aggregates coverage statistics and defect narratives into a Result.
package trace

import (
	"log/slog"

	"github.com/reqtrace/reqtrace/internal/config"
	"github.com/reqtrace/reqtrace/internal/importer"
	"github.com/reqtrace/reqtrace/internal/linker"
	"github.com/reqtrace/reqtrace/internal/model"
)

// Tracer runs the import → link → analyze pipeline.
type Tracer struct {
	cfg    *config.Config
	tags   *importer.TagImporter
	specs  *importer.MarkdownImporter
	logger *slog.Logger
}

// New constructs a Tracer. The importers receive their file filter and
// logger here; nothing else configures them.
func New(cfg *config.Config, logger *slog.Logger) *Tracer {
	return &Tracer{
		cfg:    cfg,
		tags:   importer.NewTagImporter(importer.FileFilter(cfg.SourceFilter()), logger),
		specs:  importer.NewMarkdownImporter(logger),
		logger: logger,
	}
}

// Run executes one complete trace. Structurally broken input (unreadable
// files, malformed identifiers) aborts with an error; linker findings are
// reported inside the Result instead.
func (t *Tracer) Run() (*Result, error) {
	var items []model.Item

	// Both importer scans complete before linking starts: the linker
	// needs the entire merged set.
	for _, dir := range t.cfg.SourceDirs {
		if t.cfg.Verbose {
			t.logger.Info("scanning source directory", "dir", dir)
		}
		dirItems, err := t.tags.ImportDir(dir)
		if err != nil {
			return nil, err
		}
		items = append(items, dirItems...)
	}
	for _, dir := range t.cfg.SpecDirs {
		if t.cfg.Verbose {
			t.logger.Info("scanning spec directory", "dir", dir)
		}
		dirItems, err := t.specs.ImportDir(dir)
		if err != nil {
			return nil, err
		}
		items = append(items, dirItems...)
	}

	linked := linker.New().Link(items)
	return analyze(linked), nil
}
