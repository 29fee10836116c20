package importer

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/reqtrace/reqtrace/internal/model"
)

// Full tag: [type(~name~revision)? -> type~name~revision (>> needs-list)?]
// Short tag: [[type~name~revision : type]]
// A tag never spans lines; several non-overlapping tags may share one line.
var (
	fullTagRe = regexp.MustCompile(
		`\[\s*([a-zA-Z]+)(?:~([a-zA-Z0-9._-]+)~(\d+))?\s*->\s*([a-zA-Z]+)~([a-zA-Z0-9._-]+)~(\d+)\s*(?:>>\s*([a-zA-Z0-9,\s]+))?\s*\]`)
	shortTagRe = regexp.MustCompile(
		`\[\[\s*([a-zA-Z]+)~([a-zA-Z0-9._-]+)~(\d+)\s*:\s*([a-zA-Z]+)\s*\]\]`)
)

// TagImporter extracts covering items from inline tags in source text.
type TagImporter struct {
	filter FileFilter
	logger *slog.Logger
}

// NewTagImporter constructs an importer scanning only files accepted by
// filter.
func NewTagImporter(filter FileFilter, logger *slog.Logger) *TagImporter {
	return &TagImporter{filter: filter, logger: logger}
}

// ImportDir scans root recursively for tags in files passing the filter.
func (ti *TagImporter) ImportDir(root string) ([]model.Item, error) {
	return scanDir(root, ti.filter, ti.logger, ti.ImportFile)
}

// ImportFile scans every line of one file for tags.
func (ti *TagImporter) ImportFile(path string) ([]model.Item, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	var items []model.Item
	for i, line := range lines {
		lineItems, err := ti.parseLine(line, path, i+1)
		if err != nil {
			return nil, err
		}
		items = append(items, lineItems...)
	}
	return items, nil
}

// parseLine captures every tag on one physical line.
func (ti *TagImporter) parseLine(line, path string, lineNo int) ([]model.Item, error) {
	var items []model.Item
	loc := model.NewLocation(path, lineNo)

	for _, m := range fullTagRe.FindAllStringSubmatch(line, -1) {
		item, err := ti.buildFullTag(m, loc)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	for _, m := range shortTagRe.FindAllStringSubmatch(line, -1) {
		item, err := ti.buildShortTag(m, loc)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

func (ti *TagImporter) buildFullTag(m []string, loc model.Location) (model.Item, error) {
	artifactType, name, revisionStr := m[1], m[2], m[3]
	targetType, targetName, targetRevStr := m[4], m[5], m[6]
	needsStr := m[7]

	targetRev, err := parseRevision(targetRevStr, loc)
	if err != nil {
		return model.Item{}, err
	}

	itemName := name
	revision := 0
	if name == "" {
		itemName = syntheticName(targetName, loc)
	} else {
		revision, err = parseRevision(revisionStr, loc)
		if err != nil {
			return model.Item{}, err
		}
	}

	b := model.NewItem(model.NewItemID(artifactType, itemName, revision)).
		Covers(model.NewItemID(targetType, targetName, targetRev)).
		Location(loc)
	if needsStr != "" {
		b.Needs(splitList(needsStr)...)
	}
	return b.Build(), nil
}

func (ti *TagImporter) buildShortTag(m []string, loc model.Location) (model.Item, error) {
	targetType, targetName, targetRevStr := m[1], m[2], m[3]
	artifactType := m[4]

	targetRev, err := parseRevision(targetRevStr, loc)
	if err != nil {
		return model.Item{}, err
	}

	return model.NewItem(model.NewItemID(artifactType, syntheticName(targetName, loc), 0)).
		Covers(model.NewItemID(targetType, targetName, targetRev)).
		Location(loc).
		Build(), nil
}

// syntheticName derives a name for an anonymous covering item from the
// target name and a stable 64-bit hash of the exact "path:line" string.
// Identical input always yields identical names; collisions require the
// same tag at the same location.
func syntheticName(targetName string, loc model.Location) string {
	h := fnv.New64a()
	h.Write([]byte(loc.String()))
	return fmt.Sprintf("%s-%d", targetName, h.Sum64())
}

// parseRevision parses a matched revision. The grammar only admits digits,
// so a failure here means an out-of-range revision; it aborts the file's
// import.
func parseRevision(s string, loc model.Location) (int, error) {
	rev, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, &model.ParseError{
			Message:  fmt.Sprintf("invalid revision number %q", s),
			Location: loc.String(),
		}
	}
	return int(rev), nil
}
