package importer

import (
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/reqtrace/reqtrace/internal/model"
)

// Item declarations are recognized as a backtick-quoted ID anywhere in a
// line, or as a bare ID inside a heading line. Section keywords must start
// the line; optional bold markers around the keyword are tolerated.
var (
	backtickIDRe = regexp.MustCompile("`([a-zA-Z]+)~([a-zA-Z0-9._-]+)~(\\d+)`")
	itemRefRe    = regexp.MustCompile(`([a-zA-Z]+)~([a-zA-Z0-9._-]+)~(\d+)`)

	needsRe        = regexp.MustCompile(`(?i)^\*{0,2}Needs:\*{0,2}\s*(.+)$`)
	coversBareRe   = regexp.MustCompile(`(?i)^\*{0,2}Covers:\*{0,2}\s*$`)
	coversInlineRe = regexp.MustCompile(`(?i)^\*{0,2}Covers:\*{0,2}\s*(.+)$`)
	dependsRe      = regexp.MustCompile(`(?i)^\*{0,2}Depends:\*{0,2}\s*$`)
	tagsRe         = regexp.MustCompile(`(?i)^\*{0,2}Tags:\*{0,2}\s*(.+)$`)
	statusRe       = regexp.MustCompile(`(?i)^\*{0,2}Status:\*{0,2}\s*(draft|proposed|approved|rejected)\s*$`)
	rationaleRe    = regexp.MustCompile(`(?i)^\*{0,2}Rationale:\*{0,2}\s*$`)
	commentRe      = regexp.MustCompile(`(?i)^\*{0,2}Comment:\*{0,2}\s*$`)
)

// section tracks which free-text block is currently collecting lines.
type section int

const (
	secDescription section = iota
	secRationale
	secComment
	secCovers
	secDepends
)

// MarkdownImporter extracts fully-attributed items from markdown
// specification documents.
type MarkdownImporter struct {
	logger *slog.Logger
}

// NewMarkdownImporter constructs a markdown importer.
func NewMarkdownImporter(logger *slog.Logger) *MarkdownImporter {
	return &MarkdownImporter{logger: logger}
}

// ImportDir scans root recursively for .md/.markdown files.
func (mi *MarkdownImporter) ImportDir(root string) ([]model.Item, error) {
	return scanDir(root, isMarkdownFile, mi.logger, mi.ImportFile)
}

// ImportFile parses one markdown document.
func (mi *MarkdownImporter) ImportFile(path string) ([]model.Item, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	return mi.parse(lines, path)
}

func (mi *MarkdownImporter) parse(lines []string, path string) ([]model.Item, error) {
	var items []model.Item
	for i := 0; i < len(lines); i++ {
		m := matchDeclaration(lines[i])
		if m == nil {
			continue
		}
		item, next, err := mi.parseItem(lines, i, path, m)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		// The boundary line is reprocessed as the next item's start.
		i = next - 1
	}
	return items, nil
}

// matchDeclaration returns the submatches of an item declaration on this
// line, or nil.
func matchDeclaration(line string) []string {
	if m := backtickIDRe.FindStringSubmatch(line); m != nil {
		return m
	}
	if isHeading(line) {
		if m := itemRefRe.FindStringSubmatch(headingText(line)); m != nil {
			return m
		}
	}
	return nil
}

// parseItem accumulates attribute lines starting at the declaration on
// lines[start] until the next declaration or end of file. It returns the
// finished item and the index of the boundary line.
func (mi *MarkdownImporter) parseItem(lines []string, start int, path string, m []string) (model.Item, int, error) {
	loc := model.NewLocation(path, start+1)
	revision, err := parseRevision(m[3], loc)
	if err != nil {
		return model.Item{}, 0, err
	}
	id := model.NewItemID(m[1], m[2], revision)

	b := model.NewItem(id).Location(loc)

	if start > 0 && isHeading(lines[start-1]) {
		b.Title(headingText(lines[start-1]))
	}
	if isHeading(lines[start]) {
		b.Title(titleFromHeading(lines[start], m[0], id))
	}

	cur := secDescription
	blocks := map[section][]string{}
	var covers, depends []model.ItemID

	next := len(lines)
	for j := start + 1; j < len(lines); j++ {
		line := lines[j]
		if matchDeclaration(line) != nil {
			next = j
			break
		}

		switch {
		case needsRe.MatchString(line):
			b.Needs(splitList(needsRe.FindStringSubmatch(line)[1])...)
		case coversBareRe.MatchString(line):
			cur = secCovers
		case coversInlineRe.MatchString(line):
			b.Covers(parseRefList(coversInlineRe.FindStringSubmatch(line)[1])...)
		case dependsRe.MatchString(line):
			cur = secDepends
		case tagsRe.MatchString(line):
			b.Tag(splitList(tagsRe.FindStringSubmatch(line)[1])...)
		case statusRe.MatchString(line):
			b.Status(model.ParseStatus(statusRe.FindStringSubmatch(line)[1]))
		case rationaleRe.MatchString(line):
			cur = secRationale
		case commentRe.MatchString(line):
			cur = secComment
		case isBullet(line):
			switch cur {
			case secCovers:
				if ref, ok := extractRef(line); ok {
					covers = append(covers, ref)
				}
			case secDepends:
				if ref, ok := extractRef(line); ok {
					depends = append(depends, ref)
				}
			default:
				blocks[textBlock(cur)] = append(blocks[textBlock(cur)], line)
			}
		default:
			// Plain text, blank lines included, accumulates into the
			// active free-text block.
			blocks[textBlock(cur)] = append(blocks[textBlock(cur)], line)
		}
	}

	if text := joinBlock(blocks[secDescription]); text != "" {
		b.Description(text)
	}
	if text := joinBlock(blocks[secRationale]); text != "" {
		b.Rationale(text)
	}
	if text := joinBlock(blocks[secComment]); text != "" {
		b.Comment(text)
	}
	b.Covers(covers...)
	b.Depends(depends...)

	return b.Build(), next, nil
}

// textBlock maps the current section to the free-text block that collects
// plain lines. Covers and Depends only consume bullets; their surrounding
// text belongs to the description.
func textBlock(cur section) section {
	switch cur {
	case secDescription, secRationale, secComment:
		return cur
	}
	return secDescription
}

// titleFromHeading derives a title from a heading that contains the item
// declaration itself: the heading text minus the declaration token, or the
// bare ID text when nothing else remains.
func titleFromHeading(line, token string, id model.ItemID) string {
	text := headingText(line)
	stripped := strings.Replace(text, token, "", 1)
	if stripped == text {
		stripped = strings.Replace(text, id.String(), "", 1)
	}
	if title := strings.TrimSpace(stripped); title != "" {
		return title
	}
	return id.String()
}

func isHeading(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), "#")
}

func headingText(line string) string {
	text := strings.TrimLeft(line, " \t")
	text = strings.TrimLeft(text, "#")
	return strings.TrimSpace(text)
}

func isBullet(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "-") ||
		strings.HasPrefix(trimmed, "*") ||
		strings.HasPrefix(trimmed, "+")
}

// extractRef pulls the first item reference out of a bullet line. Lines
// without a well-formed reference are skipped.
func extractRef(line string) (model.ItemID, bool) {
	m := itemRefRe.FindStringSubmatch(line)
	if m == nil {
		return model.ItemID{}, false
	}
	id, err := model.ParseID(m[1] + "~" + m[2] + "~" + m[3])
	if err != nil {
		return model.ItemID{}, false
	}
	return id, true
}

// parseRefList parses a comma-separated list of item references.
func parseRefList(s string) []model.ItemID {
	var ids []model.ItemID
	for _, part := range splitList(s) {
		if id, ok := extractRef(part); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func joinBlock(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func isMarkdownFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
