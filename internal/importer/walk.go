// Package importer extracts specification items from project files: inline
// coverage tags in source code and full item declarations in markdown.
package importer

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/reqtrace/reqtrace/internal/model"
)

// FileFilter decides whether a file path is scanned. Filters come from the
// caller (typically compiled from configured glob patterns) so importers
// carry no pattern policy of their own.
type FileFilter func(path string) bool

// importFunc parses one file into items.
type importFunc func(path string) ([]model.Item, error)

// scanDir walks root and imports every regular file accepted by filter.
// A missing root is not an error: it logs a diagnostic and yields nothing.
// Unreadable directories or files abort the whole scan.
func scanDir(root string, filter FileFilter, logger *slog.Logger, imp importFunc) ([]model.Item, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		logger.Warn("scan root does not exist, skipping", "root", root)
		return nil, nil
	}

	var items []model.Item
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", path, err)
		}
		if d.IsDir() || !filter(path) {
			return nil
		}
		fileItems, err := imp(path)
		if err != nil {
			return err
		}
		items = append(items, fileItems...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// readLines reads a file as UTF-8 and splits it into physical lines,
// tolerating CRLF endings.
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines, nil
}

// splitList splits comma-separated text, trimming entries and dropping
// empty ones.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
