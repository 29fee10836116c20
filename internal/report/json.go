package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/reqtrace/reqtrace/internal/trace"
)

// JSONReporter serializes the full trace result for machine consumption.
type JSONReporter struct{}

// NewJSONReporter constructs a JSON reporter.
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{}
}

// Write serializes the result to w with indentation.
func (r *JSONReporter) Write(res *trace.Result, w io.Writer) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}
	return nil
}

// WriteFile serializes the result to path, creating parent directories
// as needed.
func (r *JSONReporter) WriteFile(res *trace.Result, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json report: %w", err)
	}
	defer f.Close()
	return r.Write(res, f)
}
