package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reqtrace/reqtrace/internal/report"
	"github.com/reqtrace/reqtrace/internal/trace"
)

var (
	traceSourceDirs []string
	traceSpecDirs   []string
	traceHTMLOut    string
	traceJSONOut    string
	traceShowItems  bool
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Run a trace and report coverage and defects",
	Long: `Scans the configured source and spec directories, links every item,
and prints a coverage summary. Exits with status 1 when defects are
found, so the command can gate CI pipelines.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(traceSourceDirs) > 0 {
			cfg.SourceDirs = traceSourceDirs
		}
		if len(traceSpecDirs) > 0 {
			cfg.SpecDirs = traceSpecDirs
		}

		res, err := trace.New(cfg, logger).Run()
		if err != nil {
			return err
		}

		if traceHTMLOut != "" {
			path := reportPath(traceHTMLOut, "report.html")
			if err := report.NewHTMLReporter().WriteFile(res, path); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "wrote %s\n", path)
		}
		if traceJSONOut != "" {
			path := reportPath(traceJSONOut, "report.json")
			if err := report.NewJSONReporter().WriteFile(res, path); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "wrote %s\n", path)
		}

		text := report.NewTextReporter()
		text.ShowItems = traceShowItems
		if err := text.Write(res, os.Stdout); err != nil {
			return err
		}

		if !res.Success {
			os.Exit(1)
		}
		return nil
	},
}

// reportPath resolves a report destination: an explicit file path is used
// as-is, the word "auto" places the default name under the configured
// output directory.
func reportPath(flag, defaultName string) string {
	if flag == "auto" {
		return filepath.Join(cfg.OutputDir, defaultName)
	}
	return flag
}

func init() {
	traceCmd.Flags().StringSliceVar(&traceSourceDirs, "source-dir", nil, "source directory to scan for coverage tags (repeatable, overrides config)")
	traceCmd.Flags().StringSliceVar(&traceSpecDirs, "spec-dir", nil, "spec directory to scan for markdown items (repeatable, overrides config)")
	traceCmd.Flags().StringVar(&traceHTMLOut, "html", "", "write an HTML report to the given path (\"auto\" uses the output dir)")
	traceCmd.Flags().StringVar(&traceJSONOut, "json", "", "write a JSON report to the given path (\"auto\" uses the output dir)")
	traceCmd.Flags().BoolVar(&traceShowItems, "items", false, "list every item with its coverage status")
}
