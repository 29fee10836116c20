package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/reqtrace/reqtrace/internal/config"
	"github.com/reqtrace/reqtrace/internal/ui"
)

var (
	configPath string
	verbose    bool
	noColor    bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "reqtrace",
	Short: "Trace requirement coverage across specifications and source code",
	Long: `reqtrace collects specification items from markdown documents and
coverage tags from source code, links them into a coverage graph, and
reports which requirements are covered and which are defective.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			ui.ForceNoColor()
		} else {
			ui.Init()
		}

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelInfo
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		var err error
		cfg, err = resolveConfig()
		if err != nil {
			return err
		}
		if verbose {
			cfg.Verbose = true
		}
		return nil
	},
}

// resolveConfig loads the explicit --config file when given, otherwise
// discovers .reqtrace.toml from the working directory upward, otherwise
// falls back to defaults.
func resolveConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	found, path, ok, err := config.Discover(cwd)
	if err != nil {
		return nil, err
	}
	if ok {
		logger.Info("using config file", "path", path)
		return found, nil
	}
	return config.Default(), nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default: discover .reqtrace.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable progress logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
