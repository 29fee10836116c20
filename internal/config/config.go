// Package config holds the trace configuration: scan roots, file patterns,
// and the artifact-type vocabulary. Configuration is always passed
// explicitly; nothing in the engine reaches for a global default.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
)

// FileName is the configuration file discovered in the working directory
// or any of its parents.
const FileName = ".reqtrace.toml"

// Config describes one tracing run.
type Config struct {
	// SourceDirs are scanned for inline coverage tags.
	SourceDirs []string `toml:"source_dirs"`
	// SpecDirs are scanned for markdown item declarations.
	SpecDirs []string `toml:"spec_dirs"`
	// SourcePatterns select which files inside SourceDirs are scanned.
	SourcePatterns []string `toml:"source_patterns"`
	// ExcludePatterns drop files regardless of SourcePatterns.
	ExcludePatterns []string `toml:"exclude_patterns"`
	// ArtifactTypes is the known vocabulary. Informational: the linker
	// accepts any type; reports use this for grouping hints.
	ArtifactTypes []string `toml:"artifact_types"`
	// Verbose enables scan progress logging.
	Verbose bool `toml:"verbose"`
	// OutputDir receives generated reports.
	OutputDir string `toml:"output_dir"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		SourceDirs: []string{"src"},
		SpecDirs:   []string{"docs"},
		SourcePatterns: []string{
			"*.go", "*.rs", "*.java", "*.c", "*.cpp", "*.h", "*.hpp",
			"*.py", "*.js", "*.ts", "*.rb", "*.php", "*.sh", "*.sql",
			"*.adl", "*.atl",
		},
		ExcludePatterns: []string{
			"vendor/**", "node_modules/**", ".git/**", "target/**",
			"*.tmp", "*.bak",
		},
		ArtifactTypes: []string{
			"feat", "req", "arch", "dsn", "impl",
			"utest", "itest", "stest", "uman", "oman",
		},
		OutputDir: "reports",
	}
}

// Load reads a TOML configuration file.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the configuration as TOML.
func (c *Config) Save(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("saving config %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encoding config %s: %w", path, err)
	}
	return nil
}

// Discover searches for FileName starting at dir and walking up parent
// directories. It returns the loaded config and the path it came from, or
// ok=false when no config file exists.
func Discover(dir string) (cfg *Config, path string, ok bool, err error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", false, err
	}
	for {
		candidate := filepath.Join(current, FileName)
		if _, statErr := os.Stat(candidate); statErr == nil {
			cfg, err := Load(candidate)
			if err != nil {
				return nil, "", false, err
			}
			return cfg, candidate, true, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return nil, "", false, nil
		}
		current = parent
	}
}

// SourceFilter compiles the include/exclude patterns into the predicate
// handed to the tag importer. Patterns match against the slash-separated
// path and, for extension-style patterns, the base name. Invalid patterns
// never match.
func (c *Config) SourceFilter() func(path string) bool {
	return func(path string) bool {
		slashed := filepath.ToSlash(path)
		base := filepath.Base(slashed)
		for _, pattern := range c.ExcludePatterns {
			if matchPattern(pattern, slashed, base) {
				return false
			}
		}
		for _, pattern := range c.SourcePatterns {
			if matchPattern(pattern, slashed, base) {
				return true
			}
		}
		return false
	}
}

func matchPattern(pattern, slashed, base string) bool {
	if ok, err := doublestar.Match(pattern, slashed); err == nil && ok {
		return true
	}
	// "*.go" style patterns should match files at any depth.
	if ok, err := doublestar.Match(pattern, base); err == nil && ok {
		return true
	}
	// "target/**" style patterns should also match when the directory
	// appears somewhere below the scan root.
	if ok, err := doublestar.Match("**/"+pattern, slashed); err == nil && ok {
		return true
	}
	return false
}
