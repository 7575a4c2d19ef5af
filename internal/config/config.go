// Package config provides configuration types and defaults for runmanager.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/runmanager/internal/domain/dataset"
	"github.com/zjrosen/runmanager/internal/log"
)

// Config holds all configuration options for runmanager.
type Config struct {
	Collection CollectionConfig `mapstructure:"collection"`
	Runs       []RunConfig      `mapstructure:"runs"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Index      IndexConfig      `mapstructure:"index"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	Launch     LaunchConfig     `mapstructure:"launch"`
	Watch      WatchConfig      `mapstructure:"watch"`
}

// CollectionConfig describes the dataset collection to operate on.
type CollectionConfig struct {
	Name    string `mapstructure:"name"`
	Comment string `mapstructure:"comment"`
	// Path is the collection root. Relative paths resolve against the project
	// directory: the parent of .runmanager/, the working directory for the user
	// config, or the config file's directory for any other file.
	Path     string `mapstructure:"path"`
	InfoFile string `mapstructure:"info_file"` // default: dataset.yaml
	// Datasets lists member names in order. Empty means discover from Path.
	Datasets []string `mapstructure:"datasets"`
}

// RunConfig holds the training parameters of one configured run.
type RunConfig struct {
	Name             string            `mapstructure:"name"`
	BatchSize        int               `mapstructure:"batch_size"`
	TrainToTestRatio float64           `mapstructure:"train_to_test_ratio"`
	Args             map[string]string `mapstructure:"args"` // extra --key value pairs
}

// Params converts the run to the parameters used by dataset filtering.
func (r RunConfig) Params() dataset.RunParams {
	return dataset.RunParams{
		Name:             r.Name,
		BatchSize:        r.BatchSize,
		TrainToTestRatio: r.TrainToTestRatio,
	}
}

// CacheConfig controls the in-process info cache.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// IndexConfig controls the persistent SQLite info index.
type IndexConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Path is the database file. Default: ~/.cache/runmanager/index.db
	Path string `mapstructure:"path"`
}

// TracingConfig holds tracing configuration for info loading.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: <config dir>/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

// LaunchConfig describes how training commands are built.
type LaunchConfig struct {
	Program   string `mapstructure:"program"`    // interpreter, e.g. python3
	Script    string `mapstructure:"script"`     // training entry point
	OutputDir string `mapstructure:"output_dir"` // parent of per-run save directories
	WorkDir   string `mapstructure:"work_dir"`
	// Args are --key value pairs added to every run. Run args override them.
	Args map[string]string `mapstructure:"args"`
}

// WatchConfig controls datasets:watch.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Run returns the run with the given name.
func (c Config) Run(name string) (RunConfig, bool) {
	for _, r := range c.Runs {
		if r.Name == name {
			return r, true
		}
	}
	return RunConfig{}, false
}

// RunParams returns the filtering parameters of the named runs, or of every
// configured run when names is empty.
func (c Config) RunParams(names ...string) ([]dataset.RunParams, error) {
	if len(names) == 0 {
		params := make([]dataset.RunParams, len(c.Runs))
		for i, r := range c.Runs {
			params[i] = r.Params()
		}
		return params, nil
	}

	params := make([]dataset.RunParams, 0, len(names))
	for _, name := range names {
		r, ok := c.Run(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRun, name)
		}
		params = append(params, r.Params())
	}
	return params, nil
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Collection: CollectionConfig{
			Name:     "default",
			Path:     ".",
			InfoFile: "dataset.yaml",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
		Index: IndexConfig{
			Enabled: false,
			Path:    "", // Derived from the user cache dir at runtime
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Launch: LaunchConfig{
			Program:   "python3",
			Script:    "run_lfads.py",
			OutputDir: "runs",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Validate checks the whole configuration.
func Validate(cfg Config) error {
	if err := ValidateCollection(cfg.Collection); err != nil {
		return err
	}
	if err := ValidateRuns(cfg.Runs); err != nil {
		return err
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", cfg.Cache.TTL)
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", cfg.Watch.Debounce)
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateCollection rejects duplicate or empty dataset names.
func ValidateCollection(coll CollectionConfig) error {
	if coll.InfoFile != "" && filepath.Base(coll.InfoFile) != coll.InfoFile {
		return fmt.Errorf("collection.info_file must be a file name, got %q", coll.InfoFile)
	}
	seen := make(map[string]bool, len(coll.Datasets))
	for i, name := range coll.Datasets {
		if name == "" {
			return fmt.Errorf("collection.datasets[%d]: name is required", i)
		}
		if seen[name] {
			return fmt.Errorf("collection.datasets[%d]: duplicate dataset %q", i, name)
		}
		seen[name] = true
	}
	return nil
}

// ValidateRuns checks run configurations for errors.
func ValidateRuns(runs []RunConfig) error {
	seen := make(map[string]bool, len(runs))
	for i, r := range runs {
		if r.Name == "" {
			return fmt.Errorf("runs[%d]: name is required", i)
		}
		if seen[r.Name] {
			return fmt.Errorf("runs[%d]: duplicate run %q", i, r.Name)
		}
		seen[r.Name] = true
		if r.BatchSize <= 0 {
			return fmt.Errorf("runs[%d] (%s): batch_size must be positive, got %d", i, r.Name, r.BatchSize)
		}
		if r.TrainToTestRatio < 0 || math.IsNaN(r.TrainToTestRatio) || math.IsInf(r.TrainToTestRatio, 0) {
			return fmt.Errorf("runs[%d] (%s): train_to_test_ratio must be a non-negative number, got %v", i, r.Name, r.TrainToTestRatio)
		}
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// FilePath is derived at runtime when empty, so only the endpoint is required here.
	if tracing.Enabled && tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# runmanager configuration

# Dataset collection
collection:
  name: default
  # comment: "Monkey M reaching sessions"

  # Collection root; each dataset is a sub-directory holding an info file.
  # Relative paths resolve against the directory holding .runmanager/
  # (the working directory when this is ~/.config/runmanager/config.yaml).
  path: .
  info_file: dataset.yaml

  # Member datasets in order. Leave empty to discover every sub-directory
  # of path that contains an info file.
  # datasets:
  #   - session_2019_03_14
  #   - session_2019_03_15

# Runs used by datasets:filter, batchsize and run:command
# runs:
#   - name: baseline
#     batch_size: 16
#     train_to_test_ratio: 4
#     args:
#       factors_dim: "8"

# In-process info cache
cache:
  enabled: true
  ttl: 10m

# Persistent info index; skips re-reading unchanged info files across invocations
index:
  enabled: false
  # path: ~/.cache/runmanager/index.db

# Tracing of info loads
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/runmanager/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)

# Training command construction (run:command)
launch:
  program: python3
  script: run_lfads.py
  output_dir: runs
  # work_dir: /path/to/lfads
  # args:
  #   do_causal_controller: "false"

# datasets:watch
watch:
  debounce: 500ms
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
