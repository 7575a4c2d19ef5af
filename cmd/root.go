package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/runmanager/internal/application/datasets"
	"github.com/zjrosen/runmanager/internal/config"
	"github.com/zjrosen/runmanager/internal/domain/dataset"
	"github.com/zjrosen/runmanager/internal/log"
	"github.com/zjrosen/runmanager/internal/paths"
	"github.com/zjrosen/runmanager/internal/tracing"
)

var localConfigPath = filepath.Join(paths.LocalConfigDir, "config.yaml")

var (
	version   = "dev"
	cfgFile   string
	rootPath  string
	debugFlag bool
	cfg       config.Config
	// configErr holds a config read failure for PersistentPreRunE to report.
	configErr error

	tracingProvider *tracing.Provider
	logCleanup      func()
)

var rootCmd = &cobra.Command{
	Use:   "runmanager",
	Short: "Manage dataset collections for LFADS training runs",
	Long: `runmanager keeps track of a collection of recording datasets and the
training runs built on top of them.

It loads per-dataset info files lazily, filters the collection down to the
datasets that can serve a run's batch size, reports the largest feasible batch
size, and builds the training command line for a run.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./.runmanager/config.yaml or ~/.config/runmanager/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootPath, "path", "p", "",
		"collection root directory (overrides collection.path)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"write debug logs (also RUNMANAGER_DEBUG=1; file from RUNMANAGER_LOG)")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("collection.name", defaults.Collection.Name)
	viper.SetDefault("collection.path", defaults.Collection.Path)
	viper.SetDefault("collection.info_file", defaults.Collection.InfoFile)
	viper.SetDefault("cache.enabled", defaults.Cache.Enabled)
	viper.SetDefault("cache.ttl", defaults.Cache.TTL)
	viper.SetDefault("index.enabled", defaults.Index.Enabled)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("launch.program", defaults.Launch.Program)
	viper.SetDefault("launch.script", defaults.Launch.Script)
	viper.SetDefault("launch.output_dir", defaults.Launch.OutputDir)
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)

	configErr = nil
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .runmanager/config.yaml (current directory)
		// 2. ~/.config/runmanager/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			viper.AddConfigPath(paths.UserConfigDir())
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// No config anywhere: create the default in the current directory.
			if writeErr := config.WriteDefaultConfig(localConfigPath); writeErr == nil {
				viper.SetConfigFile(localConfigPath)
				_ = viper.ReadInConfig()
			}
		} else {
			configErr = fmt.Errorf("reading config: %w", err)
		}
	}

	cfg = config.Config{}
	if err := viper.Unmarshal(&cfg); err != nil && configErr == nil {
		configErr = fmt.Errorf("decoding config: %w", err)
	}
}

// setup starts logging and tracing and validates the loaded config.
func setup(_ *cobra.Command, _ []string) error {
	if os.Getenv("RUNMANAGER_DEBUG") != "" || debugFlag {
		logPath := os.Getenv("RUNMANAGER_LOG")
		if logPath == "" {
			logPath = "debug.log"
		}
		cleanup, err := log.Init(logPath)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		logCleanup = cleanup
		log.Info(log.CatConfig, "runmanager starting", "version", version, "config", viper.ConfigFileUsed())
	}

	if configErr != nil {
		return configErr
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	tracingCfg := tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Exporter:     cfg.Tracing.Exporter,
		FilePath:     paths.ExpandHome(cfg.Tracing.FilePath),
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
		ServiceName:  tracing.DefaultServiceName,
	}
	if tracingCfg.FilePath == "" {
		tracingCfg.FilePath = paths.DefaultTracePath(configDir())
	}
	provider, err := tracing.NewProvider(tracingCfg)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	tracingProvider = provider
	return nil
}

// shutdown flushes traces and closes the log file.
func shutdown() {
	if tracingProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := tracingProvider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "tracing shutdown failed", err)
		}
		cancel()
		tracingProvider = nil
	}
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
}

// configDir returns the directory of the config file in use, or "" when none.
func configDir() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return filepath.Dir(used)
	}
	return ""
}

// openService builds the dataset service for the loaded config and flags.
// progress may be nil.
func openService(progress dataset.ProgressReporter) (*datasets.Service, error) {
	var root string
	if rootPath != "" {
		abs, err := filepath.Abs(paths.ExpandHome(rootPath))
		if err != nil {
			return nil, fmt.Errorf("resolving --path: %w", err)
		}
		root = abs
	}

	var tracer trace.Tracer
	if tracingProvider != nil && tracingProvider.Enabled() {
		tracer = tracingProvider.Tracer()
	}

	return datasets.NewService(datasets.Options{
		Config:   cfg,
		BaseDir:  paths.ProjectDir(viper.ConfigFileUsed()),
		Root:     root,
		Tracer:   tracer,
		Progress: progress,
	})
}

// progressTo reports each dataset load as "loading <position>/<total> <name>".
func progressTo(w io.Writer) dataset.ProgressReporter {
	return dataset.ProgressFunc(func(position, total int, name string) {
		_, _ = fmt.Fprintf(w, "loading %d/%d %s\n", position, total, name)
	})
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	defer shutdown()
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
