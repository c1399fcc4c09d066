// Package cmd implements the nacre command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/nacre/internal/config"
	"github.com/zjrosen/nacre/internal/log"
	"github.com/zjrosen/nacre/internal/paths"
	"github.com/zjrosen/nacre/internal/tracing"
)

var (
	version = "dev"
	cfgFile string
	logFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "nacre",
	Short: "Inspect and transform model graph documents",
	Long: `Nacre materializes JSON or YAML documents into live model graphs,
deduplicating nested objects by uuid, and renders, clones, or diffs
the result.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/nacre/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "",
		"write debug logs to this file")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("format", defaults.Format)
	viper.SetDefault("registry.key_attribute", defaults.Registry.KeyAttribute)
	viper.SetDefault("registry.allow_overrides", defaults.Registry.AllowOverrides)
	viper.SetDefault("registry.ttl", defaults.Registry.TTL)
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .nacre/config.yaml (current directory)
		// 2. ~/.config/nacre/config.yaml (user config)
		if _, err := os.Stat(paths.LocalConfigFile()); err == nil {
			viper.SetConfigFile(paths.LocalConfigFile())
		} else {
			viper.AddConfigPath(paths.UserConfigDir())
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create the user-level default
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := paths.UserConfigFile()
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// runSetup holds per-command resources torn down after the run.
type runSetup struct {
	provider   *tracing.Provider
	logCleanup func()
}

func (s *runSetup) close() {
	_ = s.provider.Shutdown(context.Background())
	s.logCleanup()
}

// setupRun validates the configuration and starts logging and tracing for a
// command run. forceTrace lets a --trace flag override the config file.
func setupRun(forceTrace bool) (*runSetup, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logCleanup := func() {}
	logPath := logFile
	if logPath == "" {
		logPath = os.Getenv("NACRE_LOG")
	}
	if logPath != "" {
		var err error
		logCleanup, err = log.Init(logPath)
		if err != nil {
			return nil, fmt.Errorf("initializing logging: %w", err)
		}
		log.Info(log.CatCLI, "nacre starting", "version", version, "logPath", logPath)
	}

	tcfg := tracing.Config{
		Enabled:      cfg.Tracing.Enabled || forceTrace,
		Exporter:     cfg.Tracing.Exporter,
		FilePath:     cfg.Tracing.FilePath,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
		ServiceName:  "nacre",
	}
	if tcfg.FilePath == "" {
		tcfg.FilePath = config.DefaultTracesFilePath()
	}
	provider, err := tracing.NewProvider(tcfg)
	if err != nil {
		logCleanup()
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	return &runSetup{provider: provider, logCleanup: logCleanup}, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
