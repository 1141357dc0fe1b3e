/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ssargent/cccc/pkg/cccc"
	"github.com/ssargent/cccc/pkg/config"
	"github.com/ssargent/cccc/pkg/logging"
	"github.com/ssargent/cccc/pkg/metrics"
)

type appKey struct{}

// app is the state shared by all subcommands for one invocation.
type app struct {
	cfg      *config.Config
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func (a *app) fileOptions() ([]cccc.Option, error) {
	opts, err := a.cfg.FileOptions()
	if err != nil {
		return nil, err
	}
	return append(opts, cccc.WithMetrics(a.metrics)), nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cccc",
	Short: "Inspect CCCC sequential record files",
	Long: `cccc inspects files written in the CCCC interface format: sequences of
records framed by leading and trailing length markers, in binary or ASCII.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		if a == nil || a.cfg.Metrics.File == "" {
			return nil
		}
		return metrics.WriteTextfile(a.cfg.Metrics.File, a.registry)
	},
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	override(flags, "log-level", &cfg.Logging.Level)
	override(flags, "log-format", &cfg.Logging.Format)
	override(flags, "metrics-file", &cfg.Metrics.File)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logCfg := cfg.LoggingConfig()
	logCfg.Output = cmd.ErrOrStderr()
	logging.Init(logCfg)

	reg := prometheus.NewRegistry()
	a := &app{cfg: cfg, registry: reg, metrics: metrics.New(reg)}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appKey{}, a))
	return nil
}

// override replaces dst with the flag's value when it was set explicitly.
func override(flags *pflag.FlagSet, name string, dst *string) {
	if flags.Changed(name) {
		*dst, _ = flags.GetString(name)
	}
}

// loadConfig reads --config, or the default path when it exists, or falls
// back to defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.GetDefaultConfigPath()
		if !config.ConfigExists(path) {
			return config.DefaultConfig(), nil
		}
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, errors.Wrap(err, "loading configuration")
	}
	return cfg, nil
}

func appFrom(cmd *cobra.Command) *app {
	if cmd.Context() == nil {
		return nil
	}
	a, _ := cmd.Context().Value(appKey{}).(*app)
	return a
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if hints := errors.FlattenHints(err); hints != "" {
			rootCmd.PrintErrln("hint:", hints)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default is $HOME/.config/cccc/config.yaml if present)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format: console or json")
	rootCmd.PersistentFlags().String("metrics-file", "", "Write Prometheus metrics to this textfile on exit")
}
