package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/dsg/internal/config"
	"github.com/aretw0/dsg/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dsg",
	Short: "dsg consumes a Dynamic Scene Graph stream",
	Long: `dsg connects to a DSG server, rebuilds the scene it streams and
reports progress, scene summaries and metrics.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text, json)")
}

// setup loads the configuration, applies the persistent flags and builds the logger.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat, _ = cmd.Flags().GetString("log-format")
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return cfg, nil, err
	}
	format, err := logging.ParseFormat(cfg.LogFormat)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logging.NewWithWriter(os.Stderr, level, format), nil
}

// sessionFlags registers the flags shared by connect and replay.
func sessionFlags(cmd *cobra.Command) {
	cmd.Flags().String("status-file", "", "Write progress to this JSON file")
	cmd.Flags().String("http", "", "Serve status, scene and metrics on this address (e.g. :8080)")
	cmd.Flags().Bool("normalize", false, "Normalize coordinates into the unit cube")
	cmd.Flags().Bool("vr", false, "VR mode (disables normalization)")
	cmd.Flags().Float64("time-scale", 1, "Scale applied to view timelines")
	cmd.Flags().Bool("temporal", false, "Request temporal geometry")
}

// applySessionFlags overrides cfg with the flags the user set explicitly.
func applySessionFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("status-file") {
		cfg.StatusFile, _ = f.GetString("status-file")
	}
	if f.Changed("http") {
		cfg.HTTPAddr, _ = f.GetString("http")
	}
	if f.Changed("normalize") {
		cfg.Normalize, _ = f.GetBool("normalize")
	}
	if f.Changed("vr") {
		cfg.VRMode, _ = f.GetBool("vr")
	}
	if f.Changed("time-scale") {
		cfg.TimeScale, _ = f.GetFloat64("time-scale")
	}
	if f.Changed("temporal") {
		cfg.Temporal, _ = f.GetBool("temporal")
	}
	if f.Lookup("server") != nil && f.Changed("server") {
		cfg.Server, _ = f.GetString("server")
	}
	return cfg.Validate()
}
