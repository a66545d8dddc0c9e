// Package main provides the stratalign binary entry point.
// Stratalign analyzes strategic-plan/action-plan alignment graphs:
// it validates serialized graph snapshots, computes alignment metrics,
// detects execution gaps, and exports the graph for visualization.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stratalign/stratalign/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "stratalign"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)
	app := &appContext{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Strategic alignment graph analyzer",
		Long: `Stratalign analyzes how well an action plan executes a strategic plan.

It loads serialized alignment graphs, validates them against the
balanced-scorecard schema, computes the six alignment metrics, detects
orphans and execution gaps, and exports the graph for visualization.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(logLevel)
			return app.load(configPath)
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		validateCmd(app),
		scoreCmd(app),
		analyzeCmd(app),
		exportCmd(app),
		watchCmd(app),
		versionCmd(),
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}

// appContext carries the resolved configuration into subcommands.
type appContext struct {
	cfg *config.Config
}

func (a *appContext) load(path string) error {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg
	return nil
}

func setupLogging(level string) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}
