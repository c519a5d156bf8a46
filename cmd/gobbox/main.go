package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/philipparndt/gobbox/internal/config"
	"github.com/philipparndt/gobbox/version"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gobbox [folder]",
	Short: "Bounding box annotation editor for YOLO datasets",
	Long: `gobbox edits YOLO bounding box labels of an image folder.
Without a subcommand the editor window is opened for the folder, or for the
folder opened last.`,
	Version:           version.GetFullVersion(),
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: setup,
	Run:               runEdit,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error), overrides the configuration")
}

// setup loads the configuration and creates the logger for every command
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger = NewLogger(level)
	logger.Debug("configuration loaded", "path", configPath)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
