// PlateNest extracts true 2D plate outlines from structural models and
// nests them onto stock sheets grouped by thickness.
//
// Build:
//
//	go build -o platenest ./cmd/platenest
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/piwi3910/platenest/internal/model"
	"github.com/piwi3910/platenest/internal/project"
)

const maxRecentInputs = 10

var (
	configPath string
	logLevel   string

	appConfig model.AppConfig
	logger    = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "platenest",
	Short: "Plate geometry extraction and thickness-aware nesting",
	Long: `platenest reads plate-like elements from a structural model export,
derives their real outlines with bolt holes, and nests them onto stock sheets.
Plates of different thickness never share a sheet.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", project.DefaultConfigPath(), "application config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error); defaults to the config value")
}

// setup loads the app config and installs the console logger.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := project.LoadAppConfig(configPath)
	if err != nil {
		return err
	}
	appConfig = cfg

	level := logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(lvl).
		With().Timestamp().Logger()
	return nil
}

// rememberInput records path in the recent list. Failures only warn.
func rememberInput(path string) {
	appConfig.AddRecentInput(path, maxRecentInputs)
	if err := project.SaveAppConfig(configPath, appConfig); err != nil {
		logger.Warn().Err(err).Str("config", configPath).Msg("could not update recent inputs")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
