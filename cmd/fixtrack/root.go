// ABOUTME: Root Cobra command and global flags
// ABOUTME: Loads config, builds the logger and opens the fix database

package main

import (
	"fmt"

	"github.com/harper/fixtrack/internal/config"
	"github.com/harper/fixtrack/internal/settings"
	"github.com/harper/fixtrack/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfg    *config.Config
	db     *storage.SQLiteDB
	prefs  *settings.Store
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "fixtrack",
	Short: "Background location tracking with no-motion alerts",
	Long: `
███████╗██╗██╗  ██╗████████╗██████╗  █████╗  ██████╗██╗  ██╗
██╔════╝██║╚██╗██╔╝╚══██╔══╝██╔══██╗██╔══██╗██╔════╝██║ ██╔╝
█████╗  ██║ ╚███╔╝    ██║   ██████╔╝███████║██║     █████╔╝
██╔══╝  ██║ ██╔██╗    ██║   ██╔══██╗██╔══██║██║     ██╔═██╗
██║     ██║██╔╝ ██╗   ██║   ██║  ██║██║  ██║╚██████╗██║  ██╗
╚═╝     ╚═╝╚═╝  ╚═╝   ╚═╝   ╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝╚═╝  ╚═╝

     Sample your position, keep every fix, hear when you stop

Examples:
  fixtrack run
  fixtrack list --limit 20
  fixtrack settings interval 30
  fixtrack export --format geojson --geometry line`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		logger = l

		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		defer func() { _ = logger.Sync() }()
		if prefs != nil {
			if err := prefs.Close(); err != nil {
				return err
			}
			prefs = nil
		}
		if db != nil {
			err := db.Close()
			db = nil
			return err
		}
		return nil
	},
}

// newLogger writes structured logs to stderr, keeping stdout for output.
func newLogger(verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if verbose {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg.Build()
}

// openSettings opens the settings store on first use.
func openSettings() (*settings.Store, error) {
	if prefs != nil {
		return prefs, nil
	}
	s, err := cfg.OpenSettings(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings: %w", err)
	}
	prefs = s
	return prefs, nil
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose logging to stderr")
}
