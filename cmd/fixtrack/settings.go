// ABOUTME: Settings commands for the sampling interval and alerts
// ABOUTME: Reads and writes the persistent tracker settings

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show tracker settings",
	Long: `Show or change tracker settings.

Settings are stored under the data directory and read each time tracking
starts. A running 'fixtrack run' holds the settings store open; stop it
before changing settings from another terminal.

Examples:
  fixtrack settings
  fixtrack settings interval 30
  fixtrack settings notify on`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSettings()
		if err != nil {
			return err
		}
		interval, err := s.Interval()
		if err != nil {
			return fmt.Errorf("failed to read interval: %w", err)
		}
		notify, err := s.NotifyEnabled()
		if err != nil {
			return fmt.Errorf("failed to read notify setting: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %ds\n", color.CyanString("interval:"), interval)
		fmt.Fprintf(out, "%s %s\n", color.CyanString("notify:  "), onOff(notify))
		return nil
	},
}

var settingsIntervalCmd = &cobra.Command{
	Use:   "interval <seconds>",
	Short: "Set seconds between samples",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seconds, err := strconv.Atoi(args[0])
		if err != nil || seconds < 1 {
			return fmt.Errorf("interval must be a positive number of seconds, got %q", args[0])
		}
		s, err := openSettings()
		if err != nil {
			return err
		}
		if err := s.SetInterval(seconds); err != nil {
			return fmt.Errorf("failed to save interval: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Interval set to %ds", seconds))
		return nil
	},
}

var settingsNotifyCmd = &cobra.Command{
	Use:       "notify <on|off>",
	Short:     "Turn no-motion alerts on or off",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var enabled bool
		switch strings.ToLower(args[0]) {
		case "on", "true", "yes":
			enabled = true
		case "off", "false", "no":
			enabled = false
		default:
			return fmt.Errorf("expected 'on' or 'off', got %q", args[0])
		}
		s, err := openSettings()
		if err != nil {
			return err
		}
		if err := s.SetNotifyEnabled(enabled); err != nil {
			return fmt.Errorf("failed to save notify setting: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ No-motion alerts %s", onOff(enabled)))
		return nil
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSettings()
		if err != nil {
			return err
		}
		if err := s.Reset(); err != nil {
			return fmt.Errorf("failed to reset settings: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Settings reset"))
		return nil
	},
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func init() {
	settingsCmd.AddCommand(settingsIntervalCmd)
	settingsCmd.AddCommand(settingsNotifyCmd)
	settingsCmd.AddCommand(settingsResetCmd)

	rootCmd.AddCommand(settingsCmd)
}
