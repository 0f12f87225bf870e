// ABOUTME: Run command that samples positions in the foreground
// ABOUTME: Prints each fix as it is recorded until interrupted

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/harper/fixtrack/internal/tracker"
	"github.com/harper/fixtrack/internal/ui"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Track position until interrupted",
	Long: `Start the tracker and record a fix every interval until Ctrl-C.

Positions come from the configured location source. When no-motion alerts
are on, an alert is sent once per stationary streak of 10 minutes or more.

Settings can be changed from another terminal while this runs. Send SIGHUP
to restart sampling once the current interval has elapsed, picking up the
stored interval setting:

  fixtrack settings interval 30 && kill -HUP <pid>

Examples:
  fixtrack run
  fixtrack run --interval 30 --notify`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := openSettings(); err != nil {
			return err
		}
		if err := applyRunFlags(cmd); err != nil {
			return err
		}

		ctrl, err := newController(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer ctrl.Close()

		updates, unsubscribe := ctrl.Subscribe(16)
		defer unsubscribe()

		if err := ctrl.Start(cmd.Context()); err != nil {
			return fmt.Errorf("failed to start tracking: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatStatus(ctrl.Snapshot()))

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(sigCh)

		return watch(cmd.Context(), cmd.OutOrStdout(), ctrl, updates, sigCh)
	},
}

// watch prints new fixes and status changes until an interrupt arrives or
// ctx ends. SIGHUP restarts the run instead of ending it.
func watch(ctx context.Context, out io.Writer, ctrl *tracker.Controller, updates <-chan tracker.Snapshot, sigCh <-chan os.Signal) error {
	var lastID int64
	snap := ctrl.Snapshot()
	if len(snap.Fixes) > 0 {
		lastID = snap.Fixes[0].ID
	}
	lastState := stateKey(snap)

	for {
		select {
		case <-ctx.Done():
			ctrl.Stop()
			return nil
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				snap := ctrl.Snapshot()
				ctrl.Restart(snap.Interval)
				fmt.Fprintln(out, color.YellowString("Restarting after %s", snap.Interval))
				continue
			}
			ctrl.Stop()
			fmt.Fprintln(out, ui.FormatStatus(ctrl.Snapshot()))
			return nil
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			// Fixes are newest first; print the unseen ones oldest first.
			for i := len(snap.Fixes) - 1; i >= 0; i-- {
				if fix := snap.Fixes[i]; fix.ID > lastID {
					fmt.Fprintln(out, ui.FormatFix(fix))
					lastID = fix.ID
				}
			}
			if key := stateKey(snap); key != lastState {
				fmt.Fprintln(out, ui.FormatStatus(snap))
				lastState = key
			}
		}
	}
}

// stateKey ignores the fix count so status lines are printed on lifecycle
// changes only.
func stateKey(snap tracker.Snapshot) string {
	return fmt.Sprintf("%t/%t/%s/%s", snap.IsTracking, snap.ResumePending, snap.RunID, snap.LastError)
}

func applyRunFlags(cmd *cobra.Command) error {
	if cmd.Flags().Changed("interval") {
		interval, _ := cmd.Flags().GetInt("interval")
		if err := prefs.SetInterval(interval); err != nil {
			return fmt.Errorf("failed to save interval: %w", err)
		}
	}
	if cmd.Flags().Changed("notify") {
		notify, _ := cmd.Flags().GetBool("notify")
		if err := prefs.SetNotifyEnabled(notify); err != nil {
			return fmt.Errorf("failed to save notify setting: %w", err)
		}
	}
	return nil
}

// newController wires the configured provider and sinks to the open store
// and settings. Console alerts are written to out.
func newController(out io.Writer) (*tracker.Controller, error) {
	provider, err := cfg.LocationProvider()
	if err != nil {
		return nil, err
	}
	sink, err := cfg.NotificationSink(out)
	if err != nil {
		return nil, err
	}
	return tracker.NewController(db, prefs, provider, sink, tracker.Options{
		PageSize: cfg.GetPageSize(),
		Logger:   logger,
	}), nil
}

func init() {
	runCmd.Flags().IntP("interval", "i", 0, "seconds between samples (saved as the new setting)")
	runCmd.Flags().Bool("notify", false, "send an alert after 10 minutes without movement (saved)")

	rootCmd.AddCommand(runCmd)
}
