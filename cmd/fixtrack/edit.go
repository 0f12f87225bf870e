// ABOUTME: Fix edit command
// ABOUTME: Corrects coordinates, time, or movement flag of a recorded fix

package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harper/fixtrack/internal/storage"
	"github.com/harper/fixtrack/internal/ui"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Correct a recorded fix",
	Long: `Change the coordinates, time or movement flag of one fix. Only the
flags you pass are changed. The no-motion alert flag cannot be edited.

Examples:
  fixtrack edit 42 --lat 41.8781 --lng -87.6298
  fixtrack edit 42 --time 2024-12-14T15:04:05Z
  fixtrack edit 42 --moving=false`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if !flags.Changed("lat") && !flags.Changed("lng") && !flags.Changed("time") && !flags.Changed("moving") {
			return fmt.Errorf("nothing to change (use --lat, --lng, --time or --moving)")
		}

		ctx := cmd.Context()
		fix, err := db.GetByID(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("fix %d not found", id)
		}
		if err != nil {
			return fmt.Errorf("failed to get fix: %w", err)
		}

		if flags.Changed("lat") {
			fix.Latitude, _ = flags.GetFloat64("lat")
		}
		if flags.Changed("lng") {
			fix.Longitude, _ = flags.GetFloat64("lng")
		}
		if flags.Changed("time") {
			raw, _ := flags.GetString("time")
			t, err := parseDate(raw)
			if err != nil {
				return err
			}
			fix.Timestamp = t.UnixMilli()
		}
		if flags.Changed("moving") {
			fix.IsMoving, _ = flags.GetBool("moving")
		}

		if err := db.Update(ctx, fix); err != nil {
			if errors.Is(err, storage.ErrInvalidArgument) {
				return fmt.Errorf("invalid fix: %w", err)
			}
			return fmt.Errorf("failed to update fix: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Updated fix #%d", id))
		fmt.Fprint(cmd.OutOrStdout(), ui.FormatFixDetail(fix))
		return nil
	},
}

func init() {
	editCmd.Flags().Float64("lat", 0, "latitude (-90 to 90)")
	editCmd.Flags().Float64("lng", 0, "longitude (-180 to 180)")
	editCmd.Flags().String("time", "", "sample time (YYYY-MM-DD or RFC3339)")
	editCmd.Flags().Bool("moving", false, "whether the fix counts as movement")

	rootCmd.AddCommand(editCmd)
}
