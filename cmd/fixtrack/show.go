// ABOUTME: Fix show command
// ABOUTME: Prints every field of one recorded fix, or of the latest one

package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/harper/fixtrack/internal/storage"
	"github.com/harper/fixtrack/internal/ui"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one fix (the latest when no id is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			fix, err := db.GetLast(cmd.Context())
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("no fixes recorded")
			}
			if err != nil {
				return fmt.Errorf("failed to get latest fix: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), ui.FormatFixDetail(fix))
			return nil
		}

		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		fix, err := db.GetByID(cmd.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("fix %d not found", id)
		}
		if err != nil {
			return fmt.Errorf("failed to get fix: %w", err)
		}

		fmt.Fprint(cmd.OutOrStdout(), ui.FormatFixDetail(fix))
		return nil
	},
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid fix id %q", s)
	}
	return id, nil
}

func init() {
	rootCmd.AddCommand(showCmd)
}
