// ABOUTME: Fix list command
// ABOUTME: Lists recorded fixes newest first, one page at a time

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harper/fixtrack/internal/ui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recorded fixes",
	Long: `List recorded fixes, newest first.

Examples:
  fixtrack list
  fixtrack list --limit 50
  fixtrack list --page 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		page, _ := cmd.Flags().GetInt("page")
		if limit == 0 {
			limit = cfg.GetPageSize()
		}
		if limit < 0 || page < 1 {
			return fmt.Errorf("--limit must be positive and --page at least 1")
		}
		offset := (page - 1) * limit

		ctx := cmd.Context()
		fixes, err := db.Get(ctx, limit, offset)
		if err != nil {
			return fmt.Errorf("failed to list fixes: %w", err)
		}
		total, err := db.Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count fixes: %w", err)
		}

		out := cmd.OutOrStdout()
		if total == 0 {
			fmt.Fprintln(out, "No fixes recorded yet. Use 'fixtrack run' to start tracking.")
			return nil
		}
		if len(fixes) == 0 {
			fmt.Fprintf(out, "Page %d is empty (%d fixes total).\n", page, total)
			return nil
		}

		for _, fix := range fixes {
			fmt.Fprintln(out, ui.FormatFix(fix))
		}
		fmt.Fprintln(out, color.New(color.Faint).Sprintf("Showing %d-%d of %d",
			offset+1, offset+len(fixes), total))
		return nil
	},
}

func init() {
	listCmd.Flags().IntP("limit", "n", 0, "fixes per page (default: config page_size)")
	listCmd.Flags().IntP("page", "p", 1, "page number, starting at 1")

	rootCmd.AddCommand(listCmd)
}
