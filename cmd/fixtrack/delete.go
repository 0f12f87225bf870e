// ABOUTME: Fix delete and clear commands
// ABOUTME: Removes single fixes or the whole history

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>...",
	Aliases: []string{"rm"},
	Short:   "Delete fixes by id",
	Long: `Delete one or more fixes. Ids that do not exist are ignored.

Examples:
  fixtrack delete 42
  fixtrack delete 42 43 44`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int64, 0, len(args))
		for _, arg := range args {
			id, err := parseID(arg)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}

		for _, id := range ids {
			if err := db.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete fix %d: %w", id, err)
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Deleted %d fix(es)", len(ids)))
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every recorded fix",
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm && !askYesNo(cmd.InOrStdin(), cmd.OutOrStdout(), "Delete all recorded fixes? [y/N] ") {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}

		if err := db.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear fixes: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ All fixes deleted"))
		return nil
	},
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of recorded fixes",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := db.Count(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to count fixes: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

func askYesNo(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	reader := bufio.NewReader(in)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

func init() {
	clearCmd.Flags().Bool("confirm", false, "skip confirmation prompt")

	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(countCmd)
}
