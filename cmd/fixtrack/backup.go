// ABOUTME: Backup and import commands for YAML data files
// ABOUTME: Creates portable backups and restores them into the database

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/harper/fixtrack/internal/storage"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create a YAML backup of all fixes",
	Long: `Create a YAML backup file containing every recorded fix.

The backup file can be used to:
- Migrate data between machines
- Restore after data loss
- Import into a fresh database

Examples:
  fixtrack backup --output fixes.yaml
  fixtrack backup -o ~/backups/fixes-$(date +%Y%m%d).yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		data, err := storage.ExportBackup(cmd.Context(), db)
		if err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}

		if output == "" {
			// Default filename with timestamp
			output = fmt.Sprintf("fixes-%s.yaml", time.Now().Format("20060102-150405"))
		}

		if err := os.WriteFile(output, data, 0644); err != nil { //nolint:gosec // 0644 is intentional for backup files
			return fmt.Errorf("failed to write backup: %w", err)
		}

		count, _ := db.Count(cmd.Context())

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString("Backup created: %s", output))
		fmt.Fprintf(out, "  %d fixes\n", count)

		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import fixes from a YAML backup",
	Long: `Import fixes from a YAML backup file created with 'fixtrack backup'.

Imported fixes are added after existing ones and get new ids. Their
movement and alert flags are kept as stored in the backup.
Use 'fixtrack clear' first if you want a clean import.

Examples:
  fixtrack import fixes.yaml
  fixtrack import ~/backups/fixes-20241214.yaml --confirm`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm && !askYesNo(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Import fixes from '%s'? [y/N] ", filename)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
			return nil
		}

		n, err := storage.ImportBackup(cmd.Context(), db, data)
		if err != nil {
			return fmt.Errorf("failed to import: %w", err)
		}

		total, _ := db.Count(cmd.Context())

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString("Import complete"))
		fmt.Fprintf(out, "  %d fixes imported, %d in database\n", n, total)

		return nil
	},
}

func init() {
	backupCmd.Flags().StringP("output", "o", "", "output file (default: fixes-YYYYMMDD-HHMMSS.yaml)")
	importCmd.Flags().Bool("confirm", false, "skip confirmation prompt")

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(importCmd)
}
