// ABOUTME: Export command for generating GeoJSON, markdown, and YAML output
// ABOUTME: Supports time filtering and point or line geometry

package main

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/harper/fixtrack/internal/geojson"
	"github.com/harper/fixtrack/internal/models"
	"github.com/harper/fixtrack/internal/storage"
	"github.com/spf13/cobra"
)

// durationRegex matches relative duration strings like "24h", "7d", "1w", "1m".
var durationRegex = regexp.MustCompile(`^(\d+)([hdwm])$`)

var exportCmd = &cobra.Command{
	Use:     "export",
	Aliases: []string{"e"},
	Short:   "Export fixes in various formats",
	Long: `Export fixes as GeoJSON, Markdown, or YAML.

Examples:
  # Export every fix as GeoJSON points
  fixtrack export --format geojson

  # Export as markdown table
  fixtrack export --format markdown

  # Export with time filter (relative)
  fixtrack export --since 24h
  fixtrack export --since 7d

  # Export with time filter (absolute)
  fixtrack export --from 2024-12-01 --to 2024-12-14

  # Export the path as a LineString
  fixtrack export --geometry line

  # Save to file
  fixtrack export --output map.geojson`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if format != "geojson" && format != "markdown" && format != "yaml" {
			return fmt.Errorf("unsupported format: %s (use 'geojson', 'markdown', or 'yaml')", format)
		}

		geometry, _ := cmd.Flags().GetString("geometry")
		if geometry != "points" && geometry != "line" {
			return fmt.Errorf("unsupported geometry: %s (use 'points' or 'line')", geometry)
		}

		// Parse time filters
		since, _ := cmd.Flags().GetString("since")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")

		var fromTime, toTime time.Time
		var err error

		if since != "" {
			fromTime, err = parseDuration(since)
			if err != nil {
				return fmt.Errorf("invalid --since value: %w", err)
			}
		} else if from != "" {
			fromTime, err = parseDate(from)
			if err != nil {
				return fmt.Errorf("invalid --from value: %w", err)
			}
		}
		if to != "" {
			toTime, err = parseDate(to)
			if err != nil {
				return fmt.Errorf("invalid --to value: %w", err)
			}
			// Set to end of day
			toTime = toTime.Add(24*time.Hour - time.Millisecond)
		}

		all, err := db.GetAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list fixes: %w", err)
		}
		fixes := filterFixes(all, fromTime, toTime)

		output, _ := cmd.Flags().GetString("output")

		var data []byte
		switch format {
		case "markdown":
			data = storage.ExportToMarkdown(fixes)
		case "yaml":
			data, err = storage.MarshalBackup(fixes)
			if err != nil {
				return fmt.Errorf("failed to generate YAML: %w", err)
			}
		default:
			data, err = exportGeoJSON(fixes, geometry)
			if err != nil {
				return err
			}
		}

		return writeExport(cmd.OutOrStdout(), cmd.ErrOrStderr(), output, data, len(fixes))
	},
}

func exportGeoJSON(fixes []*models.Fix, geometry string) ([]byte, error) {
	if len(fixes) == 0 {
		return nil, fmt.Errorf("no fixes found")
	}

	var fc *geojson.FeatureCollection
	if geometry == "line" {
		fc = geojson.ToLineFeatureCollection(fixes)
	} else {
		fc = geojson.ToPointsFeatureCollection(fixes)
	}

	jsonBytes, err := fc.ToJSONIndent()
	if err != nil {
		return nil, fmt.Errorf("failed to generate GeoJSON: %w", err)
	}
	return append(jsonBytes, '\n'), nil
}

func writeExport(stdout, stderr io.Writer, output string, data []byte, count int) error {
	if output == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil { //nolint:gosec // 0644 is intentional for data export files
		return fmt.Errorf("failed to write file: %w", err)
	}
	fmt.Fprintf(stderr, "Wrote %d fixes to %s\n", count, output)
	return nil
}

// filterFixes keeps fixes recorded within [from, to]. Zero bounds are open.
func filterFixes(fixes []*models.Fix, from, to time.Time) []*models.Fix {
	if from.IsZero() && to.IsZero() {
		return fixes
	}
	out := make([]*models.Fix, 0, len(fixes))
	for _, fix := range fixes {
		t := fix.Time()
		if !from.IsZero() && t.Before(from) {
			continue
		}
		if !to.IsZero() && t.After(to) {
			continue
		}
		out = append(out, fix)
	}
	return out
}

// parseDuration parses relative duration strings like "24h", "7d", "1w".
func parseDuration(s string) (time.Time, error) {
	matches := durationRegex.FindStringSubmatch(s)
	if matches == nil {
		return time.Time{}, fmt.Errorf("invalid duration format (use e.g., 24h, 7d, 1w)")
	}

	num, err := strconv.Atoi(matches[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid number in duration '%s': %w", s, err)
	}
	unit := matches[2]

	var duration time.Duration
	switch unit {
	case "h":
		duration = time.Duration(num) * time.Hour
	case "d":
		duration = time.Duration(num) * 24 * time.Hour
	case "w":
		duration = time.Duration(num) * 7 * 24 * time.Hour
	case "m":
		duration = time.Duration(num) * 30 * 24 * time.Hour
	}

	return time.Now().Add(-duration), nil
}

// parseDate parses date strings in RFC3339 or YYYY-MM-DD format.
func parseDate(s string) (time.Time, error) {
	// Try RFC3339 first
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	// Try YYYY-MM-DD
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date format (use YYYY-MM-DD or RFC3339)")
}

func init() {
	exportCmd.Flags().StringP("format", "f", "geojson", "output format (geojson, markdown, yaml)")
	exportCmd.Flags().StringP("geometry", "g", "points", "geometry type (points, line)")
	exportCmd.Flags().String("since", "", "relative time filter (e.g., 24h, 7d, 1w)")
	exportCmd.Flags().String("from", "", "start date (YYYY-MM-DD or RFC3339)")
	exportCmd.Flags().String("to", "", "end date (YYYY-MM-DD or RFC3339)")
	exportCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(exportCmd)
}
