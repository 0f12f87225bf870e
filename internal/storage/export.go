// ABOUTME: Export and import functionality for fix data
// ABOUTME: Supports YAML backup format and markdown export

package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harper/fixtrack/internal/models"
	"gopkg.in/yaml.v3"
)

// BackupVersion is the current backup format version.
const BackupVersion = "1.0"

// backupTool identifies backups written by this program.
const backupTool = "fixtrack"

// Backup represents the YAML backup format.
type Backup struct {
	Version    string      `yaml:"version"`
	ExportedAt time.Time   `yaml:"exported_at"`
	Tool       string      `yaml:"tool"`
	Fixes      []FixBackup `yaml:"fixes"`
}

// FixBackup represents a fix in the backup format.
type FixBackup struct {
	ID               int64   `yaml:"id"`
	Latitude         float64 `yaml:"latitude"`
	Longitude        float64 `yaml:"longitude"`
	Timestamp        int64   `yaml:"timestamp"`
	IsMoving         bool    `yaml:"is_moving"`
	NoMotionNotified bool    `yaml:"no_motion_notified,omitempty"`
}

// ExportBackup exports all fixes to YAML format.
func ExportBackup(ctx context.Context, repo FixRepository) ([]byte, error) {
	fixes, err := repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list fixes: %w", err)
	}
	return MarshalBackup(fixes)
}

// MarshalBackup encodes fixes in the backup format.
func MarshalBackup(fixes []*models.Fix) ([]byte, error) {
	backup := Backup{
		Version:    BackupVersion,
		ExportedAt: time.Now().UTC(),
		Tool:       backupTool,
		Fixes:      make([]FixBackup, len(fixes)),
	}

	for i, f := range fixes {
		backup.Fixes[i] = FixBackup{
			ID:               f.ID,
			Latitude:         f.Latitude,
			Longitude:        f.Longitude,
			Timestamp:        f.Timestamp,
			IsMoving:         f.IsMoving,
			NoMotionNotified: f.NoMotionNotified,
		}
	}

	return yaml.Marshal(backup)
}

// ImportBackup restores fixes from a YAML backup.
// This is a restore operation: stored movement flags are kept as-is rather
// than recomputed, and fixes are written oldest first so new ids follow
// backup order.
func ImportBackup(ctx context.Context, db *SQLiteDB, data []byte) (int, error) {
	var backup Backup
	if err := yaml.Unmarshal(data, &backup); err != nil {
		return 0, fmt.Errorf("parse yaml: %w", err)
	}

	if backup.Version != BackupVersion {
		return 0, fmt.Errorf("unsupported backup version: %s (expected %s)", backup.Version, BackupVersion)
	}

	if backup.Tool != backupTool {
		return 0, fmt.Errorf("wrong tool: %s (expected %s)", backup.Tool, backupTool)
	}

	entries := make([]FixBackup, len(backup.Fixes))
	copy(entries, backup.Fixes)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp != entries[j].Timestamp {
			return entries[i].Timestamp < entries[j].Timestamp
		}
		return entries[i].ID < entries[j].ID
	})

	fixes := make([]*models.Fix, 0, len(entries))
	for _, e := range entries {
		if err := models.ValidateCoordinates(e.Latitude, e.Longitude); err != nil {
			return 0, fmt.Errorf("fix %d: %w", e.ID, err)
		}
		fixes = append(fixes, &models.Fix{
			Latitude:         e.Latitude,
			Longitude:        e.Longitude,
			Timestamp:        e.Timestamp,
			IsMoving:         e.IsMoving,
			NoMotionNotified: e.NoMotionNotified,
		})
	}

	if err := db.restore(ctx, fixes); err != nil {
		return 0, err
	}
	return len(fixes), nil
}

// ExportToMarkdown renders fixes as a markdown table, in the order given.
func ExportToMarkdown(fixes []*models.Fix) []byte {
	var sb strings.Builder

	now := time.Now().UTC()
	sb.WriteString(fmt.Sprintf("# Fix Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	if len(fixes) == 0 {
		sb.WriteString("No fixes recorded.\n")
		return []byte(sb.String())
	}

	sb.WriteString("| ID | Date | Coordinates | Moving | No-motion alert |\n")
	sb.WriteString("|----|------|-------------|--------|-----------------|\n")

	for _, f := range fixes {
		date := f.Time().UTC().Format("2006-01-02 15:04:05")
		coords := fmt.Sprintf("(%.6f, %.6f)", f.Latitude, f.Longitude)
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
			f.ID, date, coords, yesNo(f.IsMoving), yesNo(f.NoMotionNotified)))
	}

	return []byte(sb.String())
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
