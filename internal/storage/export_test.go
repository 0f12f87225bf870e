// ABOUTME: Tests for export and import functionality
// ABOUTME: Covers YAML backup format and markdown export

package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/harper/fixtrack/internal/models"
)

func TestExportBackup(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	id := mustInsert(t, db, 41.8781, -87.6298, 1734188400000)
	if err := db.MarkNoMotionNotified(ctx, id); err != nil {
		t.Fatalf("failed to mark: %v", err)
	}

	data, err := ExportBackup(ctx, db)
	if err != nil {
		t.Fatalf("failed to export: %v", err)
	}

	yamlStr := string(data)

	if !strings.Contains(yamlStr, "version: \"1.0\"") {
		t.Error("missing version header")
	}
	if !strings.Contains(yamlStr, "tool: fixtrack") {
		t.Error("missing tool header")
	}
	if !strings.Contains(yamlStr, "exported_at:") {
		t.Error("missing exported_at header")
	}
	if !strings.Contains(yamlStr, "latitude: 41.8781") {
		t.Error("missing latitude")
	}
	if !strings.Contains(yamlStr, "is_moving: true") {
		t.Error("missing movement flag")
	}
	if !strings.Contains(yamlStr, "no_motion_notified: true") {
		t.Error("missing no-motion flag")
	}
}

func TestImportBackup(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	yaml := `version: "1.0"
exported_at: "2026-01-31T12:00:00Z"
tool: fixtrack
fixes:
  - id: 9
    latitude: 41.8781
    longitude: -87.6298
    timestamp: 3000
    is_moving: false
  - id: 7
    latitude: 41.8781
    longitude: -87.6298
    timestamp: 1000
    is_moving: true
    no_motion_notified: true
`

	n, err := ImportBackup(ctx, db, []byte(yaml))
	if err != nil {
		t.Fatalf("failed to import: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d fixes, want 2", n)
	}

	last, err := db.GetLast(ctx)
	if err != nil {
		t.Fatalf("failed to get last: %v", err)
	}
	if last.Timestamp != 3000 {
		t.Errorf("newest fix should be inserted last, got timestamp %d", last.Timestamp)
	}
	if last.IsMoving {
		t.Error("stored movement flag should be kept")
	}

	anchor, err := db.GetLastMoving(ctx)
	if err != nil {
		t.Fatalf("failed to get last moving: %v", err)
	}
	if !anchor.NoMotionNotified {
		t.Error("stored no-motion flag should be kept")
	}
}

func TestImportBackup_RoundTrip(t *testing.T) {
	src := testDB(t)
	dst := testDB(t)
	ctx := context.Background()

	mustInsert(t, src, 1, 1, 1000)
	mustInsert(t, src, 1, 1, 2000)
	mustInsert(t, src, 2, 2, 3000)

	data, err := ExportBackup(ctx, src)
	if err != nil {
		t.Fatalf("failed to export: %v", err)
	}
	if _, err := ImportBackup(ctx, dst, data); err != nil {
		t.Fatalf("failed to import: %v", err)
	}

	want, _ := src.GetAll(ctx)
	got, err := dst.GetAll(ctx)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d fixes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Timestamp != want[i].Timestamp || got[i].IsMoving != want[i].IsMoving {
			t.Errorf("fix %d differs: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestImportBackup_WrongVersion(t *testing.T) {
	db := testDB(t)

	_, err := ImportBackup(context.Background(), db, []byte("version: \"2.0\"\ntool: fixtrack\n"))
	if err == nil || !strings.Contains(err.Error(), "unsupported backup version") {
		t.Errorf("expected version error, got %v", err)
	}
}

func TestImportBackup_WrongTool(t *testing.T) {
	db := testDB(t)

	_, err := ImportBackup(context.Background(), db, []byte("version: \"1.0\"\ntool: position\n"))
	if err == nil || !strings.Contains(err.Error(), "wrong tool") {
		t.Errorf("expected tool error, got %v", err)
	}
}

func TestImportBackup_InvalidYAML(t *testing.T) {
	db := testDB(t)

	_, err := ImportBackup(context.Background(), db, []byte("{{not yaml"))
	if err == nil {
		t.Error("expected parse error")
	}
}

func TestImportBackup_InvalidCoordinates(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	yaml := `version: "1.0"
tool: fixtrack
fixes:
  - id: 1
    latitude: 100
    longitude: 0
    timestamp: 1
`
	if _, err := ImportBackup(ctx, db, []byte(yaml)); err == nil {
		t.Error("expected coordinate error")
	}
	n, _ := db.Count(ctx)
	if n != 0 {
		t.Errorf("nothing should be written on failure, got %d fixes", n)
	}
}

func TestExportToMarkdown(t *testing.T) {
	fixes := []*models.Fix{
		{ID: 2, Latitude: 41.8781, Longitude: -87.6298, Timestamp: 1734188400000, IsMoving: false},
		{ID: 1, Latitude: 41.8781, Longitude: -87.6298, Timestamp: 1734188340000, IsMoving: true, NoMotionNotified: true},
	}

	md := string(ExportToMarkdown(fixes))

	if !strings.HasPrefix(md, "# Fix Export - ") {
		t.Error("missing title")
	}
	if !strings.Contains(md, "| ID | Date | Coordinates | Moving | No-motion alert |") {
		t.Error("missing table header")
	}
	if !strings.Contains(md, "| 2 | 2024-12-14 15:00:00 | (41.878100, -87.629800) | no | no |") {
		t.Errorf("missing first row in:\n%s", md)
	}
	if !strings.Contains(md, "| 1 | 2024-12-14 14:59:00 | (41.878100, -87.629800) | yes | yes |") {
		t.Errorf("missing second row in:\n%s", md)
	}
}

func TestExportToMarkdown_Empty(t *testing.T) {
	md := string(ExportToMarkdown(nil))
	if !strings.Contains(md, "No fixes recorded.") {
		t.Error("expected empty message")
	}
}
