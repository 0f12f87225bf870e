// ABOUTME: Unit tests for terminal UI formatting
// ABOUTME: Tests human-readable output for fixes and tracker status

package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/harper/fixtrack/internal/models"
	"github.com/harper/fixtrack/internal/tracker"
)

func newFix(moving, notified bool) *models.Fix {
	return &models.Fix{
		ID:               42,
		Latitude:         41.8781,
		Longitude:        -87.6298,
		Timestamp:        time.Now().Add(-5 * time.Minute).UnixMilli(),
		IsMoving:         moving,
		NoMotionNotified: notified,
	}
}

func TestFormatFix(t *testing.T) {
	output := FormatFix(newFix(true, false))
	if !strings.Contains(output, "#42") {
		t.Error("expected output to contain fix id")
	}
	if !strings.Contains(output, "41.8781") {
		t.Error("expected output to contain latitude")
	}
	if !strings.Contains(output, "-87.6298") {
		t.Error("expected output to contain longitude")
	}
	if !strings.Contains(output, "moving") {
		t.Error("expected output to mark the fix as moving")
	}
	if !strings.Contains(output, "5 minutes ago") {
		t.Errorf("expected relative time, got %q", output)
	}
}

func TestFormatFix_Stationary(t *testing.T) {
	output := FormatFix(newFix(false, false))
	if !strings.Contains(output, "stationary") {
		t.Errorf("expected stationary marker, got %q", output)
	}
	if strings.Contains(output, "alerted") {
		t.Errorf("unexpected alert marker, got %q", output)
	}

	output = FormatFix(newFix(false, true))
	if !strings.Contains(output, "alerted") {
		t.Errorf("expected alert marker, got %q", output)
	}
}

func TestFormatFix_Nil(t *testing.T) {
	output := FormatFix(nil)
	if !strings.Contains(output, "no fix") {
		t.Errorf("expected nil fix message, got %q", output)
	}
}

func TestFormatFixForTimeline(t *testing.T) {
	fix := newFix(true, false)
	fix.Timestamp = time.Date(2024, 12, 15, 14, 30, 0, 0, time.Local).UnixMilli()

	output := FormatFixForTimeline(fix)
	if !strings.Contains(output, "Dec 15") {
		t.Errorf("expected date in output, got %q", output)
	}
	if !strings.Contains(output, "2:30:00 PM") {
		t.Errorf("expected time in output, got %q", output)
	}
	if !strings.HasPrefix(output, "  ") {
		t.Error("expected timeline output to be indented")
	}
}

func TestFormatFixForTimeline_Nil(t *testing.T) {
	output := FormatFixForTimeline(nil)
	if !strings.Contains(output, "no fix") {
		t.Errorf("expected nil fix message, got %q", output)
	}
}

func TestFormatFixDetail(t *testing.T) {
	output := FormatFixDetail(newFix(false, true))
	for _, want := range []string{"Fix", "42", "41.878100", "-87.629800", "Moving:     no", "alert sent: yes"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected detail to contain %q, got %q", want, output)
		}
	}
}

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		name     string
		snap     tracker.Snapshot
		contains []string
		excludes []string
	}{
		{
			name:     "idle",
			snap:     tracker.Snapshot{TotalCount: 3},
			contains: []string{"idle", "3 fixes"},
			excludes: []string{"every", "error"},
		},
		{
			name:     "tracking",
			snap:     tracker.Snapshot{IsTracking: true, Interval: 8 * time.Second, TotalCount: 12},
			contains: []string{"tracking", "every 8s", "12 fixes"},
		},
		{
			name:     "restarting",
			snap:     tracker.Snapshot{ResumePending: true, Interval: 8 * time.Second},
			contains: []string{"restarting"},
		},
		{
			name:     "error",
			snap:     tracker.Snapshot{LastError: "location permission denied"},
			contains: []string{"idle", "error: location permission denied"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			output := FormatStatus(tc.snap)
			for _, want := range tc.contains {
				if !strings.Contains(output, want) {
					t.Errorf("expected %q in %q", want, output)
				}
			}
			for _, unwanted := range tc.excludes {
				if strings.Contains(output, unwanted) {
					t.Errorf("did not expect %q in %q", unwanted, output)
				}
			}
		})
	}
}

func TestFormatRelativeTime(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		contains string
	}{
		{"just_now", 30 * time.Second, "just now"},
		{"one_minute", 1 * time.Minute, "1 minute ago"},
		{"five_minutes", 5 * time.Minute, "5 minutes ago"},
		{"one_hour", 1 * time.Hour, "1 hour ago"},
		{"two_hours", 2 * time.Hour, "2 hours ago"},
		{"one_day", 25 * time.Hour, "1 day ago"},
		{"multiple_days", 72 * time.Hour, "3 days ago"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tm := time.Now().Add(-tc.duration)
			result := FormatRelativeTime(tm)
			if !strings.Contains(result, tc.contains) {
				t.Errorf("FormatRelativeTime for %v: expected to contain %q, got %q", tc.duration, tc.contains, result)
			}
		})
	}
}

func TestFormatRelativeTime_FutureTime(t *testing.T) {
	futureTime := time.Now().Add(1 * time.Hour)
	result := FormatRelativeTime(futureTime)
	if !strings.Contains(result, "future") {
		t.Errorf("expected future time message, got %q", result)
	}
}

func TestFormatRelativeTime_EdgeCases(t *testing.T) {
	// Test just under one minute
	tm := time.Now().Add(-59 * time.Second)
	result := FormatRelativeTime(tm)
	if !strings.Contains(result, "just now") {
		t.Errorf("59 seconds ago should be 'just now', got %q", result)
	}

	// Test exactly one minute
	tm = time.Now().Add(-60 * time.Second)
	result = FormatRelativeTime(tm)
	if !strings.Contains(result, "minute") {
		t.Errorf("60 seconds ago should contain 'minute', got %q", result)
	}

	// Test 23 hours
	tm = time.Now().Add(-23 * time.Hour)
	result = FormatRelativeTime(tm)
	if !strings.Contains(result, "23 hours") {
		t.Errorf("23 hours ago should be '23 hours ago', got %q", result)
	}
}
