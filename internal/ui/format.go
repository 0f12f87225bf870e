// ABOUTME: Terminal UI formatting utilities
// ABOUTME: Provides human-readable output for fixes and tracker status

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harper/fixtrack/internal/models"
	"github.com/harper/fixtrack/internal/tracker"
)

// FormatFix formats a fix for list display.
func FormatFix(fix *models.Fix) string {
	if fix == nil {
		return color.New(color.Faint).Sprint("(no fix)")
	}
	coords := fmt.Sprintf("(%.5f, %.5f)", fix.Latitude, fix.Longitude)
	relTime := FormatRelativeTime(fix.Time())

	return fmt.Sprintf("%s %s %s - %s",
		color.New(color.Faint).Sprintf("#%d", fix.ID),
		color.CyanString(coords),
		formatMotion(fix),
		color.New(color.Faint).Sprint(relTime))
}

// FormatFixForTimeline formats a fix with an absolute local time.
func FormatFixForTimeline(fix *models.Fix) string {
	if fix == nil {
		return color.New(color.Faint).Sprint("  (no fix)")
	}
	coords := fmt.Sprintf("(%.5f, %.5f)", fix.Latitude, fix.Longitude)
	timeStr := fix.Time().Local().Format("Jan 2, 3:04:05 PM")

	return fmt.Sprintf("  %s %s - %s",
		color.CyanString(coords),
		formatMotion(fix),
		timeStr)
}

// FormatFixDetail formats every field of a fix, one per line.
func FormatFixDetail(fix *models.Fix) string {
	if fix == nil {
		return color.New(color.Faint).Sprint("(no fix)")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n", color.New(color.Bold).Sprint("Fix"), fix.ID)
	fmt.Fprintf(&b, "  Latitude:   %.6f\n", fix.Latitude)
	fmt.Fprintf(&b, "  Longitude:  %.6f\n", fix.Longitude)
	fmt.Fprintf(&b, "  Recorded:   %s (%s)\n",
		fix.Time().Local().Format(time.RFC3339), FormatRelativeTime(fix.Time()))
	fmt.Fprintf(&b, "  Moving:     %s\n", yesNo(fix.IsMoving))
	fmt.Fprintf(&b, "  No-motion alert sent: %s\n", yesNo(fix.NoMotionNotified))
	return b.String()
}

// FormatStatus summarizes a tracker snapshot on one line.
func FormatStatus(snap tracker.Snapshot) string {
	var state string
	switch {
	case snap.IsTracking:
		state = color.GreenString("tracking")
	case snap.ResumePending:
		state = color.YellowString("restarting")
	default:
		state = color.New(color.Faint).Sprint("idle")
	}

	parts := []string{state}
	if snap.Interval > 0 {
		parts = append(parts, fmt.Sprintf("every %s", snap.Interval))
	}
	parts = append(parts, fmt.Sprintf("%d fixes", snap.TotalCount))
	if snap.LastError != "" {
		parts = append(parts, color.RedString("error: %s", snap.LastError))
	}
	return strings.Join(parts, " · ")
}

func formatMotion(fix *models.Fix) string {
	if fix.IsMoving {
		return color.GreenString("moving")
	}
	if fix.NoMotionNotified {
		return color.YellowString("stationary (alerted)")
	}
	return color.YellowString("stationary")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// FormatRelativeTime formats a time as relative to now.
func FormatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	// Handle future times (clock skew, bad data)
	if diff < 0 {
		return color.YellowString("in the future")
	}

	if diff < time.Minute {
		return "just now"
	}
	if diff < time.Hour {
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	}
	if diff < 24*time.Hour {
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := int(diff.Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}
