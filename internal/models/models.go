// ABOUTME: Core data models for recorded location fixes
// ABOUTME: Provides coordinate validation and the movement rule applied at insert time

package models

import (
	"fmt"
	"math"
	"time"
)

// NoMotionThreshold is how long a stationary streak must last, measured from
// its anchor fix, before a no-motion notification is sent.
const NoMotionThreshold = 10 * time.Minute

// ValidateCoordinates checks if latitude and longitude are within valid ranges.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return fmt.Errorf("coordinates cannot be NaN")
	}
	if math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return fmt.Errorf("coordinates cannot be infinite")
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	return nil
}

// Fix is one recorded location sample with its derived movement state.
type Fix struct {
	ID               int64   `json:"id"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Timestamp        int64   `json:"timestamp"` // epoch milliseconds, as reported by the source
	IsMoving         bool    `json:"is_moving"`
	NoMotionNotified bool    `json:"no_motion_notified"`
}

// Time returns the fix timestamp as a time.Time.
func (f *Fix) Time() time.Time {
	return time.UnixMilli(f.Timestamp)
}

// SameCoordinates reports whether the fix sits exactly on (lat, lng).
// Comparison is exact; there is no distance tolerance.
func (f *Fix) SameCoordinates(lat, lng float64) bool {
	return f.Latitude == lat && f.Longitude == lng
}

// IsMoving derives the movement flag for a new sample at (lat, lng) given the
// previously recorded fix. The first fix ever recorded counts as moving.
func IsMoving(prev *Fix, lat, lng float64) bool {
	return prev == nil || !prev.SameCoordinates(lat, lng)
}

// NoMotionDue reports whether a stationary fix at ts is far enough from the
// anchor of its streak to warrant a notification.
func NoMotionDue(anchor *Fix, ts int64) bool {
	return ts-anchor.Timestamp >= NoMotionThreshold.Milliseconds()
}

// TrackerState is the lifecycle state of a tracker.
type TrackerState int

const (
	// Idle means no sampling loop is active.
	Idle TrackerState = iota
	// Running means a sampling loop is active.
	Running
)

func (s TrackerState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("TrackerState(%d)", int(s))
	}
}
