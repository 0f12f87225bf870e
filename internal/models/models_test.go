// ABOUTME: Unit tests for data models
// ABOUTME: Tests coordinate validation and the movement derivation rule

package models

import (
	"math"
	"testing"
	"time"
)

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"valid", 41.8781, -87.6298, false},
		{"origin", 0, 0, false},
		{"corners", -90, 180, false},
		{"lat too high", 90.1, 0, true},
		{"lat too low", -90.1, 0, true},
		{"lng too high", 0, 180.1, true},
		{"lng too low", 0, -180.1, true},
		{"nan lat", math.NaN(), 0, true},
		{"inf lng", 0, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lng)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoordinates(%v, %v) error = %v, wantErr %v", tt.lat, tt.lng, err, tt.wantErr)
			}
		})
	}
}

func TestIsMoving_FirstFix(t *testing.T) {
	if !IsMoving(nil, 1, 2) {
		t.Error("first fix should be moving")
	}
}

func TestIsMoving_SameCoordinates(t *testing.T) {
	prev := &Fix{Latitude: 41.8781, Longitude: -87.6298}
	if IsMoving(prev, 41.8781, -87.6298) {
		t.Error("identical coordinates should be stationary")
	}
}

func TestIsMoving_ExactComparison(t *testing.T) {
	prev := &Fix{Latitude: 41.8781, Longitude: -87.6298}

	// A difference far below GPS precision still counts as movement.
	if !IsMoving(prev, 41.8781+1e-12, -87.6298) {
		t.Error("tiny latitude change should be moving")
	}
	if !IsMoving(prev, 41.8781, -87.6298+1e-12) {
		t.Error("tiny longitude change should be moving")
	}
}

func TestNoMotionDue(t *testing.T) {
	anchor := &Fix{Timestamp: 1_000_000}

	if NoMotionDue(anchor, 1_000_000+599_999) {
		t.Error("should not be due one millisecond before the threshold")
	}
	if !NoMotionDue(anchor, 1_000_000+600_000) {
		t.Error("should be due exactly at the threshold")
	}
	if !NoMotionDue(anchor, 1_000_000+3_600_000) {
		t.Error("should be due past the threshold")
	}
}

func TestFixTime(t *testing.T) {
	f := &Fix{Timestamp: 1734188400000}
	want := time.Date(2024, 12, 14, 15, 0, 0, 0, time.UTC)
	if !f.Time().Equal(want) {
		t.Errorf("got %v, want %v", f.Time().UTC(), want)
	}
}

func TestTrackerStateString(t *testing.T) {
	if Idle.String() != "idle" {
		t.Errorf("got %q", Idle.String())
	}
	if Running.String() != "running" {
		t.Errorf("got %q", Running.String())
	}
	if TrackerState(7).String() != "TrackerState(7)" {
		t.Errorf("got %q", TrackerState(7).String())
	}
}
