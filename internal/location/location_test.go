// ABOUTME: Tests for location providers and error classification
// ABOUTME: Covers fixed and replay providers plus coded errors

package location

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("tick: %w", &Error{Code: CodeTimeout, Message: "no fix within 6s"})

	if !errors.Is(err, ErrTimeout) {
		t.Error("expected timeout match")
	}
	if errors.Is(err, ErrPositionUnavailable) {
		t.Error("unexpected unavailable match")
	}
}

func TestErrorMessage(t *testing.T) {
	if got := (&Error{Code: CodeTimeout}).Error(); got != "timeout" {
		t.Errorf("got %q", got)
	}
	if got := (&Error{Code: CodePositionUnavailable, Message: "no gps"}).Error(); got != "position unavailable: no gps" {
		t.Errorf("got %q", got)
	}
}

func TestClassify(t *testing.T) {
	if Classify(nil) != nil {
		t.Error("nil should stay nil")
	}
	if got := Classify(context.DeadlineExceeded); got.Code != CodeTimeout {
		t.Errorf("deadline: got code %v", got.Code)
	}
	if got := Classify(errors.New("boom")); got.Code != CodePositionUnavailable {
		t.Errorf("generic: got code %v", got.Code)
	}
	orig := &Error{Code: CodePermissionDenied, Message: "revoked"}
	if got := Classify(fmt.Errorf("wrapped: %w", orig)); got != orig {
		t.Error("coded errors should pass through")
	}
}

func TestFixedProvider(t *testing.T) {
	p := NewFixedProvider(41.8781, -87.6298)
	ctx := context.Background()

	status, err := p.RequestPermission(ctx, PermissionAlways)
	if err != nil || status != Granted {
		t.Fatalf("got %v, %v; want granted", status, err)
	}

	before := time.Now().UnixMilli()
	pos, err := p.CurrentPosition(ctx, Options{HighAccuracy: true})
	if err != nil {
		t.Fatalf("failed to get position: %v", err)
	}
	if pos.Latitude != 41.8781 || pos.Longitude != -87.6298 {
		t.Errorf("got (%f, %f)", pos.Latitude, pos.Longitude)
	}
	if pos.Timestamp < before {
		t.Errorf("timestamp %d older than request start %d", pos.Timestamp, before)
	}
}

func TestFixedProvider_InvalidCoordinatesDenied(t *testing.T) {
	p := NewFixedProvider(123, 0)

	status, err := p.RequestPermission(context.Background(), PermissionAlways)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != Denied {
		t.Errorf("got %v, want denied", status)
	}
}

func TestFixedProvider_CancelledContext(t *testing.T) {
	p := NewFixedProvider(1, 1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := p.CurrentPosition(ctx, Options{})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("got %v, want timeout", err)
	}
}

func writeTrack(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "track.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write track: %v", err)
	}
	return path
}

const testTrack = `name: walk
waypoints:
  - latitude: 1
    longitude: 1
  - latitude: 2
    longitude: 2
    repeat: 1
`

func TestReplayProvider_HoldsLastPoint(t *testing.T) {
	p := NewReplayProvider(writeTrack(t, testTrack), false)
	ctx := context.Background()

	if status, err := p.RequestPermission(ctx, PermissionAlways); err != nil || status != Granted {
		t.Fatalf("got %v, %v; want granted", status, err)
	}

	want := []float64{1, 2, 2, 2, 2}
	for i, lat := range want {
		pos, err := p.CurrentPosition(ctx, Options{})
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		if pos.Latitude != lat {
			t.Errorf("request %d: got latitude %v, want %v", i, pos.Latitude, lat)
		}
	}
}

func TestReplayProvider_Loop(t *testing.T) {
	p := NewReplayProvider(writeTrack(t, testTrack), true)
	ctx := context.Background()

	if _, err := p.RequestPermission(ctx, PermissionAlways); err != nil {
		t.Fatalf("permission failed: %v", err)
	}

	want := []float64{1, 2, 2, 1, 2}
	for i, lat := range want {
		pos, err := p.CurrentPosition(ctx, Options{})
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		if pos.Latitude != lat {
			t.Errorf("request %d: got latitude %v, want %v", i, pos.Latitude, lat)
		}
	}
}

func TestReplayProvider_ReloadKeepsPosition(t *testing.T) {
	path := writeTrack(t, testTrack)
	p := NewReplayProvider(path, false)
	ctx := context.Background()

	if _, err := p.RequestPermission(ctx, PermissionAlways); err != nil {
		t.Fatalf("permission failed: %v", err)
	}
	if _, err := p.CurrentPosition(ctx, Options{}); err != nil {
		t.Fatalf("first request failed: %v", err)
	}

	// A restart asks for permission again.
	if _, err := p.RequestPermission(ctx, PermissionAlways); err != nil {
		t.Fatalf("second permission failed: %v", err)
	}
	pos, err := p.CurrentPosition(ctx, Options{})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if pos.Latitude != 2 {
		t.Errorf("got latitude %v, want 2 (replay should resume)", pos.Latitude)
	}

	// A changed track starts over.
	if err := os.WriteFile(path, []byte("waypoints:\n  - latitude: 5\n    longitude: 5\n"), 0600); err != nil {
		t.Fatalf("rewrite track: %v", err)
	}
	if _, err := p.RequestPermission(ctx, PermissionAlways); err != nil {
		t.Fatalf("third permission failed: %v", err)
	}
	pos, err = p.CurrentPosition(ctx, Options{})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if pos.Latitude != 5 {
		t.Errorf("got latitude %v, want 5 from the new track", pos.Latitude)
	}
}

func TestReplayProvider_LargeRepeat(t *testing.T) {
	track := "waypoints:\n  - latitude: 1\n    longitude: 1\n    repeat: 1000000000\n  - latitude: 2\n    longitude: 2\n"
	p := NewReplayProvider(writeTrack(t, track), false)
	ctx := context.Background()

	if _, err := p.RequestPermission(ctx, PermissionAlways); err != nil {
		t.Fatalf("permission failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		pos, err := p.CurrentPosition(ctx, Options{})
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		if pos.Latitude != 1 {
			t.Errorf("request %d: got latitude %v, want 1", i, pos.Latitude)
		}
	}
}

func TestLoadTrack_KeepsRepeatCounts(t *testing.T) {
	points, err := LoadTrack([]byte(testTrack))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d waypoints, want 2", len(points))
	}
	if points[1].Repeat != 1 {
		t.Errorf("got repeat %d, want 1", points[1].Repeat)
	}
}

func TestReplayProvider_MissingFileDenied(t *testing.T) {
	p := NewReplayProvider(filepath.Join(t.TempDir(), "nope.yaml"), false)

	status, err := p.RequestPermission(context.Background(), PermissionAlways)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != Denied {
		t.Errorf("got %v, want denied", status)
	}
}

func TestReplayProvider_NotLoaded(t *testing.T) {
	p := NewReplayProvider("unused", false)

	_, err := p.CurrentPosition(context.Background(), Options{})
	if !errors.Is(err, ErrPositionUnavailable) {
		t.Errorf("got %v, want position unavailable", err)
	}
}

func TestLoadTrack_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", "waypoints: []\n"},
		{"bad yaml", "{{"},
		{"bad coordinates", "waypoints:\n  - latitude: 95\n    longitude: 0\n"},
		{"negative repeat", "waypoints:\n  - latitude: 1\n    longitude: 0\n    repeat: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadTrack([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
