// ABOUTME: Location provider that replays a recorded track file
// ABOUTME: Reads YAML waypoints and serves them one per request

package location

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/harper/fixtrack/internal/models"
	"gopkg.in/yaml.v3"
)

// Waypoint is one entry of a track file.
type Waypoint struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	// Repeat reports this waypoint this many extra times before moving on.
	Repeat int `yaml:"repeat,omitempty"`
}

// Track is the YAML track file format.
type Track struct {
	Name      string     `yaml:"name,omitempty"`
	Waypoints []Waypoint `yaml:"waypoints"`
}

// ReplayProvider serves track waypoints in order. When the track is
// exhausted it either wraps around (Loop) or keeps reporting the last
// waypoint, which looks like a device that stopped moving.
type ReplayProvider struct {
	path string
	loop bool

	mu     sync.Mutex
	points []Waypoint
	idx    int // waypoint being reported
	served int // times points[idx] has been reported
	now    func() time.Time
}

// NewReplayProvider creates a provider for the track file at path. The file
// is read when permission is requested.
func NewReplayProvider(path string, loop bool) *ReplayProvider {
	return &ReplayProvider{path: path, loop: loop, now: time.Now}
}

// LoadTrack parses and validates a YAML track. Repeats stay as counts on
// the returned waypoints.
func LoadTrack(data []byte) ([]Waypoint, error) {
	var track Track
	if err := yaml.Unmarshal(data, &track); err != nil {
		return nil, fmt.Errorf("parse track: %w", err)
	}
	if len(track.Waypoints) == 0 {
		return nil, errors.New("track has no waypoints")
	}

	for i, wp := range track.Waypoints {
		if err := models.ValidateCoordinates(wp.Latitude, wp.Longitude); err != nil {
			return nil, fmt.Errorf("waypoint %d: %w", i, err)
		}
		if wp.Repeat < 0 {
			return nil, fmt.Errorf("waypoint %d: repeat cannot be negative", i)
		}
	}
	return track.Waypoints, nil
}

// RequestPermission loads the track. A missing or unreadable track is
// reported as denied access rather than an error. Reloading an unchanged
// track keeps the replay position, so a restarted tracker resumes where it
// stopped.
func (p *ReplayProvider) RequestPermission(_ context.Context, _ PermissionLevel) (PermissionStatus, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
			return Denied, nil
		}
		return Denied, fmt.Errorf("read track: %w", err)
	}

	points, err := LoadTrack(data)
	if err != nil {
		return Denied, err
	}

	p.mu.Lock()
	if !slices.Equal(p.points, points) {
		p.points = points
		p.idx, p.served = 0, 0
	}
	p.mu.Unlock()
	return Granted, nil
}

// CurrentPosition returns the next waypoint of the track.
func (p *ReplayProvider) CurrentPosition(ctx context.Context, _ Options) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, Classify(err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.points) == 0 {
		return Position{}, &Error{Code: CodePositionUnavailable, Message: "track not loaded"}
	}

	wp := p.points[p.idx]
	p.served++
	if p.served > wp.Repeat {
		switch {
		case p.idx+1 < len(p.points):
			p.idx, p.served = p.idx+1, 0
		case p.loop:
			p.idx, p.served = 0, 0
		default:
			p.served = wp.Repeat
		}
	}

	return Position{
		Latitude:  wp.Latitude,
		Longitude: wp.Longitude,
		Timestamp: p.now().UnixMilli(),
	}, nil
}
