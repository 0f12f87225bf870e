// ABOUTME: Location provider that always reports the same coordinates
// ABOUTME: Models a parked device; useful for exercising no-motion alerts

package location

import (
	"context"
	"time"

	"github.com/harper/fixtrack/internal/models"
)

// FixedProvider reports a constant position stamped with the current time.
type FixedProvider struct {
	Latitude  float64
	Longitude float64

	now func() time.Time
}

// NewFixedProvider creates a provider for the given coordinates.
func NewFixedProvider(lat, lng float64) *FixedProvider {
	return &FixedProvider{Latitude: lat, Longitude: lng, now: time.Now}
}

// RequestPermission grants access when the configured coordinates are valid.
func (p *FixedProvider) RequestPermission(_ context.Context, _ PermissionLevel) (PermissionStatus, error) {
	if err := models.ValidateCoordinates(p.Latitude, p.Longitude); err != nil {
		return Denied, nil
	}
	return Granted, nil
}

// CurrentPosition returns the configured coordinates.
func (p *FixedProvider) CurrentPosition(ctx context.Context, _ Options) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, Classify(err)
	}
	now := time.Now
	if p.now != nil {
		now = p.now
	}
	return Position{
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Timestamp: now().UnixMilli(),
	}, nil
}
