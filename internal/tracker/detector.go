// ABOUTME: Movement detector recording fixes and raising no-motion alerts
// ABOUTME: Notifies once per stationary streak anchored at the last moving fix

package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/harper/fixtrack/internal/location"
	"github.com/harper/fixtrack/internal/models"
	"github.com/harper/fixtrack/internal/notify"
	"github.com/harper/fixtrack/internal/settings"
	"github.com/harper/fixtrack/internal/storage"
	"go.uber.org/zap"
)

const (
	noMotionTitle = "No Movement Detected"
	noMotionBody  = "No movement has been detected for the last 10 minutes."
)

// Detector records incoming positions and raises no-motion alerts.
type Detector struct {
	store    storage.FixRepository
	settings settings.Provider
	sink     notify.Sink
	logger   *zap.Logger
}

// NewDetector wires a detector to its collaborators.
func NewDetector(store storage.FixRepository, prefs settings.Provider, sink notify.Sink, logger *zap.Logger) *Detector {
	if sink == nil {
		sink = notify.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{store: store, settings: prefs, sink: sink, logger: logger}
}

// Process stores pos and, when it is stationary, runs the no-motion check.
// Only store failures while recording are returned; a failing check is
// logged because the fix itself was saved.
func (d *Detector) Process(ctx context.Context, pos location.Position) (*models.Fix, error) {
	fix, err := d.store.Record(ctx, pos.Latitude, pos.Longitude, pos.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("record fix: %w", err)
	}

	if !fix.IsMoving {
		if err := d.checkNoMotion(ctx, fix); err != nil {
			d.logger.Warn("no-motion check failed", zap.Int64("fix_id", fix.ID), zap.Error(err))
		}
	}
	return fix, nil
}

// checkNoMotion notifies once per stationary streak. The streak is anchored
// at the last moving fix; the anchor's flag makes repeat ticks no-ops.
func (d *Detector) checkNoMotion(ctx context.Context, fix *models.Fix) error {
	enabled, err := d.settings.NotifyEnabled()
	if err != nil {
		return fmt.Errorf("read notify setting: %w", err)
	}
	if !enabled {
		return nil
	}

	anchor, err := d.store.GetLastMoving(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find streak anchor: %w", err)
	}
	if anchor.NoMotionNotified || !models.NoMotionDue(anchor, fix.Timestamp) {
		return nil
	}

	if err := d.sink.Send(ctx, noMotionTitle, noMotionBody); err != nil {
		d.logger.Warn("no-motion notification failed", zap.Error(err))
	}
	if err := d.store.MarkNoMotionNotified(ctx, anchor.ID); err != nil {
		return fmt.Errorf("mark anchor %d: %w", anchor.ID, err)
	}
	d.logger.Info("no movement detected",
		zap.Int64("anchor_id", anchor.ID),
		zap.Duration("stationary_for", fix.Time().Sub(anchor.Time())))
	return nil
}
