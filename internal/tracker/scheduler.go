// ABOUTME: Fixed-interval sampling loop over a location provider
// ABOUTME: Derives fetch options from the interval and stops on cancellation

package tracker

import (
	"context"
	"time"

	"github.com/harper/fixtrack/internal/location"
	"go.uber.org/zap"
)

const (
	maxFetchTimeout = 15 * time.Second
	maxFixAge       = 10 * time.Second
)

// Scheduler samples a location provider at a fixed interval.
type Scheduler struct {
	provider location.Provider
	logger   *zap.Logger
}

// NewScheduler creates a scheduler for provider.
func NewScheduler(provider location.Provider, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{provider: provider, logger: logger}
}

// FetchOptions returns the request options for a given interval. The fetch
// timeout is always shorter than the interval so one tick cannot overrun
// the next.
func FetchOptions(interval time.Duration) location.Options {
	return location.Options{
		HighAccuracy: true,
		Timeout:      min(maxFetchTimeout, interval*3/4),
		MaxAge:       min(maxFixAge, interval/2),
	}
}

// Run samples until ctx is cancelled. Cancellation is checked between ticks
// only: a fetch that has started runs to completion (bounded by its own
// timeout) and its result is still delivered. Fetch failures go to onError
// and never end the loop.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration, onFix func(location.Position), onError func(error)) {
	if interval <= 0 {
		interval = time.Second
	}
	opts := FetchOptions(interval)
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("sampling loop stopped")
			return
		case <-timer.C:
		}
		if ctx.Err() != nil {
			s.logger.Debug("sampling loop stopped")
			return
		}

		pos, err := s.fetch(ctx, opts)
		if err != nil {
			onError(err)
		} else {
			onFix(pos)
		}

		timer.Reset(interval)
	}
}

func (s *Scheduler) fetch(ctx context.Context, opts location.Options) (location.Position, error) {
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), opts.Timeout)
	defer cancel()

	pos, err := s.provider.CurrentPosition(fetchCtx, opts)
	if err != nil {
		return location.Position{}, location.Classify(err)
	}
	return pos, nil
}
