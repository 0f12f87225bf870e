// ABOUTME: Tests for the sampling scheduler
// ABOUTME: Covers fetch options, tick timing, and cancellation

package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/harper/fixtrack/internal/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchOptions(t *testing.T) {
	tests := []struct {
		interval    time.Duration
		wantTimeout time.Duration
		wantMaxAge  time.Duration
	}{
		{8 * time.Second, 6 * time.Second, 4 * time.Second},
		{time.Minute, 15 * time.Second, 10 * time.Second},
		{100 * time.Millisecond, 75 * time.Millisecond, 50 * time.Millisecond},
	}
	for _, tt := range tests {
		opts := FetchOptions(tt.interval)
		assert.True(t, opts.HighAccuracy)
		assert.Equal(t, tt.wantTimeout, opts.Timeout, "timeout for %v", tt.interval)
		assert.Equal(t, tt.wantMaxAge, opts.MaxAge, "max age for %v", tt.interval)
		assert.Less(t, opts.Timeout, tt.interval)
	}
}

func TestScheduler_DeliversFixesUntilCancelled(t *testing.T) {
	provider := newFakeProvider()
	s := NewScheduler(provider, nil)

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	var fixes []location.Position
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx, 10*time.Millisecond, func(p location.Position) {
			mu.Lock()
			fixes = append(fixes, p)
			mu.Unlock()
		}, func(err error) {
			t.Errorf("unexpected error: %v", err)
		})
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(fixes) >= 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	<-done

	after := provider.callCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, provider.callCount(), "no ticks after the loop exits")
}

func TestScheduler_ErrorsDoNotStopLoop(t *testing.T) {
	provider := newFakeProvider()
	provider.fetchErr = errors.New("gps offline")
	s := NewScheduler(provider, nil)

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	var errs []error
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx, 5*time.Millisecond, func(location.Position) {
			t.Error("unexpected fix")
		}, func(err error) {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		})
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(errs) >= 3
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.ErrorIs(t, errs[0], location.ErrPositionUnavailable)
}

func TestScheduler_InFlightFetchCompletes(t *testing.T) {
	provider := newFakeProvider()
	provider.block = make(chan struct{})
	provider.started = make(chan struct{}, 1)
	s := NewScheduler(provider, nil)

	ctx, cancel := context.WithCancel(context.Background())
	delivered := make(chan location.Position, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx, time.Hour, func(p location.Position) { delivered <- p }, func(error) {})
	}()

	<-provider.started
	cancel()

	select {
	case <-done:
		t.Fatal("loop exited while a fetch was in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(provider.block)
	<-done

	select {
	case <-delivered:
	default:
		t.Fatal("in-flight fix was not delivered")
	}
	assert.Equal(t, 1, provider.callCount())
}

func TestScheduler_PassesFetchOptions(t *testing.T) {
	provider := newFakeProvider()
	s := NewScheduler(provider, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx, 40*time.Millisecond, func(location.Position) { cancel() }, func(error) {})
	}()
	<-done

	provider.mu.Lock()
	defer provider.mu.Unlock()
	require.Len(t, provider.opts, 1)
	assert.Equal(t, FetchOptions(40*time.Millisecond), provider.opts[0])
}
