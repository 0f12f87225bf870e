// ABOUTME: Lifecycle controller for the background sampling loop
// ABOUTME: Start, stop, delayed restart, and the published window of fixes

package tracker

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harper/fixtrack/internal/location"
	"github.com/harper/fixtrack/internal/models"
	"github.com/harper/fixtrack/internal/notify"
	"github.com/harper/fixtrack/internal/settings"
	"github.com/harper/fixtrack/internal/storage"
	"go.uber.org/zap"
)

// DefaultPageSize is the number of fixes per page of the published window.
const DefaultPageSize = 10

// DefaultNotifyDrain bounds how long Close waits for queued notifications.
const DefaultNotifyDrain = 5 * time.Second

const sampleErrorTitle = "Failed to get location"

// Snapshot is the observable state of a Controller.
type Snapshot struct {
	State         models.TrackerState
	IsTracking    bool
	ResumePending bool
	LastError     string
	Interval      time.Duration
	RunID         string
	Fixes         []*models.Fix
	TotalCount    int
}

// Options tunes a Controller.
type Options struct {
	// PageSize is the page length used by Refresh and LoadMore.
	PageSize int
	// IntervalUnit scales the interval read from settings. Defaults to
	// time.Second.
	IntervalUnit time.Duration
	// NotifyDrain bounds how long Close waits for pending notifications.
	NotifyDrain time.Duration
	Logger      *zap.Logger
}

// Controller starts, stops and restarts the sampling loop and publishes
// the recorded fixes to observers.
type Controller struct {
	store     storage.FixRepository
	settings  settings.Provider
	provider  location.Provider
	sink      *notify.Dispatcher
	drain     time.Duration
	detector  *Detector
	scheduler *Scheduler
	logger    *zap.Logger
	pageSize  int
	unit      time.Duration

	// lifecycle serializes Start, Stop, Restart and Close. It is never held
	// by the sampling goroutine.
	lifecycle sync.Mutex

	// window serializes reloads of the published fixes so a reload racing a
	// new fix cannot leave a stale page or count behind.
	window sync.Mutex

	mu        sync.Mutex
	state     models.TrackerState
	lastError string
	interval  time.Duration
	runID     uuid.UUID
	cancel    context.CancelFunc
	done      chan struct{}
	resume    *time.Timer
	resumeGen uint64
	closed    bool
	pages     int
	fixes     []*models.Fix
	total     int
	subs      map[int]chan Snapshot
	nextSub   int
}

// NewController builds an idle controller. The store, settings and sink
// are owned by the caller and must outlive the controller. Notifications
// reach sink through a queue so a slow sink never delays sampling; Close
// releases it.
func NewController(store storage.FixRepository, prefs settings.Provider, provider location.Provider, sink notify.Sink, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.IntervalUnit <= 0 {
		opts.IntervalUnit = time.Second
	}
	if opts.NotifyDrain <= 0 {
		opts.NotifyDrain = DefaultNotifyDrain
	}
	dispatcher := notify.NewDispatcher(sink, notify.DispatcherOptions{Logger: opts.Logger.Named("notify")})

	return &Controller{
		store:     store,
		settings:  prefs,
		provider:  provider,
		sink:      dispatcher,
		drain:     opts.NotifyDrain,
		detector:  NewDetector(store, prefs, dispatcher, opts.Logger),
		scheduler: NewScheduler(provider, opts.Logger),
		logger:    opts.Logger,
		pageSize:  opts.PageSize,
		unit:      opts.IntervalUnit,
		state:     models.Idle,
		pages:     1,
		subs:      make(map[int]chan Snapshot),
	}
}

// Start requests location permission and launches the sampling loop. It is
// a no-op when already running. On failure the controller stays idle and
// the error is also recorded as LastError.
func (c *Controller) Start(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	c.cancelResumeLocked()
	c.mu.Unlock()

	return c.start(ctx)
}

func (c *Controller) start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state == models.Running {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := c.requestPermission(ctx); err != nil {
		c.mu.Lock()
		c.lastError = err.Error()
		c.publishLocked()
		c.mu.Unlock()
		c.logger.Warn("tracking not started", zap.Error(err))
		return err
	}

	interval := c.currentInterval()
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	runID := uuid.New()
	logger := c.logger.With(zap.String("run_id", runID.String()))

	c.mu.Lock()
	c.state = models.Running
	c.lastError = ""
	c.interval = interval
	c.runID = runID
	c.cancel = cancel
	c.done = done
	c.publishLocked()
	c.mu.Unlock()

	// Fix handling must survive cancellation so an in-flight sample is
	// still stored after Stop.
	handleCtx := context.WithoutCancel(runCtx)
	go func() {
		defer close(done)
		c.scheduler.Run(runCtx, interval,
			func(pos location.Position) { c.handleFix(handleCtx, logger, pos) },
			func(err error) { c.handleError(handleCtx, logger, err) },
		)
	}()

	logger.Info("tracking started", zap.Duration("interval", interval))
	return nil
}

func (c *Controller) requestPermission(ctx context.Context) error {
	status, err := c.provider.RequestPermission(ctx, location.PermissionAlways)
	if err != nil {
		return fmt.Errorf("request location permission: %w", err)
	}
	if status != location.Granted {
		return fmt.Errorf("%w (%s)", ErrPermissionDenied, status)
	}
	return nil
}

// currentInterval reads the interval from settings at the moment a run
// starts; a restart therefore picks up changes made while it was pending.
func (c *Controller) currentInterval() time.Duration {
	seconds, err := c.settings.Interval()
	if err != nil {
		c.logger.Warn("could not read interval, using default", zap.Error(err))
	}
	if seconds <= 0 {
		seconds = settings.DefaultInterval
	}
	return time.Duration(seconds) * c.unit
}

// Stop cancels the sampling loop and waits for it to exit. A fetch already
// in flight completes and is recorded first. Stop also cancels a pending
// restart. It is a no-op when idle.
func (c *Controller) Stop() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	c.cancelResumeLocked()
	c.publishLocked()
	c.mu.Unlock()

	c.stop()
}

func (c *Controller) stop() {
	c.mu.Lock()
	if c.state != models.Running {
		c.mu.Unlock()
		return
	}
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	cancel()
	<-done

	c.mu.Lock()
	c.state = models.Idle
	c.cancel = nil
	c.done = nil
	c.publishLocked()
	c.mu.Unlock()

	c.logger.Info("tracking stopped")
}

// Restart stops the loop and starts it again after delay, reading the
// interval afresh at that point. The controller is idle while the restart
// is pending. Restart does nothing when idle.
func (c *Controller) Restart(delay time.Duration) {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	running := c.state == models.Running
	c.mu.Unlock()
	if !running {
		return
	}

	c.stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.cancelResumeLocked()
	gen := c.resumeGen
	c.resume = time.AfterFunc(delay, func() { c.resumeRun(gen) })
	c.publishLocked()
	c.logger.Info("tracking restart scheduled", zap.Duration("delay", delay))
}

func (c *Controller) resumeRun(gen uint64) {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	if c.resume == nil || c.resumeGen != gen {
		c.mu.Unlock()
		return
	}
	c.resume = nil
	c.mu.Unlock()

	if err := c.start(context.Background()); err != nil {
		c.logger.Error("tracking restart failed", zap.Error(err))
	}
}

// cancelResumeLocked drops any pending restart. c.mu must be held.
func (c *Controller) cancelResumeLocked() {
	if c.resume != nil {
		c.resume.Stop()
		c.resume = nil
	}
	c.resumeGen++
}

// Close stops a running loop and cancels any pending restart. The
// controller cannot be started again afterwards. Queued notifications get
// up to Options.NotifyDrain to be delivered. Subscriber channels are
// closed.
func (c *Controller) Close() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancelResumeLocked()
	c.mu.Unlock()

	c.stop()

	ctx, cancel := context.WithTimeout(context.Background(), c.drain)
	defer cancel()
	if err := c.sink.Close(ctx); err != nil {
		c.logger.Warn("pending notifications dropped", zap.Error(err))
	}

	c.mu.Lock()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
	c.mu.Unlock()
}

// State returns the current lifecycle state.
func (c *Controller) State() models.TrackerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the current observable state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Get reads one page of fixes straight from the store.
func (c *Controller) Get(ctx context.Context, limit, offset int) ([]*models.Fix, error) {
	return c.store.Get(ctx, limit, offset)
}

// Refresh re-reads the displayed window (all loaded pages) and the total
// count, then publishes them. It does not touch the sampling loop.
func (c *Controller) Refresh(ctx context.Context) error {
	c.window.Lock()
	defer c.window.Unlock()

	c.mu.Lock()
	limit := c.pages * c.pageSize
	c.mu.Unlock()

	fixes, err := c.store.Get(ctx, limit, 0)
	if err != nil {
		return fmt.Errorf("refresh fixes: %w", err)
	}
	total, err := c.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("refresh count: %w", err)
	}

	c.mu.Lock()
	c.fixes = fixes
	c.total = total
	c.publishLocked()
	c.mu.Unlock()
	return nil
}

// LoadMore grows the displayed window by one page.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	c.pages++
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Subscribe registers an observer. Each state change is offered to the
// channel without blocking; when the buffer is full the oldest pending
// snapshot is replaced. Call the returned func to unregister.
func (c *Controller) Subscribe(buffer int) (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, max(buffer, 1))

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
}

func (c *Controller) handleFix(ctx context.Context, logger *zap.Logger, pos location.Position) {
	fix, err := c.detector.Process(ctx, pos)
	if err != nil {
		logger.Error("failed to store fix", zap.Error(err))
		return
	}
	logger.Debug("fix recorded",
		zap.Int64("id", fix.ID),
		zap.Float64("lat", fix.Latitude),
		zap.Float64("lng", fix.Longitude),
		zap.Bool("moving", fix.IsMoving))

	// The window is re-read rather than patched so it stays consistent
	// with a concurrent Refresh.
	if err := c.Refresh(ctx); err != nil {
		logger.Warn("failed to reload fixes", zap.Error(err))
	}
}

func (c *Controller) handleError(ctx context.Context, logger *zap.Logger, err error) {
	logger.Warn("location sample failed", zap.Error(err))
	if sendErr := c.sink.Send(ctx, sampleErrorTitle, err.Error()); sendErr != nil {
		logger.Warn("sample error notification dropped", zap.Error(sendErr))
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:         c.state,
		IsTracking:    c.state == models.Running,
		ResumePending: c.resume != nil,
		LastError:     c.lastError,
		Interval:      c.interval,
		Fixes:         slices.Clone(c.fixes),
		TotalCount:    c.total,
	}
	if c.state == models.Running {
		snap.RunID = c.runID.String()
	}
	return snap
}

func (c *Controller) publishLocked() {
	if len(c.subs) == 0 {
		return
	}
	snap := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
