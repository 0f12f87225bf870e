// ABOUTME: Asynchronous notification delivery through a bounded queue
// ABOUTME: One worker drains the queue so callers never wait on a slow sink

package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultQueueSize   = 16
	defaultSendTimeout = 15 * time.Second
)

var (
	// ErrQueueFull is returned by Dispatcher.Send when the notification is
	// dropped because the worker is behind.
	ErrQueueFull = errors.New("notification queue full")

	// ErrDispatcherClosed is returned by Dispatcher.Send after Close.
	ErrDispatcherClosed = errors.New("notification dispatcher closed")
)

// DispatcherOptions tunes a Dispatcher.
type DispatcherOptions struct {
	// QueueSize bounds the number of pending notifications.
	QueueSize int
	// SendTimeout bounds each delivery to the wrapped sink.
	SendTimeout time.Duration
	Logger      *zap.Logger
}

type message struct {
	title string
	body  string
}

// Dispatcher is a Sink that queues notifications and delivers them to the
// wrapped sink from its own goroutine.
type Dispatcher struct {
	sink    Sink
	timeout time.Duration
	logger  *zap.Logger
	queue   chan message
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts a dispatcher delivering to sink. Close must be
// called to stop its worker.
func NewDispatcher(sink Sink, opts DispatcherOptions) *Dispatcher {
	if sink == nil {
		sink = Nop{}
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = defaultSendTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		sink:    sink,
		timeout: opts.SendTimeout,
		logger:  opts.Logger,
		queue:   make(chan message, opts.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Send queues the notification and returns at once. The caller's context
// is not used for delivery.
func (d *Dispatcher) Send(_ context.Context, title, body string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.queue <- message{title: title, body: body}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for msg := range d.queue {
		if d.ctx.Err() != nil {
			d.logger.Debug("notification dropped on shutdown", zap.String("title", msg.title))
			continue
		}
		sendCtx, cancel := context.WithTimeout(d.ctx, d.timeout)
		err := d.sink.Send(sendCtx, msg.title, msg.body)
		cancel()
		if err != nil {
			d.logger.Warn("notification delivery failed", zap.String("title", msg.title), zap.Error(err))
		}
	}
}

// Close stops accepting notifications and waits for the queue to drain.
// When ctx ends first, the in-flight delivery is cancelled, the rest of the
// queue is dropped and ctx.Err() is returned.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	defer d.cancel()
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		d.cancel()
		<-d.done
		return ctx.Err()
	}
}
