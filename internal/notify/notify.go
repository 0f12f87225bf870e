// ABOUTME: Notification sink contract and simple sinks
// ABOUTME: Console output, fan-out to several sinks, and a no-op sink

package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Sink delivers a user-facing notification. Callers treat delivery as
// fire-and-forget: a failing sink never affects tracking.
type Sink interface {
	Send(ctx context.Context, title, body string) error
}

// Nop discards every notification.
type Nop struct{}

// Send does nothing.
func (Nop) Send(context.Context, string, string) error { return nil }

// ConsoleSink writes notifications as colored lines to a writer.
type ConsoleSink struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

// NewConsoleSink creates a sink writing to out.
func NewConsoleSink(out io.Writer) *ConsoleSink {
	return &ConsoleSink{out: out, now: time.Now}
}

// Send prints the notification with a timestamp.
func (c *ConsoleSink) Send(_ context.Context, title, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := fmt.Fprintf(c.out, "%s %s %s\n",
		color.New(color.Faint).Sprint(c.now().Format("15:04:05")),
		color.YellowString("🔔 %s", title),
		body)
	return err
}

// Multi sends to every sink and joins their errors.
type Multi []Sink

// Send delivers to all sinks even when some fail.
func (m Multi) Send(ctx context.Context, title, body string) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, title, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
