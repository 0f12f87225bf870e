// ABOUTME: Notification sink backed by shoutrrr service URLs
// ABOUTME: Delivers to chat, push, and email services through one router

package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	router "github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
)

// ShoutrrrSink sends notifications to one or more shoutrrr URLs
// (telegram://, ntfy://, smtp://, ...).
type ShoutrrrSink struct {
	urls   []string
	sender *router.ServiceRouter
}

// NewShoutrrrSink validates urls and builds a sender for them.
func NewShoutrrrSink(urls []string, timeout time.Duration) (*ShoutrrrSink, error) {
	if len(urls) == 0 {
		return nil, errors.New("at least one notification URL is required")
	}
	sender, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		return nil, fmt.Errorf("create notification sender: %w", err)
	}
	if timeout > 0 {
		sender.Timeout = timeout
	}
	sender.SetLogger(log.New(io.Discard, "", 0))

	return &ShoutrrrSink{urls: slices.Clone(urls), sender: sender}, nil
}

// Send delivers to every configured URL and returns the first failure.
func (s *ShoutrrrSink) Send(_ context.Context, title, body string) error {
	params := stypes.Params{}
	if title != "" {
		params.SetTitle(title)
	}
	for _, err := range s.sender.Send(body, &params) {
		if err != nil {
			return fmt.Errorf("send notification: %w", err)
		}
	}
	return nil
}
