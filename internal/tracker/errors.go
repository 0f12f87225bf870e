// ABOUTME: Sentinel errors for the tracker lifecycle
// ABOUTME: Permission denial and use after Close

package tracker

import "errors"

var (
	// ErrPermissionDenied is returned by Start when the location provider
	// refuses access. The tracker stays idle.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrClosed is returned by Start after Close.
	ErrClosed = errors.New("tracker closed")
)
