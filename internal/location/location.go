// ABOUTME: Location provider contract and shared position types
// ABOUTME: Defines permission levels, fetch options, and coded provider errors

package location

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Position is one raw fix as reported by a provider.
type Position struct {
	Latitude  float64
	Longitude float64
	Timestamp int64 // epoch milliseconds
}

// Options controls a single position request.
type Options struct {
	HighAccuracy bool
	// Timeout bounds how long the provider may take to produce a fix.
	Timeout time.Duration
	// MaxAge is the oldest cached fix the provider may return.
	MaxAge time.Duration
}

// PermissionLevel is the kind of location access requested.
type PermissionLevel string

const (
	PermissionWhenInUse PermissionLevel = "when_in_use"
	PermissionAlways    PermissionLevel = "always"
)

// PermissionStatus is the outcome of a permission request.
type PermissionStatus string

const (
	Granted PermissionStatus = "granted"
	Denied  PermissionStatus = "denied"
)

// Provider is the source of position fixes.
type Provider interface {
	RequestPermission(ctx context.Context, level PermissionLevel) (PermissionStatus, error)
	CurrentPosition(ctx context.Context, opts Options) (Position, error)
}

// ErrorCode classifies provider failures.
type ErrorCode int

const (
	CodePermissionDenied    ErrorCode = 1
	CodePositionUnavailable ErrorCode = 2
	CodeTimeout             ErrorCode = 3
)

func (c ErrorCode) String() string {
	switch c {
	case CodePermissionDenied:
		return "permission denied"
	case CodePositionUnavailable:
		return "position unavailable"
	case CodeTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("code %d", int(c))
	}
}

// Error is a provider failure carrying a classification code.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches errors by code, so errors.Is(err, ErrTimeout) works for any
// timeout regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrPermissionDenied    = &Error{Code: CodePermissionDenied}
	ErrPositionUnavailable = &Error{Code: CodePositionUnavailable}
	ErrTimeout             = &Error{Code: CodeTimeout}
)

// Classify maps an arbitrary fetch failure onto a coded Error. Context
// deadline expiry becomes a timeout; anything else is unavailable.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var le *Error
	if errors.As(err, &le) {
		return le
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Code: CodeTimeout, Message: err.Error()}
	}
	return &Error{Code: CodePositionUnavailable, Message: err.Error()}
}
