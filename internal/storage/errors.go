// ABOUTME: Common storage errors
// ABOUTME: Enables consistent error handling across storage callers

package storage

import "errors"

// ErrNotFound is returned when a requested fix does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidArgument is returned for malformed ids, coordinates, or page bounds.
var ErrInvalidArgument = errors.New("invalid argument")
