// ABOUTME: User-tunable tracker settings persisted in a Badger key-value store
// ABOUTME: Sampling interval and no-motion notification toggle, read fresh on every use

package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
)

const (
	// DefaultInterval is the sampling interval in seconds when none is stored.
	DefaultInterval = 8

	KeyMovementNotify    = "movement.notify"
	KeyTrackingFrequency = "tracking.frequency"
)

// Provider exposes the settings the tracker consults. Values are read at
// each decision point and never cached by callers across restarts.
type Provider interface {
	// Interval returns the sampling interval in seconds.
	Interval() (int, error)
	// NotifyEnabled reports whether no-motion notifications are on.
	NotifyEnabled() (bool, error)
}

// DefaultLockWait bounds how long an operation waits for another process
// to release the settings database.
const DefaultLockWait = 5 * time.Second

// Store persists settings in Badger. A store from Open keeps the database
// closed between operations: each read or write opens it briefly, so a
// running tracker and a settings command can share the directory.
type Store struct {
	dir      string
	logger   *zap.Logger
	lockWait time.Duration

	mu  sync.Mutex
	mem *badger.DB
}

// Compile-time check that Store implements Provider.
var _ Provider = (*Store)(nil)

// Open prepares a settings store in dir and checks that it can be opened.
func Open(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil { //nolint:gosec // 0750 is appropriate for user data directory
		return nil, fmt.Errorf("create directory: %w", err)
	}
	s := &Store{dir: dir, logger: logger, lockWait: DefaultLockWait}
	if err := s.with(func(*badger.DB) error { return nil }); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}
	return &Store{mem: db}, nil
}

// Close releases an in-memory store. Directory stores hold nothing open.
func (s *Store) Close() error {
	if s.mem != nil {
		return s.mem.Close()
	}
	return nil
}

// with runs fn against an open database. For directory stores the
// database is opened for the call only; while another process holds it,
// opening is retried until lockWait elapses.
func (s *Store) with(fn func(db *badger.DB) error) error {
	if s.mem != nil {
		return fn(s.mem)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond

	opts := badger.DefaultOptions(s.dir).WithLogger(newBadgerLogger(s.logger))
	db, err := backoff.Retry(context.Background(), func() (*badger.DB, error) {
		db, err := badger.Open(opts)
		if err != nil && !isLocked(err) {
			return nil, backoff.Permanent(err)
		}
		return db, err
	}, backoff.WithBackOff(b), backoff.WithMaxElapsedTime(s.lockWait))
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}

	fnErr := fn(db)
	if err := db.Close(); err != nil && fnErr == nil {
		fnErr = fmt.Errorf("close settings: %w", err)
	}
	return fnErr
}

// isLocked reports whether err is Badger refusing a directory that another
// handle has open. Badger formats the cause into the message.
func isLocked(err error) bool {
	return strings.Contains(err.Error(), "Cannot acquire directory lock")
}

// Interval returns the stored sampling interval, or DefaultInterval.
func (s *Store) Interval() (int, error) {
	raw, ok, err := s.get(KeyTrackingFrequency)
	if err != nil || !ok {
		return DefaultInterval, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return DefaultInterval, fmt.Errorf("stored interval %q is not a positive integer", raw)
	}
	return n, nil
}

// SetInterval stores a new sampling interval in seconds.
func (s *Store) SetInterval(seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("interval must be positive, got %d", seconds)
	}
	return s.set(KeyTrackingFrequency, strconv.Itoa(seconds))
}

// NotifyEnabled returns the stored toggle, or false.
func (s *Store) NotifyEnabled() (bool, error) {
	raw, ok, err := s.get(KeyMovementNotify)
	if err != nil || !ok {
		return false, err
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("stored notify flag %q: %w", raw, err)
	}
	return enabled, nil
}

// SetNotifyEnabled stores the no-motion notification toggle.
func (s *Store) SetNotifyEnabled(enabled bool) error {
	return s.set(KeyMovementNotify, strconv.FormatBool(enabled))
}

// Reset removes all stored settings so defaults apply again.
func (s *Store) Reset() error {
	return s.with(func(db *badger.DB) error {
		return db.Update(func(txn *badger.Txn) error {
			for _, key := range []string{KeyMovementNotify, KeyTrackingFrequency} {
				if err := txn.Delete([]byte(key)); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

func (s *Store) get(key string) (string, bool, error) {
	var val []byte
	err := s.with(func(db *badger.DB) error {
		return db.View(func(txn *badger.Txn) error {
			item, err := txn.Get([]byte(key))
			if err != nil {
				return err
			}
			val, err = item.ValueCopy(nil)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return string(val), true, nil
}

func (s *Store) set(key, value string) error {
	err := s.with(func(db *badger.DB) error {
		return db.Update(func(txn *badger.Txn) error {
			return txn.Set([]byte(key), []byte(value))
		})
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
