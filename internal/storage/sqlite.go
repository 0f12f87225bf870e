// ABOUTME: SQLite storage implementation for location fixes
// ABOUTME: Provides local persistence using pure Go SQLite driver

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/harper/fixtrack/internal/models"
	_ "modernc.org/sqlite"
)

const selectFix = `SELECT id, latitude, longitude, timestamp, is_moving, no_motion_notified FROM fixes`

// SQLiteDB implements FixRepository with a local SQLite database.
type SQLiteDB struct {
	// mu serializes writers so the read-last-then-insert in Record cannot
	// interleave with another insert.
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// Compile-time check that SQLiteDB implements FixRepository.
var _ FixRepository = (*SQLiteDB)(nil)

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "fixtrack", "fixtrack.db")
}

// NewSQLiteDB creates a new SQLite database at the given path.
// Creates the directory and database file if they don't exist.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil { //nolint:gosec // 0750 is appropriate for user data directory
		return nil, fmt.Errorf("create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps transactions and plain queries on the same handle.
	db.SetMaxOpenConns(1)

	s := &SQLiteDB{db: db, path: path}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// migrate creates or updates the database schema.
func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS fixes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			timestamp INTEGER NOT NULL,
			is_moving INTEGER NOT NULL DEFAULT 0,
			no_motion_notified INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_fixes_timestamp ON fixes(timestamp);
		CREATE INDEX IF NOT EXISTS idx_fixes_is_moving ON fixes(is_moving);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Path returns the database file path.
func (s *SQLiteDB) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Insert records a new fix and returns its id.
func (s *SQLiteDB) Insert(ctx context.Context, lat, lng float64, timestamp int64) (int64, error) {
	fix, err := s.Record(ctx, lat, lng, timestamp)
	if err != nil {
		return 0, err
	}
	return fix.ID, nil
}

// Record inserts a fix and returns the stored row. The previous fix is read
// inside the same transaction so IsMoving is always derived from the true
// predecessor.
func (s *SQLiteDB) Record(ctx context.Context, lat, lng float64, timestamp int64) (*models.Fix, error) {
	if err := models.ValidateCoordinates(lat, lng); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	prev, err := scanFix(tx.QueryRowContext(ctx, selectFix+` ORDER BY id DESC LIMIT 1`))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	fix := &models.Fix{
		Latitude:  lat,
		Longitude: lng,
		Timestamp: timestamp,
		IsMoving:  models.IsMoving(prev, lat, lng),
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO fixes (latitude, longitude, timestamp, is_moving, no_motion_notified)
		 VALUES (?, ?, ?, ?, 0)`,
		fix.Latitude, fix.Longitude, fix.Timestamp, boolToInt(fix.IsMoving),
	)
	if err != nil {
		return nil, fmt.Errorf("insert fix: %w", err)
	}
	fix.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert fix: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit insert: %w", err)
	}
	return fix, nil
}

// Get returns one page of fixes, newest timestamp first.
func (s *SQLiteDB) Get(ctx context.Context, limit, offset int) ([]*models.Fix, error) {
	if limit <= 0 || offset < 0 {
		return nil, fmt.Errorf("%w: limit %d offset %d", ErrInvalidArgument, limit, offset)
	}
	rows, err := s.db.QueryContext(ctx,
		selectFix+` ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query fixes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanFixes(rows)
}

// GetAll returns every fix, newest timestamp first.
func (s *SQLiteDB) GetAll(ctx context.Context) ([]*models.Fix, error) {
	rows, err := s.db.QueryContext(ctx, selectFix+` ORDER BY timestamp DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query fixes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanFixes(rows)
}

// GetByID retrieves a fix by its id.
func (s *SQLiteDB) GetByID(ctx context.Context, id int64) (*models.Fix, error) {
	return scanFix(s.db.QueryRowContext(ctx, selectFix+` WHERE id = ?`, id))
}

// GetLast returns the most recently inserted fix.
func (s *SQLiteDB) GetLast(ctx context.Context) (*models.Fix, error) {
	return scanFix(s.db.QueryRowContext(ctx, selectFix+` ORDER BY id DESC LIMIT 1`))
}

// GetLastMoving returns the most recently inserted fix flagged as moving.
func (s *SQLiteDB) GetLastMoving(ctx context.Context) (*models.Fix, error) {
	return scanFix(s.db.QueryRowContext(ctx, selectFix+` WHERE is_moving = 1 ORDER BY id DESC LIMIT 1`))
}

// MarkNoMotionNotified sets the no-motion flag on a fix. The flag never
// goes back to false, so marking twice is a no-op.
func (s *SQLiteDB) MarkNoMotionNotified(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE fixes SET no_motion_notified = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark fix %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark fix %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Update overwrites the coordinates, timestamp and movement flag of an
// existing fix. The no-motion flag is left alone.
func (s *SQLiteDB) Update(ctx context.Context, fix *models.Fix) error {
	if fix == nil || fix.ID <= 0 {
		return fmt.Errorf("%w: fix id required", ErrInvalidArgument)
	}
	if err := models.ValidateCoordinates(fix.Latitude, fix.Longitude); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE fixes SET latitude = ?, longitude = ?, timestamp = ?, is_moving = ? WHERE id = ?`,
		fix.Latitude, fix.Longitude, fix.Timestamp, boolToInt(fix.IsMoving), fix.ID,
	)
	if err != nil {
		return fmt.Errorf("update fix %d: %w", fix.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update fix %d: %w", fix.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a single fix. Deleting a missing id succeeds.
func (s *SQLiteDB) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM fixes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete fix %d: %w", id, err)
	}
	return nil
}

// Count returns the total number of fixes.
func (s *SQLiteDB) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fixes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count fixes: %w", err)
	}
	return n, nil
}

// Clear removes all fixes. Ids are not reused afterwards.
func (s *SQLiteDB) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM fixes`); err != nil {
		return fmt.Errorf("clear fixes: %w", err)
	}
	return nil
}

// restore writes fixes verbatim in one transaction, keeping their flags.
// Ids are reassigned by the database.
func (s *SQLiteDB) restore(ctx context.Context, fixes []*models.Fix) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin restore: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, f := range fixes {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO fixes (latitude, longitude, timestamp, is_moving, no_motion_notified)
			 VALUES (?, ?, ?, ?, ?)`,
			f.Latitude, f.Longitude, f.Timestamp, boolToInt(f.IsMoving), boolToInt(f.NoMotionNotified),
		)
		if err != nil {
			return fmt.Errorf("restore fix: %w", err)
		}
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFix(row rowScanner) (*models.Fix, error) {
	var fix models.Fix
	var moving, notified int
	err := row.Scan(&fix.ID, &fix.Latitude, &fix.Longitude, &fix.Timestamp, &moving, &notified)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan fix: %w", err)
	}
	fix.IsMoving = moving != 0
	fix.NoMotionNotified = notified != 0
	return &fix, nil
}

func scanFixes(rows *sql.Rows) ([]*models.Fix, error) {
	fixes := []*models.Fix{}
	for rows.Next() {
		fix, err := scanFix(rows)
		if err != nil {
			return nil, err
		}
		fixes = append(fixes, fix)
	}
	return fixes, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
