// ABOUTME: Repository interface for recorded location fixes
// ABOUTME: Enables testability and keeps tracker logic independent of the backend

package storage

import (
	"context"

	"github.com/harper/fixtrack/internal/models"
)

// FixRepository defines the operations the tracker and its callers need
// from the fix store. Mutating operations are atomic with respect to each
// other.
type FixRepository interface {
	// Insert records a new fix and returns its id. The movement flag is
	// derived from the most recently inserted fix.
	Insert(ctx context.Context, lat, lng float64, timestamp int64) (int64, error)
	// Record is Insert returning the stored row.
	Record(ctx context.Context, lat, lng float64, timestamp int64) (*models.Fix, error)

	Get(ctx context.Context, limit, offset int) ([]*models.Fix, error)
	GetAll(ctx context.Context) ([]*models.Fix, error)
	GetByID(ctx context.Context, id int64) (*models.Fix, error)
	GetLast(ctx context.Context) (*models.Fix, error)
	GetLastMoving(ctx context.Context) (*models.Fix, error)

	MarkNoMotionNotified(ctx context.Context, id int64) error
	Update(ctx context.Context, fix *models.Fix) error
	Delete(ctx context.Context, id int64) error

	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
	Close() error
}
