package ports

import (
	"context"
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// MovieRepo persists movies together with their sessions.
type MovieRepo interface {
	// Save inserts or replaces the movie and its session list. A session that
	// collides on (date, slot, room) with any stored session fails with a
	// model.ErrRoomConflict conflict.
	Save(ctx context.Context, movie *model.Movie) error
	FindByID(ctx context.Context, id string) (*model.Movie, error)
	FindAll(ctx context.Context, filter model.MovieFilter) ([]*model.Movie, error)
	Delete(ctx context.Context, id string) error
	ExistsByID(ctx context.Context, id string) (bool, error)
	CheckRoomAvailable(ctx context.Context, date time.Time, slot model.TimeSlot, room int) (bool, error)

	// ReserveSeats atomically books n seats of a session or fails with a
	// *model.CapacityError. ReleaseSeats undoes a reservation.
	ReserveSeats(ctx context.Context, movieID, sessionID string, n int) error
	ReleaseSeats(ctx context.Context, movieID, sessionID string, n int) error
}
