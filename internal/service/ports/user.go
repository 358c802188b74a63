package ports

import (
	"context"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// UserRepo persists users. Find methods return (nil, nil) when nothing
// matches.
type UserRepo interface {
	Save(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}
