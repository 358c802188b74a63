package ports

import (
	"context"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// TicketRepo persists tickets. Save fails with a model.ErrDuplicateTicket
// conflict when a second ticket for the same user and session is inserted.
type TicketRepo interface {
	Save(ctx context.Context, ticket *model.Ticket) error
	FindByID(ctx context.Context, id string) (*model.Ticket, error)
	FindByUserAndSession(ctx context.Context, userID, sessionID string) (*model.Ticket, error)
	FindBySession(ctx context.Context, sessionID string) ([]*model.Ticket, error)
	FindByUser(ctx context.Context, userID string) ([]*model.Ticket, error)
	// FindUsedByUser orders by used date, newest first.
	FindUsedByUser(ctx context.Context, userID string) ([]*model.Ticket, error)
	FindUnusedByUser(ctx context.Context, userID string) ([]*model.Ticket, error)
}
