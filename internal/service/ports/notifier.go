package ports

import (
	"context"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// EventNotifier receives domain events after the change that produced them
// has been stored.
type EventNotifier interface {
	Notify(ctx context.Context, events ...model.Event)
}
