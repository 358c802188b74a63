package service

import (
	"context"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/service/ports"
)

// notify forwards drained events. The notifier outlives the request, so the
// request cancellation is detached.
func notify(ctx context.Context, n ports.EventNotifier, events []model.Event) {
	if n == nil || len(events) == 0 {
		return
	}
	n.Notify(context.WithoutCancel(ctx), events...)
}
