// Package notification holds EventNotifier implementations that do not need
// a broker.
package notification

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/service/ports"
)

// LogNotifier writes every event to the application log.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log.Named("events")}
}

func (n *LogNotifier) Notify(_ context.Context, events ...model.Event) {
	for _, e := range events {
		n.log.Info("domain event",
			zap.String("event", e.EventName()),
			zap.Time("occurred_at", e.OccurredAt()),
			zap.Reflect("payload", e),
		)
	}
}

// Multi fans events out to several notifiers in order.
type Multi []ports.EventNotifier

func (m Multi) Notify(ctx context.Context, events ...model.Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, events...)
		}
	}
}

// Recorder keeps events in memory. Tests use it to assert what a service
// emitted.
type Recorder struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *Recorder) Notify(_ context.Context, events ...model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *Recorder) Events() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Event(nil), r.events...)
}

// Names lists the recorded event names in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventName())
	}
	return out
}
