// Package queue carries domain events over RabbitMQ: Publisher sends them,
// Consumer reads them back and writes an event log.
package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// Envelope is the message body on the events queue.
type Envelope struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope wraps e with a fresh message id.
func NewEnvelope(e model.Event) (Envelope, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		ID:         uuid.NewString(),
		Name:       e.EventName(),
		OccurredAt: e.OccurredAt().UTC(),
		Payload:    payload,
	}, nil
}
