// README: Trip lifecycle events and the publisher port the trip service emits through.
package events

import (
	"context"
	"time"

	"privatehire/internal/logging"
	"privatehire/internal/types"
)

const (
	TripCreated   = "trip.created"
	TripCancelled = "trip.cancelled"
	TripCompleted = "trip.completed"
)

type Event struct {
	Type        string      `json:"type"`
	TripID      types.ID    `json:"trip_id"`
	PassengerID types.ID    `json:"passenger_id"`
	DriverID    types.ID    `json:"driver_id,omitempty"`
	Fare        types.Money `json:"fare"`
	Rating      *int        `json:"rating,omitempty"`
	OccurredAt  time.Time   `json:"occurred_at"`
}

// Publisher delivers events best-effort. Callers log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }

func Nop() Publisher { return nopPublisher{} }

// LogPublisher writes events to the structured log. Used when no broker is configured.
type LogPublisher struct {
	log logging.Logger
}

func NewLogPublisher(log logging.Logger) *LogPublisher {
	return &LogPublisher{log: log.Action("publish_event")}
}

func (p *LogPublisher) Publish(_ context.Context, ev Event) error {
	p.log.Info("trip event", "type", ev.Type, "trip_id", ev.TripID, "passenger_id", ev.PassengerID)
	return nil
}
