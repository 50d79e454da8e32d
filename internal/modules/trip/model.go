// README: Trip aggregate, booking snapshot, messages and the status flow.
package trip

import (
	"errors"
	"time"

	"privatehire/internal/modules/fleet"
	"privatehire/internal/modules/routing"
	"privatehire/internal/types"
)

type Status string

const (
	StatusRequested Status = "requested"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var (
	ErrTripAlreadyActive = errors.New("a trip is already active")
	ErrNoActiveTrip      = errors.New("no active trip")
	ErrInvalidTransition = errors.New("invalid trip state transition")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrTripNotActive     = errors.New("trip is not active")
	ErrBadRequest        = errors.New("bad request")
)

// AllowedTransitions is the trip state flow. Requested only exists while a booking is
// validated; Completed and Cancelled are terminal and archived immediately.
var AllowedTransitions = map[Status][]Status{
	StatusRequested: {StatusActive},
	StatusActive:    {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

func (p PaymentMethod) IsValid() bool {
	return p == PaymentCard || p == PaymentCash
}

type Sender string

const (
	SenderDriver   Sender = "driver"
	SenderCustomer Sender = "customer"
)

func (s Sender) IsValid() bool {
	return s == SenderDriver || s == SenderCustomer
}

type Message struct {
	Seq    int       `json:"seq"`
	Sender Sender    `json:"sender"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// Booking is the confirmed quote plus the vehicle and driver drawn for it.
type Booking struct {
	PassengerID   types.ID           `json:"passenger_id"`
	Pickup        types.Location     `json:"pickup"`
	Destination   types.Location     `json:"destination"`
	Class         fleet.VehicleClass `json:"class"`
	Quote         routing.Quote      `json:"quote"`
	Vehicle       fleet.Vehicle      `json:"vehicle"`
	Driver        fleet.Driver       `json:"driver"`
	PaymentMethod PaymentMethod      `json:"payment_method"`
}

type Trip struct {
	ID        types.ID  `json:"id"`
	Booking   Booking   `json:"booking"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Messages  []Message `json:"messages"`
	Rating    *int      `json:"rating,omitempty"`
}

type CancelCommand struct {
	PassengerID types.ID
	TripID      types.ID
}

type CompleteCommand struct {
	PassengerID types.ID
	TripID      types.ID
	Rating      *int
}
