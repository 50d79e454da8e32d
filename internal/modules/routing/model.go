// README: Route and quote value objects produced by the calculator.
package routing

import (
	"context"
	"errors"
	"time"

	"privatehire/internal/modules/fleet"
	"privatehire/internal/types"
)

var (
	ErrNoRoute    = errors.New("routing provider returned no route")
	ErrStaleQuote = errors.New("quote superseded by a newer request")
)

// Route is a provider's driving path between two points.
type Route struct {
	Coordinates     [][2]float64
	DistanceMeters  float64
	DurationSeconds float64
}

// Client fetches a driving route. Implementations do no pricing.
type Client interface {
	Route(ctx context.Context, from, to types.Point) (Route, error)
}

// Quote is a costed route for one (pickup, destination, class) triple. It is never mutated;
// changed inputs produce a new Quote.
type Quote struct {
	Pickup          types.Location     `json:"pickup"`
	Destination     types.Location     `json:"destination"`
	Class           fleet.VehicleClass `json:"class"`
	Coordinates     [][2]float64       `json:"coordinates"`
	DistanceMeters  float64            `json:"distance_meters"`
	DurationSeconds float64            `json:"duration_seconds"`
	Fare            types.Money        `json:"fare"`
	// Degraded marks the straight-line fallback: zero duration and zero fare.
	Degraded bool      `json:"degraded"`
	QuotedAt time.Time `json:"quoted_at"`
}

// Matches reports whether the quote was computed for exactly these inputs.
func (q Quote) Matches(pickup, destination types.Location, class fleet.VehicleClass) bool {
	return q.Pickup == pickup && q.Destination == destination && q.Class == class
}
