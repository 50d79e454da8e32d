// README: Booking flow: per-passenger draft, re-quoting and confirmation into a trip.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"privatehire/internal/logging"
	"privatehire/internal/modules/fleet"
	"privatehire/internal/modules/routing"
	"privatehire/internal/modules/trip"
	"privatehire/internal/types"
)

var (
	ErrIncompleteDraft = errors.New("pickup and destination are required")
	ErrNoQuote         = errors.New("no quote for the current pickup, destination and class")
	ErrQuoteDegraded   = errors.New("route unavailable; quote is an estimate and cannot be booked")
	ErrInvalidPayment  = errors.New("payment method must be card or cash")
)

// Fleet draws the vehicle and driver for a confirmed booking.
type Fleet interface {
	Assign(class fleet.VehicleClass) (fleet.Vehicle, error)
	AssignDriver(ctx context.Context) (fleet.Driver, error)
	Release(ctx context.Context, id types.ID) error
}

type Trips interface {
	Active(ctx context.Context, passengerID types.ID) (*trip.Trip, error)
	Create(ctx context.Context, b trip.Booking) (*trip.Trip, error)
}

// Draft is the passenger's in-progress booking as shown to the client.
type Draft struct {
	Pickup      *types.Location    `json:"pickup,omitempty"`
	Destination *types.Location    `json:"destination,omitempty"`
	Class       fleet.VehicleClass `json:"class"`
	Quote       *routing.Quote     `json:"quote,omitempty"`
}

// DraftUpdate changes any subset of the draft inputs. Nil fields are left as they are.
type DraftUpdate struct {
	Pickup      *types.Location
	Destination *types.Location
	Class       *fleet.VehicleClass
}

type draft struct {
	pickup      *types.Location
	destination *types.Location
	class       fleet.VehicleClass
	quoter      *routing.Quoter
}

type Service struct {
	calc  *routing.Calculator
	fleet Fleet
	trips Trips
	log   logging.Logger

	mu     sync.Mutex
	drafts map[types.ID]*draft
}

func NewService(calc *routing.Calculator, fl Fleet, trips Trips, log logging.Logger) *Service {
	if log == nil {
		log = logging.Discard()
	}
	return &Service{
		calc:   calc,
		fleet:  fl,
		trips:  trips,
		log:    log,
		drafts: make(map[types.ID]*draft),
	}
}

// draftFor must be called with s.mu held.
func (s *Service) draftFor(passengerID types.ID) *draft {
	d, ok := s.drafts[passengerID]
	if !ok {
		d = &draft{class: fleet.ClassStandard, quoter: routing.NewQuoter(s.calc)}
		s.drafts[passengerID] = d
	}
	return d
}

// Draft returns the current draft, including its quote only if it matches the inputs.
func (s *Service) Draft(passengerID types.ID) Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(s.draftFor(passengerID))
}

func (s *Service) view(d *draft) Draft {
	out := Draft{Pickup: d.pickup, Destination: d.destination, Class: d.class}
	if q, ok := s.currentQuote(d); ok {
		out.Quote = &q
	}
	return out
}

// currentQuote must be called with s.mu held.
func (s *Service) currentQuote(d *draft) (routing.Quote, bool) {
	q, ok := d.quoter.Current()
	if !ok || d.pickup == nil || d.destination == nil {
		return routing.Quote{}, false
	}
	if !q.Matches(*d.pickup, *d.destination, d.class) {
		return routing.Quote{}, false
	}
	return q, true
}

// Update applies u and drops the current quote when anything changed.
func (s *Service) Update(passengerID types.ID, u DraftUpdate) (Draft, error) {
	if u.Class != nil && !u.Class.IsValid() {
		return Draft{}, fleet.ErrUnknownClass
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draftFor(passengerID)
	changed := false
	if u.Pickup != nil && (d.pickup == nil || *d.pickup != *u.Pickup) {
		p := *u.Pickup
		d.pickup = &p
		changed = true
	}
	if u.Destination != nil && (d.destination == nil || *d.destination != *u.Destination) {
		p := *u.Destination
		d.destination = &p
		changed = true
	}
	if u.Class != nil && d.class != *u.Class {
		d.class = *u.Class
		changed = true
	}
	if changed {
		d.quoter.Invalidate()
	}
	return s.view(d), nil
}

func (s *Service) SetPickup(passengerID types.ID, loc types.Location) (Draft, error) {
	return s.Update(passengerID, DraftUpdate{Pickup: &loc})
}

func (s *Service) SetDestination(passengerID types.ID, loc types.Location) (Draft, error) {
	return s.Update(passengerID, DraftUpdate{Destination: &loc})
}

func (s *Service) SetClass(passengerID types.ID, class fleet.VehicleClass) (Draft, error) {
	return s.Update(passengerID, DraftUpdate{Class: &class})
}

// Requote prices the current draft. If the draft changes while the provider call is in
// flight the result is discarded with routing.ErrStaleQuote.
func (s *Service) Requote(ctx context.Context, passengerID types.ID) (routing.Quote, error) {
	s.mu.Lock()
	d := s.draftFor(passengerID)
	if d.pickup == nil || d.destination == nil {
		s.mu.Unlock()
		return routing.Quote{}, ErrIncompleteDraft
	}
	pickup, destination, class, quoter := *d.pickup, *d.destination, d.class, d.quoter
	s.mu.Unlock()

	q, err := quoter.Request(ctx, pickup, destination, class)
	if err != nil {
		return routing.Quote{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.currentQuote(d); !ok || !cur.QuotedAt.Equal(q.QuotedAt) || !cur.Matches(pickup, destination, class) {
		return routing.Quote{}, routing.ErrStaleQuote
	}
	return q, nil
}

// Confirm books the current quote. The vehicle and driver are drawn exactly once here
// and stored on the trip; a failed confirmation returns the driver to the pool.
func (s *Service) Confirm(ctx context.Context, passengerID types.ID, payment trip.PaymentMethod) (*trip.Trip, error) {
	log := s.log.Action("confirm_booking").With("passenger_id", passengerID)
	if !payment.IsValid() {
		return nil, ErrInvalidPayment
	}

	s.mu.Lock()
	d := s.draftFor(passengerID)
	q, ok := s.currentQuote(d)
	s.mu.Unlock()
	if !ok {
		return nil, ErrNoQuote
	}
	if q.Degraded {
		return nil, ErrQuoteDegraded
	}

	if _, err := s.trips.Active(ctx, passengerID); err == nil {
		return nil, trip.ErrTripAlreadyActive
	} else if !errors.Is(err, trip.ErrNoActiveTrip) {
		return nil, err
	}

	vehicle, err := s.fleet.Assign(q.Class)
	if err != nil {
		return nil, fmt.Errorf("assign vehicle: %w", err)
	}
	driver, err := s.fleet.AssignDriver(ctx)
	if err != nil {
		log.Warn("booking not confirmed", "reason", err.Error())
		return nil, err
	}

	t, err := s.trips.Create(ctx, trip.Booking{
		PassengerID:   passengerID,
		Pickup:        q.Pickup,
		Destination:   q.Destination,
		Class:         q.Class,
		Quote:         q,
		Vehicle:       vehicle,
		Driver:        driver,
		PaymentMethod: payment,
	})
	if err != nil {
		if rerr := s.fleet.Release(ctx, driver.ID); rerr != nil {
			log.Error("release driver after failed confirm", rerr, "driver_id", driver.ID)
		}
		return nil, err
	}

	s.mu.Lock()
	delete(s.drafts, passengerID)
	s.mu.Unlock()
	log.Info("booking confirmed", "trip_id", t.ID, "fare", q.Fare.String())
	return t, nil
}
