// README: Booking flow tests: invalidation, latest-wins requote, degraded quotes, confirm.
package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"privatehire/internal/kv"
	"privatehire/internal/modules/fleet"
	"privatehire/internal/modules/history"
	"privatehire/internal/modules/pricing"
	"privatehire/internal/modules/routing"
	"privatehire/internal/modules/trip"
	"privatehire/internal/types"
)

var (
	bakerStreet = types.Location{Name: "Baker Street", Lng: -0.1586, Lat: 51.5226}
	heathrow    = types.Location{Name: "Heathrow T5", Lng: -0.4543, Lat: 51.4700}
	kensington  = types.Location{Name: "Kensington High St", Lng: -0.1925, Lat: 51.5009}
)

type fixedRoute struct {
	err error
}

func (f fixedRoute) Route(context.Context, types.Point, types.Point) (routing.Route, error) {
	if f.err != nil {
		return routing.Route{}, f.err
	}
	return routing.Route{
		Coordinates:     [][2]float64{{-0.1586, 51.5226}, {-0.4543, 51.4700}},
		DistanceMeters:  38000,
		DurationSeconds: 2400,
	}, nil
}

// gatedRoute blocks until release is closed.
type gatedRoute struct {
	started chan struct{}
	release chan struct{}
}

func (g *gatedRoute) Route(ctx context.Context, _, _ types.Point) (routing.Route, error) {
	g.started <- struct{}{}
	select {
	case <-g.release:
	case <-ctx.Done():
		return routing.Route{}, ctx.Err()
	}
	return fixedRoute{}.Route(ctx, types.Point{}, types.Point{})
}

type env struct {
	svc   *Service
	trips *trip.Service
	pool  *fleet.StaticDriverPool
}

func newEnv(t *testing.T, client routing.Client, drivers ...fleet.Driver) *env {
	t.Helper()
	store := kv.NewMemoryStore()
	pool := fleet.NewStaticDriverPool(drivers...)
	fleetSvc := fleet.NewService(pool, fleet.PickerFunc(func(int) int { return 0 }))
	trips := trip.NewService(trip.Deps{
		Store:   trip.NewStore(store),
		Archive: history.NewStore(store),
		Drivers: fleetSvc,
	})
	calc := routing.NewCalculator(client, pricing.NewService(), time.Second, nil)
	return &env{svc: NewService(calc, fleetSvc, trips, nil), trips: trips, pool: pool}
}

func (e *env) available(t *testing.T) int {
	t.Helper()
	ds, err := e.pool.Available(context.Background())
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	return len(ds)
}

func quoted(t *testing.T, e *env, passenger types.ID) routing.Quote {
	t.Helper()
	if _, err := e.svc.Update(passenger, DraftUpdate{Pickup: &bakerStreet, Destination: &heathrow}); err != nil {
		t.Fatalf("update: %v", err)
	}
	q, err := e.svc.Requote(context.Background(), passenger)
	if err != nil {
		t.Fatalf("requote: %v", err)
	}
	return q
}

func TestRequote_IncompleteDraft(t *testing.T) {
	e := newEnv(t, fixedRoute{}, fleet.DefaultDrivers()...)
	if _, err := e.svc.SetPickup("p1", bakerStreet); err != nil {
		t.Fatalf("set pickup: %v", err)
	}
	if _, err := e.svc.Requote(context.Background(), "p1"); !errors.Is(err, ErrIncompleteDraft) {
		t.Fatalf("expected ErrIncompleteDraft, got %v", err)
	}
}

func TestUpdate_UnknownClass(t *testing.T) {
	e := newEnv(t, fixedRoute{}, fleet.DefaultDrivers()...)
	if _, err := e.svc.SetClass("p1", "limo"); !errors.Is(err, fleet.ErrUnknownClass) {
		t.Fatalf("expected ErrUnknownClass, got %v", err)
	}
}

func TestInputChangeInvalidatesQuote(t *testing.T) {
	tests := []struct {
		name   string
		change func(*Service) (Draft, error)
	}{
		{"pickup", func(s *Service) (Draft, error) { return s.SetPickup("p1", kensington) }},
		{"destination", func(s *Service) (Draft, error) { return s.SetDestination("p1", kensington) }},
		{"class", func(s *Service) (Draft, error) { return s.SetClass("p1", fleet.ClassExecutive) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, fixedRoute{}, fleet.DefaultDrivers()...)
			quoted(t, e, "p1")
			if e.svc.Draft("p1").Quote == nil {
				t.Fatal("expected a current quote")
			}

			d, err := tt.change(e.svc)
			if err != nil {
				t.Fatalf("change: %v", err)
			}
			if d.Quote != nil {
				t.Fatal("quote survived an input change")
			}
			if _, err := e.svc.Confirm(context.Background(), "p1", trip.PaymentCard); !errors.Is(err, ErrNoQuote) {
				t.Fatalf("expected ErrNoQuote, got %v", err)
			}
		})
	}
}

func TestUpdate_SameValuesKeepQuote(t *testing.T) {
	e := newEnv(t, fixedRoute{}, fleet.DefaultDrivers()...)
	quoted(t, e, "p1")
	d, err := e.svc.Update("p1", DraftUpdate{Pickup: &bakerStreet})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if d.Quote == nil {
		t.Fatal("unchanged input dropped the quote")
	}
}

func TestRequote_UsesLatestClass(t *testing.T) {
	e := newEnv(t, fixedRoute{}, fleet.DefaultDrivers()...)
	q := quoted(t, e, "p1")
	if q.Fare.Amount != 7453 {
		t.Fatalf("standard fare = %d, want 7453", q.Fare.Amount)
	}
	if _, err := e.svc.SetClass("p1", fleet.ClassExecutive); err != nil {
		t.Fatalf("set class: %v", err)
	}
	q, err := e.svc.Requote(context.Background(), "p1")
	if err != nil {
		t.Fatalf("requote: %v", err)
	}
	if q.Fare.Amount != 9814 || q.Class != fleet.ClassExecutive {
		t.Fatalf("executive quote = %+v", q)
	}

	tr, err := e.svc.Confirm(context.Background(), "p1", trip.PaymentCard)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if tr.Booking.Quote.Fare.Amount != 9814 || tr.Booking.Class != fleet.ClassExecutive {
		t.Fatalf("booked quote = %+v", tr.Booking.Quote)
	}
}

func TestRequote_StaleResultDiscarded(t *testing.T) {
	gate := &gatedRoute{started: make(chan struct{}, 1), release: make(chan struct{})}
	e := newEnv(t, gate, fleet.DefaultDrivers()...)
	if _, err := e.svc.Update("p1", DraftUpdate{Pickup: &bakerStreet, Destination: &heathrow}); err != nil {
		t.Fatalf("update: %v", err)
	}

	errc := make(chan error, 1)
	go func() {
		_, err := e.svc.Requote(context.Background(), "p1")
		errc <- err
	}()
	<-gate.started
	if _, err := e.svc.SetDestination("p1", kensington); err != nil {
		t.Fatalf("set destination: %v", err)
	}
	close(gate.release)

	if err := <-errc; !errors.Is(err, routing.ErrStaleQuote) {
		t.Fatalf("expected ErrStaleQuote, got %v", err)
	}
	if e.svc.Draft("p1").Quote != nil {
		t.Fatal("stale quote applied to the draft")
	}
}

func TestConfirm_DegradedQuoteBlocked(t *testing.T) {
	e := newEnv(t, fixedRoute{err: errors.New("provider down")}, fleet.DefaultDrivers()...)
	q := quoted(t, e, "p1")
	if !q.Degraded || q.Fare.Amount != 0 {
		t.Fatalf("expected degraded zero-fare quote, got %+v", q)
	}
	if _, err := e.svc.Confirm(context.Background(), "p1", trip.PaymentCard); !errors.Is(err, ErrQuoteDegraded) {
		t.Fatalf("expected ErrQuoteDegraded, got %v", err)
	}
	if n := e.available(t); n != len(fleet.DefaultDrivers()) {
		t.Fatalf("driver reserved for a blocked booking: %d available", n)
	}
}

func TestConfirm_InvalidPayment(t *testing.T) {
	e := newEnv(t, fixedRoute{}, fleet.DefaultDrivers()...)
	quoted(t, e, "p1")
	if _, err := e.svc.Confirm(context.Background(), "p1", "voucher"); !errors.Is(err, ErrInvalidPayment) {
		t.Fatalf("expected ErrInvalidPayment, got %v", err)
	}
}

func TestConfirm(t *testing.T) {
	e := newEnv(t, fixedRoute{}, fleet.DefaultDrivers()...)
	ctx := context.Background()
	quoted(t, e, "p1")

	tr, err := e.svc.Confirm(ctx, "p1", trip.PaymentCash)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if tr.Status != trip.StatusActive {
		t.Errorf("status = %s, want active", tr.Status)
	}
	// picker 0 takes the first model, first colour and lowest driver ID
	if tr.Booking.Vehicle != (fleet.Vehicle{Model: "Toyota Prius", Color: "Silver"}) {
		t.Errorf("vehicle = %+v", tr.Booking.Vehicle)
	}
	if tr.Booking.Driver.ID != "drv-james" {
		t.Errorf("driver = %s, want drv-james", tr.Booking.Driver.ID)
	}
	if tr.Booking.PaymentMethod != trip.PaymentCash {
		t.Errorf("payment = %s", tr.Booking.PaymentMethod)
	}
	if n := e.available(t); n != len(fleet.DefaultDrivers())-1 {
		t.Errorf("available = %d, want one driver reserved", n)
	}
	if d := e.svc.Draft("p1"); d.Pickup != nil || d.Quote != nil {
		t.Errorf("draft not reset after confirm: %+v", d)
	}

	// archival returns the driver
	if _, err := e.trips.Complete(ctx, trip.CompleteCommand{PassengerID: "p1", TripID: tr.ID}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if n := e.available(t); n != len(fleet.DefaultDrivers()) {
		t.Errorf("available = %d after archival, want all", n)
	}
}

func TestConfirm_NoDriverAvailable(t *testing.T) {
	e := newEnv(t, fixedRoute{})
	quoted(t, e, "p1")
	if _, err := e.svc.Confirm(context.Background(), "p1", trip.PaymentCard); !errors.Is(err, fleet.ErrNoDriverAvailable) {
		t.Fatalf("expected ErrNoDriverAvailable, got %v", err)
	}
	if _, err := e.trips.Active(context.Background(), "p1"); !errors.Is(err, trip.ErrNoActiveTrip) {
		t.Fatalf("expected no active trip, got %v", err)
	}
	// the quote is still there so the passenger can retry later
	if e.svc.Draft("p1").Quote == nil {
		t.Fatal("quote dropped after a failed confirm")
	}
}

func TestConfirm_TripAlreadyActive(t *testing.T) {
	e := newEnv(t, fixedRoute{}, fleet.DefaultDrivers()...)
	ctx := context.Background()
	quoted(t, e, "p1")
	if _, err := e.svc.Confirm(ctx, "p1", trip.PaymentCard); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	quoted(t, e, "p1")
	if _, err := e.svc.Confirm(ctx, "p1", trip.PaymentCard); !errors.Is(err, trip.ErrTripAlreadyActive) {
		t.Fatalf("expected ErrTripAlreadyActive, got %v", err)
	}
	if n := e.available(t); n != len(fleet.DefaultDrivers())-1 {
		t.Fatalf("available = %d, second confirm leaked a reservation", n)
	}
}
