// README: Trip service enforces the single active trip and archives finished trips.
package trip

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"privatehire/internal/events"
	"privatehire/internal/logging"
	"privatehire/internal/modules/history"
	"privatehire/internal/types"
)

// Archive receives the immutable record of a finished trip. Get returns
// history.ErrRecordNotFound for a trip that was never archived.
type Archive interface {
	Append(ctx context.Context, owner types.ID, rec history.Record) error
	Get(ctx context.Context, owner, tripID types.ID) (history.Record, error)
}

// DriverReleaser returns the trip's driver to the available pool after archival.
type DriverReleaser interface {
	Release(ctx context.Context, id types.ID) error
}

type Deps struct {
	Store   *Store
	Archive Archive
	Drivers DriverReleaser
	Events  events.Publisher
	Log     logging.Logger
	Now     func() time.Time
	NewID   func() types.ID
}

type Service struct {
	store   *Store
	archive Archive
	drivers DriverReleaser
	events  events.Publisher
	log     logging.Logger
	now     func() time.Time
	newID   func() types.ID

	// mu serializes every read-modify-write of an active slot.
	mu sync.Mutex

	hookMu  sync.RWMutex
	onFinal []func(tripID types.ID)
}

func NewService(deps Deps) *Service {
	s := &Service{
		store:   deps.Store,
		archive: deps.Archive,
		drivers: deps.Drivers,
		events:  deps.Events,
		log:     deps.Log,
		now:     deps.Now,
		newID:   deps.NewID,
	}
	if s.events == nil {
		s.events = events.Nop()
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = func() types.ID { return types.ID(uuid.NewString()) }
	}
	return s
}

// Create validates b and stores it as the passenger's active trip.
func (s *Service) Create(ctx context.Context, b Booking) (*Trip, error) {
	if b.PassengerID == "" || !b.Class.IsValid() || !b.PaymentMethod.IsValid() {
		return nil, ErrBadRequest
	}

	t, err := s.create(ctx, b)
	if err != nil {
		return nil, err
	}
	s.log.Action("create_trip").Info("trip created",
		"trip_id", t.ID, "passenger_id", b.PassengerID, "class", b.Class, "driver_id", b.Driver.ID)
	s.publish(ctx, events.TripCreated, t)
	return t, nil
}

func (s *Service) create(ctx context.Context, b Booking) (*Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.store.Load(ctx, b.PassengerID)
	if err == nil {
		return nil, ErrTripAlreadyActive
	}
	if !errors.Is(err, ErrNoActiveTrip) {
		return nil, err
	}

	t := &Trip{
		ID:        s.newID(),
		Booking:   b,
		Status:    StatusRequested,
		CreatedAt: s.now(),
		Messages:  []Message{},
	}
	if !CanTransition(t.Status, StatusActive) {
		return nil, ErrInvalidTransition
	}
	t.Status = StatusActive
	if err := s.store.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Active returns the passenger's active trip or ErrNoActiveTrip.
func (s *Service) Active(ctx context.Context, passengerID types.ID) (*Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Load(ctx, passengerID)
}

// Cancel archives the active trip as cancelled with the quoted fare unchanged.
func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) (history.Record, error) {
	return s.finish(ctx, cmd.PassengerID, cmd.TripID, StatusCancelled, nil)
}

// Complete archives the active trip as completed. A rating outside [1,5] is rejected
// before any transition.
func (s *Service) Complete(ctx context.Context, cmd CompleteCommand) (history.Record, error) {
	if cmd.Rating != nil && (*cmd.Rating < 1 || *cmd.Rating > 5) {
		return history.Record{}, ErrInvalidRating
	}
	return s.finish(ctx, cmd.PassengerID, cmd.TripID, StatusCompleted, cmd.Rating)
}

// Update applies fn to the active trip tripID and persists the result. It fails with
// ErrTripNotActive when tripID is not the passenger's active trip. State is unchanged if
// fn returns an error.
func (s *Service) Update(ctx context.Context, passengerID, tripID types.ID, fn func(*Trip) error) (*Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.store.Load(ctx, passengerID)
	if errors.Is(err, ErrNoActiveTrip) {
		return nil, ErrTripNotActive
	}
	if err != nil {
		return nil, err
	}
	if t.ID != tripID || t.Status != StatusActive {
		return nil, ErrTripNotActive
	}
	if err := fn(t); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// OnArchive registers fn to run after a trip has been archived.
func (s *Service) OnArchive(fn func(tripID types.ID)) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.onFinal = append(s.onFinal, fn)
}

func (s *Service) finish(ctx context.Context, passengerID, tripID types.ID, to Status, rating *int) (history.Record, error) {
	log := s.log.Action("finish_trip").With("trip_id", tripID, "passenger_id", passengerID, "status", to)

	t, rec, err := s.archiveActive(ctx, passengerID, tripID, to, rating)
	if err != nil {
		return history.Record{}, err
	}

	if s.drivers != nil && t.Booking.Driver.ID != "" {
		if err := s.drivers.Release(ctx, t.Booking.Driver.ID); err != nil {
			log.Error("release driver", err, "driver_id", t.Booking.Driver.ID)
		}
	}
	log.Info("trip archived", "receipt_no", rec.ReceiptNo)

	evType := events.TripCompleted
	if t.Status == StatusCancelled {
		evType = events.TripCancelled
	}
	s.publish(ctx, evType, t)

	s.hookMu.RLock()
	hooks := s.onFinal
	s.hookMu.RUnlock()
	for _, fn := range hooks {
		fn(t.ID)
	}
	return rec, nil
}

// archiveActive moves the active trip into history and clears the slot. A record
// already archived for the trip by an earlier attempt whose clear failed is reused,
// so a retry never appends twice.
func (s *Service) archiveActive(ctx context.Context, passengerID, tripID types.ID, to Status, rating *int) (*Trip, history.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.store.Load(ctx, passengerID)
	if errors.Is(err, ErrNoActiveTrip) {
		return nil, history.Record{}, ErrInvalidTransition
	}
	if err != nil {
		return nil, history.Record{}, err
	}
	if t.ID != tripID || !CanTransition(t.Status, to) {
		return nil, history.Record{}, ErrInvalidTransition
	}

	rec, err := s.archive.Get(ctx, passengerID, t.ID)
	switch {
	case err == nil:
		t.Status = StatusCompleted
		if rec.Status == history.StatusCancelled {
			t.Status = StatusCancelled
		}
		t.Rating = rec.Rating
	case errors.Is(err, history.ErrRecordNotFound):
		t.Status = to
		t.Rating = rating
		rec = snapshot(t, s.now())
		if err := s.archive.Append(ctx, passengerID, rec); err != nil {
			return nil, history.Record{}, fmt.Errorf("archive trip %s: %w", t.ID, err)
		}
	default:
		return nil, history.Record{}, fmt.Errorf("archive trip %s: %w", t.ID, err)
	}

	if err := s.store.Clear(ctx, passengerID); err != nil {
		return nil, history.Record{}, err
	}
	return t, rec, nil
}

func (s *Service) publish(ctx context.Context, evType string, t *Trip) {
	ev := events.Event{
		Type:        evType,
		TripID:      t.ID,
		PassengerID: t.Booking.PassengerID,
		DriverID:    t.Booking.Driver.ID,
		Fare:        t.Booking.Quote.Fare,
		Rating:      t.Rating,
		OccurredAt:  s.now(),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Action("publish_event").Error("publish trip event", err, "type", evType, "trip_id", t.ID)
	}
}

// snapshot freezes t into a history record. Messages are dropped.
func snapshot(t *Trip, at time.Time) history.Record {
	status := history.StatusCompleted
	if t.Status == StatusCancelled {
		status = history.StatusCancelled
	}
	return history.Record{
		TripID:          t.ID,
		ReceiptNo:       history.ReceiptNumber(at),
		PickupName:      t.Booking.Pickup.Name,
		DestinationName: t.Booking.Destination.Name,
		Class:           t.Booking.Class,
		DistanceMeters:  t.Booking.Quote.DistanceMeters,
		Fare:            t.Booking.Quote.Fare,
		Status:          status,
		Vehicle:         t.Booking.Vehicle,
		DriverName:      t.Booking.Driver.Name,
		Rating:          t.Rating,
		PaymentMethod:   string(t.Booking.PaymentMethod),
		CreatedAt:       t.CreatedAt,
		ArchivedAt:      at,
	}
}
