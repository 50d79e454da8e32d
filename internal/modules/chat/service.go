// README: In-trip messaging between passenger and driver, scoped to the active trip.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"privatehire/internal/modules/trip"
	"privatehire/internal/types"
)

var (
	ErrEmptyMessage  = errors.New("message text is empty")
	ErrInvalidSender = errors.New("sender must be driver or customer")
)

// Trips is the active trip slot the channel appends into.
type Trips interface {
	Active(ctx context.Context, passengerID types.ID) (*trip.Trip, error)
	Update(ctx context.Context, passengerID, tripID types.ID, fn func(*trip.Trip) error) (*trip.Trip, error)
}

type SendCommand struct {
	PassengerID types.ID
	TripID      types.ID
	Sender      trip.Sender
	Text        string
}

const subscriberBuffer = 16

type Service struct {
	trips Trips
	now   func() time.Time

	mu   sync.Mutex
	subs map[types.ID]map[chan trip.Message]struct{}
}

func NewService(trips Trips, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{trips: trips, now: now, subs: make(map[types.ID]map[chan trip.Message]struct{})}
}

// Send appends a message to the active trip. Seq is one past the last message and SentAt
// never precedes the previous message, so order is stable even if the clock steps back.
func (s *Service) Send(ctx context.Context, cmd SendCommand) (trip.Message, error) {
	text := strings.TrimSpace(cmd.Text)
	if text == "" {
		return trip.Message{}, ErrEmptyMessage
	}
	if !cmd.Sender.IsValid() {
		return trip.Message{}, ErrInvalidSender
	}

	var msg trip.Message
	_, err := s.trips.Update(ctx, cmd.PassengerID, cmd.TripID, func(t *trip.Trip) error {
		msg = trip.Message{Seq: 1, Sender: cmd.Sender, Text: text, SentAt: s.now()}
		if n := len(t.Messages); n > 0 {
			last := t.Messages[n-1]
			msg.Seq = last.Seq + 1
			if msg.SentAt.Before(last.SentAt) {
				msg.SentAt = last.SentAt
			}
		}
		t.Messages = append(t.Messages, msg)
		return nil
	})
	if err != nil {
		return trip.Message{}, err
	}
	s.broadcast(cmd.TripID, msg)
	return msg, nil
}

// List returns the active trip's messages in send order.
func (s *Service) List(ctx context.Context, passengerID, tripID types.ID) ([]trip.Message, error) {
	t, err := s.trips.Active(ctx, passengerID)
	if errors.Is(err, trip.ErrNoActiveTrip) {
		return nil, trip.ErrTripNotActive
	}
	if err != nil {
		return nil, err
	}
	if t.ID != tripID {
		return nil, trip.ErrTripNotActive
	}
	return t.Messages, nil
}

// Subscribe streams messages sent to tripID after the call. The returned cancel func
// must be called to release the subscription. Slow readers drop messages rather than
// block senders; List recovers the full history.
func (s *Service) Subscribe(tripID types.ID) (<-chan trip.Message, func()) {
	ch := make(chan trip.Message, subscriberBuffer)
	s.mu.Lock()
	if s.subs[tripID] == nil {
		s.subs[tripID] = make(map[chan trip.Message]struct{})
	}
	s.subs[tripID][ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.subs[tripID][ch]; !ok {
				// already closed by CloseTrip
				return
			}
			delete(s.subs[tripID], ch)
			if len(s.subs[tripID]) == 0 {
				delete(s.subs, tripID)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// CloseTrip ends every subscription to tripID. It runs once the trip is archived so
// open streams stop instead of idling on a conversation that no longer exists.
func (s *Service) CloseTrip(tripID types.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs[tripID] {
		close(ch)
	}
	delete(s.subs, tripID)
}

func (s *Service) broadcast(tripID types.ID, msg trip.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs[tripID] {
		select {
		case ch <- msg:
		default:
		}
	}
}
