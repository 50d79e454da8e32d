package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"privatehire/internal/kv"
	"privatehire/internal/modules/fleet"
	"privatehire/internal/modules/history"
	"privatehire/internal/modules/trip"
	"privatehire/internal/types"
)

// steppingClock returns the queued times in order, repeating the last one.
type steppingClock struct {
	mu    sync.Mutex
	times []time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.times[0]
	if len(c.times) > 1 {
		c.times = c.times[1:]
	}
	return t
}

func setup(t *testing.T, clock func() time.Time) (*Service, *trip.Service, *trip.Trip) {
	t.Helper()
	store := kv.NewMemoryStore()
	trips := trip.NewService(trip.Deps{
		Store:   trip.NewStore(store),
		Archive: history.NewStore(store),
	})
	tr, err := trips.Create(context.Background(), trip.Booking{
		PassengerID:   "p1",
		Pickup:        types.Location{Name: "Baker Street", Lng: -0.1586, Lat: 51.5226},
		Destination:   types.Location{Name: "Heathrow T5", Lng: -0.4543, Lat: 51.4700},
		Class:         fleet.ClassStandard,
		Driver:        fleet.Driver{ID: "drv-james", Name: "James Sterling"},
		PaymentMethod: trip.PaymentCash,
	})
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
	return NewService(trips, clock), trips, tr
}

func TestSend_OrderAndSequence(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := &steppingClock{times: []time.Time{
		base,
		base.Add(time.Minute),
		base.Add(30 * time.Second), // clock stepped back
	}}
	svc, _, tr := setup(t, clock.Now)
	ctx := context.Background()

	sends := []SendCommand{
		{PassengerID: "p1", TripID: tr.ID, Sender: trip.SenderDriver, Text: "I'm outside"},
		{PassengerID: "p1", TripID: tr.ID, Sender: trip.SenderCustomer, Text: "  Coming down  "},
		{PassengerID: "p1", TripID: tr.ID, Sender: trip.SenderDriver, Text: "Great"},
	}
	for _, cmd := range sends {
		if _, err := svc.Send(ctx, cmd); err != nil {
			t.Fatalf("send %q: %v", cmd.Text, err)
		}
	}

	msgs, err := svc.List(ctx, "p1", tr.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	for i, m := range msgs {
		if m.Seq != i+1 {
			t.Errorf("msgs[%d].Seq = %d, want %d", i, m.Seq, i+1)
		}
		if i > 0 && m.SentAt.Before(msgs[i-1].SentAt) {
			t.Errorf("msgs[%d] sent before msgs[%d]", i, i-1)
		}
	}
	if msgs[1].Text != "Coming down" {
		t.Errorf("text = %q, want trimmed", msgs[1].Text)
	}
}

func TestSend_EmptyMessage(t *testing.T) {
	svc, _, tr := setup(t, nil)
	ctx := context.Background()
	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := svc.Send(ctx, SendCommand{PassengerID: "p1", TripID: tr.ID, Sender: trip.SenderCustomer, Text: text})
		if !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("Send(%q) expected ErrEmptyMessage, got %v", text, err)
		}
	}
	msgs, err := svc.List(ctx, "p1", tr.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("message count = %d, want 0", len(msgs))
	}
}

func TestSend_InvalidSender(t *testing.T) {
	svc, _, tr := setup(t, nil)
	_, err := svc.Send(context.Background(), SendCommand{PassengerID: "p1", TripID: tr.ID, Sender: "dispatcher", Text: "hi"})
	if !errors.Is(err, ErrInvalidSender) {
		t.Fatalf("expected ErrInvalidSender, got %v", err)
	}
}

func TestSend_TripNotActive(t *testing.T) {
	svc, trips, tr := setup(t, nil)
	ctx := context.Background()

	if _, err := svc.Send(ctx, SendCommand{PassengerID: "p1", TripID: "other", Sender: trip.SenderDriver, Text: "hi"}); !errors.Is(err, trip.ErrTripNotActive) {
		t.Fatalf("wrong trip: expected ErrTripNotActive, got %v", err)
	}
	if _, err := trips.Cancel(ctx, trip.CancelCommand{PassengerID: "p1", TripID: tr.ID}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.Send(ctx, SendCommand{PassengerID: "p1", TripID: tr.ID, Sender: trip.SenderDriver, Text: "hi"}); !errors.Is(err, trip.ErrTripNotActive) {
		t.Fatalf("archived trip: expected ErrTripNotActive, got %v", err)
	}
	if _, err := svc.List(ctx, "p1", tr.ID); !errors.Is(err, trip.ErrTripNotActive) {
		t.Fatalf("list archived trip: expected ErrTripNotActive, got %v", err)
	}
}

func TestSubscribe(t *testing.T) {
	svc, _, tr := setup(t, nil)
	ctx := context.Background()
	ch, cancel := svc.Subscribe(tr.ID)

	sent, err := svc.Send(ctx, SendCommand{PassengerID: "p1", TripID: tr.ID, Sender: trip.SenderDriver, Text: "Arrived"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	select {
	case got := <-ch:
		if got.Seq != sent.Seq || got.Text != "Arrived" {
			t.Fatalf("got %+v, want %+v", got, sent)
		}
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}

	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatal("channel not closed after cancel")
	}
	if _, err := svc.Send(ctx, SendCommand{PassengerID: "p1", TripID: tr.ID, Sender: trip.SenderDriver, Text: "again"}); err != nil {
		t.Fatalf("send after unsubscribe: %v", err)
	}
}

func TestCloseTrip_OnArchive(t *testing.T) {
	svc, trips, tr := setup(t, nil)
	trips.OnArchive(svc.CloseTrip)
	ctx := context.Background()

	first, cancelFirst := svc.Subscribe(tr.ID)
	second, cancelSecond := svc.Subscribe(tr.ID)
	other, cancelOther := svc.Subscribe("another-trip")
	defer cancelOther()

	if _, err := trips.Cancel(ctx, trip.CancelCommand{PassengerID: "p1", TripID: tr.ID}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	for i, ch := range []<-chan trip.Message{first, second} {
		select {
		case _, ok := <-ch:
			if ok {
				t.Fatalf("subscriber %d received a message instead of close", i)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d still open after archival", i)
		}
	}
	select {
	case <-other:
		t.Fatal("unrelated trip subscription closed")
	default:
	}

	// cancel after CloseTrip must not close twice
	cancelFirst()
	cancelSecond()
}
