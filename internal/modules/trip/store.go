// README: Active trip slot persisted in the kv store, one per passenger.
package trip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"privatehire/internal/kv"
	"privatehire/internal/types"
)

const activeKeyPrefix = "trip:active:"

type Store struct {
	kv kv.Store
}

func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

func activeKey(passengerID types.ID) string {
	return activeKeyPrefix + string(passengerID)
}

// Load returns the passenger's active trip or ErrNoActiveTrip.
func (s *Store) Load(ctx context.Context, passengerID types.ID) (*Trip, error) {
	raw, err := s.kv.Get(ctx, activeKey(passengerID))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNoActiveTrip
	}
	if err != nil {
		return nil, fmt.Errorf("load active trip: %w", err)
	}
	var t Trip
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode active trip: %w", err)
	}
	if t.Messages == nil {
		t.Messages = []Message{}
	}
	return &t, nil
}

func (s *Store) Save(ctx context.Context, t *Trip) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode active trip: %w", err)
	}
	if err := s.kv.Set(ctx, activeKey(t.Booking.PassengerID), raw); err != nil {
		return fmt.Errorf("save active trip: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, passengerID types.ID) error {
	if err := s.kv.Delete(ctx, activeKey(passengerID)); err != nil {
		return fmt.Errorf("clear active trip: %w", err)
	}
	return nil
}
