// README: History store keeps an owner's archived trips in the kv store, newest first.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"privatehire/internal/kv"
	"privatehire/internal/types"
)

const keyPrefix = "trip:history:"

type Store struct {
	kv kv.Store
	mu sync.Mutex
}

func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

func key(owner types.ID) string {
	return keyPrefix + string(owner)
}

// Append adds rec as the most recent entry of owner's history.
func (s *Store) Append(ctx context.Context, owner types.ID, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx, owner)
	if err != nil {
		return err
	}
	records = append([]Record{rec}, records...)
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.kv.Set(ctx, key(owner), raw); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// List returns owner's records, most recent first. An unknown owner has an empty history.
func (s *Store) List(ctx context.Context, owner types.ID) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, owner)
}

func (s *Store) Get(ctx context.Context, owner, tripID types.ID) (Record, error) {
	records, err := s.List(ctx, owner)
	if err != nil {
		return Record{}, err
	}
	for _, r := range records {
		if r.TripID == tripID {
			return r, nil
		}
	}
	return Record{}, ErrRecordNotFound
}

func (s *Store) load(ctx context.Context, owner types.ID) ([]Record, error) {
	raw, err := s.kv.Get(ctx, key(owner))
	if errors.Is(err, kv.ErrNotFound) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return records, nil
}
