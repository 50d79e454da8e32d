// README: Single in-flight quote slot with latest-request-wins semantics.
package routing

import (
	"context"
	"sync"

	"privatehire/internal/modules/fleet"
	"privatehire/internal/types"
)

// Quoter holds the quote for the current inputs. Each Request or Invalidate advances the
// generation; a result that arrives for an older generation is discarded.
type Quoter struct {
	calc *Calculator

	mu      sync.Mutex
	gen     uint64
	current *Quote
}

func NewQuoter(calc *Calculator) *Quoter {
	return &Quoter{calc: calc}
}

// Invalidate drops the current quote. Call it whenever pickup, destination or class change.
func (q *Quoter) Invalidate() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.gen++
	q.current = nil
}

// Request computes a fresh quote. It returns ErrStaleQuote if another Request or an
// Invalidate happened while the provider call was in flight.
func (q *Quoter) Request(ctx context.Context, pickup, destination types.Location, class fleet.VehicleClass) (Quote, error) {
	q.mu.Lock()
	q.gen++
	gen := q.gen
	q.current = nil
	q.mu.Unlock()

	quote, err := q.calc.Quote(ctx, pickup, destination, class)
	if err != nil {
		return Quote{}, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if gen != q.gen {
		return Quote{}, ErrStaleQuote
	}
	q.current = &quote
	return quote, nil
}

// Current returns the quote for the latest inputs, if one has resolved.
func (q *Quoter) Current() (Quote, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil {
		return Quote{}, false
	}
	return *q.current, true
}
