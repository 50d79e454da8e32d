// README: Fleet service draws a vehicle for a class and a driver from the available pool.
package fleet

import (
	"context"
	"fmt"
	"sort"

	"privatehire/internal/types"
)

// DriverPool tracks registered drivers, which of them are available and which are
// held by a trip. A held driver only becomes available again through Release.
type DriverPool interface {
	Available(ctx context.Context) ([]Driver, error)
	// Reserve moves the driver from available to held; it reports false if the driver
	// was not available.
	Reserve(ctx context.Context, id types.ID) (bool, error)
	Release(ctx context.Context, id types.ID) error
	// SetAvailability fails with ErrDriverOnTrip when asked to free a held driver.
	SetAvailability(ctx context.Context, id types.ID, available bool) error
}

type Service struct {
	pool   DriverPool
	picker Picker
}

func NewService(pool DriverPool, picker Picker) *Service {
	if picker == nil {
		picker = RandomPicker()
	}
	return &Service{pool: pool, picker: picker}
}

// Assign picks a model uniformly from the class fleet table, then a colour uniformly
// from that model's palette.
func (s *Service) Assign(class VehicleClass) (Vehicle, error) {
	spec, err := Lookup(class)
	if err != nil {
		return Vehicle{}, err
	}
	if len(spec.Fleet) == 0 {
		return Vehicle{}, ErrEmptyFleet
	}
	model := spec.Fleet[s.picker.Intn(len(spec.Fleet))]
	if len(model.Colors) == 0 {
		return Vehicle{}, fmt.Errorf("model %q: %w", model.Name, ErrEmptyFleet)
	}
	color := model.Colors[s.picker.Intn(len(model.Colors))]
	return Vehicle{Model: model.Name, Color: color}, nil
}

// AssignDriver picks uniformly among available drivers and reserves the choice.
// It is not retried by callers: an empty pool yields ErrNoDriverAvailable.
func (s *Service) AssignDriver(ctx context.Context) (Driver, error) {
	candidates, err := s.pool.Available(ctx)
	if err != nil {
		return Driver{}, fmt.Errorf("list available drivers: %w", err)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })

	for len(candidates) > 0 {
		i := s.picker.Intn(len(candidates))
		d := candidates[i]
		ok, err := s.pool.Reserve(ctx, d.ID)
		if err != nil {
			return Driver{}, fmt.Errorf("reserve driver %s: %w", d.ID, err)
		}
		if ok {
			return d, nil
		}
		candidates = append(candidates[:i], candidates[i+1:]...)
	}
	return Driver{}, ErrNoDriverAvailable
}

// Release ends the driver's hold and returns it to the available pool.
func (s *Service) Release(ctx context.Context, id types.ID) error {
	return s.pool.Release(ctx, id)
}

func (s *Service) SetAvailability(ctx context.Context, id types.ID, available bool) error {
	return s.pool.SetAvailability(ctx, id, available)
}
