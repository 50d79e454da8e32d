// README: Route & fare calculator: provider route + fare formula, straight-line fallback.
package routing

import (
	"context"
	"time"

	"privatehire/internal/logging"
	"privatehire/internal/modules/fleet"
	"privatehire/internal/modules/pricing"
	"privatehire/internal/types"
)

const DefaultTimeout = 8 * time.Second

type Calculator struct {
	client  Client
	pricing *pricing.Service
	timeout time.Duration
	log     logging.Logger
	now     func() time.Time
}

func NewCalculator(client Client, pricingSvc *pricing.Service, timeout time.Duration, log logging.Logger) *Calculator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Calculator{
		client:  client,
		pricing: pricingSvc,
		timeout: timeout,
		log:     log,
		now:     time.Now,
	}
}

// Quote routes pickup→destination and prices it for class. Provider failure is not an
// error: the result falls back to a straight line with zero duration and zero fare and
// is marked Degraded. The only error is an unknown class.
func (c *Calculator) Quote(ctx context.Context, pickup, destination types.Location, class fleet.VehicleClass) (Quote, error) {
	if !class.IsValid() {
		return Quote{}, fleet.ErrUnknownClass
	}
	log := c.log.Action("quote").With("class", string(class))

	q := Quote{
		Pickup:      pickup,
		Destination: destination,
		Class:       class,
		QuotedAt:    c.now(),
	}

	rctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	route, err := c.client.Route(rctx, pickup.Point(), destination.Point())
	if err != nil {
		log.Warn("routing provider unavailable, using straight-line fallback", "err", err.Error())
		return c.fallback(q), nil
	}

	est, err := c.pricing.Estimate(ctx, pricing.Request{
		DistanceMeters:  route.DistanceMeters,
		DurationSeconds: route.DurationSeconds,
		Class:           class,
	})
	if err != nil {
		return Quote{}, err
	}

	q.Coordinates = route.Coordinates
	q.DistanceMeters = route.DistanceMeters
	q.DurationSeconds = route.DurationSeconds
	q.Fare = est.Total
	log.Debug("quote computed", "distance_m", route.DistanceMeters, "duration_s", route.DurationSeconds, "fare", est.Total.Amount)
	return q, nil
}

func (c *Calculator) fallback(q Quote) Quote {
	from, to := q.Pickup.Point(), q.Destination.Point()
	q.Coordinates, q.DistanceMeters = straightLine(from, to)
	q.DurationSeconds = 0
	q.Fare = types.Money{Amount: 0, Currency: types.CurrencyGBP}
	q.Degraded = true
	return q
}
