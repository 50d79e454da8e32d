// README: Pricing service computes fare estimates from a routed distance and duration.
package pricing

import (
	"context"
	"math"

	"privatehire/internal/modules/fleet"
	"privatehire/internal/types"
)

type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Estimate prices a routed trip for a vehicle class.
func (s *Service) Estimate(_ context.Context, req Request) (Result, error) {
	spec, err := fleet.Lookup(req.Class)
	if err != nil {
		return Result{}, err
	}
	dist := math.Max(req.DistanceMeters, 0)
	dur := math.Max(req.DurationSeconds, 0)
	return Result{
		Total:           types.Pounds(Fare(dist, dur, spec.PerMileRate)),
		DistanceMiles:   dist / MetersPerMile,
		DurationMinutes: dur / 60,
		PerMileRate:     spec.PerMileRate,
	}, nil
}

// Fare is max(MinimumFare, BaseFare + miles*perMileRate + minutes*PerMinuteRate) in pounds.
func Fare(distanceMeters, durationSeconds, perMileRate float64) float64 {
	miles := distanceMeters / MetersPerMile
	minutes := durationSeconds / 60
	price := BaseFare + miles*perMileRate + minutes*PerMinuteRate
	return math.Max(price, MinimumFare)
}

// Split divides a total into base, service fee and tax. The base absorbs rounding so the
// parts always sum to the total.
func Split(total types.Money) Breakdown {
	service := int64(math.Round(float64(total.Amount) * serviceShare))
	tax := int64(math.Round(float64(total.Amount) * taxShare))
	cur := total.Currency
	return Breakdown{
		Base:       types.Money{Amount: total.Amount - service - tax, Currency: cur},
		ServiceFee: types.Money{Amount: service, Currency: cur},
		Tax:        types.Money{Amount: tax, Currency: cur},
		Total:      total,
	}
}
