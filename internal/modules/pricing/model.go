// README: Fare constants and the request/result shapes of the fare formula.
package pricing

import (
	"privatehire/internal/modules/fleet"
	"privatehire/internal/types"
)

const (
	BaseFare      = 3.50
	PerMinuteRate = 0.30
	MinimumFare   = 8.00
	MetersPerMile = 1609.34
)

// Service fee and tax shares of the total, as shown on the payment sheet. The base
// fare is the remainder, 80%.
const (
	serviceShare = 0.15
	taxShare     = 0.05
)

type Request struct {
	DistanceMeters  float64
	DurationSeconds float64
	Class           fleet.VehicleClass
}

type Result struct {
	Total           types.Money `json:"total"`
	DistanceMiles   float64     `json:"distance_miles"`
	DurationMinutes float64     `json:"duration_minutes"`
	PerMileRate     float64     `json:"per_mile_rate"`
}

type Breakdown struct {
	Base       types.Money `json:"base"`
	ServiceFee types.Money `json:"service_fee"`
	Tax        types.Money `json:"tax"`
	Total      types.Money `json:"total"`
}
