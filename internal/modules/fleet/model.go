// README: Vehicle classes, per-class fleet tables and driver references.
package fleet

import (
	"errors"

	"privatehire/internal/types"
)

type VehicleClass string

const (
	ClassStandard  VehicleClass = "standard"
	ClassExecutive VehicleClass = "executive"
	ClassLuxury    VehicleClass = "luxury"
)

// baselineRate is the Standard per-mile rate; multipliers are relative to it.
const baselineRate = 2.50

var (
	ErrUnknownClass      = errors.New("unknown vehicle class")
	ErrEmptyFleet        = errors.New("vehicle class has no fleet")
	ErrNoDriverAvailable = errors.New("no driver available")
	ErrDriverNotFound    = errors.New("driver not found")
	ErrDriverOnTrip      = errors.New("driver is on an active trip")
)

// Model is a concrete vehicle model and the colours it is offered in.
type Model struct {
	Name   string   `json:"name"`
	Colors []string `json:"colors"`
}

type ClassSpec struct {
	Class       VehicleClass `json:"class"`
	DisplayName string       `json:"display_name"`
	Category    string       `json:"category"`
	PerMileRate float64      `json:"per_mile_rate"`
	Passengers  int          `json:"passengers"`
	Luggage     int          `json:"luggage"`
	ETAMinutes  int          `json:"eta_minutes"`
	Premium     bool         `json:"premium"`
	Fleet       []Model      `json:"fleet"`
}

// Multiplier is the class price factor relative to Standard.
func (c ClassSpec) Multiplier() float64 {
	return c.PerMileRate / baselineRate
}

// Vehicle is the model/colour drawn for one booking. It is never recomputed.
type Vehicle struct {
	Model string `json:"model"`
	Color string `json:"color"`
}

type Driver struct {
	ID     types.ID `json:"id"`
	Name   string   `json:"name"`
	Rating float64  `json:"rating"`
	Plate  string   `json:"plate,omitempty"`
}

var classOrder = []VehicleClass{ClassStandard, ClassExecutive, ClassLuxury}

var catalog = map[VehicleClass]ClassSpec{
	ClassStandard: {
		Class:       ClassStandard,
		DisplayName: "Standard",
		Category:    "SUV",
		PerMileRate: 2.50,
		Passengers:  4,
		Luggage:     2,
		ETAMinutes:  4,
		Fleet: []Model{
			{Name: "Toyota Prius", Colors: []string{"Silver", "White", "Black"}},
			{Name: "Toyota RAV4 Hybrid", Colors: []string{"Grey", "White"}},
			{Name: "Kia Niro", Colors: []string{"Blue", "White", "Black"}},
		},
	},
	ClassExecutive: {
		Class:       ClassExecutive,
		DisplayName: "Sedan",
		Category:    "Executive",
		PerMileRate: 3.50,
		Passengers:  3,
		Luggage:     2,
		ETAMinutes:  8,
		Premium:     true,
		Fleet: []Model{
			{Name: "Mercedes E-Class", Colors: []string{"Obsidian Black", "Iridium Silver"}},
			{Name: "BMW 5 Series", Colors: []string{"Carbon Black", "Mineral White"}},
		},
	},
	ClassLuxury: {
		Class:       ClassLuxury,
		DisplayName: "MPV",
		Category:    "Luxury",
		PerMileRate: 4.50,
		Passengers:  7,
		Luggage:     6,
		ETAMinutes:  12,
		Fleet: []Model{
			{Name: "Mercedes V-Class", Colors: []string{"Obsidian Black", "Selenite Grey"}},
			{Name: "Volkswagen Multivan", Colors: []string{"Deep Black", "Reflex Silver"}},
		},
	},
}

func (c VehicleClass) IsValid() bool {
	_, ok := catalog[c]
	return ok
}

// Lookup returns the catalogue entry for a class.
func Lookup(c VehicleClass) (ClassSpec, error) {
	spec, ok := catalog[c]
	if !ok {
		return ClassSpec{}, ErrUnknownClass
	}
	return spec, nil
}

// Classes lists the catalogue in increasing price order.
func Classes() []ClassSpec {
	out := make([]ClassSpec, 0, len(classOrder))
	for _, c := range classOrder {
		out = append(out, catalog[c])
	}
	return out
}
