// README: Identifier and geographic value objects shared by the booking modules.
package types

type ID string

// Point is a WGS84 coordinate.
type Point struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Location is a named point. It is immutable once attached to a booking.
type Location struct {
	Name string  `json:"name"`
	Lng  float64 `json:"lng"`
	Lat  float64 `json:"lat"`
}

func (l Location) Point() Point {
	return Point{Lng: l.Lng, Lat: l.Lat}
}

// Pair returns the point as [lng, lat], the order routing providers expect.
func (p Point) Pair() [2]float64 {
	return [2]float64{p.Lng, p.Lat}
}
