// README: Straight-line distance used when no provider route is available.
package routing

import (
	"math"

	"privatehire/internal/types"
)

// earthRadiusMeters is the mean radius; the fallback only needs ~0.5% accuracy.
const earthRadiusMeters = 6371e3

// haversineMeters is the great-circle distance between two points in decimal degrees.
func haversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	p1, p2 := radians(lat1), radians(lat2)
	h := hav(p2-p1) + math.Cos(p1)*math.Cos(p2)*hav(radians(lng2-lng1))
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(math.Min(1, h)))
}

// straightLine returns the endpoint path and its length.
func straightLine(from, to types.Point) ([][2]float64, float64) {
	return [][2]float64{from.Pair(), to.Pair()}, haversineMeters(from.Lat, from.Lng, to.Lat, to.Lng)
}

func hav(theta float64) float64 {
	s := math.Sin(theta / 2)
	return s * s
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
