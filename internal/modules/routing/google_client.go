package routing

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"privatehire/internal/types"
)

// GoogleClient handles interactions with the Google Maps Directions API.
type GoogleClient struct {
	client *maps.Client
}

// NewGoogleClient creates a GoogleClient. Extra options (e.g. maps.WithBaseURL) are passed through.
func NewGoogleClient(apiKey string, opts ...maps.ClientOption) (*GoogleClient, error) {
	opts = append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleClient{client: client}, nil
}

// Route returns the first route's decoded overview polyline and its first leg's
// distance and duration. It assumes driving mode.
func (g *GoogleClient) Route(ctx context.Context, from, to types.Point) (Route, error) {
	r := &maps.DirectionsRequest{
		Origin:      latLng(from),
		Destination: latLng(to),
		Mode:        maps.TravelModeDriving,
		Region:      "uk",
	}

	routes, _, err := g.client.Directions(ctx, r)
	if err != nil {
		return Route{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return Route{}, ErrNoRoute
	}

	points, err := routes[0].OverviewPolyline.Decode()
	if err != nil {
		return Route{}, fmt.Errorf("decode polyline: %w", err)
	}
	coords := make([][2]float64, len(points))
	for i, p := range points {
		coords[i] = [2]float64{p.Lng, p.Lat}
	}

	leg := routes[0].Legs[0]
	return Route{
		Coordinates:     coords,
		DistanceMeters:  float64(leg.Distance.Meters),
		DurationSeconds: leg.Duration.Seconds(),
	}, nil
}

func latLng(p types.Point) string {
	return fmt.Sprintf("%s,%s", coord(p.Lat), coord(p.Lng))
}
