package routing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"googlemaps.github.io/maps"
)

const osrmOK = `{
  "code": "Ok",
  "routes": [{
    "geometry": {"type": "LineString", "coordinates": [[-0.1586,51.5226],[-0.3,51.5],[-0.4543,51.47]]},
    "distance": 38000,
    "duration": 2400
  }]
}`

func TestOSRMClient_Route(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(osrmOK))
	}))
	defer srv.Close()

	route, err := NewOSRMClient(srv.URL).Route(context.Background(), bakerStreet.Point(), heathrow.Point())
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if gotPath != "/route/v1/driving/-0.1586,51.5226;-0.4543,51.47" {
		t.Errorf("path = %q", gotPath)
	}
	if !strings.Contains(gotQuery, "overview=full") || !strings.Contains(gotQuery, "geometries=geojson") {
		t.Errorf("query = %q, want full geojson geometry", gotQuery)
	}
	if route.DistanceMeters != 38000 || route.DurationSeconds != 2400 {
		t.Errorf("distance/duration = %v/%v", route.DistanceMeters, route.DurationSeconds)
	}
	if len(route.Coordinates) != 3 || route.Coordinates[2] != [2]float64{-0.4543, 51.47} {
		t.Errorf("coordinates = %v", route.Coordinates)
	}
}

func TestOSRMClient_NoRoute(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "non-Ok code", body: `{"code":"NoRoute","routes":[]}`},
		{name: "empty routes", body: `{"code":"Ok","routes":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOSRMClient(srv.URL).Route(context.Background(), bakerStreet.Point(), heathrow.Point())
			if !errors.Is(err, ErrNoRoute) {
				t.Fatalf("expected ErrNoRoute, got %v", err)
			}
		})
	}
}

func TestOSRMClient_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(osrmOK))
	}))
	defer srv.Close()

	if _, err := NewOSRMClient(srv.URL).Route(context.Background(), bakerStreet.Point(), heathrow.Point()); err != nil {
		t.Fatalf("route after retries: %v", err)
	}
	if n := calls.Load(); n != 3 {
		t.Fatalf("calls = %d, want 3", n)
	}
}

func TestOSRMClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"InvalidQuery"}`))
	}))
	defer srv.Close()

	_, err := NewOSRMClient(srv.URL).Route(context.Background(), bakerStreet.Point(), heathrow.Point())
	var se *statusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 status error, got %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("calls = %d, want 1", n)
	}
}

func TestOSRMClient_GivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewOSRMClient(srv.URL)
	c.backoff = time.Millisecond
	_, err := c.Route(context.Background(), bakerStreet.Point(), heathrow.Point())
	var se *statusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 status error, got %v", err)
	}
	if n := calls.Load(); n != osrmAttempts {
		t.Fatalf("calls = %d, want %d", n, osrmAttempts)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls.Store(0)
	if _, err := c.Route(ctx, bakerStreet.Point(), heathrow.Point()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if n := calls.Load(); n != 0 {
		t.Fatalf("calls after cancel = %d, want 0", n)
	}
}

const directionsOK = `{
  "status": "OK",
  "geocoded_waypoints": [],
  "routes": [{
    "summary": "M4",
    "legs": [{
      "distance": {"text": "23.6 mi", "value": 38000},
      "duration": {"text": "40 mins", "value": 2400},
      "steps": []
    }],
    "overview_polyline": {"points": "_p~iF~ps|U_ulLnnqC_mqNvxq` + "`" + `@"},
    "warnings": [],
    "waypoint_order": []
  }]
}`

func TestGoogleClient_Route(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(directionsOK))
	}))
	defer srv.Close()

	g, err := NewGoogleClient("AIza-test-key", maps.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	route, err := g.Route(context.Background(), bakerStreet.Point(), heathrow.Point())
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if route.DistanceMeters != 38000 || route.DurationSeconds != 2400 {
		t.Errorf("distance/duration = %v/%v", route.DistanceMeters, route.DurationSeconds)
	}
	if len(route.Coordinates) != 3 {
		t.Fatalf("coordinates = %v, want 3 decoded points", route.Coordinates)
	}
	// polyline stores lat,lng; coordinates are lng,lat
	first := route.Coordinates[0]
	if first[0] > -120.19 || first[0] < -120.21 || first[1] < 38.49 || first[1] > 38.51 {
		t.Errorf("first coordinate = %v, want ~[-120.2 38.5]", first)
	}
}
