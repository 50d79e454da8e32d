// README: OSRM driving-directions client (route/v1/driving, full GeoJSON geometry).
package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"privatehire/internal/types"
)

const DefaultOSRMURL = "https://router.project-osrm.org"

const (
	osrmAttempts = 3
	osrmBackoff  = 200 * time.Millisecond
)

type OSRMClient struct {
	session *http.Client
	baseURL string
	profile string
	backoff time.Duration
}

// statusError is a non-2xx answer from the routing server.
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

func NewOSRMClient(baseURL string) *OSRMClient {
	if baseURL == "" {
		baseURL = DefaultOSRMURL
	}
	return &OSRMClient{
		session: &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: "driving",
		backoff: osrmBackoff,
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry struct {
			Coordinates [][2]float64 `json:"coordinates"`
		} `json:"geometry"`
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

func (o *OSRMClient) Route(ctx context.Context, from, to types.Point) (Route, error) {
	url := fmt.Sprintf("%s/route/v1/%s/%s,%s;%s,%s?overview=full&geometries=geojson",
		o.baseURL, o.profile,
		coord(from.Lng), coord(from.Lat),
		coord(to.Lng), coord(to.Lat),
	)

	raw, err := o.fetch(ctx, url)
	if err != nil {
		return Route{}, fmt.Errorf("osrm route: %w", err)
	}

	var body osrmResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return Route{}, fmt.Errorf("decode osrm response: %w", err)
	}
	if body.Code != "Ok" {
		return Route{}, fmt.Errorf("osrm code %q: %w", body.Code, ErrNoRoute)
	}
	if len(body.Routes) == 0 {
		return Route{}, ErrNoRoute
	}

	r := body.Routes[0]
	if r.Distance < 0 || r.Duration < 0 {
		return Route{}, errors.New("osrm returned negative distance or duration")
	}
	return Route{
		Coordinates:     r.Geometry.Coordinates,
		DistanceMeters:  r.Distance,
		DurationSeconds: r.Duration,
	}, nil
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// fetch GETs url, retrying network failures, 429 and 5xx with a doubling pause between
// attempts. Any other status fails at once.
func (o *OSRMClient) fetch(ctx context.Context, url string) ([]byte, error) {
	wait := o.backoff
	var err error
	for attempt := 0; attempt < osrmAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
		}
		var body []byte
		body, err = o.get(ctx, url)
		if err == nil {
			return body, nil
		}
		if !transient(err) {
			return nil, err
		}
	}
	return nil, err
}

func (o *OSRMClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := o.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &statusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	return io.ReadAll(resp.Body)
}

func transient(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var ne net.Error
	return errors.As(err, &ne)
}
