package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/wayfarer-maps/service-routing/internal/domain/shared"
)

// RawRoute is a directions result as reported by the provider, before
// canonicalization into the route domain. Distance is meters, duration
// minutes; the polyline keeps the provider's raw [lat, lng] tuples so
// the domain layer can sanitize them.
type RawRoute struct {
	DistanceMeters   float64
	DurationMinutes  float64
	Steps            []string
	Polyline         [][]float64
	Cost             float64
	CostCurrency     string
	ConsumptionValue float64
	ConsumptionUnit  string
}

// DirectionsProvider is the contract for the external routing service.
// Origin and destination are "lat,lng" strings; mobility and route type
// are free-form tags mapped to provider-specific tokens.
type DirectionsProvider interface {
	GetRoute(ctx context.Context, origin, destination, mobilityType, routeType string) (*RawRoute, error)
}

// mobilityProfiles maps mobility tags to the provider's routing profiles.
var mobilityProfiles = map[string]string{
	"car":             "driving-car",
	"fuelcar":         "driving-car",
	"electriccar":     "driving-car",
	"motorcycle":      "driving-car",
	"bike":            "cycling-regular",
	"electricbike":    "cycling-electric",
	"electricscooter": "cycling-electric",
	"walking":         "foot-walking",
	"hiking":          "foot-hiking",
}

// routePreferences maps route-type tags to the provider's preference tokens.
var routePreferences = map[string]string{
	"fastest":     "fastest",
	"shortest":    "shortest",
	"recommended": "recommended",
	"scenic":      "recommended",
}

// HTTPDirectionsProvider talks to the directions API over HTTP JSON.
type HTTPDirectionsProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPDirectionsProvider creates a directions client. A nil
// http.Client falls back to http.DefaultClient.
func NewHTTPDirectionsProvider(baseURL, apiKey string, client *http.Client) *HTTPDirectionsProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPDirectionsProvider{baseURL: baseURL, apiKey: apiKey, client: client}
}

type directionsStepDTO struct {
	Instruction string `json:"instruction"`
}

type directionsRouteDTO struct {
	Distance float64             `json:"distance"` // meters
	Duration float64             `json:"duration"` // seconds
	Steps    []directionsStepDTO `json:"steps"`
	Geometry [][]float64         `json:"geometry"` // [lat, lng] pairs
}

type directionsResponseDTO struct {
	Routes []directionsRouteDTO `json:"routes"`
}

// GetRoute requests a route between the two coordinates. Provider errors
// propagate unchanged to the caller: no retry, no fallback route.
func (p *HTTPDirectionsProvider) GetRoute(ctx context.Context, origin, destination, mobilityType, routeType string) (*RawRoute, error) {
	profile, ok := mobilityProfiles[strings.ToLower(mobilityType)]
	if !ok {
		profile = "driving-car"
	}
	preference, ok := routePreferences[strings.ToLower(routeType)]
	if !ok {
		preference = "recommended"
	}

	q := url.Values{}
	q.Set("start", origin)
	q.Set("end", destination)
	q.Set("preference", preference)

	endpoint := fmt.Sprintf("%s/v2/directions/%s?%s", p.baseURL, profile, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build directions request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, shared.NewUnavailableError(fmt.Sprintf("directions request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, shared.NewUnavailableError(fmt.Sprintf("directions provider returned status %d", resp.StatusCode))
	}

	var dto directionsResponseDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, shared.NewUnavailableError(fmt.Sprintf("failed to decode directions payload: %v", err))
	}
	if len(dto.Routes) == 0 {
		return nil, shared.NewNotFoundError("route", origin+" -> "+destination)
	}

	r := dto.Routes[0]
	steps := make([]string, 0, len(r.Steps))
	for _, s := range r.Steps {
		if s.Instruction != "" {
			steps = append(steps, s.Instruction)
		}
	}

	return &RawRoute{
		DistanceMeters:  r.Distance,
		DurationMinutes: r.Duration / 60,
		Steps:           steps,
		Polyline:        r.Geometry,
	}, nil
}
