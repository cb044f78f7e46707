package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// StationPrices carries the per-liter readings of one fuel station.
// Feed values are kept as raw strings; the government feed quotes prices
// with a comma decimal separator ("1,459").
type StationPrices struct {
	Diesel   string
	Gasoline string
}

// FuelFeed lists current per-station fuel prices.
type FuelFeed interface {
	Stations(ctx context.Context) ([]StationPrices, error)
}

// fuelStationDTO mirrors the station entries of the vehicle-station data
// feed. Only the two prices the cost pipeline uses are mapped.
type fuelStationDTO struct {
	PrecioGasoleoA   string `json:"Precio Gasoleo A"`
	PrecioGasolina95 string `json:"Precio Gasolina 95 E5"`
}

type fuelFeedDTO struct {
	ListaEESSPrecio []fuelStationDTO `json:"ListaEESSPrecio"`
}

// HTTPFuelFeed fetches fuel prices from the public station-price feed.
type HTTPFuelFeed struct {
	baseURL string
	client  *http.Client
}

// NewHTTPFuelFeed creates a fuel feed client. A nil http.Client falls
// back to http.DefaultClient; timeouts are the transport's concern.
func NewHTTPFuelFeed(baseURL string, client *http.Client) *HTTPFuelFeed {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFuelFeed{baseURL: baseURL, client: client}
}

// Stations fetches the current station list. A non-2xx response or a
// malformed payload is an error; the gateway decides what to do with it.
func (f *HTTPFuelFeed) Stations(ctx context.Context) ([]StationPrices, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build fuel feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fuel feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fuel feed returned status %d", resp.StatusCode)
	}

	var dto fuelFeedDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("failed to decode fuel feed payload: %w", err)
	}

	stations := make([]StationPrices, len(dto.ListaEESSPrecio))
	for i, s := range dto.ListaEESSPrecio {
		stations[i] = StationPrices{
			Diesel:   s.PrecioGasoleoA,
			Gasoline: s.PrecioGasolina95,
		}
	}
	return stations, nil
}
