package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// PowerFeed lists hourly day-ahead electricity market prices in EUR/MWh.
type PowerFeed interface {
	HourlyPrices(ctx context.Context, day time.Time) ([]float64, error)
}

type powerValueDTO struct {
	Value    float64 `json:"value"`
	Datetime string  `json:"datetime"`
}

type powerIndicatorDTO struct {
	Values []powerValueDTO `json:"values"`
}

type powerFeedDTO struct {
	Indicator powerIndicatorDTO `json:"indicator"`
}

// HTTPPowerFeed fetches day-ahead market prices from the grid operator's
// indicator API.
type HTTPPowerFeed struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPPowerFeed creates a power feed client. A nil http.Client falls
// back to http.DefaultClient.
func NewHTTPPowerFeed(baseURL, token string, client *http.Client) *HTTPPowerFeed {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPPowerFeed{baseURL: baseURL, token: token, client: client}
}

// HourlyPrices fetches the hourly prices for the given local calendar
// day. The feed expects UTC-minute-truncated start and end bounds.
func (f *HTTPPowerFeed) HourlyPrices(ctx context.Context, day time.Time) ([]float64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()).Truncate(time.Minute)
	end := start.Add(24*time.Hour - time.Minute)

	q := url.Values{}
	q.Set("start_date", start.UTC().Format("2006-01-02T15:04"))
	q.Set("end_date", end.UTC().Format("2006-01-02T15:04"))
	q.Set("time_trunc", "hour")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build power feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if f.token != "" {
		req.Header.Set("x-api-key", f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("power feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("power feed returned status %d", resp.StatusCode)
	}

	var dto powerFeedDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("failed to decode power feed payload: %w", err)
	}

	values := make([]float64, 0, len(dto.Indicator.Values))
	for _, v := range dto.Indicator.Values {
		if n, ok := SanitizeNumber(v.Value); ok {
			values = append(values, n)
		}
	}
	return values, nil
}
