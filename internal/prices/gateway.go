package prices

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/wayfarer-maps/service-routing/internal/domain/route"
)

// DefaultTTL is how long a fetched price snapshot stays valid.
const DefaultTTL = time.Hour

// Gateway fetches and caches fuel and electricity prices. A non-expired
// snapshot is never refetched, and overlapping callers during a miss
// share a single in-flight refresh.
type Gateway struct {
	fuel   FuelFeed
	power  PowerFeed
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	group singleflight.Group

	mu        sync.RWMutex
	snapshot  *route.PriceSnapshot
	expiresAt time.Time
}

// NewGateway creates a price gateway over the two feeds. A non-positive
// ttl falls back to DefaultTTL.
func NewGateway(fuel FuelFeed, power PowerFeed, ttl time.Duration, logger *zap.Logger) *Gateway {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Gateway{
		fuel:   fuel,
		power:  power,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// LatestPrices returns the cached snapshot when it is still within its
// TTL window, otherwise refreshes both feeds. Both sub-fetches run
// concurrently and both must succeed; a failure on either leaves the
// previous cache state untouched and is returned to the caller.
func (g *Gateway) LatestPrices(ctx context.Context) (*route.PriceSnapshot, error) {
	if snap, ok := g.cached(); ok {
		return snap, nil
	}

	v, err, _ := g.group.Do("prices", func() (interface{}, error) {
		// Re-check under the flight: a concurrent caller may have
		// refreshed while this one was queued.
		if snap, ok := g.cached(); ok {
			return snap, nil
		}
		snap, err := g.refresh(ctx)
		if err != nil {
			return nil, err
		}
		g.mu.Lock()
		g.snapshot = snap
		g.expiresAt = g.now().Add(g.ttl)
		g.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*route.PriceSnapshot), nil
}

// Prefetch warms the cache. It is best-effort: errors are logged and
// swallowed, never surfaced to the caller.
func (g *Gateway) Prefetch(ctx context.Context) {
	if _, err := g.LatestPrices(ctx); err != nil {
		g.logger.Warn("price prefetch failed", zap.Error(err))
	}
}

func (g *Gateway) cached() (*route.PriceSnapshot, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.snapshot != nil && g.now().Before(g.expiresAt) {
		return g.snapshot, true
	}
	return nil, false
}

// refresh fetches both feeds concurrently and combines them into a new
// immutable snapshot. No partial snapshot is ever observable.
func (g *Gateway) refresh(ctx context.Context) (*route.PriceSnapshot, error) {
	var (
		stations []StationPrices
		hourly   []float64
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		stations, err = g.fuel.Stations(egCtx)
		return err
	})
	eg.Go(func() error {
		var err error
		hourly, err = g.power.HourlyPrices(egCtx, g.now())
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("price refresh failed: %w", err)
	}

	snap := &route.PriceSnapshot{
		Currency:  "EUR",
		Timestamp: g.now().UTC(),
		Source:    "fuel-stations+day-ahead-market",
	}

	var diesel, gasoline []float64
	for _, s := range stations {
		if v, ok := SanitizeNumber(s.Diesel); ok {
			diesel = append(diesel, v)
		}
		if v, ok := SanitizeNumber(s.Gasoline); ok {
			gasoline = append(gasoline, v)
		}
	}
	if v, ok := mean(diesel); ok {
		snap.DieselPerLiter = &v
	}
	if v, ok := mean(gasoline); ok {
		snap.GasolinePerLiter = &v
	}

	// Market prices arrive in EUR/MWh; the snapshot stores EUR/kWh.
	if v, ok := mean(hourly); ok {
		kwh := v / 1000
		snap.ElectricityPerKwh = &kwh
	}

	g.logger.Debug("price snapshot refreshed",
		zap.Int("fuel_stations", len(stations)),
		zap.Int("hourly_readings", len(hourly)),
	)
	return snap, nil
}
