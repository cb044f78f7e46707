package prices

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubFuelFeed struct {
	stations []StationPrices
	err      error
	calls    int32
}

func (f *stubFuelFeed) Stations(ctx context.Context) ([]StationPrices, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.stations, f.err
}

type stubPowerFeed struct {
	hourly []float64
	err    error
	calls  int32
}

func (f *stubPowerFeed) HourlyPrices(ctx context.Context, day time.Time) ([]float64, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.hourly, f.err
}

func testGateway(fuel FuelFeed, power PowerFeed, ttl time.Duration) *Gateway {
	return NewGateway(fuel, power, ttl, zap.NewNop())
}

func TestGatewayBuildsSnapshot(t *testing.T) {
	fuel := &stubFuelFeed{stations: []StationPrices{
		{Diesel: "1,40", Gasoline: "1,60"},
		{Diesel: "1,50", Gasoline: "1,64"},
		{Diesel: "", Gasoline: "n/a"}, // discarded readings
	}}
	power := &stubPowerFeed{hourly: []float64{100, 200}} // EUR/MWh

	g := testGateway(fuel, power, time.Hour)
	snap, err := g.LatestPrices(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "EUR", snap.Currency)
	require.NotNil(t, snap.DieselPerLiter)
	assert.InDelta(t, 1.45, *snap.DieselPerLiter, 1e-9)
	require.NotNil(t, snap.GasolinePerLiter)
	assert.InDelta(t, 1.62, *snap.GasolinePerLiter, 1e-9)
	// 150 EUR/MWh -> 0.15 EUR/kWh.
	require.NotNil(t, snap.ElectricityPerKwh)
	assert.InDelta(t, 0.15, *snap.ElectricityPerKwh, 1e-9)
	assert.False(t, snap.Timestamp.IsZero())
}

func TestGatewayAbsentReadingsStayNil(t *testing.T) {
	fuel := &stubFuelFeed{stations: []StationPrices{{Diesel: "", Gasoline: ""}}}
	power := &stubPowerFeed{hourly: nil}

	g := testGateway(fuel, power, time.Hour)
	snap, err := g.LatestPrices(context.Background())
	require.NoError(t, err)

	assert.Nil(t, snap.DieselPerLiter)
	assert.Nil(t, snap.GasolinePerLiter)
	assert.Nil(t, snap.ElectricityPerKwh)
}

func TestGatewayCachesWithinTTL(t *testing.T) {
	fuel := &stubFuelFeed{stations: []StationPrices{{Diesel: "1,40", Gasoline: "1,60"}}}
	power := &stubPowerFeed{hourly: []float64{100}}

	g := testGateway(fuel, power, time.Hour)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	first, err := g.LatestPrices(context.Background())
	require.NoError(t, err)

	// A second call within the TTL returns the identical snapshot
	// without touching the feeds.
	now = now.Add(30 * time.Minute)
	second, err := g.LatestPrices(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fuel.calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&power.calls))

	// Past the TTL the feeds are consulted again.
	now = now.Add(31 * time.Minute)
	third, err := g.LatestPrices(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.True(t, third.Timestamp.After(first.Timestamp))
	assert.Equal(t, int32(2), atomic.LoadInt32(&fuel.calls))
}

func TestGatewayFailureKeepsPreviousState(t *testing.T) {
	fuel := &stubFuelFeed{stations: []StationPrices{{Diesel: "1,40", Gasoline: "1,60"}}}
	power := &stubPowerFeed{hourly: []float64{100}}

	g := testGateway(fuel, power, time.Hour)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	first, err := g.LatestPrices(context.Background())
	require.NoError(t, err)

	// Expire the cache, then make one sub-fetch fail: the refresh fails
	// as a whole and no partial snapshot replaces the old one.
	now = now.Add(2 * time.Hour)
	power.err = errors.New("feed down")
	_, err = g.LatestPrices(context.Background())
	require.Error(t, err)

	g.mu.RLock()
	cached := g.snapshot
	g.mu.RUnlock()
	assert.Same(t, first, cached)
}

func TestGatewaySingleFlight(t *testing.T) {
	fuel := &stubFuelFeed{stations: []StationPrices{{Diesel: "1,40", Gasoline: "1,60"}}}
	power := &stubPowerFeed{hourly: []float64{100}}

	g := testGateway(fuel, power, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.LatestPrices(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Concurrent misses share one in-flight refresh.
	assert.Equal(t, int32(1), atomic.LoadInt32(&fuel.calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&power.calls))
}

func TestGatewayPrefetchSwallowsErrors(t *testing.T) {
	fuel := &stubFuelFeed{err: errors.New("feed down")}
	power := &stubPowerFeed{hourly: []float64{100}}

	g := testGateway(fuel, power, time.Hour)
	// Must not panic or propagate.
	g.Prefetch(context.Background())
}
