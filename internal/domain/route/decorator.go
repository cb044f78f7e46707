package route

import "math"

// The decorator chain wraps a base route and progressively overrides a
// narrow subset of accessors, forwarding everything else to the wrapped
// route. The canonical application order is Distance, then Consumption,
// then Cost, so the cost decorator may sit on top of a route that no
// longer reports meters and must re-derive kilometers from the wrapped
// route's own (Distance, DistanceUnit) pair.

// forwarding delegates every Data accessor to the wrapped route.
// Decorators embed it and override only what they change.
type forwarding struct {
	inner Data
}

func (f forwarding) Distance() float64                { return f.inner.Distance() }
func (f forwarding) DistanceUnit() DistanceUnit       { return f.inner.DistanceUnit() }
func (f forwarding) Duration() float64                { return f.inner.Duration() }
func (f forwarding) MobilityType() string             { return f.inner.MobilityType() }
func (f forwarding) RouteType() string                { return f.inner.RouteType() }
func (f forwarding) Steps() []string                  { return f.inner.Steps() }
func (f forwarding) Consumption() (Consumption, bool) { return f.inner.Consumption() }
func (f forwarding) Cost() float64                    { return f.inner.Cost() }
func (f forwarding) CostCurrency() string             { return f.inner.CostCurrency() }
func (f forwarding) Polyline() []LatLng               { return f.inner.Polyline() }

// DistanceUnitDecorator presents the wrapped route's meters value in the
// user's preferred unit. Everything else is forwarded untouched.
type DistanceUnitDecorator struct {
	forwarding
	unit DistanceUnit
}

// WithDistanceUnit wraps a route with a distance-unit override.
func WithDistanceUnit(inner Data, unit DistanceUnit) *DistanceUnitDecorator {
	return &DistanceUnitDecorator{forwarding: forwarding{inner: inner}, unit: unit}
}

// Distance returns the wrapped meters value converted to the preferred unit.
func (d *DistanceUnitDecorator) Distance() float64 {
	return FromMeters(d.inner.Distance(), d.unit)
}

// DistanceUnit returns the preferred unit.
func (d *DistanceUnitDecorator) DistanceUnit() DistanceUnit { return d.unit }

// ConsumptionUnitDecorator presents the wrapped route's consumption in
// the user's preferred unit.
type ConsumptionUnitDecorator struct {
	forwarding
	unit ConsumptionUnit
}

// WithConsumptionUnit wraps a route with a consumption-unit override.
func WithConsumptionUnit(inner Data, unit ConsumptionUnit) *ConsumptionUnitDecorator {
	return &ConsumptionUnitDecorator{forwarding: forwarding{inner: inner}, unit: unit}
}

// Consumption converts the wrapped consumption to the preferred unit.
// The wrapped value is canonicalized to per-100 form first, so the
// conversion is correct no matter which unit the wrapped route happens
// to present. When the base consumption is absent it stays absent. When
// the preferred unit belongs to a different family the base value is
// returned unconverted; cross-family conversion is never attempted and
// never an error. Inverse forms (km/l, km/kwh) are 100/canonical.
func (d *ConsumptionUnitDecorator) Consumption() (Consumption, bool) {
	base, ok := d.inner.Consumption()
	if !ok {
		return Consumption{}, false
	}
	if !base.Unit.CompatibleWith(d.unit) {
		return base, true
	}
	canon, ok := CanonicalizeConsumption(base.Value, base.Unit.String())
	if !ok {
		return Consumption{}, false
	}
	if !d.unit.IsInverse() {
		return Consumption{Value: canon.Value, Unit: d.unit}, true
	}
	return Consumption{Value: 100 / canon.Value, Unit: d.unit}, true
}

// CostEstimatorDecorator estimates a monetary cost from distance,
// consumption and a price snapshot.
type CostEstimatorDecorator struct {
	forwarding
	snapshot *PriceSnapshot
}

// WithCostEstimate wraps a route with a cost estimate derived from the
// given price snapshot. A nil snapshot leaves the wrapped cost untouched.
func WithCostEstimate(inner Data, snapshot *PriceSnapshot) *CostEstimatorDecorator {
	return &CostEstimatorDecorator{forwarding: forwarding{inner: inner}, snapshot: snapshot}
}

// Cost estimates the route cost, short-circuiting to the wrapped route's
// own cost at the first failed precondition:
//
//  1. a finite wrapped cost > 0 always wins (pre-computed upstream);
//  2. no snapshot, no estimate;
//  3. the wrapped distance, converted through its own unit, must be a
//     finite positive kilometer value;
//  4. the wrapped consumption, canonicalized back to per-100 form
//     through its own unit, must be present and positive;
//  5. the snapshot must carry a usable price for the consumption family.
//
// The estimate is (km/100) * per100km * pricePerUnit, rounded to two
// decimals and clamped to zero.
func (d *CostEstimatorDecorator) Cost() float64 {
	base := d.inner.Cost()
	if isFinite(base) && base > 0 {
		return base
	}
	if d.snapshot == nil {
		return base
	}
	km := DistanceToKm(d.inner.Distance(), d.inner.DistanceUnit())
	if !isFinite(km) || km <= 0 {
		return base
	}
	cons, ok := d.inner.Consumption()
	if !ok {
		return base
	}
	canon, ok := CanonicalizeConsumption(cons.Value, cons.Unit.String())
	if !ok {
		return base
	}
	price, ok := d.snapshot.PriceFor(canon.Unit.Family())
	if !ok {
		return base
	}
	cost := (km / 100) * canon.Value * price
	cost = math.Round(cost*100) / 100
	if cost < 0 {
		cost = 0
	}
	return cost
}

// CostCurrency returns the snapshot currency when a snapshot exists,
// otherwise the wrapped route's currency.
func (d *CostEstimatorDecorator) CostCurrency() string {
	if d.snapshot != nil {
		return d.snapshot.Currency
	}
	return d.inner.CostCurrency()
}
