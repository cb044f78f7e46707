package route

import (
	"math"
)

// LatLng is an immutable geographic coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsValid returns true if both components are finite and within range.
func (p LatLng) IsValid() bool {
	return isFinite(p.Lat) && isFinite(p.Lng) &&
		p.Lat >= -90 && p.Lat <= 90 &&
		p.Lng >= -180 && p.Lng <= 180
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Data is the capability interface shared by the base route and every
// decorator. All getters are pure: no side effects, no hidden I/O.
type Data interface {
	// Distance returns the route distance in the unit reported by DistanceUnit.
	Distance() float64
	// DistanceUnit returns the unit Distance is expressed in.
	DistanceUnit() DistanceUnit
	// Duration returns the travel time in minutes. Duration is always canonical.
	Duration() float64
	// MobilityType returns the free-form mobility tag from the request.
	MobilityType() string
	// RouteType returns the free-form route-type tag from the request.
	RouteType() string
	// Steps returns the ordered turn instructions, possibly empty.
	Steps() []string
	// Consumption returns the canonical consumption and ok=false when absent.
	Consumption() (Consumption, bool)
	// Cost returns the monetary or caloric cost estimate.
	Cost() float64
	// CostCurrency returns the cost denomination (e.g. "EUR" or "kcal").
	CostCurrency() string
	// Polyline returns the route geometry, or nil when absent.
	Polyline() []LatLng
}

// Route is the immutable base implementation of Data. Distance is stored
// in meters and duration in minutes.
type Route struct {
	distanceMeters  float64
	durationMinutes float64
	mobilityType    string
	routeType       string
	steps           []string
	consumption     Consumption
	hasConsumption  bool
	cost            float64
	costCurrency    string
	polyline        []LatLng
}

// NewRoute constructs an immutable route snapshot from canonical values.
// Steps are copied and polyline points are sanitized: malformed points
// (non-finite or out of range) are dropped, and an empty or all-invalid
// polyline canonicalizes to nil.
func NewRoute(
	distanceMeters, durationMinutes float64,
	mobilityType, routeType string,
	steps []string,
	consumption *Consumption,
	cost float64,
	costCurrency string,
	polyline []LatLng,
) *Route {
	r := &Route{
		distanceMeters:  distanceMeters,
		durationMinutes: durationMinutes,
		mobilityType:    mobilityType,
		routeType:       routeType,
		steps:           copySteps(steps),
		cost:            cost,
		costCurrency:    costCurrency,
		polyline:        SanitizePolyline(polyline),
	}
	if consumption != nil {
		r.consumption = *consumption
		r.hasConsumption = true
	}
	return r
}

// SanitizePolyline drops points with non-finite components, preserving
// order. It returns nil for empty or all-invalid input, never an empty
// slice.
func SanitizePolyline(points []LatLng) []LatLng {
	var out []LatLng
	for _, p := range points {
		if isFinite(p.Lat) && isFinite(p.Lng) {
			out = append(out, p)
		}
	}
	return out
}

// SanitizeRawPolyline builds a polyline from raw coordinate tuples as
// reported by the directions provider. Tuples that do not hold exactly
// two finite numbers are dropped.
func SanitizeRawPolyline(raw [][]float64) []LatLng {
	var out []LatLng
	for _, t := range raw {
		if len(t) != 2 {
			continue
		}
		if !isFinite(t[0]) || !isFinite(t[1]) {
			continue
		}
		out = append(out, LatLng{Lat: t[0], Lng: t[1]})
	}
	return out
}

func copySteps(steps []string) []string {
	if len(steps) == 0 {
		return nil
	}
	out := make([]string, len(steps))
	copy(out, steps)
	return out
}

// --- Data ---

// Distance returns the distance in meters.
func (r *Route) Distance() float64 { return r.distanceMeters }

// DistanceUnit returns the canonical meter unit.
func (r *Route) DistanceUnit() DistanceUnit { return UnitMeter }

// Duration returns the travel time in minutes.
func (r *Route) Duration() float64 { return r.durationMinutes }

// MobilityType returns the mobility tag.
func (r *Route) MobilityType() string { return r.mobilityType }

// RouteType returns the route-type tag.
func (r *Route) RouteType() string { return r.routeType }

// Steps returns a copy of the turn instructions.
func (r *Route) Steps() []string { return copySteps(r.steps) }

// Consumption returns the canonical consumption, ok=false when absent.
func (r *Route) Consumption() (Consumption, bool) {
	return r.consumption, r.hasConsumption
}

// Cost returns the cost estimate carried by this route.
func (r *Route) Cost() float64 { return r.cost }

// CostCurrency returns the cost denomination.
func (r *Route) CostCurrency() string { return r.costCurrency }

// Polyline returns the sanitized geometry, or nil.
func (r *Route) Polyline() []LatLng {
	if r.polyline == nil {
		return nil
	}
	out := make([]LatLng, len(r.polyline))
	copy(out, r.polyline)
	return out
}
