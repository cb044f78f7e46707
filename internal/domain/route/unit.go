package route

import (
	"math"
	"strings"
)

// DistanceUnit represents a supported distance unit.
type DistanceUnit string

const (
	UnitMeter     DistanceUnit = "m"
	UnitKilometer DistanceUnit = "km"
	UnitMile      DistanceUnit = "mi"
)

// IsValid returns true if the distance unit is recognized.
func (u DistanceUnit) IsValid() bool {
	switch u {
	case UnitMeter, UnitKilometer, UnitMile:
		return true
	}
	return false
}

// String returns the unit token.
func (u DistanceUnit) String() string {
	return string(u)
}

// ParseDistanceUnit converts a string to a DistanceUnit.
func ParseDistanceUnit(s string) (DistanceUnit, bool) {
	u := DistanceUnit(strings.ToLower(strings.TrimSpace(s)))
	return u, u.IsValid()
}

// DistanceToKm converts a distance value in the given unit to kilometers.
// Non-finite input propagates as NaN; the function never panics.
func DistanceToKm(distance float64, unit DistanceUnit) float64 {
	if math.IsNaN(distance) || math.IsInf(distance, 0) {
		return math.NaN()
	}
	switch unit {
	case UnitMeter:
		return distance / 1000
	case UnitKilometer:
		return distance
	case UnitMile:
		return distance * 1.60934
	default:
		return math.NaN()
	}
}

// FromMeters converts a canonical meters value into the given unit.
func FromMeters(meters float64, unit DistanceUnit) float64 {
	switch unit {
	case UnitKilometer:
		return meters / 1000
	case UnitMile:
		return meters / 1609.344
	default:
		return meters
	}
}

// ConsumptionFamily groups consumption units that may be converted into
// each other. Cross-family conversion is never performed.
type ConsumptionFamily string

const (
	FamilyCombustion ConsumptionFamily = "combustion"
	FamilyElectric   ConsumptionFamily = "electric"
	FamilyCalorie    ConsumptionFamily = "calorie"
)

// ConsumptionUnit represents a supported consumption unit.
type ConsumptionUnit string

const (
	UnitLitersPer100Km ConsumptionUnit = "l/100km"
	UnitKwhPer100Km    ConsumptionUnit = "kwh/100km"
	UnitKmPerLiter     ConsumptionUnit = "km/l"
	UnitKmPerKwh       ConsumptionUnit = "km/kwh"
	UnitKcalPerMin     ConsumptionUnit = "kcal/min"
)

// Family returns the unit family. Domain logic must branch on the family,
// not on the unit token.
func (u ConsumptionUnit) Family() ConsumptionFamily {
	switch u {
	case UnitLitersPer100Km, UnitKmPerLiter:
		return FamilyCombustion
	case UnitKwhPer100Km, UnitKmPerKwh:
		return FamilyElectric
	case UnitKcalPerMin:
		return FamilyCalorie
	}
	return ""
}

// IsValid returns true if the consumption unit is recognized.
func (u ConsumptionUnit) IsValid() bool {
	return u.Family() != ""
}

// IsInverse returns true for "distance per unit" forms (km/l, km/kwh).
func (u ConsumptionUnit) IsInverse() bool {
	return u == UnitKmPerLiter || u == UnitKmPerKwh
}

// CompatibleWith reports whether two units belong to the same family.
func (u ConsumptionUnit) CompatibleWith(other ConsumptionUnit) bool {
	return u.IsValid() && u.Family() == other.Family()
}

// String returns the canonical unit token.
func (u ConsumptionUnit) String() string {
	return string(u)
}

// consumptionAliases maps normalized spellings to canonical units. Keys are
// lowercased with whitespace removed and "_per_"/"_" collapsed to "/".
var consumptionAliases = map[string]ConsumptionUnit{
	"l/100km":      UnitLitersPer100Km,
	"kwh/100km":    UnitKwhPer100Km,
	"km/l":         UnitKmPerLiter,
	"km/kwh":       UnitKmPerKwh,
	"kcal/min":     UnitKcalPerMin,
	"liters/100km": UnitLitersPer100Km,
}

// ParseConsumptionUnit normalizes a loosely formatted unit string
// ("l_per_100km", "L/100 km", "KWh per 100km") to a canonical unit.
func ParseConsumptionUnit(s string) (ConsumptionUnit, bool) {
	n := strings.ToLower(strings.TrimSpace(s))
	n = strings.ReplaceAll(n, " ", "")
	n = strings.ReplaceAll(n, "_per_", "/")
	n = strings.ReplaceAll(n, "per", "/")
	n = strings.ReplaceAll(n, "_", "/")
	n = strings.ReplaceAll(n, "//", "/")
	u, ok := consumptionAliases[n]
	return u, ok
}

// Consumption is a canonical consumption value: liters or kWh per 100 km,
// or kcal per minute for human-powered mobility.
type Consumption struct {
	Value float64
	Unit  ConsumptionUnit
}

// CanonicalizeConsumption normalizes a raw (value, unit) pair to canonical
// form. Inverse forms are converted to their per-100km counterpart.
//
// It returns ok=false for non-finite or non-positive values and for
// unrecognized units. This is the single fallback gate used throughout
// the pipeline: absent canonical data disables optional enrichment, it
// never raises an error.
func CanonicalizeConsumption(value float64, unit string) (Consumption, bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return Consumption{}, false
	}
	u, ok := ParseConsumptionUnit(unit)
	if !ok {
		return Consumption{}, false
	}
	switch u {
	case UnitKmPerLiter:
		return Consumption{Value: 100 / value, Unit: UnitLitersPer100Km}, true
	case UnitKmPerKwh:
		return Consumption{Value: 100 / value, Unit: UnitKwhPer100Km}, true
	default:
		return Consumption{Value: value, Unit: u}, true
	}
}
