package route

import "time"

// PriceSnapshot is a timestamped bundle of fuel and electricity unit
// prices. A snapshot is immutable once created; the price gateway
// supersedes it with a fresh one after the TTL elapses, it is never
// mutated in place.
//
// Absent prices are nil, not zero: a feed that returned no valid reading
// for a fuel leaves that price unknown. ElectricityPerKwh is always
// EUR/kWh; feeds quoting EUR/MWh are divided by 1000 before storage.
type PriceSnapshot struct {
	Currency          string    `json:"currency"`
	DieselPerLiter    *float64  `json:"dieselPerLiter,omitempty"`
	GasolinePerLiter  *float64  `json:"gasolinePerLiter,omitempty"`
	ElectricityPerKwh *float64  `json:"electricityPerKwh,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
	Source            string    `json:"source,omitempty"`
}

// PriceFor returns the price per consumption unit for the given family.
// Combustion prefers gasoline and falls back to diesel; the calorie
// family has no price. ok=false when no usable price is present.
func (s *PriceSnapshot) PriceFor(family ConsumptionFamily) (float64, bool) {
	if s == nil {
		return 0, false
	}
	switch family {
	case FamilyElectric:
		return validPrice(s.ElectricityPerKwh)
	case FamilyCombustion:
		if p, ok := validPrice(s.GasolinePerLiter); ok {
			return p, ok
		}
		return validPrice(s.DieselPerLiter)
	}
	return 0, false
}

// PriceForFuel returns the price for a declared fuel type, preferring the
// declared fuel's own price and falling back to the other combustion
// price when it is missing.
func (s *PriceSnapshot) PriceForFuel(fuelType string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	switch fuelType {
	case "diesel":
		if p, ok := validPrice(s.DieselPerLiter); ok {
			return p, ok
		}
		return validPrice(s.GasolinePerLiter)
	case "electric":
		return validPrice(s.ElectricityPerKwh)
	default:
		if p, ok := validPrice(s.GasolinePerLiter); ok {
			return p, ok
		}
		return validPrice(s.DieselPerLiter)
	}
}

func validPrice(p *float64) (float64, bool) {
	if p == nil || *p < 0 {
		return 0, false
	}
	return *p, true
}
