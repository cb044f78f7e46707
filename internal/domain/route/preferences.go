package route

import (
	"context"

	"github.com/google/uuid"
)

// UnitPreferences holds a user's display units. Combustion and electric
// consumption units are tracked separately; the facade picks one based
// on the requested mobility type.
type UnitPreferences struct {
	DistanceUnit   DistanceUnit    `json:"distance_unit"`
	CombustionUnit ConsumptionUnit `json:"combustion_unit"`
	ElectricUnit   ConsumptionUnit `json:"electric_unit"`
}

// DefaultPreferences returns the fallback units: km, l/100km, kwh/100km.
func DefaultPreferences() UnitPreferences {
	return UnitPreferences{
		DistanceUnit:   UnitKilometer,
		CombustionUnit: UnitLitersPer100Km,
		ElectricUnit:   UnitKwhPer100Km,
	}
}

// ConsumptionUnitFor resolves the consumption-unit preference for a
// mobility type: electric mobility uses the electric preference,
// everything else the combustion one.
func (p UnitPreferences) ConsumptionUnitFor(mobilityType string) ConsumptionUnit {
	if IsElectricMobility(mobilityType) {
		return p.ElectricUnit
	}
	return p.CombustionUnit
}

// electricMobilityTypes lists the mobility tags treated as electric for
// unit-preference resolution.
var electricMobilityTypes = map[string]struct{}{
	"electriccar":     {},
	"electricbike":    {},
	"electricscooter": {},
}

// IsElectricMobility reports whether the mobility tag names an electric
// mobility type.
func IsElectricMobility(mobilityType string) bool {
	_, ok := electricMobilityTypes[normalizeTag(mobilityType)]
	return ok
}

func normalizeTag(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		if r == ' ' || r == '-' || r == '_' {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

// PreferencesRepository is the persistence contract for unit preferences.
type PreferencesRepository interface {
	// FindByUserID retrieves the user's preferences, or defaults when the
	// user has never saved any.
	FindByUserID(ctx context.Context, userID uuid.UUID) (UnitPreferences, error)

	// Save upserts the user's preferences.
	Save(ctx context.Context, userID uuid.UUID, prefs UnitPreferences) error
}
