package application

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wayfarer-maps/service-routing/internal/domain/route"
	"github.com/wayfarer-maps/service-routing/internal/domain/shared"
	"github.com/wayfarer-maps/service-routing/internal/domain/vehicle"
	"github.com/wayfarer-maps/service-routing/internal/platform/events"
	"github.com/wayfarer-maps/service-routing/internal/provider"
)

// PriceSource supplies the latest price snapshot. The gateway in
// internal/prices is the production implementation.
type PriceSource interface {
	LatestPrices(ctx context.Context) (*route.PriceSnapshot, error)
}

// SessionProvider resolves the active user when the caller did not name
// one explicitly.
type SessionProvider interface {
	ActiveUserID(ctx context.Context) (uuid.UUID, bool)
}

// EventPublisher publishes domain events. Satisfied by the Kafka producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event events.CloudEvent) error
}

// RouteRequest holds the parameters for a route computation.
type RouteRequest struct {
	Origin       string     `json:"origin" binding:"required"`
	Destination  string     `json:"destination" binding:"required"`
	MobilityType string     `json:"mobility_type"`
	RouteType    string     `json:"route_type"`
	VehicleID    *uuid.UUID `json:"vehicle_id"`
}

// RouteDTO is the serialized representation of a route. The decorated
// route and the base route expose the identical field set.
type RouteDTO struct {
	Distance            float64        `json:"distance"`
	DistanceUnit        string         `json:"distance_unit"`
	Duration            float64        `json:"duration"`
	MobilityType        string         `json:"mobility_type"`
	RouteType           string         `json:"route_type"`
	Steps               []string       `json:"steps"`
	Cost                float64        `json:"cost"`
	Currency            string         `json:"currency"`
	ConsumptionPer100Km *float64       `json:"consumption_per_100km,omitempty"`
	ConsumptionUnit     *string        `json:"consumption_unit,omitempty"`
	Polyline            []route.LatLng `json:"polyline,omitempty"`
}

// RouteResponse is the result of a route computation: the decorated
// route, the undecorated base route for comparison, the preferences
// used, and the price snapshot that informed the cost estimate.
type RouteResponse struct {
	Preferences   route.UnitPreferences `json:"preferences"`
	Route         RouteDTO              `json:"route"`
	BaseRoute     RouteDTO              `json:"base_route"`
	PriceSnapshot *route.PriceSnapshot  `json:"price_snapshot,omitempty"`
}

// SavedRouteDTO is the response representation of a persisted route.
type SavedRouteDTO struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Origin          string    `json:"origin"`
	Destination     string    `json:"destination"`
	MobilityType    string    `json:"mobility_type"`
	RouteType       string    `json:"route_type"`
	DistanceMeters  float64   `json:"distance_meters"`
	DurationMinutes float64   `json:"duration_minutes"`
	Cost            float64   `json:"cost"`
	Currency        string    `json:"currency"`
	CreatedAt       time.Time `json:"created_at"`
}

// RouteService orchestrates provider lookup, price snapshot loading,
// vehicle-driven overrides and decoration into one coherent response.
type RouteService struct {
	directions provider.DirectionsProvider
	prices     PriceSource
	session    SessionProvider
	prefsRepo  route.PreferencesRepository
	routeRepo  route.SavedRouteRepository
	vehicles   vehicle.VehicleRepository
	producer   EventPublisher
	logger     *zap.Logger
}

// NewRouteService creates a RouteService.
func NewRouteService(
	directions provider.DirectionsProvider,
	prices PriceSource,
	session SessionProvider,
	prefsRepo route.PreferencesRepository,
	routeRepo route.SavedRouteRepository,
	vehicles vehicle.VehicleRepository,
	producer EventPublisher,
	logger *zap.Logger,
) *RouteService {
	return &RouteService{
		directions: directions,
		prices:     prices,
		session:    session,
		prefsRepo:  prefsRepo,
		routeRepo:  routeRepo,
		vehicles:   vehicles,
		producer:   producer,
		logger:     logger,
	}
}

// RequestRoute computes a decorated route for the user. Pass uuid.Nil to
// fall back to the active session user.
func (s *RouteService) RequestRoute(ctx context.Context, userID uuid.UUID, req RouteRequest) (*RouteResponse, error) {
	userID, err := s.resolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Coordinate validation happens before any network call.
	if _, err := ParseCoordinate(req.Origin); err != nil {
		return nil, err
	}
	if _, err := ParseCoordinate(req.Destination); err != nil {
		return nil, err
	}

	prefs := s.loadPreferences(ctx, userID)
	snapshot := s.loadSnapshot(ctx)

	var veh *vehicle.Vehicle
	if req.VehicleID != nil {
		veh, err = s.vehicles.FindByID(ctx, *req.VehicleID)
		if err != nil {
			return nil, err
		}
	}
	fuelType, estimate := vehicleOverrides(veh)

	raw, err := s.directions.GetRoute(ctx, req.Origin, req.Destination, req.MobilityType, req.RouteType)
	if err != nil {
		return nil, err
	}

	cons, err := resolveConsumption(raw, estimate)
	if err != nil {
		return nil, err
	}

	// The facade computes its own cost estimate on the enriched route's
	// fields; on success the enriched route carries it from the start,
	// which makes the cost decorator below short-circuit. The decorator
	// stays in the chain as an independent estimation path for routes
	// that arrive without a pre-computed cost.
	cost, currency := raw.Cost, raw.CostCurrency
	if est, cur, ok := estimateCost(raw.DistanceMeters, raw.DurationMinutes, cons, fuelType, snapshot); ok {
		cost, currency = est, cur
	}

	enriched := route.NewRoute(
		raw.DistanceMeters,
		raw.DurationMinutes,
		req.MobilityType,
		req.RouteType,
		raw.Steps,
		cons,
		cost,
		currency,
		route.SanitizeRawPolyline(raw.Polyline),
	)

	decorated := route.WithCostEstimate(
		route.WithConsumptionUnit(
			route.WithDistanceUnit(enriched, prefs.DistanceUnit),
			prefs.ConsumptionUnitFor(req.MobilityType),
		),
		snapshot,
	)

	return &RouteResponse{
		Preferences:   prefs,
		Route:         toRouteDTO(decorated),
		BaseRoute:     toRouteDTO(enriched),
		PriceSnapshot: snapshot,
	}, nil
}

// RequestAndSaveRoute computes a route and persists it under the given
// name. Persistence failures propagate unchanged.
func (s *RouteService) RequestAndSaveRoute(ctx context.Context, userID uuid.UUID, name string, req RouteRequest) (*SavedRouteDTO, error) {
	resp, err := s.RequestRoute(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	if userID == uuid.Nil {
		userID, _ = s.session.ActiveUserID(ctx)
	}

	saved, err := route.NewSavedRoute(
		userID,
		name,
		req.Origin,
		req.Destination,
		req.MobilityType,
		req.RouteType,
		resp.BaseRoute.Distance,
		resp.BaseRoute.Duration,
		resp.Route.Cost,
		resp.Route.Currency,
	)
	if err != nil {
		return nil, err
	}

	if err := s.routeRepo.Save(ctx, saved); err != nil {
		return nil, fmt.Errorf("failed to save route: %w", err)
	}

	s.publishRouteSaved(ctx, saved)

	dto := toSavedRouteDTO(saved)
	return &dto, nil
}

// GetSavedRoutes returns all routes the user has saved.
func (s *RouteService) GetSavedRoutes(ctx context.Context, userID uuid.UUID) ([]SavedRouteDTO, error) {
	routes, err := s.routeRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved routes: %w", err)
	}
	dtos := make([]SavedRouteDTO, len(routes))
	for i, r := range routes {
		dtos[i] = toSavedRouteDTO(r)
	}
	return dtos, nil
}

// DeleteSavedRoute removes a saved route, verifying ownership.
func (s *RouteService) DeleteSavedRoute(ctx context.Context, userID, routeID uuid.UUID) error {
	saved, err := s.routeRepo.FindByID(ctx, routeID)
	if err != nil {
		return err
	}
	if !saved.IsOwnedBy(userID) {
		return shared.NewForbiddenError("route does not belong to this user")
	}
	return s.routeRepo.Delete(ctx, routeID)
}

// GetPreferences returns the user's unit preferences.
func (s *RouteService) GetPreferences(ctx context.Context, userID uuid.UUID) (route.UnitPreferences, error) {
	return s.prefsRepo.FindByUserID(ctx, userID)
}

// UpdatePreferences validates and stores the user's unit preferences.
func (s *RouteService) UpdatePreferences(ctx context.Context, userID uuid.UUID, prefs route.UnitPreferences) error {
	if !prefs.DistanceUnit.IsValid() {
		return shared.NewValidationErrorf("invalid distance unit: %s", prefs.DistanceUnit)
	}
	if prefs.CombustionUnit.Family() != route.FamilyCombustion {
		return shared.NewValidationErrorf("invalid combustion unit: %s", prefs.CombustionUnit)
	}
	if prefs.ElectricUnit.Family() != route.FamilyElectric {
		return shared.NewValidationErrorf("invalid electric unit: %s", prefs.ElectricUnit)
	}
	return s.prefsRepo.Save(ctx, userID, prefs)
}

// --- Helpers ---

func (s *RouteService) resolveUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	if userID != uuid.Nil {
		return userID, nil
	}
	if id, ok := s.session.ActiveUserID(ctx); ok {
		return id, nil
	}
	return uuid.Nil, shared.NewUnauthorizedError("no active user session")
}

// loadPreferences is best-effort: a failing preferences store falls back
// to default units rather than failing the route request.
func (s *RouteService) loadPreferences(ctx context.Context, userID uuid.UUID) route.UnitPreferences {
	prefs, err := s.prefsRepo.FindByUserID(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load unit preferences, using defaults",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return route.DefaultPreferences()
	}
	return prefs
}

// loadSnapshot is best-effort: a price feed outage degrades to a nil
// snapshot and is never surfaced to the caller.
func (s *RouteService) loadSnapshot(ctx context.Context) *route.PriceSnapshot {
	snap, err := s.prices.LatestPrices(ctx)
	if err != nil {
		s.logger.Warn("price snapshot unavailable, cost estimation disabled", zap.Error(err))
		return nil
	}
	return snap
}

// vehicleOverrides derives the request overrides from a vehicle profile:
// the fuel type only when it is one of the known energy sources, and the
// declared consumption only when the amount is finite and positive.
func vehicleOverrides(veh *vehicle.Vehicle) (vehicle.FuelType, *vehicle.ConsumptionSpec) {
	if veh == nil {
		return vehicle.FuelNone, nil
	}
	fuelType := vehicle.FuelNone
	if veh.FuelType().IsKnown() {
		fuelType = veh.FuelType()
	}
	c := veh.Consumption()
	if isFinite(c.Amount) && c.Amount > 0 {
		return fuelType, &c
	}
	return fuelType, nil
}

// resolveConsumption picks the canonical consumption for the route. An
// explicit vehicle-derived estimate wins over whatever the provider
// reported, and is the one path where invalid input fails fast: the
// caller supplied it and could not have discovered the problem otherwise.
func resolveConsumption(raw *provider.RawRoute, estimate *vehicle.ConsumptionSpec) (*route.Consumption, error) {
	if estimate != nil {
		c, ok := route.CanonicalizeConsumption(estimate.Amount, estimate.Unit)
		if !ok {
			return nil, shared.NewValidationErrorf("invalid vehicle consumption: %g %s", estimate.Amount, estimate.Unit)
		}
		return &c, nil
	}
	if c, ok := route.CanonicalizeConsumption(raw.ConsumptionValue, raw.ConsumptionUnit); ok {
		return &c, nil
	}
	return nil, nil
}

// estimateCost computes the facade-level cost estimate. Calorie
// consumption is priced as kcal burned over the route duration and needs
// no snapshot; fuel and electricity require a usable snapshot price.
// Unlike the cost decorator, a declared diesel vehicle prefers the
// diesel price, falling back to gasoline when it is missing.
func estimateCost(distanceMeters, durationMinutes float64, cons *route.Consumption, fuelType vehicle.FuelType, snapshot *route.PriceSnapshot) (float64, string, bool) {
	if cons == nil || cons.Value <= 0 {
		return 0, "", false
	}

	if cons.Unit.Family() == route.FamilyCalorie {
		if !isFinite(durationMinutes) || durationMinutes <= 0 {
			return 0, "", false
		}
		return round2(cons.Value * durationMinutes), "kcal", true
	}

	if snapshot == nil {
		return 0, "", false
	}
	km := route.DistanceToKm(distanceMeters, route.UnitMeter)
	if !isFinite(km) || km <= 0 {
		return 0, "", false
	}

	var price float64
	var ok bool
	switch cons.Unit.Family() {
	case route.FamilyElectric:
		price, ok = snapshot.PriceForFuel(string(vehicle.FuelElectric))
	case route.FamilyCombustion:
		// Liter-based consumption is always priced against combustion
		// prices, even when the vehicle declares another fuel: only a
		// declared diesel keeps its own preference, everything else
		// prices as gasoline.
		if fuelType != vehicle.FuelDiesel {
			fuelType = vehicle.FuelGasoline
		}
		price, ok = snapshot.PriceForFuel(string(fuelType))
	}
	if !ok {
		return 0, "", false
	}

	cost := (km / 100) * cons.Value * price
	if cost < 0 {
		cost = 0
	}
	return round2(cost), snapshot.Currency, true
}

func (s *RouteService) publishRouteSaved(ctx context.Context, saved *route.SavedRoute) {
	evt := events.RouteSavedEvent{
		RouteID:      saved.ID(),
		UserID:       saved.UserID(),
		Name:         saved.Name(),
		MobilityType: saved.MobilityType(),
		Cost:         saved.Cost(),
		Currency:     saved.CostCurrency(),
		OccurredAt:   time.Now().UTC(),
	}
	ce, err := events.NewCloudEvent("service-routing", events.RouteSaved, evt)
	if err != nil {
		s.logger.Error("failed to create cloud event", zap.Error(err))
		return
	}
	if err := s.producer.PublishEvent(ctx, events.TopicRouteEvents, ce); err != nil {
		s.logger.Error("failed to publish route saved event",
			zap.String("route_id", saved.ID().String()),
			zap.Error(err),
		)
	}
}

// ParseCoordinate parses a "lat,lng" request string, rejecting anything
// that is not two comma-separated finite numbers within coordinate range.
func ParseCoordinate(s string) (route.LatLng, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return route.LatLng{}, shared.NewValidationErrorf("coordinate must be \"lat,lng\": %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return route.LatLng{}, shared.NewValidationErrorf("invalid latitude: %q", parts[0])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return route.LatLng{}, shared.NewValidationErrorf("invalid longitude: %q", parts[1])
	}
	p := route.LatLng{Lat: lat, Lng: lng}
	if !p.IsValid() {
		return route.LatLng{}, shared.NewValidationErrorf("coordinate out of range: %q", s)
	}
	return p, nil
}

func toRouteDTO(d route.Data) RouteDTO {
	dto := RouteDTO{
		Distance:     d.Distance(),
		DistanceUnit: d.DistanceUnit().String(),
		Duration:     d.Duration(),
		MobilityType: d.MobilityType(),
		RouteType:    d.RouteType(),
		Steps:        d.Steps(),
		Cost:         d.Cost(),
		Currency:     d.CostCurrency(),
		Polyline:     d.Polyline(),
	}
	if cons, ok := d.Consumption(); ok {
		value := cons.Value
		unit := cons.Unit.String()
		dto.ConsumptionPer100Km = &value
		dto.ConsumptionUnit = &unit
	}
	return dto
}

func toSavedRouteDTO(r *route.SavedRoute) SavedRouteDTO {
	return SavedRouteDTO{
		ID:              r.ID(),
		Name:            r.Name(),
		Origin:          r.Origin(),
		Destination:     r.Destination(),
		MobilityType:    r.MobilityType(),
		RouteType:       r.RouteType(),
		DistanceMeters:  r.DistanceMeters(),
		DurationMinutes: r.DurationMinutes(),
		Cost:            r.Cost(),
		Currency:        r.CostCurrency(),
		CreatedAt:       r.CreatedAt(),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
