package application

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wayfarer-maps/service-routing/internal/domain/route"
	"github.com/wayfarer-maps/service-routing/internal/domain/shared"
	"github.com/wayfarer-maps/service-routing/internal/domain/vehicle"
	"github.com/wayfarer-maps/service-routing/internal/platform/events"
	"github.com/wayfarer-maps/service-routing/internal/provider"
)

// --- Stubs ---

type stubDirections struct {
	raw   *provider.RawRoute
	err   error
	calls int
}

func (s *stubDirections) GetRoute(ctx context.Context, origin, destination, mobilityType, routeType string) (*provider.RawRoute, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.raw, nil
}

type stubPrices struct {
	snapshot *route.PriceSnapshot
	err      error
}

func (s *stubPrices) LatestPrices(ctx context.Context) (*route.PriceSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot, nil
}

type stubSession struct {
	userID uuid.UUID
	active bool
}

func (s *stubSession) ActiveUserID(ctx context.Context) (uuid.UUID, bool) {
	return s.userID, s.active
}

type stubPrefsRepo struct {
	prefs route.UnitPreferences
	err   error
	saved *route.UnitPreferences
}

func (s *stubPrefsRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (route.UnitPreferences, error) {
	if s.err != nil {
		return route.UnitPreferences{}, s.err
	}
	return s.prefs, nil
}

func (s *stubPrefsRepo) Save(ctx context.Context, userID uuid.UUID, prefs route.UnitPreferences) error {
	s.saved = &prefs
	return nil
}

type stubRouteRepo struct {
	saved   []*route.SavedRoute
	saveErr error
	byID    map[uuid.UUID]*route.SavedRoute
}

func (s *stubRouteRepo) FindByID(ctx context.Context, id uuid.UUID) (*route.SavedRoute, error) {
	if r, ok := s.byID[id]; ok {
		return r, nil
	}
	return nil, shared.NewNotFoundError("Route", id.String())
}

func (s *stubRouteRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*route.SavedRoute, error) {
	return s.saved, nil
}

func (s *stubRouteRepo) Save(ctx context.Context, r *route.SavedRoute) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, r)
	return nil
}

func (s *stubRouteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.byID, id)
	return nil
}

type stubVehicleRepo struct {
	byID map[uuid.UUID]*vehicle.Vehicle
}

func (s *stubVehicleRepo) FindByID(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
	if v, ok := s.byID[id]; ok {
		return v, nil
	}
	return nil, shared.NewNotFoundError("Vehicle", id.String())
}

func (s *stubVehicleRepo) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*vehicle.Vehicle, error) {
	return nil, nil
}

func (s *stubVehicleRepo) Save(ctx context.Context, v *vehicle.Vehicle) error   { return nil }
func (s *stubVehicleRepo) Update(ctx context.Context, v *vehicle.Vehicle) error { return nil }
func (s *stubVehicleRepo) Delete(ctx context.Context, id uuid.UUID) error       { return nil }

type stubPublisher struct {
	published []events.CloudEvent
	topics    []string
	err       error
}

func (s *stubPublisher) PublishEvent(ctx context.Context, topic string, event events.CloudEvent) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, event)
	s.topics = append(s.topics, topic)
	return nil
}

// --- Fixtures ---

func euroSnapshot() *route.PriceSnapshot {
	diesel, gasoline, kwh := 1.45, 1.62, 0.18
	return &route.PriceSnapshot{
		Currency:          "EUR",
		DieselPerLiter:    &diesel,
		GasolinePerLiter:  &gasoline,
		ElectricityPerKwh: &kwh,
	}
}

type serviceFixture struct {
	service    *RouteService
	directions *stubDirections
	prices     *stubPrices
	session    *stubSession
	prefsRepo  *stubPrefsRepo
	routeRepo  *stubRouteRepo
	vehicles   *stubVehicleRepo
	publisher  *stubPublisher
}

func newFixture() *serviceFixture {
	f := &serviceFixture{
		directions: &stubDirections{raw: &provider.RawRoute{
			DistanceMeters:  73219,
			DurationMinutes: 51,
			Steps:           []string{"head north"},
		}},
		prices:    &stubPrices{snapshot: euroSnapshot()},
		session:   &stubSession{},
		prefsRepo: &stubPrefsRepo{prefs: route.DefaultPreferences()},
		routeRepo: &stubRouteRepo{byID: map[uuid.UUID]*route.SavedRoute{}},
		vehicles:  &stubVehicleRepo{byID: map[uuid.UUID]*vehicle.Vehicle{}},
		publisher: &stubPublisher{},
	}
	f.service = NewRouteService(
		f.directions, f.prices, f.session, f.prefsRepo,
		f.routeRepo, f.vehicles, f.publisher, zap.NewNop(),
	)
	return f
}

func addVehicle(t *testing.T, f *serviceFixture, ownerID uuid.UUID, fuel vehicle.FuelType, amount float64, unit string) uuid.UUID {
	t.Helper()
	v, err := vehicle.NewVehicle(ownerID, "test vehicle", "car", fuel,
		vehicle.ConsumptionSpec{Amount: amount, Unit: unit})
	require.NoError(t, err)
	f.vehicles.byID[v.ID()] = v
	return v.ID()
}

func carRequest() RouteRequest {
	return RouteRequest{
		Origin:       "40.4168,-3.7038",
		Destination:  "41.3874,2.1686",
		MobilityType: "car",
		RouteType:    "fastest",
	}
}

// --- Tests ---

func TestRequestRouteCombustionWithProviderConsumption(t *testing.T) {
	f := newFixture()
	f.directions.raw.ConsumptionValue = 5
	f.directions.raw.ConsumptionUnit = "l/100km"
	userID := uuid.New()

	resp, err := f.service.RequestRoute(context.Background(), userID, carRequest())
	require.NoError(t, err)

	// Distance is presented in the preferred unit (km by default).
	assert.InDelta(t, 73.219, resp.Route.Distance, 1e-9)
	assert.Equal(t, "km", resp.Route.DistanceUnit)

	// (73.219 / 100) * 5 * 1.62 = 5.93
	assert.InDelta(t, 5.93, resp.Route.Cost, 1e-9)
	assert.Equal(t, "EUR", resp.Route.Currency)

	require.NotNil(t, resp.Route.ConsumptionPer100Km)
	assert.InDelta(t, 5, *resp.Route.ConsumptionPer100Km, 1e-9)

	// The base route stays canonical meters.
	assert.InDelta(t, 73219, resp.BaseRoute.Distance, 1e-9)
	assert.Equal(t, "m", resp.BaseRoute.DistanceUnit)
	require.NotNil(t, resp.PriceSnapshot)
}

func TestRequestRouteElectricVehicleOverride(t *testing.T) {
	f := newFixture()
	// Provider reports combustion data, but the chosen vehicle overrides it.
	f.directions.raw.ConsumptionValue = 5
	f.directions.raw.ConsumptionUnit = "l/100km"
	userID := uuid.New()
	vehicleID := addVehicle(t, f, userID, vehicle.FuelElectric, 18, "kwh/100km")

	req := carRequest()
	req.MobilityType = "electricCar"
	req.VehicleID = &vehicleID

	resp, err := f.service.RequestRoute(context.Background(), userID, req)
	require.NoError(t, err)

	require.NotNil(t, resp.Route.ConsumptionPer100Km)
	assert.InDelta(t, 18, *resp.Route.ConsumptionPer100Km, 1e-9)
	require.NotNil(t, resp.Route.ConsumptionUnit)
	assert.Equal(t, "kwh/100km", *resp.Route.ConsumptionUnit)

	// (73.219 / 100) * 18 * 0.18 = 2.37
	assert.InDelta(t, 2.37, resp.Route.Cost, 1e-9)
	assert.Equal(t, "EUR", resp.Route.Currency)
}

func TestRequestRouteNoConsumptionNoCost(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	resp, err := f.service.RequestRoute(context.Background(), userID, carRequest())
	require.NoError(t, err)

	assert.Nil(t, resp.Route.ConsumptionPer100Km)
	assert.InDelta(t, 0, resp.Route.Cost, 1e-9)
}

func TestRequestRouteCaloricCost(t *testing.T) {
	f := newFixture()
	f.directions.raw.ConsumptionValue = 4.2
	f.directions.raw.ConsumptionUnit = "kcal/min"
	// No snapshot needed for caloric cost.
	f.prices.snapshot = nil
	f.prices.err = errors.New("feeds down")
	userID := uuid.New()

	req := carRequest()
	req.MobilityType = "bike"

	resp, err := f.service.RequestRoute(context.Background(), userID, req)
	require.NoError(t, err)

	// 4.2 kcal/min * 51 min = 214.2 kcal.
	assert.InDelta(t, 214.2, resp.Route.Cost, 1e-9)
	assert.Equal(t, "kcal", resp.Route.Currency)
	assert.Nil(t, resp.PriceSnapshot)
}

func TestRequestRouteDieselPrefersDieselPrice(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	vehicleID := addVehicle(t, f, userID, vehicle.FuelDiesel, 6, "l/100km")

	req := carRequest()
	req.VehicleID = &vehicleID

	resp, err := f.service.RequestRoute(context.Background(), userID, req)
	require.NoError(t, err)

	// (73.219 / 100) * 6 * 1.45 (diesel, not gasoline) = 6.37
	assert.InDelta(t, 6.37, resp.Route.Cost, 1e-9)
}

func TestRequestRouteDieselFallsBackToGasoline(t *testing.T) {
	f := newFixture()
	f.prices.snapshot.DieselPerLiter = nil
	userID := uuid.New()
	vehicleID := addVehicle(t, f, userID, vehicle.FuelDiesel, 6, "l/100km")

	req := carRequest()
	req.VehicleID = &vehicleID

	resp, err := f.service.RequestRoute(context.Background(), userID, req)
	require.NoError(t, err)

	// (73.219 / 100) * 6 * 1.62 = 7.12
	assert.InDelta(t, 7.12, resp.Route.Cost, 1e-9)
}

func TestRequestRouteLiterConsumptionOnElectricVehiclePricesAsGasoline(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	// A declared-electric vehicle may still carry liter-based consumption.
	// Liters are priced against the gasoline price, never EUR/kWh.
	vehicleID := addVehicle(t, f, userID, vehicle.FuelElectric, 5, "l/100km")

	req := carRequest()
	req.VehicleID = &vehicleID

	resp, err := f.service.RequestRoute(context.Background(), userID, req)
	require.NoError(t, err)

	// (73.219 / 100) * 5 * 1.62 = 5.93, not 0.66 at the electricity price.
	assert.InDelta(t, 5.93, resp.Route.Cost, 1e-9)
	assert.Equal(t, "EUR", resp.Route.Currency)
}

func TestRequestRouteInvalidVehicleConsumptionFailsFast(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	vehicleID := addVehicle(t, f, userID, vehicle.FuelGasoline, 6, "mpg")

	req := carRequest()
	req.VehicleID = &vehicleID

	_, err := f.service.RequestRoute(context.Background(), userID, req)
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, shared.KindValidation))
}

func TestRequestRouteProviderConsumptionFailsSilently(t *testing.T) {
	f := newFixture()
	f.directions.raw.ConsumptionValue = 5
	f.directions.raw.ConsumptionUnit = "mpg" // unknown unit from the provider
	userID := uuid.New()

	resp, err := f.service.RequestRoute(context.Background(), userID, carRequest())
	require.NoError(t, err)
	assert.Nil(t, resp.Route.ConsumptionPer100Km)
	assert.InDelta(t, 0, resp.Route.Cost, 1e-9)
}

func TestRequestRouteValidatesCoordinatesBeforeProvider(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	for _, origin := range []string{"", "40.4", "40.4;-3.7", "91.0,-3.7", "abc,-3.7", "NaN,-3.7"} {
		req := carRequest()
		req.Origin = origin

		_, err := f.service.RequestRoute(context.Background(), userID, req)
		require.Error(t, err, "origin %q", origin)
		assert.True(t, shared.IsKind(err, shared.KindValidation), "origin %q", origin)
	}

	// The provider was never consulted for an invalid request.
	assert.Equal(t, 0, f.directions.calls)
}

func TestRequestRouteSessionFallback(t *testing.T) {
	f := newFixture()

	// No explicit user and no session: unauthorized.
	_, err := f.service.RequestRoute(context.Background(), uuid.Nil, carRequest())
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, shared.KindUnauthorized))

	// An active session fills the gap.
	f.session.userID = uuid.New()
	f.session.active = true
	_, err = f.service.RequestRoute(context.Background(), uuid.Nil, carRequest())
	assert.NoError(t, err)
}

func TestRequestRoutePreferenceFailureFallsBackToDefaults(t *testing.T) {
	f := newFixture()
	f.prefsRepo.err = errors.New("store down")
	userID := uuid.New()

	resp, err := f.service.RequestRoute(context.Background(), userID, carRequest())
	require.NoError(t, err)
	assert.Equal(t, route.DefaultPreferences(), resp.Preferences)
}

func TestRequestRoutePriceOutageDisablesCostOnly(t *testing.T) {
	f := newFixture()
	f.prices.snapshot = nil
	f.prices.err = errors.New("feeds down")
	f.directions.raw.ConsumptionValue = 5
	f.directions.raw.ConsumptionUnit = "l/100km"
	userID := uuid.New()

	resp, err := f.service.RequestRoute(context.Background(), userID, carRequest())
	require.NoError(t, err)

	assert.InDelta(t, 0, resp.Route.Cost, 1e-9)
	assert.Nil(t, resp.PriceSnapshot)
	// Everything else survives.
	require.NotNil(t, resp.Route.ConsumptionPer100Km)
	assert.InDelta(t, 5, *resp.Route.ConsumptionPer100Km, 1e-9)
}

func TestRequestRouteMilePreference(t *testing.T) {
	f := newFixture()
	f.prefsRepo.prefs = route.UnitPreferences{
		DistanceUnit:   route.UnitMile,
		CombustionUnit: route.UnitKmPerLiter,
		ElectricUnit:   route.UnitKwhPer100Km,
	}
	f.directions.raw.ConsumptionValue = 5
	f.directions.raw.ConsumptionUnit = "l/100km"
	userID := uuid.New()

	resp, err := f.service.RequestRoute(context.Background(), userID, carRequest())
	require.NoError(t, err)

	assert.Equal(t, "mi", resp.Route.DistanceUnit)
	assert.InDelta(t, 73219.0/1609.344, resp.Route.Distance, 1e-9)

	// Consumption presented as km/l: 100/5 = 20.
	require.NotNil(t, resp.Route.ConsumptionUnit)
	assert.Equal(t, "km/l", *resp.Route.ConsumptionUnit)
	assert.InDelta(t, 20, *resp.Route.ConsumptionPer100Km, 1e-9)

	// The cost is unaffected by display units.
	assert.InDelta(t, 5.93, resp.Route.Cost, 1e-9)
}

func TestRequestRouteProviderErrorPropagates(t *testing.T) {
	f := newFixture()
	f.directions.err = shared.NewUnavailableError("provider down")

	_, err := f.service.RequestRoute(context.Background(), uuid.New(), carRequest())
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, shared.KindUnavailable))
}

func TestRequestAndSaveRoutePersistsAndPublishes(t *testing.T) {
	f := newFixture()
	f.directions.raw.ConsumptionValue = 5
	f.directions.raw.ConsumptionUnit = "l/100km"
	userID := uuid.New()

	dto, err := f.service.RequestAndSaveRoute(context.Background(), userID, "commute", carRequest())
	require.NoError(t, err)

	assert.Equal(t, "commute", dto.Name)
	assert.InDelta(t, 73219, dto.DistanceMeters, 1e-9)
	assert.InDelta(t, 5.93, dto.Cost, 1e-9)
	require.Len(t, f.routeRepo.saved, 1)

	require.Len(t, f.publisher.published, 1)
	assert.Equal(t, events.TopicRouteEvents, f.publisher.topics[0])
	assert.Equal(t, events.RouteSaved, f.publisher.published[0].Type)

	var evt events.RouteSavedEvent
	require.NoError(t, f.publisher.published[0].ParseData(&evt))
	assert.Equal(t, userID, evt.UserID)
	assert.Equal(t, "commute", evt.Name)
}

func TestRequestAndSaveRoutePersistenceFailurePropagates(t *testing.T) {
	f := newFixture()
	f.routeRepo.saveErr = errors.New("db down")

	_, err := f.service.RequestAndSaveRoute(context.Background(), uuid.New(), "commute", carRequest())
	require.Error(t, err)
	assert.Empty(t, f.publisher.published)
}

func TestRequestAndSaveRoutePublishFailureIsSwallowed(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("kafka down")

	dto, err := f.service.RequestAndSaveRoute(context.Background(), uuid.New(), "commute", carRequest())
	require.NoError(t, err)
	assert.NotNil(t, dto)
	require.Len(t, f.routeRepo.saved, 1)
}

func TestUpdatePreferencesValidation(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	valid := route.UnitPreferences{
		DistanceUnit:   route.UnitMile,
		CombustionUnit: route.UnitKmPerLiter,
		ElectricUnit:   route.UnitKmPerKwh,
	}
	require.NoError(t, f.service.UpdatePreferences(context.Background(), userID, valid))
	require.NotNil(t, f.prefsRepo.saved)
	assert.Equal(t, valid, *f.prefsRepo.saved)

	cases := []route.UnitPreferences{
		{DistanceUnit: "furlong", CombustionUnit: route.UnitLitersPer100Km, ElectricUnit: route.UnitKwhPer100Km},
		{DistanceUnit: route.UnitKilometer, CombustionUnit: route.UnitKwhPer100Km, ElectricUnit: route.UnitKwhPer100Km},
		{DistanceUnit: route.UnitKilometer, CombustionUnit: route.UnitLitersPer100Km, ElectricUnit: route.UnitLitersPer100Km},
	}
	for _, prefs := range cases {
		err := f.service.UpdatePreferences(context.Background(), userID, prefs)
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	}
}

func TestDeleteSavedRouteOwnership(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	stranger := uuid.New()

	saved, err := route.NewSavedRoute(owner, "commute", "40.4,-3.7", "41.3,2.1",
		"car", "fastest", 73219, 51, 5.93, "EUR")
	require.NoError(t, err)
	f.routeRepo.byID[saved.ID()] = saved

	err = f.service.DeleteSavedRoute(context.Background(), stranger, saved.ID())
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, shared.KindForbidden))

	require.NoError(t, f.service.DeleteSavedRoute(context.Background(), owner, saved.ID()))
}

func TestParseCoordinate(t *testing.T) {
	p, err := ParseCoordinate(" 40.4168 , -3.7038 ")
	require.NoError(t, err)
	assert.InDelta(t, 40.4168, p.Lat, 1e-9)
	assert.InDelta(t, -3.7038, p.Lng, 1e-9)

	for _, in := range []string{"", "40.4", "40.4,-3.7,12", "91,-3.7", "40.4,181", "x,y"} {
		_, err := ParseCoordinate(in)
		assert.Error(t, err, "input %q", in)
	}
}
