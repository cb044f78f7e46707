package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wayfarer-maps/service-routing/internal/domain/shared"
	vehicleDomain "github.com/wayfarer-maps/service-routing/internal/domain/vehicle"
)

type memVehicleRepo struct {
	byID map[uuid.UUID]*vehicleDomain.Vehicle
}

func newMemVehicleRepo() *memVehicleRepo {
	return &memVehicleRepo{byID: map[uuid.UUID]*vehicleDomain.Vehicle{}}
}

func (s *memVehicleRepo) FindByID(ctx context.Context, id uuid.UUID) (*vehicleDomain.Vehicle, error) {
	if v, ok := s.byID[id]; ok {
		return v, nil
	}
	return nil, shared.NewNotFoundError("Vehicle", id.String())
}

func (s *memVehicleRepo) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*vehicleDomain.Vehicle, error) {
	var out []*vehicleDomain.Vehicle
	for _, v := range s.byID {
		if v.IsOwnedBy(ownerID) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *memVehicleRepo) Save(ctx context.Context, v *vehicleDomain.Vehicle) error {
	s.byID[v.ID()] = v
	return nil
}

func (s *memVehicleRepo) Update(ctx context.Context, v *vehicleDomain.Vehicle) error {
	s.byID[v.ID()] = v
	return nil
}

func (s *memVehicleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.byID, id)
	return nil
}

func TestCreateVehicle(t *testing.T) {
	svc := NewVehicleService(newMemVehicleRepo(), zap.NewNop())
	ownerID := uuid.New()

	dto, err := svc.CreateVehicle(context.Background(), ownerID, CreateVehicleRequest{
		Name:        "family car",
		VehicleType: "car",
		FuelType:    "diesel",
		Consumption: 5.5,
		Unit:        "l/100km",
	})
	require.NoError(t, err)
	assert.Equal(t, ownerID, dto.OwnerID)
	assert.Equal(t, "diesel", dto.FuelType)
	assert.InDelta(t, 5.5, dto.Consumption, 1e-9)
}

func TestCreateVehicleRejectsUnknownFuelType(t *testing.T) {
	svc := NewVehicleService(newMemVehicleRepo(), zap.NewNop())

	_, err := svc.CreateVehicle(context.Background(), uuid.New(), CreateVehicleRequest{
		Name:        "rocket",
		VehicleType: "car",
		FuelType:    "hydrogen",
	})
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, shared.KindValidation))
}

func TestUpdateVehicleOwnershipAndPartialUpdate(t *testing.T) {
	repo := newMemVehicleRepo()
	svc := NewVehicleService(repo, zap.NewNop())
	owner := uuid.New()

	created, err := svc.CreateVehicle(context.Background(), owner, CreateVehicleRequest{
		Name:        "city car",
		VehicleType: "car",
		FuelType:    "gasoline",
		Consumption: 6,
		Unit:        "l/100km",
	})
	require.NoError(t, err)

	_, err = svc.UpdateVehicle(context.Background(), uuid.New(), created.ID, UpdateVehicleRequest{Name: "stolen"})
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, shared.KindForbidden))

	newCons := 5.2
	updated, err := svc.UpdateVehicle(context.Background(), owner, created.ID, UpdateVehicleRequest{
		Consumption: &newCons,
		Unit:        "l/100km",
	})
	require.NoError(t, err)
	// Unset fields keep their values.
	assert.Equal(t, "city car", updated.Name)
	assert.Equal(t, "gasoline", updated.FuelType)
	assert.InDelta(t, 5.2, updated.Consumption, 1e-9)
}

func TestDeleteVehicleOwnership(t *testing.T) {
	repo := newMemVehicleRepo()
	svc := NewVehicleService(repo, zap.NewNop())
	owner := uuid.New()

	created, err := svc.CreateVehicle(context.Background(), owner, CreateVehicleRequest{
		Name:        "bike",
		VehicleType: "bike",
	})
	require.NoError(t, err)

	err = svc.DeleteVehicle(context.Background(), uuid.New(), created.ID)
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, shared.KindForbidden))

	require.NoError(t, svc.DeleteVehicle(context.Background(), owner, created.ID))
}
