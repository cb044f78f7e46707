package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wayfarer-maps/service-routing/internal/domain/shared"
	vehicleDomain "github.com/wayfarer-maps/service-routing/internal/domain/vehicle"
)

// CreateVehicleRequest is the request DTO for creating a vehicle profile.
type CreateVehicleRequest struct {
	Name        string  `json:"name" binding:"required"`
	VehicleType string  `json:"vehicle_type" binding:"required"`
	FuelType    string  `json:"fuel_type"`
	Consumption float64 `json:"consumption"`
	Unit        string  `json:"consumption_unit"`
}

// UpdateVehicleRequest is the request DTO for updating a vehicle profile.
type UpdateVehicleRequest struct {
	Name        string   `json:"name"`
	VehicleType string   `json:"vehicle_type"`
	FuelType    string   `json:"fuel_type"`
	Consumption *float64 `json:"consumption"`
	Unit        string   `json:"consumption_unit"`
}

// VehicleDTO is the API response representation of a vehicle profile.
type VehicleDTO struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	VehicleType string    `json:"vehicle_type"`
	FuelType    string    `json:"fuel_type,omitempty"`
	Consumption float64   `json:"consumption,omitempty"`
	Unit        string    `json:"consumption_unit,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// VehicleService implements use cases for vehicle profile management.
type VehicleService struct {
	repo   vehicleDomain.VehicleRepository
	logger *zap.Logger
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(repo vehicleDomain.VehicleRepository, logger *zap.Logger) *VehicleService {
	return &VehicleService{repo: repo, logger: logger}
}

// CreateVehicle creates a new vehicle profile for the owner.
func (s *VehicleService) CreateVehicle(ctx context.Context, ownerID uuid.UUID, req CreateVehicleRequest) (*VehicleDTO, error) {
	v, err := vehicleDomain.NewVehicle(
		ownerID,
		req.Name,
		req.VehicleType,
		vehicleDomain.FuelType(req.FuelType),
		vehicleDomain.ConsumptionSpec{Amount: req.Consumption, Unit: req.Unit},
	)
	if err != nil {
		return nil, shared.NewValidationError(err.Error())
	}

	if err := s.repo.Save(ctx, v); err != nil {
		s.logger.Error("failed to create vehicle", zap.Error(err))
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}

	s.logger.Info("vehicle profile created",
		zap.String("vehicle_id", v.ID().String()),
		zap.String("owner_id", ownerID.String()),
	)
	result := toVehicleDTO(v)
	return &result, nil
}

// GetMyVehicles returns all vehicle profiles for the owner.
func (s *VehicleService) GetMyVehicles(ctx context.Context, ownerID uuid.UUID) ([]VehicleDTO, error) {
	vehicles, err := s.repo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicles: %w", err)
	}
	dtos := make([]VehicleDTO, len(vehicles))
	for i, v := range vehicles {
		dtos[i] = toVehicleDTO(v)
	}
	return dtos, nil
}

// GetVehicle returns a single vehicle profile by ID, verifying ownership.
func (s *VehicleService) GetVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID) (*VehicleDTO, error) {
	v, err := s.repo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !v.IsOwnedBy(ownerID) {
		return nil, shared.NewForbiddenError("you do not own this vehicle")
	}
	result := toVehicleDTO(v)
	return &result, nil
}

// UpdateVehicle updates a vehicle profile, verifying ownership.
func (s *VehicleService) UpdateVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID, req UpdateVehicleRequest) (*VehicleDTO, error) {
	v, err := s.repo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !v.IsOwnedBy(ownerID) {
		return nil, shared.NewForbiddenError("you do not own this vehicle")
	}

	var spec *vehicleDomain.ConsumptionSpec
	if req.Consumption != nil {
		spec = &vehicleDomain.ConsumptionSpec{Amount: *req.Consumption, Unit: req.Unit}
	}
	if err := v.Update(req.Name, req.VehicleType, vehicleDomain.FuelType(req.FuelType), spec); err != nil {
		return nil, shared.NewValidationError(err.Error())
	}

	if err := s.repo.Update(ctx, v); err != nil {
		s.logger.Error("failed to update vehicle", zap.Error(err))
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}

	result := toVehicleDTO(v)
	return &result, nil
}

// DeleteVehicle removes a vehicle profile, verifying ownership.
func (s *VehicleService) DeleteVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID) error {
	v, err := s.repo.FindByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if !v.IsOwnedBy(ownerID) {
		return shared.NewForbiddenError("you do not own this vehicle")
	}
	if err := s.repo.Delete(ctx, vehicleID); err != nil {
		s.logger.Error("failed to delete vehicle", zap.Error(err))
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	return nil
}

func toVehicleDTO(v *vehicleDomain.Vehicle) VehicleDTO {
	return VehicleDTO{
		ID:          v.ID(),
		OwnerID:     v.OwnerID(),
		Name:        v.Name(),
		VehicleType: v.VehicleType(),
		FuelType:    string(v.FuelType()),
		Consumption: v.Consumption().Amount,
		Unit:        v.Consumption().Unit,
		CreatedAt:   v.CreatedAt(),
		UpdatedAt:   v.UpdatedAt(),
	}
}
