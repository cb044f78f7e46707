package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	placeDomain "github.com/wayfarer-maps/service-routing/internal/domain/place"
	"github.com/wayfarer-maps/service-routing/internal/domain/shared"
)

// CreatePlaceRequest is the request DTO for saving a place.
type CreatePlaceRequest struct {
	Name      string  `json:"name" binding:"required"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PlaceDTO is the API response representation of a saved place.
type PlaceDTO struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlaceService implements use cases for saved-place management.
type PlaceService struct {
	repo   placeDomain.PlaceRepository
	logger *zap.Logger
}

// NewPlaceService creates a new PlaceService.
func NewPlaceService(repo placeDomain.PlaceRepository, logger *zap.Logger) *PlaceService {
	return &PlaceService{repo: repo, logger: logger}
}

// CreatePlace saves a new place for the owner. Saving a second place
// under the same name is a conflict.
func (s *PlaceService) CreatePlace(ctx context.Context, ownerID uuid.UUID, req CreatePlaceRequest) (*PlaceDTO, error) {
	existing, err := s.repo.FindByOwnerAndName(ctx, ownerID, req.Name)
	if err != nil && !shared.IsKind(err, shared.KindNotFound) {
		return nil, fmt.Errorf("failed to check for duplicate place: %w", err)
	}
	if existing != nil {
		return nil, shared.NewConflictError(fmt.Sprintf("place %q already exists", req.Name))
	}

	p, err := placeDomain.NewPlace(ownerID, req.Name, req.Address, req.Latitude, req.Longitude)
	if err != nil {
		return nil, shared.NewValidationError(err.Error())
	}

	if err := s.repo.Save(ctx, p); err != nil {
		s.logger.Error("failed to save place", zap.Error(err))
		return nil, fmt.Errorf("failed to save place: %w", err)
	}

	s.logger.Info("place saved",
		zap.String("place_id", p.ID().String()),
		zap.String("owner_id", ownerID.String()),
	)
	result := toPlaceDTO(p)
	return &result, nil
}

// GetMyPlaces returns all places saved by the owner.
func (s *PlaceService) GetMyPlaces(ctx context.Context, ownerID uuid.UUID) ([]PlaceDTO, error) {
	places, err := s.repo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get places: %w", err)
	}
	dtos := make([]PlaceDTO, len(places))
	for i, p := range places {
		dtos[i] = toPlaceDTO(p)
	}
	return dtos, nil
}

// GetPlace returns a single saved place by ID, verifying ownership.
func (s *PlaceService) GetPlace(ctx context.Context, ownerID, placeID uuid.UUID) (*PlaceDTO, error) {
	p, err := s.repo.FindByID(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedBy(ownerID) {
		return nil, shared.NewForbiddenError("you do not own this place")
	}
	result := toPlaceDTO(p)
	return &result, nil
}

// DeletePlace removes a saved place, verifying ownership.
func (s *PlaceService) DeletePlace(ctx context.Context, ownerID, placeID uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, placeID)
	if err != nil {
		return err
	}
	if !p.IsOwnedBy(ownerID) {
		return shared.NewForbiddenError("you do not own this place")
	}
	if err := s.repo.Delete(ctx, placeID); err != nil {
		s.logger.Error("failed to delete place", zap.Error(err))
		return fmt.Errorf("failed to delete place: %w", err)
	}
	return nil
}

func toPlaceDTO(p *placeDomain.Place) PlaceDTO {
	return PlaceDTO{
		ID:        p.ID(),
		OwnerID:   p.OwnerID(),
		Name:      p.Name(),
		Address:   p.Address(),
		Latitude:  p.Latitude(),
		Longitude: p.Longitude(),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
}
