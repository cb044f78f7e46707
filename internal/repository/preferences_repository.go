package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	routeDomain "github.com/wayfarer-maps/service-routing/internal/domain/route"
)

// PreferencesModel is the GORM model for the unit_preferences table.
type PreferencesModel struct {
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	DistanceUnit   string    `gorm:"not null;size:5"`
	CombustionUnit string    `gorm:"not null;size:15"`
	ElectricUnit   string    `gorm:"not null;size:15"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PreferencesModel) TableName() string {
	return "unit_preferences"
}

// GormPreferencesRepository is the GORM-based implementation of
// PreferencesRepository.
type GormPreferencesRepository struct {
	db *gorm.DB
}

// NewGormPreferencesRepository creates a new GormPreferencesRepository.
func NewGormPreferencesRepository(db *gorm.DB) *GormPreferencesRepository {
	return &GormPreferencesRepository{db: db}
}

// FindByUserID retrieves the user's unit preferences. A user without a
// stored row gets the defaults, not an error.
func (r *GormPreferencesRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (routeDomain.UnitPreferences, error) {
	var model PreferencesModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return routeDomain.DefaultPreferences(), nil
		}
		return routeDomain.UnitPreferences{}, fmt.Errorf("failed to find preferences: %w", err)
	}
	return routeDomain.UnitPreferences{
		DistanceUnit:   routeDomain.DistanceUnit(model.DistanceUnit),
		CombustionUnit: routeDomain.ConsumptionUnit(model.CombustionUnit),
		ElectricUnit:   routeDomain.ConsumptionUnit(model.ElectricUnit),
	}, nil
}

// Save upserts the user's unit preferences.
func (r *GormPreferencesRepository) Save(ctx context.Context, userID uuid.UUID, prefs routeDomain.UnitPreferences) error {
	model := PreferencesModel{
		UserID:         userID,
		DistanceUnit:   prefs.DistanceUnit.String(),
		CombustionUnit: prefs.CombustionUnit.String(),
		ElectricUnit:   prefs.ElectricUnit.String(),
		UpdatedAt:      time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
