package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMeterReadingRepository implements MeterReadingRepository using GORM
type GormMeterReadingRepository struct {
	db *gorm.DB
}

// NewGormMeterReadingRepository creates a new GormMeterReadingRepository
func NewGormMeterReadingRepository(db *gorm.DB) *GormMeterReadingRepository {
	return &GormMeterReadingRepository{db: db}
}

// FindLatestAtOrBefore returns the most recent reading for the config and
// unit with a reading date at or before the boundary, or shared.ErrNotFound.
func (r *GormMeterReadingRepository) FindLatestAtOrBefore(ctx context.Context, orgID, configID, unitID uuid.UUID, boundary time.Time) (*billing.MeterReading, error) {
	var model models.MeterReadingModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND utility_config_id = ? AND unit_id = ?", orgID, configID, unitID).
		Where("reading_date <= ?", boundary).
		Order("reading_date DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a meter reading
func (r *GormMeterReadingRepository) Save(ctx context.Context, reading *billing.MeterReading) error {
	model := models.MeterReadingModelFromDomain(reading)
	return r.db.WithContext(ctx).Save(model).Error
}
