package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/leasing"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/rentledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUnitRepository implements UnitRepository using GORM
type GormUnitRepository struct {
	db *gorm.DB
}

// NewGormUnitRepository creates a new GormUnitRepository
func NewGormUnitRepository(db *gorm.DB) *GormUnitRepository {
	return &GormUnitRepository{db: db}
}

// FindByID finds a unit by ID within the org
func (r *GormUnitRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*leasing.Unit, error) {
	var model models.UnitModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProperty finds all units of a property
func (r *GormUnitRepository) FindByProperty(ctx context.Context, orgID, propertyID uuid.UUID) ([]leasing.Unit, error) {
	var unitModels []models.UnitModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND property_id = ?", orgID, propertyID).
		Order("number ASC").
		Find(&unitModels).Error; err != nil {
		return nil, err
	}
	units := make([]leasing.Unit, len(unitModels))
	for i, model := range unitModels {
		units[i] = *model.ToDomain()
	}
	return units, nil
}

// CountOccupiedInPeriod counts units in the property with at least one day
// of tenancy inside the period. Inactive tenants never count; terminated
// ones do for the part of the period their lease still covered.
func (r *GormUnitRepository) CountOccupiedInPeriod(ctx context.Context, orgID, propertyID uuid.UUID, period valueobject.Period) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TenantModel{}).
		Where("org_id = ? AND property_id = ?", orgID, propertyID).
		Where("status IN ?", []leasing.TenantStatus{leasing.TenantStatusActive, leasing.TenantStatusTerminated}).
		Where("lease_start < ?", period.End()).
		Where("lease_end IS NULL OR lease_end > ?", period.Start()).
		Distinct("unit_id").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a unit
func (r *GormUnitRepository) Save(ctx context.Context, unit *leasing.Unit) error {
	model := models.UnitModelFromDomain(unit)
	return r.db.WithContext(ctx).Save(model).Error
}
