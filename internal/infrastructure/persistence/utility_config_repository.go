package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/rentledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUtilityConfigRepository implements UtilityConfigRepository using GORM
type GormUtilityConfigRepository struct {
	db *gorm.DB
}

// NewGormUtilityConfigRepository creates a new GormUtilityConfigRepository
func NewGormUtilityConfigRepository(db *gorm.DB) *GormUtilityConfigRepository {
	return &GormUtilityConfigRepository{db: db}
}

// FindEffectiveForUnit returns configs whose effective range intersects the
// period and whose scope covers the unit: unit-bound configs plus
// property-wide configs of the unit's property. Precedence between the two
// is resolved by the charge calculator, not here.
func (r *GormUtilityConfigRepository) FindEffectiveForUnit(ctx context.Context, orgID, propertyID, unitID uuid.UUID, period valueobject.Period) ([]billing.UtilityConfig, error) {
	var configModels []models.UtilityConfigModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND property_id = ?", orgID, propertyID).
		Where("unit_id IS NULL OR unit_id = ?", unitID).
		Where("effective_from < ?", period.End()).
		Where("effective_to IS NULL OR effective_to > ?", period.Start()).
		Order("effective_from ASC").
		Find(&configModels).Error; err != nil {
		return nil, err
	}
	configs := make([]billing.UtilityConfig, len(configModels))
	for i, model := range configModels {
		configs[i] = *model.ToDomain()
	}
	return configs, nil
}

// FindByProperty finds all configs of a property
func (r *GormUtilityConfigRepository) FindByProperty(ctx context.Context, orgID, propertyID uuid.UUID) ([]billing.UtilityConfig, error) {
	var configModels []models.UtilityConfigModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND property_id = ?", orgID, propertyID).
		Order("effective_from ASC").
		Find(&configModels).Error; err != nil {
		return nil, err
	}
	configs := make([]billing.UtilityConfig, len(configModels))
	for i, model := range configModels {
		configs[i] = *model.ToDomain()
	}
	return configs, nil
}

// Save creates or updates a utility config
func (r *GormUtilityConfigRepository) Save(ctx context.Context, config *billing.UtilityConfig) error {
	model := models.UtilityConfigModelFromDomain(config)
	return r.db.WithContext(ctx).Save(model).Error
}
