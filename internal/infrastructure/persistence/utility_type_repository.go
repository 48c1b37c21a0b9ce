package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUtilityTypeRepository implements UtilityTypeRepository using GORM
type GormUtilityTypeRepository struct {
	db *gorm.DB
}

// NewGormUtilityTypeRepository creates a new GormUtilityTypeRepository
func NewGormUtilityTypeRepository(db *gorm.DB) *GormUtilityTypeRepository {
	return &GormUtilityTypeRepository{db: db}
}

// FindByID finds a utility type by ID within the org
func (r *GormUtilityTypeRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*billing.UtilityType, error) {
	var model models.UtilityTypeModel
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

// FindAll finds all utility types within the org
func (r *GormUtilityTypeRepository) FindAll(ctx context.Context, orgID uuid.UUID) ([]billing.UtilityType, error) {
	var typeModels []models.UtilityTypeModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("name ASC").
		Find(&typeModels).Error; err != nil {
		return nil, err
	}
	types := make([]billing.UtilityType, len(typeModels))
	for i, model := range typeModels {
		types[i] = *model.ToDomain()
	}
	return types, nil
}

// Save creates or updates a utility type
func (r *GormUtilityTypeRepository) Save(ctx context.Context, utilityType *billing.UtilityType) error {
	model := models.UtilityTypeModelFromDomain(utilityType)
	return r.db.WithContext(ctx).Save(model).Error
}
