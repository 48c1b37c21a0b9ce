package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/leasing"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPropertyRepository implements PropertyRepository using GORM
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// FindByID finds a property by ID within the org, with its units loaded
func (r *GormPropertyRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*leasing.Property, error) {
	var model models.PropertyModel
	if err := r.db.WithContext(ctx).
		Preload("Units").
		Where("org_id = ? AND id = ?", orgID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all properties within the org
func (r *GormPropertyRepository) FindAll(ctx context.Context, orgID uuid.UUID) ([]leasing.Property, error) {
	var propertyModels []models.PropertyModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("name ASC").
		Find(&propertyModels).Error; err != nil {
		return nil, err
	}
	properties := make([]leasing.Property, len(propertyModels))
	for i, model := range propertyModels {
		properties[i] = *model.ToDomain()
	}
	return properties, nil
}

// Save creates or updates a property
func (r *GormPropertyRepository) Save(ctx context.Context, property *leasing.Property) error {
	model := models.PropertyModelFromDomain(property)
	return r.db.WithContext(ctx).Omit("Units").Save(model).Error
}
