package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/identity"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrganizationRepository implements OrganizationRepository using GORM
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewGormOrganizationRepository creates a new GormOrganizationRepository
func NewGormOrganizationRepository(db *gorm.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// FindByID finds an organization by ID
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Organization, error) {
	var model models.OrganizationModel
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds an organization by its unique code
func (r *GormOrganizationRepository) FindByCode(ctx context.Context, code string) (*identity.Organization, error) {
	var model models.OrganizationModel
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(code)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive returns all active organizations ordered by code
func (r *GormOrganizationRepository) FindActive(ctx context.Context) ([]identity.Organization, error) {
	var orgModels []models.OrganizationModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(identity.OrganizationStatusActive)).
		Order("code ASC").
		Find(&orgModels).Error; err != nil {
		return nil, err
	}
	orgs := make([]identity.Organization, len(orgModels))
	for i, model := range orgModels {
		orgs[i] = *model.ToDomain()
	}
	return orgs, nil
}

// Save creates or updates an organization
func (r *GormOrganizationRepository) Save(ctx context.Context, org *identity.Organization) error {
	model := models.OrganizationModelFromDomain(org)
	return r.db.WithContext(ctx).Save(model).Error
}
