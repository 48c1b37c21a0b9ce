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

// GormTenantRepository implements TenantRepository using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByID finds a tenant by ID within the org
func (r *GormTenantRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*leasing.Tenant, error) {
	var model models.TenantModel
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

// FindActiveForPeriod returns active tenants whose lease overlaps at least
// one day of the period, restricted to the given properties when
// propertyIDs is non-empty.
func (r *GormTenantRepository) FindActiveForPeriod(ctx context.Context, orgID uuid.UUID, period valueobject.Period, propertyIDs []uuid.UUID) ([]leasing.Tenant, error) {
	query := r.db.WithContext(ctx).
		Where("org_id = ? AND status = ?", orgID, leasing.TenantStatusActive).
		Where("lease_start < ?", period.End()).
		Where("lease_end IS NULL OR lease_end > ?", period.Start())
	if len(propertyIDs) > 0 {
		query = query.Where("property_id IN ?", propertyIDs)
	}

	var tenantModels []models.TenantModel
	if err := query.Order("created_at ASC").Find(&tenantModels).Error; err != nil {
		return nil, err
	}
	tenants := make([]leasing.Tenant, len(tenantModels))
	for i, model := range tenantModels {
		tenants[i] = *model.ToDomain()
	}
	return tenants, nil
}

// FindActiveByUnit returns the active tenant occupying the unit, or
// shared.ErrNotFound when the unit is vacant.
func (r *GormTenantRepository) FindActiveByUnit(ctx context.Context, orgID, unitID uuid.UUID) (*leasing.Tenant, error) {
	var model models.TenantModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND unit_id = ? AND status = ?", orgID, unitID, leasing.TenantStatusActive).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a tenant
func (r *GormTenantRepository) Save(ctx context.Context, tenant *leasing.Tenant) error {
	model := models.TenantModelFromDomain(tenant)
	return r.db.WithContext(ctx).Save(model).Error
}
