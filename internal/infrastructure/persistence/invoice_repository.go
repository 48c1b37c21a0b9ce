package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rentledger/backend/internal/domain/invoicing"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/rentledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations
const pgUniqueViolation = "23505"

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by ID within the org
func (r *GormInvoiceRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
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

// FindByTenantAndPeriod finds the invoice generated for a tenant and billing
// period, or shared.ErrNotFound.
func (r *GormInvoiceRepository) FindByTenantAndPeriod(ctx context.Context, orgID, tenantID uuid.UUID, period valueobject.Period) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND tenant_id = ?", orgID, tenantID).
		Where("period_start = ? AND period_end = ?", period.Start(), period.End()).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindLatestBefore returns the tenant's most recent invoice whose period
// starts before the given period, or shared.ErrNotFound.
func (r *GormInvoiceRepository) FindLatestBefore(ctx context.Context, orgID, tenantID uuid.UUID, period valueobject.Period) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND tenant_id = ?", orgID, tenantID).
		Where("period_start < ?", period.Start()).
		Order("period_start DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds invoices matching the filter within the org, returning the
// page of invoices and the total count before pagination.
func (r *GormInvoiceRepository) FindAll(ctx context.Context, orgID uuid.UUID, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("org_id = ?", orgID)
	query = r.applyInvoiceFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize).Offset(filter.Offset())
	}

	var invoiceModels []models.InvoiceModel
	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, 0, err
	}
	invoices := make([]invoicing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, total, nil
}

// FindUnpaidPastDue returns unpaid invoices whose due date is before asOf
func (r *GormInvoiceRepository) FindUnpaidPastDue(ctx context.Context, orgID uuid.UUID, asOf time.Time) ([]invoicing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND due_date < ? AND balance > 0", orgID, asOf).
		Where("status IN ?", []invoicing.InvoiceStatus{invoicing.InvoiceStatusOpen, invoicing.InvoiceStatusPartiallyPaid}).
		Order("due_date ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]invoicing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// Save persists the invoice. Inserting a second invoice for the same
// (tenant, period) violates the unique index and is reported as
// shared.ErrDuplicateInvoice so generation can treat it as already done.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrDuplicateInvoice
		}
		return err
	}
	return nil
}

// applyInvoiceFilter applies the optional filter fields to the query
func (r *GormInvoiceRepository) applyInvoiceFilter(query *gorm.DB, filter invoicing.InvoiceFilter) *gorm.DB {
	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.PropertyID != nil {
		query = query.Where("property_id = ?", *filter.PropertyID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PeriodStart != nil {
		query = query.Where("period_start >= ?", *filter.PeriodStart)
	}
	if filter.PeriodEnd != nil {
		query = query.Where("period_end <= ?", *filter.PeriodEnd)
	}
	if filter.Overdue != nil && *filter.Overdue {
		query = query.Where("status = ?", invoicing.InvoiceStatusOverdue)
	}
	if filter.Search != "" {
		query = query.Where("invoice_number ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation, either translated by GORM or raw from the driver.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	return false
}
