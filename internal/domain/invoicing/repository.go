package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
)

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	TenantID    *uuid.UUID
	PropertyID  *uuid.UUID
	Status      *InvoiceStatus
	PeriodStart *time.Time
	PeriodEnd   *time.Time
	Overdue     *bool
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID within the org
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*Invoice, error)

	// FindByTenantAndPeriod finds the invoice generated for a tenant
	// and billing period, or shared.ErrNotFound.
	FindByTenantAndPeriod(ctx context.Context, orgID, tenantID uuid.UUID, period valueobject.Period) (*Invoice, error)

	// FindLatestBefore returns the tenant's most recent invoice whose
	// period starts before the given period, or shared.ErrNotFound.
	// Its Balance seeds the next invoice's opening balance.
	FindLatestBefore(ctx context.Context, orgID, tenantID uuid.UUID, period valueobject.Period) (*Invoice, error)

	// FindAll finds invoices matching the filter within the org
	FindAll(ctx context.Context, orgID uuid.UUID, filter InvoiceFilter) ([]Invoice, int64, error)

	// FindUnpaidPastDue returns unpaid invoices whose due date is
	// before asOf, for overdue recalculation.
	FindUnpaidPastDue(ctx context.Context, orgID uuid.UUID, asOf time.Time) ([]Invoice, error)

	// Save persists the invoice. Inserting a second invoice for the
	// same (tenant, period) returns shared.ErrDuplicateInvoice.
	Save(ctx context.Context, invoice *Invoice) error
}
