package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/identity"
	"github.com/rentledger/backend/internal/domain/invoicing"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// InvoiceService handles invoice queries and payment application
type InvoiceService struct {
	invoiceRepo invoicing.InvoiceRepository
	logger      *zap.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(invoiceRepo invoicing.InvoiceRepository, logger *zap.Logger) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{invoiceRepo: invoiceRepo, logger: logger}
}

// GetInvoice returns one invoice, enforcing the caller's access scope.
// A tenant-role caller asking for another tenant's invoice gets
// not-found rather than forbidden, so the invoice's existence does not
// leak across tenants.
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	scope, ok := identity.ScopeFromContext(ctx)
	if !ok {
		return nil, shared.ErrUnauthorized
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, scope.OrgID, id)
	if err != nil {
		return nil, err
	}
	if !scope.CanAccessTenant(invoice.TenantID) {
		return nil, shared.ErrNotFound
	}
	if !scope.IsTenantOnly() && !scope.CanAccessProperty(invoice.PropertyID) {
		return nil, shared.ErrNotFound
	}
	return invoice, nil
}

// ListInvoices returns invoices matching the filter within the
// caller's scope. Tenant-role callers are pinned to their own
// invoices; property managers to their assigned properties.
func (s *InvoiceService) ListInvoices(ctx context.Context, filter invoicing.InvoiceFilter) (*shared.Paginated[invoicing.Invoice], error) {
	scope, ok := identity.ScopeFromContext(ctx)
	if !ok {
		return nil, shared.ErrUnauthorized
	}

	if scope.IsTenantOnly() {
		filter.TenantID = scope.TenantID
	}
	if filter.TenantID != nil && !scope.CanAccessTenant(*filter.TenantID) {
		return nil, shared.ErrForbidden
	}
	if filter.PropertyID != nil && !scope.IsTenantOnly() && !scope.CanAccessProperty(*filter.PropertyID) {
		return nil, shared.ErrForbidden
	}

	if filter.Page <= 0 || filter.PageSize <= 0 {
		def := shared.DefaultFilter()
		if filter.Page <= 0 {
			filter.Page = def.Page
		}
		if filter.PageSize <= 0 {
			filter.PageSize = def.PageSize
		}
	}

	invoices, total, err := s.invoiceRepo.FindAll(ctx, scope.OrgID, filter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(invoices, total, filter.Page, filter.PageSize)
	return &page, nil
}

// RecordPayment applies a payment received through an external channel
// to the invoice and persists the transition.
func (s *InvoiceService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, amount valueobject.Money, method, reference string) (*invoicing.Invoice, error) {
	scope, ok := identity.ScopeFromContext(ctx)
	if !ok {
		return nil, shared.ErrUnauthorized
	}
	if !scope.Has(identity.CapManageBilling) {
		return nil, shared.ErrForbidden
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, scope.OrgID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !scope.CanAccessProperty(invoice.PropertyID) {
		return nil, shared.ErrNotFound
	}

	if err := invoice.ApplyPayment(amount, method, reference); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	s.logger.Info("Payment recorded",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("amount", amount.Amount().StringFixed(2)),
		zap.String("status", invoice.Status.String()))

	return invoice, nil
}

// RecalculateOverdue transitions unpaid invoices past their due date
// to OVERDUE. Returns the number of invoices transitioned.
func (s *InvoiceService) RecalculateOverdue(ctx context.Context, orgID uuid.UUID, asOf time.Time) (int, error) {
	invoices, err := s.invoiceRepo.FindUnpaidPastDue(ctx, orgID, asOf)
	if err != nil {
		return 0, err
	}

	transitioned := 0
	for i := range invoices {
		invoice := &invoices[i]
		if !invoice.MarkOverdue(asOf) {
			continue
		}
		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			s.logger.Error("Failed to persist overdue transition",
				zap.String("invoice_id", invoice.ID.String()),
				zap.Error(err))
			continue
		}
		transitioned++
	}

	if transitioned > 0 {
		s.logger.Info("Overdue invoices transitioned",
			zap.String("org_id", orgID.String()),
			zap.Int("count", transitioned))
	}
	return transitioned, nil
}
