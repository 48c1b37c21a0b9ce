package invoicing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/identity"
	"github.com/rentledger/backend/internal/domain/invoicing"
	"github.com/rentledger/backend/internal/domain/leasing"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ChargeCalculator computes utility charges for a tenant and period
type ChargeCalculator interface {
	ComputeCharges(ctx context.Context, tenant *leasing.Tenant, period valueobject.Period) ([]billing.Charge, []billing.Warning, error)
}

// TenantOutcome classifies the generation result for one tenant
type TenantOutcome string

const (
	OutcomeCreated TenantOutcome = "CREATED"
	OutcomeSkipped TenantOutcome = "SKIPPED"
	OutcomeFailed  TenantOutcome = "FAILED"
)

// TenantResult is the per-tenant outcome within a generation run
type TenantResult struct {
	TenantID   uuid.UUID         `json:"tenant_id"`
	TenantName string            `json:"tenant_name"`
	Outcome    TenantOutcome     `json:"outcome"`
	InvoiceID  *uuid.UUID        `json:"invoice_id,omitempty"`
	Error      string            `json:"error,omitempty"`
	Warnings   []billing.Warning `json:"warnings,omitempty"`
}

// GenerationResult summarizes one invoice generation run.
// Re-running for the same period reports every tenant as Skipped.
type GenerationResult struct {
	PeriodStart time.Time      `json:"period_start"`
	PeriodEnd   time.Time      `json:"period_end"`
	Created     int            `json:"created"`
	Skipped     int            `json:"skipped"`
	Failed      int            `json:"failed"`
	Results     []TenantResult `json:"results"`
}

// GenerationServiceConfig contains configuration for GenerationService
type GenerationServiceConfig struct {
	Workers int
}

// DefaultGenerationServiceConfig returns default configuration
func DefaultGenerationServiceConfig() GenerationServiceConfig {
	return GenerationServiceConfig{Workers: 4}
}

// GenerationService orchestrates periodic invoice generation.
// The run is idempotent per (tenant, period): tenants who already have
// an invoice for the period are skipped, and the unique constraint on
// the invoice table backstops concurrent runs.
type GenerationService struct {
	tenantRepo  leasing.TenantRepository
	invoiceRepo invoicing.InvoiceRepository
	calculator  ChargeCalculator
	assembler   *invoicing.Assembler
	logger      *zap.Logger

	workers int
}

// NewGenerationService creates a new invoice generation service
func NewGenerationService(
	tenantRepo leasing.TenantRepository,
	invoiceRepo invoicing.InvoiceRepository,
	calculator ChargeCalculator,
	logger *zap.Logger,
	config GenerationServiceConfig,
) *GenerationService {
	if config.Workers <= 0 {
		config.Workers = DefaultGenerationServiceConfig().Workers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerationService{
		tenantRepo:  tenantRepo,
		invoiceRepo: invoiceRepo,
		calculator:  calculator,
		assembler:   invoicing.NewAssembler(),
		logger:      logger,
		workers:     config.Workers,
	}
}

// GenerateForPeriod generates invoices for every active tenant whose
// lease overlaps the given calendar month. The caller's access scope
// restricts which tenants are considered; generation requires the
// billing capability. Cancellation is honored between tenants and the
// partial result is returned alongside the context error.
func (s *GenerationService) GenerateForPeriod(ctx context.Context, year int, month time.Month) (*GenerationResult, error) {
	scope, ok := identity.ScopeFromContext(ctx)
	if !ok {
		return nil, shared.ErrUnauthorized
	}
	if !scope.Has(identity.CapManageBilling) {
		return nil, shared.ErrForbidden
	}
	if month < time.January || month > time.December {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Month must be between 1 and 12")
	}

	period := valueobject.MonthPeriod(year, month)
	result := &GenerationResult{
		PeriodStart: period.Start(),
		PeriodEnd:   period.End(),
	}

	tenants, err := s.tenantRepo.FindActiveForPeriod(ctx, scope.OrgID, period, scope.PropertyIDs)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Starting invoice generation",
		zap.String("org_id", scope.OrgID.String()),
		zap.String("period", period.String()),
		zap.Int("tenants", len(tenants)),
		zap.Int("workers", s.workers))

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.workers)
	)

	var runErr error
	for i := range tenants {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		case sem <- struct{}{}:
		}
		if runErr != nil {
			break
		}

		wg.Add(1)
		go func(tenant *leasing.Tenant) {
			defer wg.Done()
			defer func() { <-sem }()

			outcome := s.generateForTenant(ctx, scope.OrgID, tenant, period)

			mu.Lock()
			defer mu.Unlock()
			result.Results = append(result.Results, outcome)
			switch outcome.Outcome {
			case OutcomeCreated:
				result.Created++
			case OutcomeSkipped:
				result.Skipped++
			case OutcomeFailed:
				result.Failed++
			}
		}(&tenants[i])
	}
	wg.Wait()

	s.logger.Info("Invoice generation finished",
		zap.String("org_id", scope.OrgID.String()),
		zap.String("period", period.String()),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))

	return result, runErr
}

func (s *GenerationService) generateForTenant(
	ctx context.Context,
	orgID uuid.UUID,
	tenant *leasing.Tenant,
	period valueobject.Period,
) TenantResult {
	result := TenantResult{TenantID: tenant.ID, TenantName: tenant.FullName}

	_, err := s.invoiceRepo.FindByTenantAndPeriod(ctx, orgID, tenant.ID, period)
	switch {
	case err == nil:
		result.Outcome = OutcomeSkipped
		return result
	case !errors.Is(err, shared.ErrNotFound):
		result.Outcome = OutcomeFailed
		result.Error = err.Error()
		return result
	}

	openingBalance, err := s.openingBalance(ctx, orgID, tenant.ID, period)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Error = err.Error()
		return result
	}

	charges, warnings, err := s.calculator.ComputeCharges(ctx, tenant, period)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Error = err.Error()
		return result
	}
	result.Warnings = warnings

	invoice, err := s.assembler.Assemble(tenant, period, charges, openingBalance)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Error = err.Error()
		return result
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		// A concurrent run inserted first; the invoice exists, so this
		// tenant is done, not failed.
		if errors.Is(err, shared.ErrDuplicateInvoice) {
			s.logger.Debug("Invoice already generated by concurrent run",
				zap.String("tenant_id", tenant.ID.String()),
				zap.String("period", period.String()))
			result.Outcome = OutcomeSkipped
			return result
		}
		result.Outcome = OutcomeFailed
		result.Error = err.Error()
		return result
	}

	s.logger.Info("Invoice generated",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("amount", invoice.Amount.StringFixed(2)),
		zap.Int("warnings", len(warnings)))

	invoiceID := invoice.ID
	result.Outcome = OutcomeCreated
	result.InvoiceID = &invoiceID
	return result
}

// openingBalance returns the balance carried over from the tenant's
// most recent invoice before the period, or zero for a first invoice.
func (s *GenerationService) openingBalance(ctx context.Context, orgID, tenantID uuid.UUID, period valueobject.Period) (decimal.Decimal, error) {
	prior, err := s.invoiceRepo.FindLatestBefore(ctx, orgID, tenantID, period)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return prior.Balance, nil
}
