package leasing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/identity"
	"github.com/rentledger/backend/internal/domain/leasing"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TenantService handles tenancy lifecycle: assigning renters to units
// and ending their leases.
type TenantService struct {
	tenantRepo leasing.TenantRepository
	unitRepo   leasing.UnitRepository
	logger     *zap.Logger
}

// NewTenantService creates a new tenant service
func NewTenantService(
	tenantRepo leasing.TenantRepository,
	unitRepo leasing.UnitRepository,
	logger *zap.Logger,
) *TenantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenantService{
		tenantRepo: tenantRepo,
		unitRepo:   unitRepo,
		logger:     logger,
	}
}

// AssignTenantInput carries the fields needed to start a tenancy
type AssignTenantInput struct {
	UnitID      uuid.UUID
	FullName    string
	Phone       string
	MonthlyRent decimal.Decimal
	RentDueDay  int
	LeaseStart  time.Time
}

// AssignTenant places a renter on a vacant unit. A unit holds at most
// one active tenant; assigning onto an occupied unit fails.
func (s *TenantService) AssignTenant(ctx context.Context, input AssignTenantInput) (*leasing.Tenant, error) {
	scope, ok := identity.ScopeFromContext(ctx)
	if !ok {
		return nil, shared.ErrUnauthorized
	}
	if !scope.Has(identity.CapManageBilling) {
		return nil, shared.ErrForbidden
	}

	unit, err := s.unitRepo.FindByID(ctx, scope.OrgID, input.UnitID)
	if err != nil {
		return nil, err
	}
	if !scope.CanAccessProperty(unit.PropertyID) {
		return nil, shared.ErrNotFound
	}

	existing, err := s.tenantRepo.FindActiveByUnit(ctx, scope.OrgID, unit.ID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("UNIT_OCCUPIED", "Unit already has an active tenant")
	}

	tenant, err := leasing.NewTenant(
		scope.OrgID,
		unit.PropertyID,
		unit.ID,
		input.FullName,
		valueobject.NewMoneyKES(input.MonthlyRent),
		input.RentDueDay,
		input.LeaseStart,
	)
	if err != nil {
		return nil, err
	}
	tenant.Phone = input.Phone

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	unit.MarkOccupied()
	if err := s.unitRepo.Save(ctx, unit); err != nil {
		return nil, err
	}

	s.logger.Info("Tenant assigned",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("unit_id", unit.ID.String()),
		zap.String("lease_start", tenant.LeaseStart.Format("2006-01-02")))

	return tenant, nil
}

// GetTenant returns one tenant. A tenant-role caller can only read
// their own record; anyone else's resolves to not-found.
func (s *TenantService) GetTenant(ctx context.Context, id uuid.UUID) (*leasing.Tenant, error) {
	scope, ok := identity.ScopeFromContext(ctx)
	if !ok {
		return nil, shared.ErrUnauthorized
	}
	if !scope.CanAccessTenant(id) {
		return nil, shared.ErrNotFound
	}

	tenant, err := s.tenantRepo.FindByID(ctx, scope.OrgID, id)
	if err != nil {
		return nil, err
	}
	if !scope.IsTenantOnly() && !scope.CanAccessProperty(tenant.PropertyID) {
		return nil, shared.ErrNotFound
	}
	return tenant, nil
}

// GetActiveTenantForUnit returns the unit's current tenant
func (s *TenantService) GetActiveTenantForUnit(ctx context.Context, unitID uuid.UUID) (*leasing.Tenant, error) {
	scope, ok := identity.ScopeFromContext(ctx)
	if !ok {
		return nil, shared.ErrUnauthorized
	}
	if !scope.Has(identity.CapViewOrgProperties) {
		return nil, shared.ErrForbidden
	}

	tenant, err := s.tenantRepo.FindActiveByUnit(ctx, scope.OrgID, unitID)
	if err != nil {
		return nil, err
	}
	if !scope.CanAccessProperty(tenant.PropertyID) {
		return nil, shared.ErrNotFound
	}
	return tenant, nil
}

// TerminateTenancy ends a tenancy as of the given date and frees the
// unit. The tenant keeps their invoice history.
func (s *TenantService) TerminateTenancy(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*leasing.Tenant, error) {
	scope, ok := identity.ScopeFromContext(ctx)
	if !ok {
		return nil, shared.ErrUnauthorized
	}
	if !scope.Has(identity.CapManageBilling) {
		return nil, shared.ErrForbidden
	}

	tenant, err := s.tenantRepo.FindByID(ctx, scope.OrgID, tenantID)
	if err != nil {
		return nil, err
	}
	if !scope.CanAccessProperty(tenant.PropertyID) {
		return nil, shared.ErrNotFound
	}

	wasActive := tenant.IsActive()
	if err := tenant.Terminate(asOf); err != nil {
		return nil, err
	}
	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	if wasActive {
		unit, err := s.unitRepo.FindByID(ctx, scope.OrgID, tenant.UnitID)
		if err != nil {
			return nil, err
		}
		unit.MarkVacant()
		if err := s.unitRepo.Save(ctx, unit); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Tenancy terminated",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("as_of", asOf.Format("2006-01-02")))

	return tenant, nil
}
