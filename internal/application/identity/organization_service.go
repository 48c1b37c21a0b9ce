package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/identity"
	"github.com/rentledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrganizationService handles organization provisioning and lifecycle
type OrganizationService struct {
	orgRepo identity.OrganizationRepository
	logger  *zap.Logger
}

// NewOrganizationService creates a new organization service
func NewOrganizationService(orgRepo identity.OrganizationRepository, logger *zap.Logger) *OrganizationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrganizationService{orgRepo: orgRepo, logger: logger}
}

// CreateOrganization provisions a new organization. Codes are unique
// across the system; provisioning an existing code fails.
func (s *OrganizationService) CreateOrganization(ctx context.Context, code, name string) (*identity.Organization, error) {
	org, err := identity.NewOrganization(code, name)
	if err != nil {
		return nil, err
	}

	existing, err := s.orgRepo.FindByCode(ctx, org.Code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_ORG_CODE", "An organization with this code already exists")
	}

	if err := s.orgRepo.Save(ctx, org); err != nil {
		return nil, err
	}

	s.logger.Info("Organization created",
		zap.String("org_id", org.ID.String()),
		zap.String("code", org.Code))

	return org, nil
}

// GetCurrentOrganization returns the caller's organization
func (s *OrganizationService) GetCurrentOrganization(ctx context.Context) (*identity.Organization, error) {
	scope, ok := identity.ScopeFromContext(ctx)
	if !ok {
		return nil, shared.ErrUnauthorized
	}
	return s.orgRepo.FindByID(ctx, scope.OrgID)
}

// UpdateContact updates the organization's contact details
func (s *OrganizationService) UpdateContact(ctx context.Context, name, phone, email string) (*identity.Organization, error) {
	scope, ok := identity.ScopeFromContext(ctx)
	if !ok {
		return nil, shared.ErrUnauthorized
	}
	if !scope.IsAdmin() {
		return nil, shared.ErrForbidden
	}

	org, err := s.orgRepo.FindByID(ctx, scope.OrgID)
	if err != nil {
		return nil, err
	}
	if err := org.SetContact(name, phone, email); err != nil {
		return nil, err
	}
	if err := s.orgRepo.Save(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// SuspendOrganization suspends the caller's organization. Scheduled
// invoice generation skips suspended organizations.
func (s *OrganizationService) SuspendOrganization(ctx context.Context, id uuid.UUID) (*identity.Organization, error) {
	scope, ok := identity.ScopeFromContext(ctx)
	if !ok {
		return nil, shared.ErrUnauthorized
	}
	if !scope.IsAdmin() || scope.OrgID != id {
		return nil, shared.ErrForbidden
	}

	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := org.Suspend(); err != nil {
		return nil, err
	}
	if err := s.orgRepo.Save(ctx, org); err != nil {
		return nil, err
	}

	s.logger.Info("Organization suspended", zap.String("org_id", org.ID.String()))
	return org, nil
}
