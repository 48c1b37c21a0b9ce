package leasing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/identity"
	"github.com/rentledger/backend/internal/domain/leasing"
	"github.com/rentledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PropertyService handles property and unit management
type PropertyService struct {
	propertyRepo leasing.PropertyRepository
	unitRepo     leasing.UnitRepository
	logger       *zap.Logger
}

// NewPropertyService creates a new property service
func NewPropertyService(
	propertyRepo leasing.PropertyRepository,
	unitRepo leasing.UnitRepository,
	logger *zap.Logger,
) *PropertyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PropertyService{
		propertyRepo: propertyRepo,
		unitRepo:     unitRepo,
		logger:       logger,
	}
}

// CreatePropertyInput carries the fields needed to register a property
type CreatePropertyInput struct {
	Name       string
	Address    string
	LandlordID uuid.UUID
}

// CreateProperty registers a new property in the caller's organization
func (s *PropertyService) CreateProperty(ctx context.Context, input CreatePropertyInput) (*leasing.Property, error) {
	scope, ok := identity.ScopeFromContext(ctx)
	if !ok {
		return nil, shared.ErrUnauthorized
	}
	if !scope.Has(identity.CapManageBilling) {
		return nil, shared.ErrForbidden
	}

	property, err := leasing.NewProperty(scope.OrgID, input.LandlordID, input.Name, input.Address)
	if err != nil {
		return nil, err
	}
	if err := s.propertyRepo.Save(ctx, property); err != nil {
		return nil, err
	}

	s.logger.Info("Property created",
		zap.String("property_id", property.ID.String()),
		zap.String("name", property.Name))

	return property, nil
}

// GetProperty returns one property within the caller's scope
func (s *PropertyService) GetProperty(ctx context.Context, id uuid.UUID) (*leasing.Property, error) {
	scope, ok := identity.ScopeFromContext(ctx)
	if !ok {
		return nil, shared.ErrUnauthorized
	}
	if !scope.CanAccessProperty(id) {
		return nil, shared.ErrNotFound
	}
	return s.propertyRepo.FindByID(ctx, scope.OrgID, id)
}

// ListProperties returns the properties visible to the caller. A
// manager restricted to specific properties sees only those.
func (s *PropertyService) ListProperties(ctx context.Context) ([]leasing.Property, error) {
	scope, ok := identity.ScopeFromContext(ctx)
	if !ok {
		return nil, shared.ErrUnauthorized
	}
	if !scope.Has(identity.CapViewOrgProperties) {
		return nil, shared.ErrForbidden
	}

	properties, err := s.propertyRepo.FindAll(ctx, scope.OrgID)
	if err != nil {
		return nil, err
	}
	if len(scope.PropertyIDs) == 0 {
		return properties, nil
	}

	visible := make([]leasing.Property, 0, len(properties))
	for i := range properties {
		if scope.CanAccessProperty(properties[i].ID) {
			visible = append(visible, properties[i])
		}
	}
	return visible, nil
}

// AddUnit creates a unit on an existing property
func (s *PropertyService) AddUnit(ctx context.Context, propertyID uuid.UUID, number string) (*leasing.Unit, error) {
	scope, ok := identity.ScopeFromContext(ctx)
	if !ok {
		return nil, shared.ErrUnauthorized
	}
	if !scope.Has(identity.CapManageBilling) {
		return nil, shared.ErrForbidden
	}
	if !scope.CanAccessProperty(propertyID) {
		return nil, shared.ErrNotFound
	}

	if _, err := s.propertyRepo.FindByID(ctx, scope.OrgID, propertyID); err != nil {
		return nil, err
	}

	unit, err := leasing.NewUnit(scope.OrgID, propertyID, number)
	if err != nil {
		return nil, err
	}
	if err := s.unitRepo.Save(ctx, unit); err != nil {
		return nil, err
	}

	s.logger.Info("Unit created",
		zap.String("unit_id", unit.ID.String()),
		zap.String("property_id", propertyID.String()),
		zap.String("number", unit.Number))

	return unit, nil
}

// ListUnits returns the units of a property
func (s *PropertyService) ListUnits(ctx context.Context, propertyID uuid.UUID) ([]leasing.Unit, error) {
	scope, ok := identity.ScopeFromContext(ctx)
	if !ok {
		return nil, shared.ErrUnauthorized
	}
	if !scope.Has(identity.CapViewOrgProperties) {
		return nil, shared.ErrForbidden
	}
	if !scope.CanAccessProperty(propertyID) {
		return nil, shared.ErrNotFound
	}
	return s.unitRepo.FindByProperty(ctx, scope.OrgID, propertyID)
}
