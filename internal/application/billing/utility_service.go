package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/identity"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// UtilityService manages utility types, their billing configurations
// and meter readings.
type UtilityService struct {
	typeRepo    billing.UtilityTypeRepository
	configRepo  billing.UtilityConfigRepository
	readingRepo billing.MeterReadingRepository
	logger      *zap.Logger
}

// NewUtilityService creates a new utility service
func NewUtilityService(
	typeRepo billing.UtilityTypeRepository,
	configRepo billing.UtilityConfigRepository,
	readingRepo billing.MeterReadingRepository,
	logger *zap.Logger,
) *UtilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UtilityService{
		typeRepo:    typeRepo,
		configRepo:  configRepo,
		readingRepo: readingRepo,
		logger:      logger,
	}
}

// CreateUtilityType registers a billable utility for the organization
func (s *UtilityService) CreateUtilityType(ctx context.Context, name string, mode billing.BillingMode, unitOfMeasure string) (*billing.UtilityType, error) {
	scope, ok := identity.ScopeFromContext(ctx)
	if !ok {
		return nil, shared.ErrUnauthorized
	}
	if !scope.Has(identity.CapManageBilling) {
		return nil, shared.ErrForbidden
	}

	utilityType, err := billing.NewUtilityType(scope.OrgID, name, mode, unitOfMeasure)
	if err != nil {
		return nil, err
	}
	if err := s.typeRepo.Save(ctx, utilityType); err != nil {
		return nil, err
	}

	s.logger.Info("Utility type created",
		zap.String("utility_type_id", utilityType.ID.String()),
		zap.String("name", utilityType.Name),
		zap.String("mode", utilityType.Mode.String()))

	return utilityType, nil
}

// ListUtilityTypes returns every utility type in the organization
func (s *UtilityService) ListUtilityTypes(ctx context.Context) ([]billing.UtilityType, error) {
	scope, ok := identity.ScopeFromContext(ctx)
	if !ok {
		return nil, shared.ErrUnauthorized
	}
	if !scope.Has(identity.CapViewOrgProperties) {
		return nil, shared.ErrForbidden
	}
	return s.typeRepo.FindAll(ctx, scope.OrgID)
}

// CreateConfigInput carries the fields needed to bind a utility type
// to a property or unit with its effective range and amount.
type CreateConfigInput struct {
	UtilityTypeID uuid.UUID
	PropertyID    uuid.UUID
	UnitID        *uuid.UUID
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	Amount        decimal.Decimal
}

// CreateUtilityConfig creates a utility configuration. Two configs of
// the same type and scope may not have overlapping effective ranges.
func (s *UtilityService) CreateUtilityConfig(ctx context.Context, input CreateConfigInput) (*billing.UtilityConfig, error) {
	scope, ok := identity.ScopeFromContext(ctx)
	if !ok {
		return nil, shared.ErrUnauthorized
	}
	if !scope.Has(identity.CapManageBilling) {
		return nil, shared.ErrForbidden
	}
	if !scope.CanAccessProperty(input.PropertyID) {
		return nil, shared.ErrNotFound
	}

	utilityType, err := s.typeRepo.FindByID(ctx, scope.OrgID, input.UtilityTypeID)
	if err != nil {
		return nil, err
	}

	config, err := billing.NewUtilityConfig(
		utilityType,
		input.PropertyID,
		input.UnitID,
		input.EffectiveFrom,
		input.EffectiveTo,
		valueobject.NewMoneyKES(input.Amount),
	)
	if err != nil {
		return nil, err
	}

	existing, err := s.configRepo.FindByProperty(ctx, scope.OrgID, input.PropertyID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if config.ConflictsWith(&existing[i]) {
			return nil, shared.NewDomainError("CONFIG_OVERLAP",
				"An effective configuration for this utility and scope already covers part of the range")
		}
	}

	if err := s.configRepo.Save(ctx, config); err != nil {
		return nil, err
	}

	s.logger.Info("Utility config created",
		zap.String("config_id", config.ID.String()),
		zap.String("property_id", config.PropertyID.String()),
		zap.String("type", config.TypeName),
		zap.Bool("unit_scoped", config.IsUnitScoped()))

	return config, nil
}

// ListConfigsForProperty returns all utility configs of a property
func (s *UtilityService) ListConfigsForProperty(ctx context.Context, propertyID uuid.UUID) ([]billing.UtilityConfig, error) {
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
	return s.configRepo.FindByProperty(ctx, scope.OrgID, propertyID)
}

// RecordReading stores a meter reading for a metered config. A value
// below the latest reading at or before the same date is rejected,
// since consumption would come out negative.
func (s *UtilityService) RecordReading(ctx context.Context, configID, unitID uuid.UUID, value decimal.Decimal, readingDate time.Time) (*billing.MeterReading, error) {
	scope, ok := identity.ScopeFromContext(ctx)
	if !ok {
		return nil, shared.ErrUnauthorized
	}
	if !scope.Has(identity.CapManageBilling) {
		return nil, shared.ErrForbidden
	}

	reading, err := billing.NewMeterReading(scope.OrgID, configID, unitID, value, readingDate)
	if err != nil {
		return nil, err
	}
	if scope.UserID != uuid.Nil {
		recordedBy := scope.UserID
		reading.RecordedBy = &recordedBy
	}

	previous, err := s.readingRepo.FindLatestAtOrBefore(ctx, scope.OrgID, configID, unitID, readingDate)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if previous != nil && value.LessThan(previous.Value) {
		return nil, shared.NewDomainError("NEGATIVE_CONSUMPTION",
			"Reading is lower than the previous reading for this meter")
	}

	if err := s.readingRepo.Save(ctx, reading); err != nil {
		return nil, err
	}

	s.logger.Info("Meter reading recorded",
		zap.String("config_id", configID.String()),
		zap.String("unit_id", unitID.String()),
		zap.String("value", value.String()),
		zap.String("reading_date", readingDate.Format("2006-01-02")))

	return reading, nil
}
