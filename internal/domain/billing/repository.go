package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
)

// UtilityTypeRepository provides access to utility types
type UtilityTypeRepository interface {
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*UtilityType, error)
	FindAll(ctx context.Context, orgID uuid.UUID) ([]UtilityType, error)
	Save(ctx context.Context, utilityType *UtilityType) error
}

// UtilityConfigRepository provides access to utility configurations
type UtilityConfigRepository interface {
	// FindEffectiveForUnit returns every config whose effective range
	// intersects the period and whose scope covers the unit: configs
	// bound to the unit itself plus property-wide configs of the
	// unit's property. Precedence between the two is resolved by the
	// calculator, not the query.
	FindEffectiveForUnit(ctx context.Context, orgID, propertyID, unitID uuid.UUID, period valueobject.Period) ([]UtilityConfig, error)
	FindByProperty(ctx context.Context, orgID, propertyID uuid.UUID) ([]UtilityConfig, error)
	Save(ctx context.Context, config *UtilityConfig) error
}

// MeterReadingRepository provides access to meter readings
type MeterReadingRepository interface {
	// FindLatestAtOrBefore returns the most recent reading for the
	// config+unit with ReadingDate <= boundary, or shared.ErrNotFound
	// when no such reading exists.
	FindLatestAtOrBefore(ctx context.Context, orgID, configID, unitID uuid.UUID, boundary time.Time) (*MeterReading, error)
	Save(ctx context.Context, reading *MeterReading) error
}
