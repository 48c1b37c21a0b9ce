package leasing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
)

// TenantRepository provides access to renter aggregates
type TenantRepository interface {
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*Tenant, error)
	// FindActiveForPeriod returns tenants whose status is Active and
	// whose lease overlaps at least one day of the period, restricted
	// to the given properties when propertyIDs is non-empty.
	FindActiveForPeriod(ctx context.Context, orgID uuid.UUID, period valueobject.Period, propertyIDs []uuid.UUID) ([]Tenant, error)
	FindActiveByUnit(ctx context.Context, orgID, unitID uuid.UUID) (*Tenant, error)
	Save(ctx context.Context, tenant *Tenant) error
}

// UnitRepository provides access to units
type UnitRepository interface {
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*Unit, error)
	FindByProperty(ctx context.Context, orgID, propertyID uuid.UUID) ([]Unit, error)
	// CountOccupiedInPeriod counts units in the property with at least
	// one day of active tenancy inside the period. Shared utility
	// charges are split across this count.
	CountOccupiedInPeriod(ctx context.Context, orgID, propertyID uuid.UUID, period valueobject.Period) (int64, error)
	Save(ctx context.Context, unit *Unit) error
}

// PropertyRepository provides access to properties
type PropertyRepository interface {
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*Property, error)
	FindAll(ctx context.Context, orgID uuid.UUID) ([]Property, error)
	Save(ctx context.Context, property *Property) error
}
