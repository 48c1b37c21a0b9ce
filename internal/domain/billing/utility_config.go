package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// UtilityConfig binds a utility type to a property, or to a specific
// unit, for an effective date range [EffectiveFrom, EffectiveTo).
// A unit-specific config wins entirely over a property-wide config for
// the same utility type; ranges for the same scope must not overlap.
//
// TypeName and Mode are copied from the utility type at creation so
// charge calculation and invoice descriptions do not need a join.
type UtilityConfig struct {
	shared.OrgAggregateRoot
	UtilityTypeID uuid.UUID   `json:"utility_type_id"`
	TypeName      string      `json:"type_name"`
	Mode          BillingMode `json:"mode"`
	PropertyID    uuid.UUID   `json:"property_id"`
	// UnitID is nil for property-wide configs
	UnitID        *uuid.UUID `json:"unit_id"`
	EffectiveFrom time.Time  `json:"effective_from"`
	// EffectiveTo is nil for open-ended configs
	EffectiveTo *time.Time `json:"effective_to"`

	// Mode-specific parameters; only the one matching Mode is used.
	FixedAmount  decimal.Decimal `json:"fixed_amount"`
	Rate         decimal.Decimal `json:"rate"`
	SharedAmount decimal.Decimal `json:"shared_amount"`
}

// NewUtilityConfig creates a config for the given utility type and scope
func NewUtilityConfig(
	utilityType *UtilityType,
	propertyID uuid.UUID,
	unitID *uuid.UUID,
	effectiveFrom time.Time,
	effectiveTo *time.Time,
	amount valueobject.Money,
) (*UtilityConfig, error) {
	if utilityType == nil {
		return nil, shared.NewDomainError("INVALID_UTILITY_TYPE", "Utility type is required")
	}
	if propertyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROPERTY", "Property ID cannot be empty")
	}
	if effectiveFrom.IsZero() {
		return nil, shared.NewDomainError("INVALID_EFFECTIVE_FROM", "Effective-from date is required")
	}
	if effectiveTo != nil && !effectiveTo.After(effectiveFrom) {
		return nil, shared.NewDomainError("INVALID_EFFECTIVE_RANGE", "Effective-to must be after effective-from")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Utility amount cannot be negative")
	}

	cfg := &UtilityConfig{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(utilityType.OrgID),
		UtilityTypeID:    utilityType.ID,
		TypeName:         utilityType.Name,
		Mode:             utilityType.Mode,
		PropertyID:       propertyID,
		UnitID:           unitID,
		EffectiveFrom:    effectiveFrom,
		EffectiveTo:      effectiveTo,
	}

	switch utilityType.Mode {
	case BillingModeFixed:
		cfg.FixedAmount = amount.Amount()
	case BillingModeMetered:
		cfg.Rate = amount.Amount()
	case BillingModeShared:
		cfg.SharedAmount = amount.Amount()
	default:
		return nil, shared.NewDomainError("INVALID_BILLING_MODE", "Billing mode is not valid")
	}

	return cfg, nil
}

// IsUnitScoped returns true when the config targets a single unit
func (c *UtilityConfig) IsUnitScoped() bool {
	return c.UnitID != nil
}

// AppliesTo returns true if the config covers the given unit
func (c *UtilityConfig) AppliesTo(unitID uuid.UUID) bool {
	if c.UnitID == nil {
		return true
	}
	return *c.UnitID == unitID
}

// EffectivePeriod returns the effective range as a period, capping an
// open-ended range at the given horizon.
func (c *UtilityConfig) EffectivePeriod(horizon time.Time) (valueobject.Period, error) {
	end := horizon
	if c.EffectiveTo != nil && c.EffectiveTo.Before(horizon) {
		end = *c.EffectiveTo
	}
	return valueobject.NewPeriod(c.EffectiveFrom, end)
}

// IsEffectiveDuring returns true when the effective range intersects
// the billing period
func (c *UtilityConfig) IsEffectiveDuring(period valueobject.Period) bool {
	effective, err := c.EffectivePeriod(period.End())
	if err != nil {
		return false
	}
	return effective.Overlaps(period)
}

// SameScope returns true when other targets the same utility type and
// the same unit-or-property scope; two same-scope configs with
// overlapping effective ranges violate the configuration invariant.
func (c *UtilityConfig) SameScope(other *UtilityConfig) bool {
	if c.UtilityTypeID != other.UtilityTypeID || c.PropertyID != other.PropertyID {
		return false
	}
	if (c.UnitID == nil) != (other.UnitID == nil) {
		return false
	}
	if c.UnitID != nil && *c.UnitID != *other.UnitID {
		return false
	}
	return true
}

// ConflictsWith reports an effective-range overlap between two
// same-scope configs. Used to reject overlaps at write time.
func (c *UtilityConfig) ConflictsWith(other *UtilityConfig) bool {
	if !c.SameScope(other) {
		return false
	}
	horizon := maxTime(endOrHorizon(c), endOrHorizon(other))
	a, errA := c.EffectivePeriod(horizon)
	b, errB := other.EffectivePeriod(horizon)
	if errA != nil || errB != nil {
		return false
	}
	return a.Overlaps(b)
}

func endOrHorizon(c *UtilityConfig) time.Time {
	if c.EffectiveTo != nil {
		return *c.EffectiveTo
	}
	// Open-ended ranges always reach the comparison horizon.
	return c.EffectiveFrom.AddDate(100, 0, 0)
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
