// Package billing implements utility charge calculation for billing
// periods: fixed, metered and shared utility modes, meter reading
// deltas, and the proration rules applied when configuration or
// occupancy only partially covers a period.
package billing

import (
	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
)

// BillingMode is the calculation strategy for a utility
type BillingMode string

const (
	BillingModeFixed   BillingMode = "FIXED"   // flat amount per period
	BillingModeMetered BillingMode = "METERED" // consumption delta times rate
	BillingModeShared  BillingMode = "SHARED"  // one amount split across occupied units
)

// IsValid checks if the mode is a valid BillingMode
func (m BillingMode) IsValid() bool {
	switch m {
	case BillingModeFixed, BillingModeMetered, BillingModeShared:
		return true
	}
	return false
}

// String returns the string representation of BillingMode
func (m BillingMode) String() string {
	return string(m)
}

// Description returns the human-readable mode description used in
// invoice line item text
func (m BillingMode) Description() string {
	switch m {
	case BillingModeFixed:
		return "fixed monthly charge"
	case BillingModeMetered:
		return "metered consumption"
	case BillingModeShared:
		return "shared across occupied units"
	default:
		return "unknown"
	}
}

// UtilityType is a billable utility category such as Water or Garbage
type UtilityType struct {
	shared.OrgAggregateRoot
	Name string      `json:"name"`
	Mode BillingMode `json:"mode"`
	// UnitOfMeasure labels metered quantities, e.g. "m3" or "kWh"
	UnitOfMeasure string `json:"unit_of_measure"`
}

// NewUtilityType creates a new utility type
func NewUtilityType(orgID uuid.UUID, name string, mode BillingMode, unitOfMeasure string) (*UtilityType, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_UTILITY_NAME", "Utility name cannot be empty")
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_BILLING_MODE", "Billing mode is not valid")
	}

	return &UtilityType{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             name,
		Mode:             mode,
		UnitOfMeasure:    unitOfMeasure,
	}, nil
}
