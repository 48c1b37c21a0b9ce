package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MeterReading is a timestamped cumulative meter value for a metered
// utility config on a unit. Consumption for a period is the reading
// at-or-before the period end minus the reading at-or-before the
// period start; readings are never extrapolated.
type MeterReading struct {
	shared.OrgAggregateRoot
	UtilityConfigID uuid.UUID       `json:"utility_config_id"`
	UnitID          uuid.UUID       `json:"unit_id"`
	Value           decimal.Decimal `json:"value"`
	ReadingDate     time.Time       `json:"reading_date"`
	RecordedBy      *uuid.UUID      `json:"recorded_by"`
}

// NewMeterReading records a new meter value
func NewMeterReading(orgID, configID, unitID uuid.UUID, value decimal.Decimal, readingDate time.Time) (*MeterReading, error) {
	if configID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UTILITY_CONFIG", "Utility config ID cannot be empty")
	}
	if unitID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit ID cannot be empty")
	}
	if value.IsNegative() {
		return nil, shared.NewDomainError("INVALID_READING", "Meter reading cannot be negative")
	}
	if readingDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_READING_DATE", "Reading date is required")
	}

	return &MeterReading{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		UtilityConfigID:  configID,
		UnitID:           unitID,
		Value:            value,
		ReadingDate:      readingDate,
	}, nil
}

// Consumption returns the delta from an earlier reading. A negative
// delta (e.g. after a meter swap) is a data error, not a billable
// quantity.
func (r *MeterReading) Consumption(earlier *MeterReading) (decimal.Decimal, error) {
	delta := r.Value.Sub(earlier.Value)
	if delta.IsNegative() {
		return decimal.Zero, shared.ErrNegativeConsumption
	}
	return delta, nil
}
