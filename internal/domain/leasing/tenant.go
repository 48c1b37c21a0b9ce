package leasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TenantStatus represents the lifecycle status of a tenant
type TenantStatus string

const (
	TenantStatusActive     TenantStatus = "ACTIVE"
	TenantStatusInactive   TenantStatus = "INACTIVE"
	TenantStatusTerminated TenantStatus = "TERMINATED"
)

// IsValid checks if the status is a valid TenantStatus
func (s TenantStatus) IsValid() bool {
	switch s {
	case TenantStatusActive, TenantStatusInactive, TenantStatusTerminated:
		return true
	}
	return false
}

// String returns the string representation of TenantStatus
func (s TenantStatus) String() string {
	return string(s)
}

// Tenant represents a renter assigned to exactly one unit.
// At most one Active tenant may occupy a unit at any time; the
// repository enforces that invariant at assignment time.
type Tenant struct {
	shared.OrgAggregateRoot
	UnitID      uuid.UUID       `json:"unit_id"`
	PropertyID  uuid.UUID       `json:"property_id"`
	FullName    string          `json:"full_name"`
	Phone       string          `json:"phone"`
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
	RentDueDay  int             `json:"rent_due_day"`
	Status      TenantStatus    `json:"status"`
	LeaseStart  time.Time       `json:"lease_start"`
	LeaseEnd    *time.Time      `json:"lease_end"`
}

// NewTenant creates a new active tenant on a unit
func NewTenant(
	orgID, propertyID, unitID uuid.UUID,
	fullName string,
	monthlyRent valueobject.Money,
	rentDueDay int,
	leaseStart time.Time,
) (*Tenant, error) {
	if fullName == "" {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Tenant name cannot be empty")
	}
	if unitID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit ID cannot be empty")
	}
	if propertyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROPERTY", "Property ID cannot be empty")
	}
	if monthlyRent.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RENT", "Monthly rent cannot be negative")
	}
	if rentDueDay < 1 || rentDueDay > 31 {
		return nil, shared.NewDomainError("INVALID_RENT_DUE_DAY", "Rent due day must be between 1 and 31")
	}
	if leaseStart.IsZero() {
		return nil, shared.NewDomainError("INVALID_LEASE_START", "Lease start date is required")
	}

	return &Tenant{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		UnitID:           unitID,
		PropertyID:       propertyID,
		FullName:         fullName,
		MonthlyRent:      monthlyRent.Amount(),
		RentDueDay:       rentDueDay,
		Status:           TenantStatusActive,
		LeaseStart:       leaseStart,
	}, nil
}

// GetMonthlyRentMoney returns the monthly rent as Money
func (t *Tenant) GetMonthlyRentMoney() valueobject.Money {
	return valueobject.NewMoneyKES(t.MonthlyRent)
}

// IsActive returns true if the tenant is currently active
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// Terminate ends the tenancy as of the given date. Terminated
// tenants are excluded from future invoice generation but keep their
// invoice history.
func (t *Tenant) Terminate(asOf time.Time) error {
	if t.Status == TenantStatusTerminated {
		return shared.NewDomainError("INVALID_STATE", "Tenant is already terminated")
	}
	if asOf.Before(t.LeaseStart) {
		return shared.NewDomainError("INVALID_TERMINATION_DATE", "Termination date cannot precede lease start")
	}

	t.Status = TenantStatusTerminated
	t.LeaseEnd = &asOf
	t.Touch()
	t.IncrementVersion()
	return nil
}

// Deactivate marks the tenant inactive without ending the lease
func (t *Tenant) Deactivate() error {
	if t.Status != TenantStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only active tenants can be deactivated")
	}
	t.Status = TenantStatusInactive
	t.Touch()
	t.IncrementVersion()
	return nil
}

// LeasePeriod returns the tenant's lease as a period. An open-ended
// lease is capped at the given horizon so it can be intersected with
// billing periods.
func (t *Tenant) LeasePeriod(horizon time.Time) (valueobject.Period, error) {
	end := horizon
	if t.LeaseEnd != nil && t.LeaseEnd.Before(horizon) {
		end = *t.LeaseEnd
	}
	return valueobject.NewPeriod(t.LeaseStart, end)
}

// OccupancyIn returns the portion of the billing period the tenant
// actually occupies the unit, and false when the lease does not touch
// the period at all.
func (t *Tenant) OccupancyIn(period valueobject.Period) (valueobject.Period, bool) {
	lease, err := t.LeasePeriod(period.End())
	if err != nil {
		return valueobject.Period{}, false
	}
	return lease.ClampTo(period)
}

// ActiveDaysFraction returns occupied-days / period-days as an exact
// decimal, zero when the lease misses the period entirely.
func (t *Tenant) ActiveDaysFraction(period valueobject.Period) decimal.Decimal {
	occupancy, ok := t.OccupancyIn(period)
	if !ok {
		return decimal.Zero
	}
	return period.Fraction(occupancy)
}
