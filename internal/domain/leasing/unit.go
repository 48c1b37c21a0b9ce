package leasing

import (
	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
)

// Unit represents a rentable unit within a property. Occupancy is
// derived from the presence of an active tenant, never set directly
// by callers.
type Unit struct {
	shared.OrgAggregateRoot
	PropertyID uuid.UUID `json:"property_id"`
	Number     string    `json:"number"`
	IsOccupied bool      `json:"is_occupied"`
}

// NewUnit creates a new unit under a property
func NewUnit(orgID, propertyID uuid.UUID, number string) (*Unit, error) {
	if propertyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROPERTY", "Property ID cannot be empty")
	}
	if number == "" {
		return nil, shared.NewDomainError("INVALID_UNIT_NUMBER", "Unit number cannot be empty")
	}

	return &Unit{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		PropertyID:       propertyID,
		Number:           number,
	}, nil
}

// MarkOccupied flags the unit as occupied by an active tenant
func (u *Unit) MarkOccupied() {
	u.IsOccupied = true
	u.IncrementVersion()
}

// MarkVacant flags the unit as vacant
func (u *Unit) MarkVacant() {
	u.IsOccupied = false
	u.IncrementVersion()
}
