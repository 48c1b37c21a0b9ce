package leasing

import (
	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
)

// Property represents a rental property aggregate root.
// A property belongs to exactly one organization and owns its units.
type Property struct {
	shared.OrgAggregateRoot
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	LandlordID uuid.UUID `json:"landlord_id"`
	Units      []Unit    `json:"units,omitempty"`
}

// NewProperty creates a new property
func NewProperty(orgID, landlordID uuid.UUID, name, address string) (*Property, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PROPERTY_NAME", "Property name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_PROPERTY_NAME", "Property name cannot exceed 200 characters")
	}
	if landlordID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LANDLORD", "Landlord ID cannot be empty")
	}

	return &Property{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             name,
		Address:          address,
		LandlordID:       landlordID,
	}, nil
}

// UnitCount returns the number of units loaded on the property
func (p *Property) UnitCount() int {
	return len(p.Units)
}
