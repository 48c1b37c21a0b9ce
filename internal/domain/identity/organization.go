package identity

import (
	"strings"

	"github.com/rentledger/backend/internal/domain/shared"
)

// OrganizationStatus represents the lifecycle status of an organization
type OrganizationStatus string

const (
	OrganizationStatusActive    OrganizationStatus = "ACTIVE"
	OrganizationStatusSuspended OrganizationStatus = "SUSPENDED"
	OrganizationStatusInactive  OrganizationStatus = "INACTIVE"
)

// Organization is the landlord organization, the isolation boundary of
// the system. Every property, tenant, utility config and invoice hangs
// off exactly one organization; the monthly generation run iterates
// active organizations.
type Organization struct {
	shared.BaseAggregateRoot
	Code         string             `json:"code"`
	Name         string             `json:"name"`
	Status       OrganizationStatus `json:"status"`
	ContactName  string             `json:"contact_name"`
	ContactPhone string             `json:"contact_phone"`
	ContactEmail string             `json:"contact_email"`
	Currency     string             `json:"currency"`
	Timezone     string             `json:"timezone"`
}

// NewOrganization creates a new active organization
func NewOrganization(code, name string) (*Organization, error) {
	if err := validateOrganizationCode(code); err != nil {
		return nil, err
	}
	if err := validateOrganizationName(name); err != nil {
		return nil, err
	}

	return &Organization{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Status:            OrganizationStatusActive,
		Currency:          "KES",
		Timezone:          "Africa/Nairobi",
	}, nil
}

// Update updates the organization's basic information
func (o *Organization) Update(name string) error {
	if err := validateOrganizationName(name); err != nil {
		return err
	}
	o.Name = name
	o.Touch()
	o.IncrementVersion()
	return nil
}

// SetContact sets the organization's contact information
func (o *Organization) SetContact(contactName, phone, email string) error {
	if contactName != "" && len(contactName) > 100 {
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot exceed 100 characters")
	}
	if phone != "" && len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	if email != "" && len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}

	o.ContactName = contactName
	o.ContactPhone = phone
	o.ContactEmail = email
	o.Touch()
	o.IncrementVersion()
	return nil
}

// Activate activates the organization
func (o *Organization) Activate() error {
	if o.Status == OrganizationStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Organization is already active")
	}
	o.Status = OrganizationStatusActive
	o.Touch()
	o.IncrementVersion()
	return nil
}

// Suspend suspends the organization. Suspended organizations are
// excluded from scheduled invoice generation.
func (o *Organization) Suspend() error {
	if o.Status == OrganizationStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Organization is already suspended")
	}
	o.Status = OrganizationStatusSuspended
	o.Touch()
	o.IncrementVersion()
	return nil
}

// Deactivate deactivates the organization
func (o *Organization) Deactivate() error {
	if o.Status == OrganizationStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Organization is already inactive")
	}
	o.Status = OrganizationStatusInactive
	o.Touch()
	o.IncrementVersion()
	return nil
}

// IsActive returns true if the organization is active
func (o *Organization) IsActive() bool {
	return o.Status == OrganizationStatusActive
}

func validateOrganizationCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Organization code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Organization code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Organization code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateOrganizationName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Organization name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Organization name cannot exceed 200 characters")
	}
	return nil
}
