// Package identity defines the caller identity and capability model used
// by the isolation guard. A caller's capabilities are resolved once per
// request from their role and carried alongside the org/user identity;
// data access layers consult the AccessScope instead of re-checking
// roles per endpoint.
package identity

import (
	"context"

	"github.com/google/uuid"
)

// Capability is a coarse permission evaluated at the data-access boundary
type Capability string

const (
	// CapViewOwnTenantData allows a renter to read resources tied to
	// their own tenant record (their invoices, their meter readings).
	CapViewOwnTenantData Capability = "VIEW_OWN_TENANT_DATA"
	// CapViewOrgProperties allows reading data for properties the
	// caller is assigned to manage.
	CapViewOrgProperties Capability = "VIEW_ORG_PROPERTIES"
	// CapManageBilling allows triggering invoice generation and
	// maintaining utility configuration.
	CapManageBilling Capability = "MANAGE_BILLING"
	// CapAdminAll grants unrestricted access within the organization.
	CapAdminAll Capability = "ADMIN_ALL"
)

// IsValid checks if the capability is known
func (c Capability) IsValid() bool {
	switch c {
	case CapViewOwnTenantData, CapViewOrgProperties, CapManageBilling, CapAdminAll:
		return true
	}
	return false
}

// Role is a named bundle of capabilities
type Role string

const (
	RoleAdmin           Role = "ADMIN"
	RolePropertyManager Role = "PROPERTY_MANAGER"
	RoleTenant          Role = "TENANT"
)

// CapabilitiesFor returns the capability set granted by a role
func CapabilitiesFor(role Role) []Capability {
	switch role {
	case RoleAdmin:
		return []Capability{CapAdminAll, CapManageBilling, CapViewOrgProperties}
	case RolePropertyManager:
		return []Capability{CapViewOrgProperties, CapManageBilling}
	case RoleTenant:
		return []Capability{CapViewOwnTenantData}
	default:
		return nil
	}
}

// AccessScope is the resolved identity of the caller. It is built once
// by the authentication middleware and flows through context to every
// repository call; nothing below the HTTP layer re-parses tokens.
type AccessScope struct {
	OrgID        uuid.UUID
	UserID       uuid.UUID
	Capabilities map[Capability]bool
	// PropertyIDs restricts property-manager callers to their assigned
	// properties. Empty with CapViewOrgProperties means all org
	// properties.
	PropertyIDs []uuid.UUID
	// TenantID is set for tenant-role callers and pins them to their
	// own renter record.
	TenantID *uuid.UUID
}

// NewAccessScope builds an AccessScope for an org caller with the given capabilities
func NewAccessScope(orgID, userID uuid.UUID, caps ...Capability) AccessScope {
	capSet := make(map[Capability]bool, len(caps))
	for _, c := range caps {
		capSet[c] = true
	}
	return AccessScope{
		OrgID:        orgID,
		UserID:       userID,
		Capabilities: capSet,
	}
}

// NewTenantAccessScope builds the restricted scope for a renter caller
func NewTenantAccessScope(orgID, userID, tenantID uuid.UUID) AccessScope {
	scope := NewAccessScope(orgID, userID, CapViewOwnTenantData)
	scope.TenantID = &tenantID
	return scope
}

// Has returns true if the scope carries the capability (AdminAll implies all)
func (s AccessScope) Has(cap Capability) bool {
	if s.Capabilities[CapAdminAll] {
		return true
	}
	return s.Capabilities[cap]
}

// IsAdmin returns true for unrestricted org access
func (s AccessScope) IsAdmin() bool {
	return s.Capabilities[CapAdminAll]
}

// IsTenantOnly returns true when the caller may only see their own
// tenant-scoped resources
func (s AccessScope) IsTenantOnly() bool {
	return s.TenantID != nil && !s.Has(CapViewOrgProperties)
}

// CanAccessProperty checks property-level assignment for non-admin callers
func (s AccessScope) CanAccessProperty(propertyID uuid.UUID) bool {
	if s.IsAdmin() {
		return true
	}
	if !s.Has(CapViewOrgProperties) {
		return false
	}
	if len(s.PropertyIDs) == 0 {
		return true
	}
	for _, id := range s.PropertyIDs {
		if id == propertyID {
			return true
		}
	}
	return false
}

// CanAccessTenant checks whether the caller may read the given renter's data
func (s AccessScope) CanAccessTenant(tenantID uuid.UUID) bool {
	if s.Has(CapViewOrgProperties) {
		return true
	}
	return s.TenantID != nil && *s.TenantID == tenantID
}

type scopeContextKey struct{}

// WithScope attaches an AccessScope to the context
func WithScope(ctx context.Context, scope AccessScope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// ScopeFromContext retrieves the caller's AccessScope. The second
// return value is false when no scope was attached (unauthenticated
// internal callers such as the scheduler must build their own).
func ScopeFromContext(ctx context.Context) (AccessScope, bool) {
	scope, ok := ctx.Value(scopeContextKey{}).(AccessScope)
	return scope, ok
}
