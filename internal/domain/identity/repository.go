package identity

import (
	"context"

	"github.com/google/uuid"
)

// OrganizationRepository provides access to the organization directory.
// Organizations are global rows, not subject to org scoping.
type OrganizationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	FindByCode(ctx context.Context, code string) (*Organization, error)
	// FindActive returns every active organization. The scheduled
	// generation run iterates this list.
	FindActive(ctx context.Context) ([]Organization, error)
	Save(ctx context.Context, org *Organization) error
}
