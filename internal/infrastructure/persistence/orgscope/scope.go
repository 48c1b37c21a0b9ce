// Package orgscope provides organization-level database scoping for GORM.
//
// Every table that carries org-owned data has an org_id column. This
// package extracts the caller's access scope from the request context
// and applies WHERE org_id = ? to queries automatically, so a missing
// or foreign org can never read another organization's rows.
//
// Usage:
//
//	db := orgscope.NewOrgDB(gormDB)
//	scopedDB := db.WithContext(ctx) // automatically applies org filtering
//	scopedDB.Find(&invoices) // WHERE org_id = 'xxx' is auto-added
package orgscope

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/identity"
	"gorm.io/gorm"
)

// ErrOrgIDRequired is returned when no access scope is found in context
var ErrOrgIDRequired = errors.New("org scope is required but not found in context")

// ErrCrossOrgWrite is returned when a write targets a different org
// than the caller's scope.
var ErrCrossOrgWrite = errors.New("write rejected: row belongs to a different organization")

// OrgScope applies org filtering to GORM queries
func OrgScope(orgID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("org_id = ?", orgID)
	}
}

// OrgDB wraps GORM DB with automatic org scoping
type OrgDB struct {
	db       *gorm.DB
	required bool
}

// NewOrgDB creates a new OrgDB. Org scope is mandatory: queries
// without a scope in context fail rather than running unfiltered.
func NewOrgDB(db *gorm.DB) *OrgDB {
	return &OrgDB{db: db, required: true}
}

// DB returns the underlying GORM DB without org scoping.
// Use with caution - this bypasses org isolation.
func (o *OrgDB) DB() *gorm.DB {
	return o.db
}

// WithContext returns a GORM DB scoped to the org of the caller's
// access scope. Without a scope in context the returned DB errors on
// any operation instead of running unscoped.
func (o *OrgDB) WithContext(ctx context.Context) *gorm.DB {
	scope, ok := identity.ScopeFromContext(ctx)
	if !ok || scope.OrgID == uuid.Nil {
		if o.required {
			db := o.db.WithContext(ctx)
			_ = db.AddError(ErrOrgIDRequired)
			return db
		}
		return o.db.WithContext(ctx)
	}

	return o.db.WithContext(ctx).Scopes(OrgScope(scope.OrgID))
}

// WithOrg returns a GORM DB scoped to a specific org ID.
// Use this when you have the org ID directly rather than from context,
// e.g. in the scheduler which runs outside a request.
func (o *OrgDB) WithOrg(orgID uuid.UUID) *gorm.DB {
	if orgID == uuid.Nil {
		if o.required {
			db := o.db.Session(&gorm.Session{})
			_ = db.AddError(ErrOrgIDRequired)
			return db
		}
		return o.db
	}
	return o.db.Scopes(OrgScope(orgID))
}

// Transaction executes a function within a database transaction with org scope
func (o *OrgDB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	scope, ok := identity.ScopeFromContext(ctx)
	if (!ok || scope.OrgID == uuid.Nil) && o.required {
		return ErrOrgIDRequired
	}

	return o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if ok && scope.OrgID != uuid.Nil {
			tx = tx.Scopes(OrgScope(scope.OrgID))
		}
		return fn(tx)
	})
}

// Unscoped returns the underlying DB without any org scoping.
// WARNING: bypasses org isolation; only for system-level operations
// and migrations.
func (o *OrgDB) Unscoped() *gorm.DB {
	return o.db
}
