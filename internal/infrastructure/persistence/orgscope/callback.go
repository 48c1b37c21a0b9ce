package orgscope

import (
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/identity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

const orgColumn = "org_id"

// OrgCallback provides GORM callback hooks for automatic org filtering
type OrgCallback struct {
	required bool
}

// NewOrgCallback creates a new org callback handler
func NewOrgCallback(required bool) *OrgCallback {
	return &OrgCallback{required: required}
}

// RegisterCallbacks registers org callbacks with GORM
func (oc *OrgCallback) RegisterCallbacks(db *gorm.DB) {
	_ = db.Callback().Query().Before("gorm:query").Register("orgscope:before_query", oc.addOrgFilter)
	_ = db.Callback().Update().Before("gorm:update").Register("orgscope:before_update", oc.addOrgFilter)
	_ = db.Callback().Delete().Before("gorm:delete").Register("orgscope:before_delete", oc.addOrgFilter)
	_ = db.Callback().Row().Before("gorm:row").Register("orgscope:before_row", oc.addOrgFilter)
	_ = db.Callback().Create().Before("gorm:create").Register("orgscope:before_create", oc.beforeCreate)
}

// beforeCreate stamps org_id on inserted rows and rejects rows that
// carry a different org than the caller's scope.
func (oc *OrgCallback) beforeCreate(db *gorm.DB) {
	if db.Statement.Context == nil || db.Statement.Schema == nil {
		return
	}

	// Unscoped writes bypass the guard the same way unscoped reads do.
	// System-side writers (the scheduler's job audit trail) use this and
	// stamp org_id on the row themselves.
	if db.Statement.Unscoped {
		return
	}

	// Tables without an org_id column (the org directory itself) are
	// not subject to scoping.
	field := db.Statement.Schema.LookUpField(orgColumn)
	if field == nil {
		return
	}

	scope, ok := identity.ScopeFromContext(db.Statement.Context)
	if !ok || scope.OrgID == uuid.Nil {
		if oc.required {
			_ = db.AddError(ErrOrgIDRequired)
		}
		return
	}

	switch db.Statement.ReflectValue.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < db.Statement.ReflectValue.Len(); i++ {
			oc.stampOrCheck(db, field, db.Statement.ReflectValue.Index(i), scope.OrgID)
		}
	default:
		oc.stampOrCheck(db, field, db.Statement.ReflectValue, scope.OrgID)
	}
}

func (oc *OrgCallback) stampOrCheck(db *gorm.DB, field *schema.Field, rv reflect.Value, orgID uuid.UUID) {
	value, isZero := field.ValueOf(db.Statement.Context, rv)
	if isZero {
		_ = field.Set(db.Statement.Context, rv, orgID)
		return
	}
	if rowOrg, ok := value.(uuid.UUID); ok && rowOrg != orgID {
		_ = db.AddError(ErrCrossOrgWrite)
	}
}

// addOrgFilter adds org filtering to the query
func (oc *OrgCallback) addOrgFilter(db *gorm.DB) {
	if db.Statement.Context == nil {
		return
	}

	if db.Statement.Unscoped {
		return
	}

	if db.Statement.Schema != nil && db.Statement.Schema.LookUpField(orgColumn) == nil {
		return
	}

	if oc.hasOrgCondition(db) {
		return
	}

	scope, ok := identity.ScopeFromContext(db.Statement.Context)
	if !ok || scope.OrgID == uuid.Nil {
		if oc.required {
			_ = db.AddError(ErrOrgIDRequired)
		}
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: clause.CurrentTable, Name: orgColumn},
				Value:  scope.OrgID.String(),
			},
		},
	})
}

// hasOrgCondition checks if an org_id condition is already present
func (oc *OrgCallback) hasOrgCondition(db *gorm.DB) bool {
	if whereClause, ok := db.Statement.Clauses["WHERE"]; ok {
		if where, ok := whereClause.Expression.(clause.Where); ok {
			for _, expr := range where.Exprs {
				if exprContainsOrg(expr) {
					return true
				}
			}
		}
	}

	sql := db.Statement.SQL.String()
	return sql != "" && strings.Contains(sql, orgColumn)
}

// exprContainsOrg checks if an expression contains the org_id column
func exprContainsOrg(expr clause.Expression) bool {
	switch e := expr.(type) {
	case clause.Expr:
		return strings.Contains(e.SQL, orgColumn)
	case clause.Eq:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == orgColumn
		}
	case clause.IN:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == orgColumn
		}
	case clause.AndConditions:
		for _, cond := range e.Exprs {
			if exprContainsOrg(cond) {
				return true
			}
		}
	case clause.OrConditions:
		for _, cond := range e.Exprs {
			if exprContainsOrg(cond) {
				return true
			}
		}
	}
	return false
}

// EnableAutoOrgFilter registers callbacks that automatically add
// org_id filtering to all queries on the GORM DB instance.
func EnableAutoOrgFilter(db *gorm.DB, required bool) {
	oc := NewOrgCallback(required)
	oc.RegisterCallbacks(db)
}

// DisableAutoOrgFilter removes the org callbacks (testing only)
func DisableAutoOrgFilter(db *gorm.DB) {
	_ = db.Callback().Query().Remove("orgscope:before_query")
	_ = db.Callback().Update().Remove("orgscope:before_update")
	_ = db.Callback().Delete().Remove("orgscope:before_delete")
	_ = db.Callback().Row().Remove("orgscope:before_row")
	_ = db.Callback().Create().Remove("orgscope:before_create")
}
