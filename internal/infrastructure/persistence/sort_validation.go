package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// Common allowed sort fields for entities with base fields
// These are the common fields present in most entities

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// PropertySortFields contains allowed sort fields for properties
var PropertySortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"name":        true,
	"address":     true,
	"landlord_id": true,
}

// UnitSortFields contains allowed sort fields for units
var UnitSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"property_id": true,
	"number":      true,
	"is_occupied": true,
}

// TenantSortFields contains allowed sort fields for tenants
var TenantSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"full_name":    true,
	"unit_id":      true,
	"property_id":  true,
	"monthly_rent": true,
	"rent_due_day": true,
	"status":       true,
	"lease_start":  true,
	"lease_end":    true,
}

// UtilityTypeSortFields contains allowed sort fields for utility types
var UtilityTypeSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"mode":       true,
}

// UtilityConfigSortFields contains allowed sort fields for utility configs
var UtilityConfigSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"utility_type_id": true,
	"property_id":     true,
	"unit_id":         true,
	"effective_from":  true,
	"effective_to":    true,
}

// MeterReadingSortFields contains allowed sort fields for meter readings
var MeterReadingSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"utility_config_id": true,
	"unit_id":           true,
	"value":             true,
	"reading_date":      true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"tenant_id":      true,
	"unit_id":        true,
	"property_id":    true,
	"period_start":   true,
	"period_end":     true,
	"due_date":       true,
	"amount":         true,
	"paid_amount":    true,
	"balance":        true,
	"status":         true,
	"paid_at":        true,
}
