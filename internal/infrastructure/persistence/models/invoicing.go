package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// Line items and payment records are stored as JSONB columns, so the
// invoice and its lines are written in a single row insert. The unique
// index on (tenant_id, period_start, period_end) is the database-level
// idempotency guard for invoice generation.
type InvoiceModel struct {
	OrgAggregateModel
	InvoiceNumber  string                   `gorm:"type:varchar(50);not null;index"`
	TenantID       uuid.UUID                `gorm:"type:uuid;not null;index;uniqueIndex:idx_invoice_tenant_period,priority:1"`
	UnitID         uuid.UUID                `gorm:"type:uuid;not null;index"`
	PropertyID     uuid.UUID                `gorm:"type:uuid;not null;index"`
	PeriodStart    time.Time                `gorm:"not null;index;uniqueIndex:idx_invoice_tenant_period,priority:2"`
	PeriodEnd      time.Time                `gorm:"not null;uniqueIndex:idx_invoice_tenant_period,priority:3"`
	DueDate        time.Time                `gorm:"not null;index"`
	Amount         decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	OpeningBalance decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	PaidAmount     decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	Balance        decimal.Decimal          `gorm:"type:decimal(18,4);not null;index"`
	Status         invoicing.InvoiceStatus  `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	LineItems      invoicing.LineItems      `gorm:"type:jsonb;default:'[]'"`
	PaymentRecords invoicing.PaymentRecords `gorm:"type:jsonb;default:'[]'"`
	PaidAt         *time.Time
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	return &invoicing.Invoice{
		OrgAggregateRoot: m.orgAggregateRoot(),
		InvoiceNumber:    m.InvoiceNumber,
		TenantID:         m.TenantID,
		UnitID:           m.UnitID,
		PropertyID:       m.PropertyID,
		PeriodStart:      m.PeriodStart,
		PeriodEnd:        m.PeriodEnd,
		DueDate:          m.DueDate,
		Amount:           m.Amount,
		OpeningBalance:   m.OpeningBalance,
		PaidAmount:       m.PaidAmount,
		Balance:          m.Balance,
		Status:           m.Status,
		LineItems:        m.LineItems,
		PaymentRecords:   m.PaymentRecords,
		PaidAt:           m.PaidAt,
	}
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *invoicing.Invoice) {
	m.FromDomainOrgAggregateRoot(inv.OrgAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.TenantID = inv.TenantID
	m.UnitID = inv.UnitID
	m.PropertyID = inv.PropertyID
	m.PeriodStart = inv.PeriodStart
	m.PeriodEnd = inv.PeriodEnd
	m.DueDate = inv.DueDate
	m.Amount = inv.Amount
	m.OpeningBalance = inv.OpeningBalance
	m.PaidAmount = inv.PaidAmount
	m.Balance = inv.Balance
	m.Status = inv.Status
	m.LineItems = inv.LineItems
	m.PaymentRecords = inv.PaymentRecords
	m.PaidAt = inv.PaidAt
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}
