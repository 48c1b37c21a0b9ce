package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceGeneratedEvent is raised when a new invoice is generated
type InvoiceGeneratedEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	TenantID       uuid.UUID       `json:"tenant_id"`
	PropertyID     uuid.UUID       `json:"property_id"`
	PeriodStart    time.Time       `json:"period_start"`
	PeriodEnd      time.Time       `json:"period_end"`
	DueDate        time.Time       `json:"due_date"`
	Amount         decimal.Decimal `json:"amount"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Balance        decimal.Decimal `json:"balance"`
}

// EventType returns the event type name
func (e *InvoiceGeneratedEvent) EventType() string {
	return "InvoiceGenerated"
}

// NewInvoiceGeneratedEvent creates a new InvoiceGeneratedEvent
func NewInvoiceGeneratedEvent(inv *Invoice) *InvoiceGeneratedEvent {
	return &InvoiceGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceGenerated", "Invoice", inv.ID, inv.OrgID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		TenantID:        inv.TenantID,
		PropertyID:      inv.PropertyID,
		PeriodStart:     inv.PeriodStart,
		PeriodEnd:       inv.PeriodEnd,
		DueDate:         inv.DueDate,
		Amount:          inv.Amount,
		OpeningBalance:  inv.OpeningBalance,
		Balance:         inv.Balance,
	}
}

// InvoicePaidEvent is raised when an invoice is fully settled
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PaidAt        time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *InvoicePaidEvent) EventType() string {
	return "InvoicePaid"
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	paidAt := time.Now()
	if inv.PaidAt != nil {
		paidAt = *inv.PaidAt
	}
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoicePaid", "Invoice", inv.ID, inv.OrgID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		TenantID:        inv.TenantID,
		PaidAmount:      inv.PaidAmount,
		PaidAt:          paidAt,
	}
}

// InvoicePartiallyPaidEvent is raised when a payment leaves balance outstanding
type InvoicePartiallyPaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	Balance       decimal.Decimal `json:"balance"`
}

// EventType returns the event type name
func (e *InvoicePartiallyPaidEvent) EventType() string {
	return "InvoicePartiallyPaid"
}

// NewInvoicePartiallyPaidEvent creates a new InvoicePartiallyPaidEvent
func NewInvoicePartiallyPaidEvent(inv *Invoice, paymentAmount decimal.Decimal) *InvoicePartiallyPaidEvent {
	return &InvoicePartiallyPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoicePartiallyPaid", "Invoice", inv.ID, inv.OrgID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		TenantID:        inv.TenantID,
		PaymentAmount:   paymentAmount,
		Balance:         inv.Balance,
	}
}

// InvoiceOverdueEvent is raised when an invoice passes its due date unpaid
type InvoiceOverdueEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	DueDate       time.Time       `json:"due_date"`
	Balance       decimal.Decimal `json:"balance"`
}

// EventType returns the event type name
func (e *InvoiceOverdueEvent) EventType() string {
	return "InvoiceOverdue"
}

// NewInvoiceOverdueEvent creates a new InvoiceOverdueEvent
func NewInvoiceOverdueEvent(inv *Invoice) *InvoiceOverdueEvent {
	return &InvoiceOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceOverdue", "Invoice", inv.ID, inv.OrgID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		TenantID:        inv.TenantID,
		DueDate:         inv.DueDate,
		Balance:         inv.Balance,
	}
}
