package invoicing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the payment status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusOpen          InvoiceStatus = "OPEN"           // Generated, nothing paid
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID" // 0 < paid < balance due
	InvoiceStatusPaid          InvoiceStatus = "PAID"           // Fully settled
	InvoiceStatusOverdue       InvoiceStatus = "OVERDUE"        // Past due date with balance outstanding
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusOpen, InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanApplyPayment returns true if payments can be applied in this status
func (s InvoiceStatus) CanApplyPayment() bool {
	return s == InvoiceStatusOpen || s == InvoiceStatusPartiallyPaid || s == InvoiceStatusOverdue
}

// LineItemType classifies what an invoice line bills for
type LineItemType string

const (
	LineItemTypeRent       LineItemType = "RENT"
	LineItemTypeUtility    LineItemType = "UTILITY"
	LineItemTypeAdjustment LineItemType = "ADJUSTMENT"
)

// IsValid checks if the line item type is valid
func (t LineItemType) IsValid() bool {
	switch t {
	case LineItemTypeRent, LineItemTypeUtility, LineItemTypeAdjustment:
		return true
	}
	return false
}

// LineItem is one billed line within the Invoice aggregate.
// Amount is always Quantity * Rate rounded to cents; flat lines use
// Quantity 1 with Rate equal to the amount.
type LineItem struct {
	ID            uuid.UUID       `json:"id"`
	Type          LineItemType    `json:"type"`
	UtilityTypeID *uuid.UUID      `json:"utility_type_id,omitempty"` // Set for UTILITY lines
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity"`
	Rate          decimal.Decimal `json:"rate"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewLineItem creates a line item with Amount derived from quantity and rate
func NewLineItem(itemType LineItemType, description string, quantity, rate decimal.Decimal) LineItem {
	return LineItem{
		ID:          uuid.New(),
		Type:        itemType,
		Description: description,
		Quantity:    quantity,
		Rate:        rate,
		Amount:      quantity.Mul(rate).Round(2),
	}
}

// LineItems is a slice of LineItem that implements GORM Scanner/Valuer for JSONB storage
type LineItems []LineItem

// Value implements driver.Valuer interface for GORM to store as JSONB
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (l *LineItems) Scan(value interface{}) error {
	if value == nil {
		*l = LineItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan LineItems: unsupported type")
	}

	if len(bytes) == 0 {
		*l = LineItems{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Total sums the line amounts
func (l LineItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range l {
		total = total.Add(item.Amount)
	}
	return total
}

// PaymentRecord represents a payment applied to the invoice.
// It is a value object within the Invoice aggregate, stored as JSONB.
type PaymentRecord struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method,omitempty"`
	Reference string          `json:"reference,omitempty"`
	AppliedAt time.Time       `json:"applied_at"`
}

// PaymentRecords is a slice of PaymentRecord that implements GORM Scanner/Valuer for JSONB storage
type PaymentRecords []PaymentRecord

// Value implements driver.Valuer interface for GORM to store as JSONB
func (p PaymentRecords) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (p *PaymentRecords) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentRecords{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PaymentRecords: unsupported type")
	}

	if len(bytes) == 0 {
		*p = PaymentRecords{}
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// Invoice represents a tenant's bill for one billing period.
// Line items and amounts are immutable once generated; payments mutate
// PaidAmount, Balance and Status only.
type Invoice struct {
	shared.OrgAggregateRoot
	InvoiceNumber  string          `json:"invoice_number"`
	TenantID       uuid.UUID       `json:"tenant_id"`
	UnitID         uuid.UUID       `json:"unit_id"`
	PropertyID     uuid.UUID       `json:"property_id"`
	PeriodStart    time.Time       `json:"period_start"`
	PeriodEnd      time.Time       `json:"period_end"`
	DueDate        time.Time       `json:"due_date"`
	Amount         decimal.Decimal `json:"amount"`          // Sum of line items for this period
	OpeningBalance decimal.Decimal `json:"opening_balance"` // Carried forward from the prior invoice
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	Balance        decimal.Decimal `json:"balance"` // Amount + OpeningBalance - PaidAmount
	Status         InvoiceStatus   `json:"status"`
	LineItems      LineItems       `json:"line_items"`
	PaymentRecords PaymentRecords  `json:"payment_records"`
	PaidAt         *time.Time      `json:"paid_at"`
}

// NewInvoice creates a new open invoice for the tenant and period
func NewInvoice(
	orgID uuid.UUID,
	invoiceNumber string,
	tenantID, unitID, propertyID uuid.UUID,
	period valueobject.Period,
	dueDate time.Time,
	lineItems LineItems,
	openingBalance decimal.Decimal,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if unitID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit ID cannot be empty")
	}
	if propertyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROPERTY", "Property ID cannot be empty")
	}
	if len(lineItems) == 0 {
		return nil, shared.NewDomainError("EMPTY_INVOICE", "Invoice must have at least one line item")
	}
	for _, item := range lineItems {
		if !item.Type.IsValid() {
			return nil, shared.NewDomainError("INVALID_LINE_ITEM", fmt.Sprintf("Line item type %q is not valid", item.Type))
		}
	}

	amount := lineItems.Total()
	inv := &Invoice{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		InvoiceNumber:    invoiceNumber,
		TenantID:         tenantID,
		UnitID:           unitID,
		PropertyID:       propertyID,
		PeriodStart:      period.Start(),
		PeriodEnd:        period.End(),
		DueDate:          dueDate,
		Amount:           amount,
		OpeningBalance:   openingBalance,
		PaidAmount:       decimal.Zero,
		Balance:          amount.Add(openingBalance),
		Status:           InvoiceStatusOpen,
		LineItems:        lineItems,
		PaymentRecords:   PaymentRecords{},
	}

	inv.AddDomainEvent(NewInvoiceGeneratedEvent(inv))

	return inv, nil
}

// Period returns the billing period the invoice covers
func (inv *Invoice) Period() valueobject.Period {
	period, _ := valueobject.NewPeriod(inv.PeriodStart, inv.PeriodEnd)
	return period
}

// ApplyPayment applies a payment to the invoice.
// Returns error if the payment exceeds the outstanding balance or the
// invoice is already settled.
func (inv *Invoice) ApplyPayment(amount valueobject.Money, method, reference string) error {
	if !inv.Status.CanApplyPayment() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply payment to invoice in %s status", inv.Status))
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.Amount().GreaterThan(inv.Balance) {
		return shared.NewDomainError("EXCEEDS_BALANCE", fmt.Sprintf("Payment amount %s exceeds outstanding balance %s",
			amount.Amount().StringFixed(2), inv.Balance.StringFixed(2)))
	}

	inv.PaymentRecords = append(inv.PaymentRecords, PaymentRecord{
		ID:        uuid.New(),
		Amount:    amount.Amount(),
		Method:    method,
		Reference: reference,
		AppliedAt: time.Now(),
	})

	inv.PaidAmount = inv.PaidAmount.Add(amount.Amount())
	inv.Balance = inv.Amount.Add(inv.OpeningBalance).Sub(inv.PaidAmount)

	if inv.Balance.IsZero() {
		now := time.Now()
		inv.Status = InvoiceStatusPaid
		inv.PaidAt = &now
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	} else {
		inv.Status = InvoiceStatusPartiallyPaid
		inv.AddDomainEvent(NewInvoicePartiallyPaidEvent(inv, amount.Amount()))
	}

	inv.Touch()
	inv.IncrementVersion()

	return nil
}

// IsOverdue returns true if the due date has passed with balance outstanding
func (inv *Invoice) IsOverdue(asOf time.Time) bool {
	return inv.Status != InvoiceStatusPaid && inv.Balance.IsPositive() && asOf.After(inv.DueDate)
}

// MarkOverdue transitions the invoice to OVERDUE if it is past due.
// Returns true if the status changed.
func (inv *Invoice) MarkOverdue(asOf time.Time) bool {
	if inv.Status == InvoiceStatusOverdue || !inv.IsOverdue(asOf) {
		return false
	}
	inv.Status = InvoiceStatusOverdue
	inv.Touch()
	inv.IncrementVersion()
	inv.AddDomainEvent(NewInvoiceOverdueEvent(inv))
	return true
}
