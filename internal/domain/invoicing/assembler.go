package invoicing

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/leasing"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Assembler builds invoices from a tenant's rent terms, computed
// utility charges and the balance carried over from the prior invoice.
type Assembler struct{}

// NewAssembler creates a new invoice assembler
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Assemble builds an open invoice for the tenant and period.
// The rent line is prorated by the tenant's active days in the period;
// a full month bills the monthly rent exactly. Utility charges become
// UTILITY lines in the order given. DueDate falls on the tenant's rent
// due day, clamped to the month's length.
func (a *Assembler) Assemble(
	tenant *leasing.Tenant,
	period valueobject.Period,
	charges []billing.Charge,
	openingBalance decimal.Decimal,
) (*Invoice, error) {
	rentLine, err := a.rentLine(tenant, period)
	if err != nil {
		return nil, err
	}

	lineItems := make(LineItems, 0, len(charges)+1)
	lineItems = append(lineItems, *rentLine)
	for _, charge := range charges {
		utilityTypeID := charge.UtilityTypeID
		lineItems = append(lineItems, LineItem{
			ID:            uuid.New(),
			Type:          LineItemTypeUtility,
			UtilityTypeID: &utilityTypeID,
			Description:   charge.Description,
			Quantity:      charge.Quantity,
			Rate:          charge.Rate,
			Amount:        charge.Amount,
		})
	}

	return NewInvoice(
		tenant.OrgID,
		newInvoiceNumber(period),
		tenant.ID,
		tenant.UnitID,
		tenant.PropertyID,
		period,
		period.DueDateFor(tenant.RentDueDay),
		lineItems,
		openingBalance,
	)
}

func (a *Assembler) rentLine(tenant *leasing.Tenant, period valueobject.Period) (*LineItem, error) {
	occupancy, ok := tenant.OccupancyIn(period)
	if !ok {
		return nil, shared.NewDomainError("NO_OCCUPANCY", "Tenant has no active days in the billing period")
	}

	rent := tenant.MonthlyRent
	description := fmt.Sprintf("Rent %s", period.Start().Format("January 2006"))
	if !occupancy.Equals(period) {
		fraction := period.Fraction(occupancy)
		rent = rent.Mul(fraction).Round(2)
		description = fmt.Sprintf("Rent %s (%d of %d days)",
			period.Start().Format("January 2006"), occupancy.Days(), period.Days())
	}

	line := NewLineItem(LineItemTypeRent, description, decimal.NewFromInt(1), rent)
	return &line, nil
}

// newInvoiceNumber derives a display number from the billing month and
// a random suffix. Uniqueness is enforced by the tenant+period
// constraint, not the number.
func newInvoiceNumber(period valueobject.Period) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("INV-%s-%s", period.Start().Format("200601"), suffix)
}
