package invoicing

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/identity"
	"github.com/rentledger/backend/internal/domain/invoicing"
	"github.com/rentledger/backend/internal/domain/leasing"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory fakes. The invoice store enforces the same tenant+period
// uniqueness the database constraint does, so idempotency tests run
// against real skip behavior.

type fakeTenantRepo struct {
	tenants []leasing.Tenant
}

func (f *fakeTenantRepo) FindByID(_ context.Context, _, id uuid.UUID) (*leasing.Tenant, error) {
	for i := range f.tenants {
		if f.tenants[i].ID == id {
			return &f.tenants[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeTenantRepo) FindActiveForPeriod(_ context.Context, orgID uuid.UUID, period valueobject.Period, propertyIDs []uuid.UUID) ([]leasing.Tenant, error) {
	var out []leasing.Tenant
	for _, tenant := range f.tenants {
		if tenant.OrgID != orgID {
			continue
		}
		if _, ok := tenant.OccupancyIn(period); !ok {
			continue
		}
		if len(propertyIDs) > 0 {
			match := false
			for _, id := range propertyIDs {
				if id == tenant.PropertyID {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, tenant)
	}
	return out, nil
}

func (f *fakeTenantRepo) FindActiveByUnit(_ context.Context, _, _ uuid.UUID) (*leasing.Tenant, error) {
	return nil, shared.ErrNotFound
}

func (f *fakeTenantRepo) Save(_ context.Context, _ *leasing.Tenant) error { return nil }

type fakeInvoiceRepo struct {
	mu       sync.Mutex
	invoices []*invoicing.Invoice
	saveErr  error
}

func (f *fakeInvoiceRepo) key(inv *invoicing.Invoice) string {
	return fmt.Sprintf("%s|%s|%s", inv.TenantID, inv.PeriodStart.Format("2006-01-02"), inv.PeriodEnd.Format("2006-01-02"))
}

func (f *fakeInvoiceRepo) FindByID(_ context.Context, orgID, id uuid.UUID) (*invoicing.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invoices {
		if inv.OrgID == orgID && inv.ID == id {
			return inv, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeInvoiceRepo) FindByTenantAndPeriod(_ context.Context, orgID, tenantID uuid.UUID, period valueobject.Period) (*invoicing.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invoices {
		if inv.OrgID == orgID && inv.TenantID == tenantID &&
			inv.PeriodStart.Equal(period.Start()) && inv.PeriodEnd.Equal(period.End()) {
			return inv, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeInvoiceRepo) FindLatestBefore(_ context.Context, orgID, tenantID uuid.UUID, period valueobject.Period) (*invoicing.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *invoicing.Invoice
	for _, inv := range f.invoices {
		if inv.OrgID != orgID || inv.TenantID != tenantID {
			continue
		}
		if !inv.PeriodStart.Before(period.Start()) {
			continue
		}
		if latest == nil || inv.PeriodStart.After(latest.PeriodStart) {
			latest = inv
		}
	}
	if latest == nil {
		return nil, shared.ErrNotFound
	}
	return latest, nil
}

func (f *fakeInvoiceRepo) FindAll(_ context.Context, orgID uuid.UUID, _ invoicing.InvoiceFilter) ([]invoicing.Invoice, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []invoicing.Invoice
	for _, inv := range f.invoices {
		if inv.OrgID == orgID {
			out = append(out, *inv)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeInvoiceRepo) FindUnpaidPastDue(_ context.Context, orgID uuid.UUID, asOf time.Time) ([]invoicing.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []invoicing.Invoice
	for _, inv := range f.invoices {
		if inv.OrgID == orgID && inv.IsOverdue(asOf) {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeInvoiceRepo) Save(_ context.Context, invoice *invoicing.Invoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	for i, existing := range f.invoices {
		if existing.ID == invoice.ID {
			f.invoices[i] = invoice
			return nil
		}
		if f.key(existing) == f.key(invoice) {
			return shared.ErrDuplicateInvoice
		}
	}
	f.invoices = append(f.invoices, invoice)
	return nil
}

type fakeCalculator struct {
	charges  []billing.Charge
	warnings []billing.Warning
	err      error
}

func (f *fakeCalculator) ComputeCharges(_ context.Context, _ *leasing.Tenant, _ valueobject.Period) ([]billing.Charge, []billing.Warning, error) {
	return f.charges, f.warnings, f.err
}

type generationFixture struct {
	orgID       uuid.UUID
	tenantRepo  *fakeTenantRepo
	invoiceRepo *fakeInvoiceRepo
	calculator  *fakeCalculator
	service     *GenerationService
}

func newGenerationFixture(tenantCount int) *generationFixture {
	f := &generationFixture{
		orgID:       uuid.New(),
		tenantRepo:  &fakeTenantRepo{},
		invoiceRepo: &fakeInvoiceRepo{},
		calculator:  &fakeCalculator{},
	}
	for i := 0; i < tenantCount; i++ {
		tenant, err := leasing.NewTenant(f.orgID, uuid.New(), uuid.New(),
			fmt.Sprintf("Tenant %d", i+1),
			valueobject.NewMoneyKESFromFloat(10000), 5,
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		if err != nil {
			panic(err)
		}
		f.tenantRepo.tenants = append(f.tenantRepo.tenants, *tenant)
	}
	f.service = NewGenerationService(f.tenantRepo, f.invoiceRepo, f.calculator, nil,
		GenerationServiceConfig{Workers: 2})
	return f
}

func (f *generationFixture) billingContext() context.Context {
	scope := identity.NewAccessScope(f.orgID, uuid.New(), identity.CapManageBilling, identity.CapViewOrgProperties)
	return identity.WithScope(context.Background(), scope)
}

func TestGenerationService_GenerateForPeriod(t *testing.T) {
	t.Run("creates one invoice per active tenant", func(t *testing.T) {
		f := newGenerationFixture(3)
		ctx := f.billingContext()

		result, err := f.service.GenerateForPeriod(ctx, 2024, time.March)
		require.NoError(t, err)

		assert.Equal(t, 3, result.Created)
		assert.Equal(t, 0, result.Skipped)
		assert.Equal(t, 0, result.Failed)
		assert.Len(t, f.invoiceRepo.invoices, 3)
		for _, res := range result.Results {
			assert.Equal(t, OutcomeCreated, res.Outcome)
			require.NotNil(t, res.InvoiceID)
		}
	})

	t.Run("second run creates nothing", func(t *testing.T) {
		f := newGenerationFixture(3)
		ctx := f.billingContext()

		first, err := f.service.GenerateForPeriod(ctx, 2024, time.March)
		require.NoError(t, err)
		require.Equal(t, 3, first.Created)

		second, err := f.service.GenerateForPeriod(ctx, 2024, time.March)
		require.NoError(t, err)

		assert.Equal(t, 0, second.Created)
		assert.Equal(t, 3, second.Skipped)
		assert.Len(t, f.invoiceRepo.invoices, 3)
	})

	t.Run("different month generates again", func(t *testing.T) {
		f := newGenerationFixture(1)
		ctx := f.billingContext()

		_, err := f.service.GenerateForPeriod(ctx, 2024, time.March)
		require.NoError(t, err)
		result, err := f.service.GenerateForPeriod(ctx, 2024, time.April)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Created)
		assert.Len(t, f.invoiceRepo.invoices, 2)
	})

	t.Run("prior balance carries into the next invoice", func(t *testing.T) {
		f := newGenerationFixture(1)
		ctx := f.billingContext()

		_, err := f.service.GenerateForPeriod(ctx, 2024, time.March)
		require.NoError(t, err)
		require.Len(t, f.invoiceRepo.invoices, 1)
		march := f.invoiceRepo.invoices[0]
		assert.Equal(t, "10000.00", march.Balance.StringFixed(2))

		_, err = f.service.GenerateForPeriod(ctx, 2024, time.April)
		require.NoError(t, err)
		require.Len(t, f.invoiceRepo.invoices, 2)

		var april *invoicing.Invoice
		for _, inv := range f.invoiceRepo.invoices {
			if inv.PeriodStart.Month() == time.April {
				april = inv
			}
		}
		require.NotNil(t, april)
		assert.Equal(t, "10000.00", april.OpeningBalance.StringFixed(2))
		assert.Equal(t, "20000.00", april.Balance.StringFixed(2))
	})

	t.Run("utility charges become invoice lines", func(t *testing.T) {
		f := newGenerationFixture(1)
		f.calculator.charges = []billing.Charge{{
			UtilityTypeID: uuid.New(),
			Description:   "Water (metered consumption)",
			Quantity:      decimal.NewFromInt(20),
			Rate:          decimal.NewFromInt(10),
			Amount:        decimal.NewFromInt(200),
		}}
		ctx := f.billingContext()

		result, err := f.service.GenerateForPeriod(ctx, 2024, time.March)
		require.NoError(t, err)
		require.Equal(t, 1, result.Created)

		invoice := f.invoiceRepo.invoices[0]
		require.Len(t, invoice.LineItems, 2)
		assert.Equal(t, "10200.00", invoice.Amount.StringFixed(2))
	})

	t.Run("calculator warnings surface in the result", func(t *testing.T) {
		f := newGenerationFixture(1)
		f.calculator.warnings = []billing.Warning{{
			Code:        billing.WarnMissingReading,
			UtilityType: "Water",
			Message:     "no reading at or before period end",
		}}
		ctx := f.billingContext()

		result, err := f.service.GenerateForPeriod(ctx, 2024, time.March)
		require.NoError(t, err)

		require.Equal(t, 1, result.Created)
		require.Len(t, result.Results[0].Warnings, 1)
		assert.Equal(t, billing.WarnMissingReading, result.Results[0].Warnings[0].Code)
	})

	t.Run("duplicate insert from concurrent run counts as skipped", func(t *testing.T) {
		f := newGenerationFixture(1)
		f.invoiceRepo.saveErr = shared.ErrDuplicateInvoice
		ctx := f.billingContext()

		result, err := f.service.GenerateForPeriod(ctx, 2024, time.March)
		require.NoError(t, err)

		assert.Equal(t, 0, result.Created)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, 0, result.Failed)
	})

	t.Run("tenant outside lease period is not billed", func(t *testing.T) {
		f := newGenerationFixture(1)
		ctx := f.billingContext()

		// Lease starts January 2024; December 2023 has no coverage.
		result, err := f.service.GenerateForPeriod(ctx, 2023, time.December)
		require.NoError(t, err)

		assert.Equal(t, 0, result.Created)
		assert.Empty(t, result.Results)
	})

	t.Run("property manager scope restricts tenants", func(t *testing.T) {
		f := newGenerationFixture(2)
		scope := identity.NewAccessScope(f.orgID, uuid.New(), identity.CapManageBilling, identity.CapViewOrgProperties)
		scope.PropertyIDs = []uuid.UUID{f.tenantRepo.tenants[0].PropertyID}
		ctx := identity.WithScope(context.Background(), scope)

		result, err := f.service.GenerateForPeriod(ctx, 2024, time.March)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Created)
	})

	t.Run("missing scope is unauthorized", func(t *testing.T) {
		f := newGenerationFixture(1)

		_, err := f.service.GenerateForPeriod(context.Background(), 2024, time.March)
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("scope without billing capability is forbidden", func(t *testing.T) {
		f := newGenerationFixture(1)
		scope := identity.NewAccessScope(f.orgID, uuid.New(), identity.CapViewOrgProperties)
		ctx := identity.WithScope(context.Background(), scope)

		_, err := f.service.GenerateForPeriod(ctx, 2024, time.March)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("cancelled context stops between tenants", func(t *testing.T) {
		f := newGenerationFixture(5)
		ctx, cancel := context.WithCancel(f.billingContext())
		cancel()

		result, err := f.service.GenerateForPeriod(ctx, 2024, time.March)
		require.ErrorIs(t, err, context.Canceled)
		require.NotNil(t, result)
		assert.Equal(t, 0, result.Created)
	})
}
