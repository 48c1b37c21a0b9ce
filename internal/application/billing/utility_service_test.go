package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/identity"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUtilityTypeRepo struct {
	types []*billing.UtilityType
}

func (f *fakeUtilityTypeRepo) FindByID(_ context.Context, orgID, id uuid.UUID) (*billing.UtilityType, error) {
	for _, ut := range f.types {
		if ut.OrgID == orgID && ut.ID == id {
			return ut, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeUtilityTypeRepo) FindAll(_ context.Context, orgID uuid.UUID) ([]billing.UtilityType, error) {
	var out []billing.UtilityType
	for _, ut := range f.types {
		if ut.OrgID == orgID {
			out = append(out, *ut)
		}
	}
	return out, nil
}

func (f *fakeUtilityTypeRepo) Save(_ context.Context, utilityType *billing.UtilityType) error {
	f.types = append(f.types, utilityType)
	return nil
}

type fakeUtilityConfigRepo struct {
	configs []*billing.UtilityConfig
}

func (f *fakeUtilityConfigRepo) FindEffectiveForUnit(_ context.Context, orgID, propertyID, unitID uuid.UUID, period valueobject.Period) ([]billing.UtilityConfig, error) {
	var out []billing.UtilityConfig
	for _, cfg := range f.configs {
		if cfg.OrgID == orgID && cfg.PropertyID == propertyID &&
			cfg.AppliesTo(unitID) && cfg.IsEffectiveDuring(period) {
			out = append(out, *cfg)
		}
	}
	return out, nil
}

func (f *fakeUtilityConfigRepo) FindByProperty(_ context.Context, orgID, propertyID uuid.UUID) ([]billing.UtilityConfig, error) {
	var out []billing.UtilityConfig
	for _, cfg := range f.configs {
		if cfg.OrgID == orgID && cfg.PropertyID == propertyID {
			out = append(out, *cfg)
		}
	}
	return out, nil
}

func (f *fakeUtilityConfigRepo) Save(_ context.Context, config *billing.UtilityConfig) error {
	f.configs = append(f.configs, config)
	return nil
}

type fakeMeterReadingRepo struct {
	readings []*billing.MeterReading
}

func (f *fakeMeterReadingRepo) FindLatestAtOrBefore(_ context.Context, orgID, configID, unitID uuid.UUID, boundary time.Time) (*billing.MeterReading, error) {
	var latest *billing.MeterReading
	for _, r := range f.readings {
		if r.OrgID != orgID || r.UtilityConfigID != configID || r.UnitID != unitID {
			continue
		}
		if r.ReadingDate.After(boundary) {
			continue
		}
		if latest == nil || r.ReadingDate.After(latest.ReadingDate) {
			latest = r
		}
	}
	if latest == nil {
		return nil, shared.ErrNotFound
	}
	return latest, nil
}

func (f *fakeMeterReadingRepo) Save(_ context.Context, reading *billing.MeterReading) error {
	f.readings = append(f.readings, reading)
	return nil
}

func managerCtx(orgID uuid.UUID) context.Context {
	return identity.WithScope(context.Background(),
		identity.NewAccessScope(orgID, uuid.New(),
			identity.CapViewOrgProperties, identity.CapManageBilling))
}

func newService() (*UtilityService, *fakeUtilityTypeRepo, *fakeUtilityConfigRepo, *fakeMeterReadingRepo) {
	typeRepo := &fakeUtilityTypeRepo{}
	configRepo := &fakeUtilityConfigRepo{}
	readingRepo := &fakeMeterReadingRepo{}
	return NewUtilityService(typeRepo, configRepo, readingRepo, nil), typeRepo, configRepo, readingRepo
}

func TestUtilityService_CreateUtilityType(t *testing.T) {
	orgID := uuid.New()

	t.Run("creates type", func(t *testing.T) {
		service, typeRepo, _, _ := newService()

		utilityType, err := service.CreateUtilityType(managerCtx(orgID), "Water", billing.BillingModeMetered, "m3")
		require.NoError(t, err)
		assert.Equal(t, orgID, utilityType.OrgID)
		assert.Equal(t, billing.BillingModeMetered, utilityType.Mode)
		assert.Len(t, typeRepo.types, 1)
	})

	t.Run("tenant role is forbidden", func(t *testing.T) {
		service, _, _, _ := newService()
		ctx := identity.WithScope(context.Background(),
			identity.NewTenantAccessScope(orgID, uuid.New(), uuid.New()))

		_, err := service.CreateUtilityType(ctx, "Water", billing.BillingModeMetered, "m3")
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestUtilityService_CreateUtilityConfig(t *testing.T) {
	orgID := uuid.New()
	propertyID := uuid.New()
	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	t.Run("creates property-wide config", func(t *testing.T) {
		service, _, configRepo, _ := newService()
		ctx := managerCtx(orgID)
		utilityType, err := service.CreateUtilityType(ctx, "Garbage", billing.BillingModeFixed, "")
		require.NoError(t, err)

		config, err := service.CreateUtilityConfig(ctx, CreateConfigInput{
			UtilityTypeID: utilityType.ID,
			PropertyID:    propertyID,
			EffectiveFrom: from,
			Amount:        decimal.NewFromInt(500),
		})
		require.NoError(t, err)
		assert.False(t, config.IsUnitScoped())
		assert.True(t, config.FixedAmount.Equal(decimal.NewFromInt(500)))
		assert.Len(t, configRepo.configs, 1)
	})

	t.Run("overlapping range for same scope is rejected", func(t *testing.T) {
		service, _, _, _ := newService()
		ctx := managerCtx(orgID)
		utilityType, err := service.CreateUtilityType(ctx, "Garbage", billing.BillingModeFixed, "")
		require.NoError(t, err)

		_, err = service.CreateUtilityConfig(ctx, CreateConfigInput{
			UtilityTypeID: utilityType.ID,
			PropertyID:    propertyID,
			EffectiveFrom: from,
			Amount:        decimal.NewFromInt(500),
		})
		require.NoError(t, err)

		_, err = service.CreateUtilityConfig(ctx, CreateConfigInput{
			UtilityTypeID: utilityType.ID,
			PropertyID:    propertyID,
			EffectiveFrom: from.AddDate(0, 3, 0),
			Amount:        decimal.NewFromInt(600),
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONFIG_OVERLAP", domainErr.Code)
	})

	t.Run("closed range followed by open range is allowed", func(t *testing.T) {
		service, _, configRepo, _ := newService()
		ctx := managerCtx(orgID)
		utilityType, err := service.CreateUtilityType(ctx, "Garbage", billing.BillingModeFixed, "")
		require.NoError(t, err)

		firstEnd := from.AddDate(0, 6, 0)
		_, err = service.CreateUtilityConfig(ctx, CreateConfigInput{
			UtilityTypeID: utilityType.ID,
			PropertyID:    propertyID,
			EffectiveFrom: from,
			EffectiveTo:   &firstEnd,
			Amount:        decimal.NewFromInt(500),
		})
		require.NoError(t, err)

		_, err = service.CreateUtilityConfig(ctx, CreateConfigInput{
			UtilityTypeID: utilityType.ID,
			PropertyID:    propertyID,
			EffectiveFrom: firstEnd,
			Amount:        decimal.NewFromInt(600),
		})
		require.NoError(t, err)
		assert.Len(t, configRepo.configs, 2)
	})

	t.Run("unknown utility type is not found", func(t *testing.T) {
		service, _, _, _ := newService()

		_, err := service.CreateUtilityConfig(managerCtx(orgID), CreateConfigInput{
			UtilityTypeID: uuid.New(),
			PropertyID:    propertyID,
			EffectiveFrom: from,
			Amount:        decimal.NewFromInt(500),
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestUtilityService_RecordReading(t *testing.T) {
	orgID := uuid.New()
	configID := uuid.New()
	unitID := uuid.New()
	date := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)

	t.Run("records first reading", func(t *testing.T) {
		service, _, _, readingRepo := newService()

		reading, err := service.RecordReading(managerCtx(orgID), configID, unitID,
			decimal.NewFromInt(120), date)
		require.NoError(t, err)
		assert.Equal(t, configID, reading.UtilityConfigID)
		require.NotNil(t, reading.RecordedBy)
		assert.Len(t, readingRepo.readings, 1)
	})

	t.Run("rejects reading below previous value", func(t *testing.T) {
		service, _, _, _ := newService()
		ctx := managerCtx(orgID)

		_, err := service.RecordReading(ctx, configID, unitID, decimal.NewFromInt(120), date)
		require.NoError(t, err)

		_, err = service.RecordReading(ctx, configID, unitID,
			decimal.NewFromInt(100), date.AddDate(0, 1, 0))
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NEGATIVE_CONSUMPTION", domainErr.Code)
	})

	t.Run("accepts increasing readings", func(t *testing.T) {
		service, _, _, readingRepo := newService()
		ctx := managerCtx(orgID)

		_, err := service.RecordReading(ctx, configID, unitID, decimal.NewFromInt(120), date)
		require.NoError(t, err)
		_, err = service.RecordReading(ctx, configID, unitID,
			decimal.NewFromInt(135), date.AddDate(0, 1, 0))
		require.NoError(t, err)
		assert.Len(t, readingRepo.readings, 2)
	})
}
