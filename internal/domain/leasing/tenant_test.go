package leasing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func createTestTenant(t *testing.T, leaseStart time.Time) *Tenant {
	tenant, err := NewTenant(
		uuid.New(),
		uuid.New(),
		uuid.New(),
		"Jane Wanjiku",
		valueobject.NewMoneyKESFromFloat(25000),
		5,
		leaseStart,
	)
	require.NoError(t, err)
	return tenant
}

func TestNewTenant(t *testing.T) {
	t.Run("valid tenant starts active", func(t *testing.T) {
		tenant := createTestTenant(t, date(2024, 1, 1))
		assert.Equal(t, TenantStatusActive, tenant.Status)
		assert.True(t, tenant.IsActive())
		assert.Equal(t, "25000.00", tenant.GetMonthlyRentMoney().StringFixed(2))
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewTenant(uuid.New(), uuid.New(), uuid.New(), "",
			valueobject.NewMoneyKESFromFloat(1000), 1, date(2024, 1, 1))
		assert.Error(t, err)
	})

	t.Run("rejects rent due day out of range", func(t *testing.T) {
		for _, day := range []int{0, 32, -1} {
			_, err := NewTenant(uuid.New(), uuid.New(), uuid.New(), "X",
				valueobject.NewMoneyKESFromFloat(1000), day, date(2024, 1, 1))
			assert.Error(t, err, "day %d should be rejected", day)
		}
	})

	t.Run("rejects negative rent", func(t *testing.T) {
		_, err := NewTenant(uuid.New(), uuid.New(), uuid.New(), "X",
			valueobject.NewMoneyKESFromFloat(-1), 1, date(2024, 1, 1))
		assert.Error(t, err)
	})
}

func TestTenant_Terminate(t *testing.T) {
	t.Run("terminates active tenant", func(t *testing.T) {
		tenant := createTestTenant(t, date(2024, 1, 1))
		require.NoError(t, tenant.Terminate(date(2024, 6, 30)))
		assert.Equal(t, TenantStatusTerminated, tenant.Status)
		require.NotNil(t, tenant.LeaseEnd)
		assert.Equal(t, date(2024, 6, 30), *tenant.LeaseEnd)
	})

	t.Run("rejects termination before lease start", func(t *testing.T) {
		tenant := createTestTenant(t, date(2024, 3, 1))
		assert.Error(t, tenant.Terminate(date(2024, 2, 1)))
	})

	t.Run("rejects double termination", func(t *testing.T) {
		tenant := createTestTenant(t, date(2024, 1, 1))
		require.NoError(t, tenant.Terminate(date(2024, 6, 30)))
		assert.Error(t, tenant.Terminate(date(2024, 7, 31)))
	})
}

func TestTenant_OccupancyIn(t *testing.T) {
	march := valueobject.MonthPeriod(2024, time.March)

	t.Run("full-period lease covers whole month", func(t *testing.T) {
		tenant := createTestTenant(t, date(2024, 1, 1))
		occupancy, ok := tenant.OccupancyIn(march)
		require.True(t, ok)
		assert.True(t, occupancy.Equals(march))
		assert.Equal(t, "1", tenant.ActiveDaysFraction(march).String())
	})

	t.Run("mid-period lease start", func(t *testing.T) {
		tenant := createTestTenant(t, date(2024, 3, 15))
		occupancy, ok := tenant.OccupancyIn(march)
		require.True(t, ok)
		assert.Equal(t, 17, occupancy.Days())
	})

	t.Run("lease ended before period", func(t *testing.T) {
		tenant := createTestTenant(t, date(2023, 1, 1))
		require.NoError(t, tenant.Terminate(date(2024, 1, 31)))
		_, ok := tenant.OccupancyIn(march)
		assert.False(t, ok)
		assert.True(t, tenant.ActiveDaysFraction(march).IsZero())
	})

	t.Run("lease ending mid-period", func(t *testing.T) {
		tenant := createTestTenant(t, date(2023, 1, 1))
		require.NoError(t, tenant.Terminate(date(2024, 3, 10)))
		occupancy, ok := tenant.OccupancyIn(march)
		require.True(t, ok)
		assert.Equal(t, 9, occupancy.Days())
	})
}
