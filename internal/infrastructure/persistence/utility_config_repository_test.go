package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockUtilityConfigRepository creates a GormUtilityConfigRepository with a mocked SQL connection
func newMockUtilityConfigRepository(t *testing.T) (*GormUtilityConfigRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormUtilityConfigRepository(gormDB), mock, mockDB
}

var utilityConfigColumns = []string{
	"id", "org_id", "utility_type_id", "type_name", "mode", "property_id",
	"unit_id", "effective_from", "effective_to",
	"fixed_amount", "rate", "shared_amount",
}

func TestGormUtilityConfigRepository_FindEffectiveForUnit(t *testing.T) {
	t.Run("returns unit and property configs overlapping the period", func(t *testing.T) {
		repo, mock, mockDB := newMockUtilityConfigRepository(t)
		defer mockDB.Close()

		orgID := uuid.New()
		propertyID := uuid.New()
		unitID := uuid.New()
		period := valueobject.MonthPeriod(2024, time.March)
		from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows(utilityConfigColumns).
			AddRow(uuid.New(), orgID, uuid.New(), "Water", "METERED", propertyID,
				unitID, from, nil, decimal.Zero, decimal.NewFromInt(10), decimal.Zero).
			AddRow(uuid.New(), orgID, uuid.New(), "Garbage", "FIXED", propertyID,
				nil, from, nil, decimal.NewFromInt(500), decimal.Zero, decimal.Zero)

		mock.ExpectQuery(`SELECT \* FROM "utility_configs" WHERE \(org_id = \$1 AND property_id = \$2\) AND \(unit_id IS NULL OR unit_id = \$3\) AND effective_from < \$4 AND \(effective_to IS NULL OR effective_to > \$5\) ORDER BY effective_from ASC`).
			WithArgs(orgID, propertyID, unitID, period.End(), period.Start()).
			WillReturnRows(rows)

		configs, err := repo.FindEffectiveForUnit(context.Background(), orgID, propertyID, unitID, period)

		assert.NoError(t, err)
		require.Len(t, configs, 2)
		assert.Equal(t, "Water", configs[0].TypeName)
		assert.Equal(t, billing.BillingModeMetered, configs[0].Mode)
		assert.True(t, configs[0].IsUnitScoped())
		assert.False(t, configs[1].IsUnitScoped())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormUtilityConfigRepository_FindByProperty(t *testing.T) {
	t.Run("lists configs of the property", func(t *testing.T) {
		repo, mock, mockDB := newMockUtilityConfigRepository(t)
		defer mockDB.Close()

		orgID := uuid.New()
		propertyID := uuid.New()
		from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows(utilityConfigColumns).
			AddRow(uuid.New(), orgID, uuid.New(), "Garbage", "FIXED", propertyID,
				nil, from, nil, decimal.NewFromInt(500), decimal.Zero, decimal.Zero)

		mock.ExpectQuery(`SELECT \* FROM "utility_configs" WHERE org_id = \$1 AND property_id = \$2 ORDER BY effective_from ASC`).
			WithArgs(orgID, propertyID).
			WillReturnRows(rows)

		configs, err := repo.FindByProperty(context.Background(), orgID, propertyID)

		assert.NoError(t, err)
		assert.Len(t, configs, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormUtilityConfigRepository_Save(t *testing.T) {
	t.Run("updates an existing config", func(t *testing.T) {
		repo, mock, mockDB := newMockUtilityConfigRepository(t)
		defer mockDB.Close()

		utilityType, err := billing.NewUtilityType(uuid.New(), "Garbage", billing.BillingModeFixed, "")
		require.NoError(t, err)
		config, err := billing.NewUtilityConfig(
			utilityType, uuid.New(), nil,
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), nil,
			valueobject.NewMoneyKES(decimal.NewFromInt(500)),
		)
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "utility_configs" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Save(context.Background(), config)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
