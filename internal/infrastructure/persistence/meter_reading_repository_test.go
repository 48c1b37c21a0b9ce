package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockMeterReadingRepository creates a GormMeterReadingRepository with a mocked SQL connection
func newMockMeterReadingRepository(t *testing.T) (*GormMeterReadingRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormMeterReadingRepository(gormDB), mock, mockDB
}

var meterReadingColumns = []string{
	"id", "org_id", "utility_config_id", "unit_id", "value", "reading_date",
}

func TestGormMeterReadingRepository_FindLatestAtOrBefore(t *testing.T) {
	t.Run("returns latest reading at or before the boundary", func(t *testing.T) {
		repo, mock, mockDB := newMockMeterReadingRepository(t)
		defer mockDB.Close()

		orgID := uuid.New()
		configID := uuid.New()
		unitID := uuid.New()
		boundary := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		readingDate := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows(meterReadingColumns).
			AddRow(uuid.New(), orgID, configID, unitID, decimal.NewFromInt(100), readingDate)

		mock.ExpectQuery(`SELECT \* FROM "meter_readings" WHERE \(org_id = \$1 AND utility_config_id = \$2 AND unit_id = \$3\) AND reading_date <= \$4 ORDER BY reading_date DESC,.* LIMIT .*`).
			WithArgs(orgID, configID, unitID, boundary, 1).
			WillReturnRows(rows)

		reading, err := repo.FindLatestAtOrBefore(context.Background(), orgID, configID, unitID, boundary)

		assert.NoError(t, err)
		require.NotNil(t, reading)
		assert.True(t, reading.Value.Equal(decimal.NewFromInt(100)))
		assert.True(t, reading.ReadingDate.Equal(readingDate))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when no reading exists before the boundary", func(t *testing.T) {
		repo, mock, mockDB := newMockMeterReadingRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "meter_readings"`).
			WillReturnError(gorm.ErrRecordNotFound)

		reading, err := repo.FindLatestAtOrBefore(context.Background(), uuid.New(), uuid.New(), uuid.New(), time.Now())

		assert.Nil(t, reading)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormMeterReadingRepository_Save(t *testing.T) {
	t.Run("updates an existing reading", func(t *testing.T) {
		repo, mock, mockDB := newMockMeterReadingRepository(t)
		defer mockDB.Close()

		reading, err := billing.NewMeterReading(
			uuid.New(), uuid.New(), uuid.New(),
			decimal.NewFromInt(120), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "meter_readings" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Save(context.Background(), reading)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
