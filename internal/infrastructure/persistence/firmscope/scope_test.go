package firmscope

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type scopedRow struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	FirmID uuid.UUID `gorm:"type:uuid;not null"`
	Name   string
}

func (scopedRow) TableName() string { return "scoped_rows" }

type globalRow struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string
}

func (globalRow) TableName() string { return "global_rows" }

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func firmContext(firmID string) context.Context {
	ctx := context.Background()
	if firmID != "" {
		ctx, _ = logger.WithFirmID(ctx, logger.FromContext(ctx), firmID)
	}
	return ctx
}

func TestScope(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	firmID := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "scoped_rows" WHERE firm_id = \$1`).
		WithArgs(firmID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "firm_id", "name"}))

	var rows []scopedRow
	require.NoError(t, db.Scopes(Scope(firmID)).Find(&rows).Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFirmDB_WithContext(t *testing.T) {
	t.Run("scopes to the firm in context", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		firmID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "scoped_rows" WHERE firm_id = \$1`).
			WithArgs(firmID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "firm_id", "name"}))

		var rows []scopedRow
		require.NoError(t, NewFirmDB(db).WithContext(firmContext(firmID.String())).Find(&rows).Error)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fails without a firm when required", func(t *testing.T) {
		db, _, mockDB := setupMockDB(t)
		defer mockDB.Close()

		scoped := NewFirmDB(db).WithContext(context.Background())
		assert.ErrorIs(t, scoped.Error, ErrFirmIDRequired)
	})

	t.Run("runs unscoped when optional", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "scoped_rows"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "firm_id", "name"}))

		var rows []scopedRow
		require.NoError(t, NewFirmDB(db).Optional().WithContext(context.Background()).Find(&rows).Error)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects malformed firm id", func(t *testing.T) {
		db, _, mockDB := setupMockDB(t)
		defer mockDB.Close()

		scoped := NewFirmDB(db).Optional().WithContext(firmContext("not-a-uuid"))
		assert.ErrorIs(t, scoped.Error, ErrInvalidFirmID)
	})
}

func TestFirmDB_ForFirm(t *testing.T) {
	db, _, mockDB := setupMockDB(t)
	defer mockDB.Close()

	assert.ErrorIs(t, NewFirmDB(db).ForFirm(context.Background(), uuid.Nil).Error, ErrFirmIDRequired)
}

func TestFirmDB_Transaction(t *testing.T) {
	db, _, mockDB := setupMockDB(t)
	defer mockDB.Close()

	err := NewFirmDB(db).Transaction(context.Background(), func(tx *gorm.DB) error { return nil })
	assert.ErrorIs(t, err, ErrFirmIDRequired)
}
