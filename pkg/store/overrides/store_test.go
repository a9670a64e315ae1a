package overrides

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/bonus-atlas/pkg/models/domain"
	"github.com/de-tools/bonus-atlas/pkg/store/database"
	"github.com/de-tools/bonus-atlas/pkg/store/duckdb"
	"github.com/huandu/go-sqlbuilder"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func override(salon string, year int, turnover, reason string) domain.BaselineOverride {
	return domain.BaselineOverride{
		OverrideKey:      domain.OverrideKey{SalonID: salon, SupplierID: "growth", Year: year},
		OverrideTurnover: decimal.RequireFromString(turnover),
		Reason:           reason,
	}
}

func TestStore_DuckDB(t *testing.T) {
	db, err := duckdb.NewDB(duckdb.Settings{})
	require.NoError(t, err)
	defer db.Close()

	store, err := NewStore(db, sqlbuilder.SQLite)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("absent override is not an error", func(t *testing.T) {
		ov, err := store.GetOverride(ctx, domain.OverrideKey{SalonID: "A", SupplierID: "growth", Year: 2023})

		assert.NoError(t, err)
		assert.Nil(t, ov)
	})

	t.Run("put then get", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, override("A", 2023, "120000", "merged with salon D")))

		ov, err := store.GetOverride(ctx, domain.OverrideKey{SalonID: "A", SupplierID: "growth", Year: 2023})

		require.NoError(t, err)
		require.NotNil(t, ov)
		assert.True(t, decimal.NewFromInt(120000).Equal(ov.OverrideTurnover))
		assert.Equal(t, "merged with salon D", ov.Reason)
	})

	t.Run("put replaces existing key", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, override("A", 2023, "95000", "corrected again")))

		list, err := store.ListOverrides(ctx, "growth", 2023)

		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.True(t, decimal.NewFromInt(95000).Equal(list[0].OverrideTurnover))
	})

	t.Run("list is scoped by supplier and year", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, override("B", 2023, "10", "")))
		require.NoError(t, store.Put(ctx, override("B", 2022, "20", "")))

		list, err := store.ListOverrides(ctx, "growth", 2023)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "A", list[0].SalonID)
		assert.Equal(t, "B", list[1].SalonID)

		other, err := store.ListOverrides(ctx, "other", 2023)
		require.NoError(t, err)
		assert.Empty(t, other)
	})

	t.Run("non positive turnover is rejected", func(t *testing.T) {
		assert.Error(t, store.Put(ctx, override("C", 2023, "0", "")))
		assert.Error(t, store.Put(ctx, override("C", 2023, "-5", "")))
	})

	t.Run("put joins the context transaction", func(t *testing.T) {
		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		txCtx := database.WithTransaction(ctx, tx)

		require.NoError(t, store.Put(txCtx, override("D", 2023, "1", "")))
		require.NoError(t, tx.Rollback())

		ov, err := store.GetOverride(ctx, domain.OverrideKey{SalonID: "D", SupplierID: "growth", Year: 2023})
		require.NoError(t, err)
		assert.Nil(t, ov)
	})
}

func TestGetOverride_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM baseline_overrides WHERE").
		WillReturnError(errors.New("connection reset"))

	store, err := NewStore(db, 0)
	require.NoError(t, err)

	ov, err := store.GetOverride(context.Background(), domain.OverrideKey{SalonID: "A", SupplierID: "growth", Year: 2023})

	assert.Nil(t, ov)
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPut_RollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE baseline_overrides").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO baseline_overrides").WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	store, err := NewStore(db, sqlbuilder.SQLite)
	require.NoError(t, err)

	err = store.Put(context.Background(), override("A", 2023, "1", ""))

	assert.ErrorContains(t, err, "insert baseline override")
	assert.NoError(t, mock.ExpectationsWereMet())
}
