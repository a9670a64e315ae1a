package directory

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/bonus-atlas/pkg/models/domain"
	"github.com/de-tools/bonus-atlas/pkg/store/duckdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_DuckDB(t *testing.T) {
	db, err := duckdb.NewDB(duckdb.Settings{})
	require.NoError(t, err)
	defer db.Close()

	store, err := NewStore(db, 0)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.AddSalons(ctx, []domain.Salon{{ID: "B", Name: "Salong B"}, {ID: "A", Name: "Salong A"}}))
	require.NoError(t, store.AddSuppliers(ctx, []domain.Supplier{{ID: "growth", Name: "Vekst"}}))
	require.NoError(t, store.AddSalons(ctx, nil))

	salons, err := store.ListSalons(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Salon{{ID: "A", Name: "Salong A"}, {ID: "B", Name: "Salong B"}}, salons)

	suppliers, err := store.ListSuppliers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Supplier{{ID: "growth", Name: "Vekst"}}, suppliers)
}

func TestListSalons_ScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, name FROM salons").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("A"))

	store, err := NewStore(db, 0)
	require.NoError(t, err)

	salons, err := store.ListSalons(context.Background())

	assert.Nil(t, salons)
	assert.ErrorContains(t, err, "scan salons")
}
