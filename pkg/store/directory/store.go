package directory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/bonus-atlas/pkg/models/domain"
	"github.com/de-tools/bonus-atlas/pkg/models/store"
	"github.com/de-tools/bonus-atlas/pkg/store/database"
	"github.com/huandu/go-sqlbuilder"
	"github.com/rs/zerolog"
)

const (
	salonsTable    = "salons"
	suppliersTable = "suppliers"
)

// Store serves the salon and supplier id -> display name directories.
type Store interface {
	ListSalons(ctx context.Context) ([]domain.Salon, error)
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	AddSalons(ctx context.Context, salons []domain.Salon) error
	AddSuppliers(ctx context.Context, suppliers []domain.Supplier) error
}

type directoryStore struct {
	db     *sql.DB
	flavor sqlbuilder.Flavor
}

func NewStore(db *sql.DB, flavor sqlbuilder.Flavor) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if flavor == 0 {
		flavor = sqlbuilder.SQLite
	}
	return &directoryStore{db: db, flavor: flavor}, nil
}

func (s *directoryStore) ListSalons(ctx context.Context) ([]domain.Salon, error) {
	records, err := s.list(ctx, salonsTable)
	if err != nil {
		return nil, err
	}
	salons := make([]domain.Salon, 0, len(records))
	for _, r := range records {
		salons = append(salons, domain.Salon{ID: r.ID, Name: r.Name})
	}
	return salons, nil
}

func (s *directoryStore) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	records, err := s.list(ctx, suppliersTable)
	if err != nil {
		return nil, err
	}
	suppliers := make([]domain.Supplier, 0, len(records))
	for _, r := range records {
		suppliers = append(suppliers, domain.Supplier{ID: r.ID, Name: r.Name})
	}
	return suppliers, nil
}

func (s *directoryStore) AddSalons(ctx context.Context, salons []domain.Salon) error {
	records := make([]store.DirectoryRecord, 0, len(salons))
	for _, salon := range salons {
		records = append(records, store.DirectoryRecord{ID: salon.ID, Name: salon.Name})
	}
	return s.add(ctx, salonsTable, records)
}

func (s *directoryStore) AddSuppliers(ctx context.Context, suppliers []domain.Supplier) error {
	records := make([]store.DirectoryRecord, 0, len(suppliers))
	for _, supplier := range suppliers {
		records = append(records, store.DirectoryRecord{ID: supplier.ID, Name: supplier.Name})
	}
	return s.add(ctx, suppliersTable, records)
}

func (s *directoryStore) list(ctx context.Context, table string) ([]store.DirectoryRecord, error) {
	logger := zerolog.Ctx(ctx)

	sb := s.flavor.NewSelectBuilder()
	sb.Select("id", "name")
	sb.From(table)
	sb.OrderBy("id")

	query, args := sb.Build()
	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			logger.Warn().Err(err).Str("table", table).Msg("failed to close directory rows")
		}
	}(rows)

	records := make([]store.DirectoryRecord, 0)
	for rows.Next() {
		var rec store.DirectoryRecord
		if err := rows.Scan(&rec.ID, &rec.Name); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return records, nil
}

func (s *directoryStore) add(ctx context.Context, table string, records []store.DirectoryRecord) error {
	if len(records) == 0 {
		return nil
	}

	ib := s.flavor.NewInsertBuilder()
	ib.InsertInto(table)
	ib.Cols("id", "name")
	for _, r := range records {
		ib.Values(r.ID, r.Name)
	}

	query, args := ib.Build()
	if _, err := database.Conn(ctx, s.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}
