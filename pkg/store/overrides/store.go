package overrides

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/de-tools/bonus-atlas/pkg/adapters"
	"github.com/de-tools/bonus-atlas/pkg/models/domain"
	"github.com/de-tools/bonus-atlas/pkg/models/store"
	"github.com/de-tools/bonus-atlas/pkg/store/database"
	"github.com/huandu/go-sqlbuilder"
	"github.com/rs/zerolog"
)

const defaultTable = "baseline_overrides"

var overrideColumns = []string{"salon_id", "supplier_id", "year", "override_turnover", "reason"}

type Store interface {
	// GetOverride returns nil without error when no override exists for the key.
	GetOverride(ctx context.Context, key domain.OverrideKey) (*domain.BaselineOverride, error)
	ListOverrides(ctx context.Context, supplierID string, year int) ([]domain.BaselineOverride, error)
	Put(ctx context.Context, override domain.BaselineOverride) error
}

type overrideStore struct {
	db     *sql.DB
	table  string
	flavor sqlbuilder.Flavor
}

func NewStore(db *sql.DB, flavor sqlbuilder.Flavor) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if flavor == 0 {
		flavor = sqlbuilder.SQLite
	}
	return &overrideStore{db: db, table: defaultTable, flavor: flavor}, nil
}

func (s *overrideStore) GetOverride(ctx context.Context, key domain.OverrideKey) (*domain.BaselineOverride, error) {
	sb := s.flavor.NewSelectBuilder()
	sb.Select(overrideColumns...)
	sb.From(s.table)
	sb.Where(
		sb.Equal("salon_id", key.SalonID),
		sb.Equal("supplier_id", key.SupplierID),
		sb.Equal("year", key.Year),
	)
	sb.Limit(1)

	query, args := sb.Build()
	var rec store.BaselineOverrideRecord
	var reason sql.NullString
	err := database.Conn(ctx, s.db).QueryRowContext(ctx, query, args...).Scan(
		&rec.SalonID, &rec.SupplierID, &rec.Year, &rec.OverrideTurnover, &reason,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query baseline override: %w", err)
	}
	rec.Reason = reason.String

	ov := adapters.MapStoreOverrideToDomain(rec)
	return &ov, nil
}

func (s *overrideStore) ListOverrides(ctx context.Context, supplierID string, year int) ([]domain.BaselineOverride, error) {
	logger := zerolog.Ctx(ctx)

	sb := s.flavor.NewSelectBuilder()
	sb.Select(overrideColumns...)
	sb.From(s.table)
	sb.Where(sb.Equal("supplier_id", supplierID), sb.Equal("year", year))
	sb.OrderBy("salon_id")

	query, args := sb.Build()
	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query baseline overrides: %w", err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close baseline override rows")
		}
	}(rows)

	result := make([]domain.BaselineOverride, 0)
	for rows.Next() {
		var rec store.BaselineOverrideRecord
		var reason sql.NullString
		if err := rows.Scan(&rec.SalonID, &rec.SupplierID, &rec.Year, &rec.OverrideTurnover, &reason); err != nil {
			return nil, fmt.Errorf("scan baseline override: %w", err)
		}
		rec.Reason = reason.String
		result = append(result, adapters.MapStoreOverrideToDomain(rec))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate baseline overrides: %w", err)
	}
	return result, nil
}

// Put replaces any existing override for the same key.
func (s *overrideStore) Put(ctx context.Context, override domain.BaselineOverride) error {
	if !override.OverrideTurnover.IsPositive() {
		return fmt.Errorf("override turnover must be positive, got %s", override.OverrideTurnover)
	}

	tx := database.GetTransaction(ctx)
	owned := tx == nil
	if owned {
		var err error
		tx, err = s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
	}

	ub := s.flavor.NewUpdateBuilder()
	ub.Update(s.table)
	ub.Set(
		ub.Assign("override_turnover", override.OverrideTurnover.InexactFloat64()),
		ub.Assign("reason", override.Reason),
	)
	ub.Where(
		ub.Equal("salon_id", override.SalonID),
		ub.Equal("supplier_id", override.SupplierID),
		ub.Equal("year", override.Year),
	)
	query, args := ub.Build()
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		if owned {
			_ = tx.Rollback()
		}
		return fmt.Errorf("update baseline override: %w", err)
	}
	updated, err := res.RowsAffected()
	if err != nil {
		if owned {
			_ = tx.Rollback()
		}
		return fmt.Errorf("update baseline override: %w", err)
	}

	if updated == 0 {
		ib := s.flavor.NewInsertBuilder()
		ib.InsertInto(s.table)
		ib.Cols(overrideColumns...)
		ib.Values(
			override.SalonID,
			override.SupplierID,
			override.Year,
			override.OverrideTurnover.InexactFloat64(),
			override.Reason,
		)
		query, args = ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if owned {
				_ = tx.Rollback()
			}
			return fmt.Errorf("insert baseline override: %w", err)
		}
	}

	if owned {
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit baseline override: %w", err)
		}
	}
	return nil
}
