package facts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/bonus-atlas/pkg/adapters"
	"github.com/de-tools/bonus-atlas/pkg/metrics"
	"github.com/de-tools/bonus-atlas/pkg/models/domain"
	"github.com/de-tools/bonus-atlas/pkg/models/store"
	"github.com/de-tools/bonus-atlas/pkg/store/database"
	"github.com/huandu/go-sqlbuilder"
	"github.com/rs/zerolog"
)

const defaultTable = "bonus_facts"

var factColumns = []string{
	"salon_id",
	"supplier_id",
	"period",
	"total_turnover",
	"loyalty_bonus_amount",
	"details",
}

// Store reads bonus facts in range-bounded pages and supports ingestion for
// local stores. It works against any database/sql driver whose placeholder
// style matches the configured flavor.
type Store interface {
	FetchPage(ctx context.Context, filter domain.FactFilter, offset, limit int) ([]domain.BonusFact, error)
	Add(ctx context.Context, facts []domain.BonusFact) error
}

type Options struct {
	Table   string
	Flavor  sqlbuilder.Flavor
	Metrics *metrics.Registry
}

type factStore struct {
	db      *sql.DB
	table   string
	flavor  sqlbuilder.Flavor
	metrics *metrics.Registry
}

func NewStore(db *sql.DB, opts Options) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if opts.Table == "" {
		opts.Table = defaultTable
	}
	if opts.Flavor == 0 {
		opts.Flavor = sqlbuilder.SQLite
	}
	return &factStore{
		db:      db,
		table:   opts.Table,
		flavor:  opts.Flavor,
		metrics: opts.Metrics,
	}, nil
}

func (s *factStore) FetchPage(
	ctx context.Context,
	filter domain.FactFilter,
	offset, limit int,
) ([]domain.BonusFact, error) {
	logger := zerolog.Ctx(ctx)

	query, args := s.pageQuery(filter, offset, limit)
	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bonus facts: %w", err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close bonus fact rows")
		}
	}(rows)

	facts := make([]domain.BonusFact, 0, limit)
	for rows.Next() {
		var (
			rec     store.BonusFactRecord
			details sql.NullString
		)
		if err := rows.Scan(
			&rec.SalonID,
			&rec.SupplierID,
			&rec.Period,
			&rec.TotalTurnover,
			&rec.LoyaltyBonusAmount,
			&details,
		); err != nil {
			return nil, fmt.Errorf("scan bonus fact: %w", err)
		}
		if details.Valid {
			rec.Details = []byte(details.String)
		}

		fact, quarantined, err := adapters.MapStoreFactToDomain(rec)
		if err != nil {
			return nil, fmt.Errorf("map bonus fact: %w", err)
		}
		if len(quarantined) > 0 {
			s.metrics.ObserveQuarantined(len(quarantined))
			for _, q := range quarantined {
				logger.Warn().
					Str("salon_id", rec.SalonID).
					Str("supplier_id", rec.SupplierID).
					Str("period", rec.Period).
					Int("index", q.Index).
					Str("reason", q.Reason).
					Msg("quarantined malformed brand detail")
			}
		}
		facts = append(facts, fact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bonus facts: %w", err)
	}

	return facts, nil
}

func (s *factStore) pageQuery(filter domain.FactFilter, offset, limit int) (string, []interface{}) {
	sb := s.flavor.NewSelectBuilder()
	sb.Select(factColumns...)
	sb.From(s.table)

	where := []string{
		sb.GreaterEqualThan("period", filter.From.String()),
		sb.LessEqualThan("period", filter.To.String()),
	}
	if len(filter.SupplierIDs) > 0 {
		where = append(where, sb.In("supplier_id", toInterfaceSlice(filter.SupplierIDs)...))
	}
	if len(filter.SalonIDs) > 0 {
		where = append(where, sb.In("salon_id", toInterfaceSlice(filter.SalonIDs)...))
	}
	sb.Where(where...)
	// offsets are only stable under a total order
	sb.OrderBy("salon_id", "supplier_id", "period", "total_turnover", "loyalty_bonus_amount")
	sb.Limit(limit).Offset(offset)

	return sb.Build()
}

func (s *factStore) Add(ctx context.Context, facts []domain.BonusFact) error {
	if len(facts) == 0 {
		return nil
	}

	ib := s.flavor.NewInsertBuilder()
	ib.InsertInto(s.table)
	ib.Cols(factColumns...)
	for _, fact := range facts {
		rec, err := adapters.MapDomainFactToStore(fact)
		if err != nil {
			return err
		}
		ib.Values(
			rec.SalonID,
			rec.SupplierID,
			rec.Period,
			rec.TotalTurnover,
			rec.LoyaltyBonusAmount,
			string(rec.Details),
		)
	}

	query, args := ib.Build()
	if _, err := database.Conn(ctx, s.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert bonus facts: %w", err)
	}
	return nil
}

func toInterfaceSlice(ss []string) []interface{} {
	res := make([]interface{}, len(ss))
	for i, s := range ss {
		res[i] = s
	}
	return res
}
