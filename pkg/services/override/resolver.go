package override

import (
	"context"

	"github.com/de-tools/bonus-atlas/pkg/metrics"
	"github.com/de-tools/bonus-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
)

const sourceOverrides = "overrides"

// Store looks up manual baseline corrections. GetOverride must return
// (nil, nil) when no override exists.
type Store interface {
	GetOverride(ctx context.Context, key domain.OverrideKey) (*domain.BaselineOverride, error)
	ListOverrides(ctx context.Context, supplierID string, year int) ([]domain.BaselineOverride, error)
}

type Resolver struct {
	store   Store
	metrics *metrics.Registry
}

func NewResolver(store Store, m *metrics.Registry) *Resolver {
	return &Resolver{store: store, metrics: m}
}

// Resolve returns the override for (salon, supplier, year) or nil when there is none.
func (r *Resolver) Resolve(ctx context.Context, salonID, supplierID string, year int) (*domain.BaselineOverride, error) {
	ov, err := r.store.GetOverride(ctx, domain.OverrideKey{SalonID: salonID, SupplierID: supplierID, Year: year})
	if err != nil {
		r.metrics.ObserveFetchFailure(sourceOverrides)
		return nil, &domain.DataFetchError{Source: sourceOverrides, Err: err}
	}
	return ov, nil
}

// ResolveMany loads every override for a supplier and year keyed by salon id.
func (r *Resolver) ResolveMany(ctx context.Context, supplierID string, year int) (map[string]*domain.BaselineOverride, error) {
	list, err := r.store.ListOverrides(ctx, supplierID, year)
	if err != nil {
		r.metrics.ObserveFetchFailure(sourceOverrides)
		return nil, &domain.DataFetchError{Source: sourceOverrides, Err: err}
	}

	bySalon := make(map[string]*domain.BaselineOverride, len(list))
	for i := range list {
		bySalon[list[i].SalonID] = &list[i]
	}
	return bySalon, nil
}

// ResolvePrior picks the prior-year turnover used for comparison. A present
// override always wins, whatever the calculated value is.
func ResolvePrior(calculated decimal.Decimal, ov *domain.BaselineOverride) decimal.Decimal {
	if ov != nil {
		return ov.OverrideTurnover
	}
	return calculated
}
