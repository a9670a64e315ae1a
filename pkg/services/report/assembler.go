package report

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/de-tools/bonus-atlas/pkg/metrics"
	"github.com/de-tools/bonus-atlas/pkg/models/domain"
	"github.com/de-tools/bonus-atlas/pkg/services/aggregate"
	"github.com/de-tools/bonus-atlas/pkg/services/breakdown"
	"github.com/de-tools/bonus-atlas/pkg/services/growth"
	"github.com/de-tools/bonus-atlas/pkg/services/override"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const sourceDirectory = "directory"

// FactSource returns every fact matching a filter or fails as a whole.
type FactSource interface {
	FetchAll(ctx context.Context, filter domain.FactFilter) ([]domain.BonusFact, error)
}

type OverrideSource interface {
	Resolve(ctx context.Context, salonID, supplierID string, year int) (*domain.BaselineOverride, error)
	ResolveMany(ctx context.Context, supplierID string, year int) (map[string]*domain.BaselineOverride, error)
}

// Directory maps salon and supplier ids to display names.
type Directory interface {
	ListSalons(ctx context.Context) ([]domain.Salon, error)
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
}

// Assembler combines retrieval, aggregation and bonus calculation into the
// report shapes. Every call fetches a fresh snapshot; nothing is cached.
type Assembler struct {
	facts     FactSource
	overrides OverrideSource
	growth    *growth.Calculator
	directory Directory
	metrics   *metrics.Registry
}

func NewAssembler(
	facts FactSource,
	overrides OverrideSource,
	calculator *growth.Calculator,
	directory Directory,
	m *metrics.Registry,
) *Assembler {
	return &Assembler{
		facts:     facts,
		overrides: overrides,
		growth:    calculator,
		directory: directory,
		metrics:   m,
	}
}

func SalonPlaceholder(id string) string {
	return fmt.Sprintf("Ukjent salong (%s)", id)
}

func SupplierPlaceholder(id string) string {
	return fmt.Sprintf("Ukjent leverandør (%s)", id)
}

// GetSalonBonusOverview returns one row per salon with facts in the year.
// Rows come back sorted by salon id.
func (a *Assembler) GetSalonBonusOverview(
	ctx context.Context,
	year int,
	supplierFilter []string,
) ([]domain.AggregatedSalonBonus, error) {
	defer a.observe("overview", time.Now())

	filter := domain.YearFilter(year, supplierFilter...)
	growthApplies := filter.IncludesSupplier(a.growth.SupplierID())

	snap, err := a.load(ctx, filter, year, loadOptions{prior: growthApplies, overrides: growthApplies})
	if err != nil {
		return nil, err
	}
	return a.salonRows(snap, growthApplies), nil
}

// GetSalonDetail returns the brand breakdown for every supplier the salon
// traded with in the year or the year before, and the growth bonus result.
func (a *Assembler) GetSalonDetail(ctx context.Context, salonID string, year int) (*domain.SalonDetail, error) {
	defer a.observe("salon_detail", time.Now())

	if salonID == "" {
		return nil, fmt.Errorf("salon id is required")
	}
	filter := domain.YearFilter(year).WithSalon(salonID)

	snap, err := a.load(ctx, filter, year, loadOptions{prior: true, overrides: true, salonID: salonID})
	if err != nil {
		return nil, err
	}

	current := snap.current.Salon(salonID)
	prior := snap.prior.Salon(salonID)
	ov := snap.overrides[salonID]
	growthSupplier := a.growth.SupplierID()

	detail := &domain.SalonDetail{
		SalonID:          salonID,
		Year:             year,
		Growth:           a.growth.ComputeForSalon(current, prior, ov),
		CorrectionFactor: breakdown.CorrectionFactor(ov, prior.SupplierTurnover(growthSupplier)),
		Breakdown:        make([]domain.BrandBonusBreakdown, 0),
	}

	var nameErr error
	detail.SalonName, nameErr = snap.salonName(salonID)
	if nameErr != nil {
		detail.Warnings = append(detail.Warnings, nameErr)
	}

	suppliers := unionKeys(current.SupplierIDs(), prior.SupplierIDs())
	for _, supplierID := range suppliers {
		factor := decimal.NewFromInt(1)
		if supplierID == growthSupplier {
			factor = detail.CorrectionFactor
		}
		rows := breakdown.Allocate(current.Supplier(supplierID), prior.Supplier(supplierID), factor)
		detail.Breakdown = append(detail.Breakdown, rows...)

		if _, err := snap.supplierName(supplierID); err != nil {
			detail.Warnings = append(detail.Warnings, err)
		}
	}
	for _, w := range snap.current.WarningsFor(salonID) {
		detail.Warnings = append(detail.Warnings, w)
	}

	a.observeMissing(detail.Warnings)
	return detail, nil
}

// GetChainTotals sums the overview across all salons. The previous year
// turnover uses the corrected baseline for the growth supplier and the
// calculated turnover for every other supplier.
func (a *Assembler) GetChainTotals(ctx context.Context, year int, supplierFilter []string) (*domain.ChainTotals, error) {
	defer a.observe("chain_totals", time.Now())

	filter := domain.YearFilter(year, supplierFilter...)
	growthApplies := filter.IncludesSupplier(a.growth.SupplierID())

	snap, err := a.load(ctx, filter, year, loadOptions{prior: true, overrides: growthApplies})
	if err != nil {
		return nil, err
	}

	totals := &domain.ChainTotals{
		Year:          year,
		TotalTurnover: snap.current.Chain.Turnover,
		LoyaltyBonus:  snap.current.Chain.LoyaltyBonus,
	}
	for _, row := range a.salonRows(snap, growthApplies) {
		totals.GrowthBonus = totals.GrowthBonus.Add(row.GrowthBonus)
	}
	totals.TotalBonus = totals.LoyaltyBonus.Add(totals.GrowthBonus)
	totals.PreviousYearTurnover = a.previousYearTurnover(snap, growthApplies)

	return totals, nil
}

// GetSupplierTotals rolls the year up per supplier, sorted by supplier id.
func (a *Assembler) GetSupplierTotals(ctx context.Context, year int) ([]domain.SupplierTotals, error) {
	defer a.observe("supplier_totals", time.Now())

	snap, err := a.load(ctx, domain.YearFilter(year), year, loadOptions{})
	if err != nil {
		return nil, err
	}

	out := make([]domain.SupplierTotals, 0, len(snap.current.Suppliers))
	var missing []error
	for _, id := range snap.current.SupplierIDs() {
		rollup := snap.current.Suppliers[id]
		name, err := snap.supplierName(id)
		if err != nil {
			missing = append(missing, err)
		}
		out = append(out, domain.SupplierTotals{
			SupplierID:   id,
			SupplierName: name,
			Turnover:     rollup.Turnover,
			LoyaltyBonus: rollup.LoyaltyBonus,
			SalonCount:   len(rollup.Salons),
		})
	}
	a.observeMissing(missing)
	return out, nil
}

// GetMonthlyTotals returns the chain turnover and loyalty bonus per month.
func (a *Assembler) GetMonthlyTotals(ctx context.Context, year int, supplierFilter []string) ([]domain.MonthlyTotals, error) {
	defer a.observe("monthly_totals", time.Now())

	filter := domain.YearFilter(year, supplierFilter...)
	snap, err := a.load(ctx, filter, year, loadOptions{})
	if err != nil {
		return nil, err
	}
	return snap.current.MonthlyTotals(), nil
}

func (a *Assembler) salonRows(snap *snapshot, growthApplies bool) []domain.AggregatedSalonBonus {
	ids := snap.current.SalonIDs()
	rows := make([]domain.AggregatedSalonBonus, 0, len(ids))
	var warnings []error

	for _, id := range ids {
		bucket := snap.current.Salon(id)
		row := domain.AggregatedSalonBonus{
			SalonID:        id,
			Turnover:       bucket.Turnover,
			DetailTurnover: bucket.DetailTurnover,
			LoyaltyBonus:   bucket.LoyaltyBonus,
		}

		var err error
		row.SalonName, err = snap.salonName(id)
		if err != nil {
			row.Warnings = append(row.Warnings, err)
		}
		for _, supplierID := range bucket.SupplierIDs() {
			if _, err := snap.supplierName(supplierID); err != nil {
				row.Warnings = append(row.Warnings, err)
			}
		}
		for _, w := range snap.current.WarningsFor(id) {
			row.Warnings = append(row.Warnings, w)
		}

		if growthApplies {
			if g := a.growth.ComputeForSalon(bucket, snap.prior.Salon(id), snap.overrides[id]); g != nil {
				row.Growth = g
				row.GrowthBonus = g.BonusAmount
			}
		}
		row.TotalBonus = row.LoyaltyBonus.Add(row.GrowthBonus)

		warnings = append(warnings, row.Warnings...)
		rows = append(rows, row)
	}

	a.observeMissing(warnings)
	return rows
}

func (a *Assembler) previousYearTurnover(snap *snapshot, growthApplies bool) decimal.Decimal {
	growthSupplier := a.growth.SupplierID()
	total := decimal.Zero

	for _, supplierID := range snap.prior.SupplierIDs() {
		if supplierID == growthSupplier && growthApplies {
			continue
		}
		total = total.Add(snap.prior.SupplierTurnover(supplierID))
	}
	if !growthApplies {
		return total
	}

	// salons with an override count even without prior-year facts
	salons := unionKeys(snap.prior.SalonIDs(), slices.Sorted(maps.Keys(snap.overrides)))
	for _, id := range salons {
		calculated := snap.prior.Salon(id).SupplierTurnover(growthSupplier)
		total = total.Add(override.ResolvePrior(calculated, snap.overrides[id]))
	}
	return total
}

type loadOptions struct {
	prior     bool
	overrides bool
	// salonID narrows the override lookup to a single key.
	salonID string
}

type snapshot struct {
	current   *aggregate.Result
	prior     *aggregate.Result
	overrides map[string]*domain.BaselineOverride
	salons    map[string]string
	suppliers map[string]string
}

func (s *snapshot) salonName(id string) (string, error) {
	if name, ok := s.salons[id]; ok {
		return name, nil
	}
	return SalonPlaceholder(id), &domain.MissingReferenceError{Kind: domain.ReferenceSalon, ID: id}
}

func (s *snapshot) supplierName(id string) (string, error) {
	if name, ok := s.suppliers[id]; ok {
		return name, nil
	}
	return SupplierPlaceholder(id), &domain.MissingReferenceError{Kind: domain.ReferenceSupplier, ID: id}
}

// load fetches the facts, overrides and directories a report needs in
// parallel. The first failure cancels the remaining requests.
func (a *Assembler) load(ctx context.Context, filter domain.FactFilter, year int, opts loadOptions) (*snapshot, error) {
	var (
		current, prior []domain.BonusFact
		snap           = &snapshot{overrides: make(map[string]*domain.BaselineOverride)}
		growthSupplier = a.growth.SupplierID()
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		facts, err := a.facts.FetchAll(gctx, filter)
		if err != nil {
			return err
		}
		current = facts
		return nil
	})
	if opts.prior {
		g.Go(func() error {
			facts, err := a.facts.FetchAll(gctx, filter.PreviousYear())
			if err != nil {
				return err
			}
			prior = facts
			return nil
		})
	}
	if opts.overrides {
		g.Go(func() error {
			if opts.salonID != "" {
				ov, err := a.overrides.Resolve(gctx, opts.salonID, growthSupplier, year-1)
				if err != nil {
					return err
				}
				if ov != nil {
					snap.overrides[opts.salonID] = ov
				}
				return nil
			}
			all, err := a.overrides.ResolveMany(gctx, growthSupplier, year-1)
			if err != nil {
				return err
			}
			snap.overrides = all
			return nil
		})
	}
	g.Go(func() error {
		salons, err := a.directory.ListSalons(gctx)
		if err != nil {
			return &domain.DataFetchError{Source: sourceDirectory, Err: fmt.Errorf("list salons: %w", err)}
		}
		snap.salons = make(map[string]string, len(salons))
		for _, s := range salons {
			snap.salons[s.ID] = s.Name
		}
		return nil
	})
	g.Go(func() error {
		suppliers, err := a.directory.ListSuppliers(gctx)
		if err != nil {
			return &domain.DataFetchError{Source: sourceDirectory, Err: fmt.Errorf("list suppliers: %w", err)}
		}
		snap.suppliers = make(map[string]string, len(suppliers))
		for _, s := range suppliers {
			snap.suppliers[s.ID] = s.Name
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to load report snapshot")
		return nil, err
	}

	snap.current = aggregate.Fold(current)
	snap.prior = aggregate.Fold(prior)
	a.reportIntegrity(ctx, snap.current)
	a.reportIntegrity(ctx, snap.prior)

	return snap, nil
}

func (a *Assembler) reportIntegrity(ctx context.Context, r *aggregate.Result) {
	if len(r.Warnings) == 0 {
		return
	}
	logger := zerolog.Ctx(ctx)
	for _, w := range r.Warnings {
		logger.Warn().
			Str("salon_id", w.SalonID).
			Str("supplier_id", w.SupplierID).
			Str("period", w.Period.String()).
			Str("fact_turnover", w.FactTurnover.String()).
			Str("detail_turnover", w.DetailTurnover.String()).
			Msg("brand details do not reconcile with fact turnover")
	}
	a.metrics.ObserveIntegrityWarnings(len(r.Warnings))
}

func (a *Assembler) observeMissing(warnings []error) {
	for _, w := range warnings {
		if ref, ok := w.(*domain.MissingReferenceError); ok {
			a.metrics.ObserveMissingReference(string(ref.Kind))
		}
	}
}

func (a *Assembler) observe(report string, start time.Time) {
	a.metrics.ObserveReport(report, time.Since(start).Seconds())
}

func unionKeys(a, b []string) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for _, k := range a {
		set[k] = struct{}{}
	}
	for _, k := range b {
		set[k] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}
