package aggregate

import (
	"maps"
	"slices"

	"github.com/de-tools/bonus-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
)

// IntegrityTolerance is the largest fact/detail turnover difference that is
// still treated as reconciled.
var IntegrityTolerance = decimal.New(5, -3)

type Totals struct {
	Turnover     decimal.Decimal
	LoyaltyBonus decimal.Decimal
}

func (t *Totals) add(turnover, loyalty decimal.Decimal) {
	t.Turnover = t.Turnover.Add(turnover)
	t.LoyaltyBonus = t.LoyaltyBonus.Add(loyalty)
}

// BrandBucket accumulates the detail ledger of one brand for one salon and supplier.
type BrandBucket struct {
	Brand   string
	Kjemi   decimal.Decimal
	Produkt decimal.Decimal
	Loyalty decimal.Decimal
	Periods map[domain.Period]decimal.Decimal
}

func (b *BrandBucket) Total() decimal.Decimal {
	return b.Kjemi.Add(b.Produkt)
}

// Monthly returns the brand turnover per period in calendar order.
func (b *BrandBucket) Monthly() []domain.PeriodAmount {
	return sortedPeriods(b.Periods)
}

type SupplierBucket struct {
	SupplierID string
	Totals
	DetailTurnover decimal.Decimal
	Brands         map[string]*BrandBucket
	Periods        map[domain.Period]decimal.Decimal
}

func (s *SupplierBucket) BrandNames() []string {
	return slices.Sorted(maps.Keys(s.Brands))
}

type SalonBucket struct {
	SalonID string
	Totals
	DetailTurnover decimal.Decimal
	Suppliers      map[string]*SupplierBucket
}

// Supplier returns the supplier bucket or nil when the salon has no facts for it.
func (s *SalonBucket) Supplier(supplierID string) *SupplierBucket {
	if s == nil {
		return nil
	}
	return s.Suppliers[supplierID]
}

// SupplierTurnover returns the fact-level turnover for one supplier, zero when absent.
func (s *SalonBucket) SupplierTurnover(supplierID string) decimal.Decimal {
	if b := s.Supplier(supplierID); b != nil {
		return b.Turnover
	}
	return decimal.Zero
}

func (s *SalonBucket) SupplierIDs() []string {
	if s == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(s.Suppliers))
}

type SupplierRollup struct {
	SupplierID string
	Totals
	Salons map[string]struct{}
}

type Result struct {
	Salons    map[string]*SalonBucket
	Suppliers map[string]*SupplierRollup
	Months    map[domain.Period]*Totals
	Chain     Totals
	Warnings  []*domain.IntegrityWarning
	FactCount int
}

// Fold aggregates facts in a single pass. Facts sharing (salon, supplier,
// period) are summed. Fact-level amounts feed salon, supplier, month and chain
// totals; brand buckets are built from the details only.
func Fold(facts []domain.BonusFact) *Result {
	r := &Result{
		Salons:    make(map[string]*SalonBucket),
		Suppliers: make(map[string]*SupplierRollup),
		Months:    make(map[domain.Period]*Totals),
	}
	for _, f := range facts {
		r.add(f)
	}
	return r
}

func (r *Result) add(f domain.BonusFact) {
	r.FactCount++

	salon, ok := r.Salons[f.SalonID]
	if !ok {
		salon = &SalonBucket{SalonID: f.SalonID, Suppliers: make(map[string]*SupplierBucket)}
		r.Salons[f.SalonID] = salon
	}
	supplier, ok := salon.Suppliers[f.SupplierID]
	if !ok {
		supplier = &SupplierBucket{
			SupplierID: f.SupplierID,
			Brands:     make(map[string]*BrandBucket),
			Periods:    make(map[domain.Period]decimal.Decimal),
		}
		salon.Suppliers[f.SupplierID] = supplier
	}
	rollup, ok := r.Suppliers[f.SupplierID]
	if !ok {
		rollup = &SupplierRollup{SupplierID: f.SupplierID, Salons: make(map[string]struct{})}
		r.Suppliers[f.SupplierID] = rollup
	}
	month, ok := r.Months[f.Period]
	if !ok {
		month = &Totals{}
		r.Months[f.Period] = month
	}

	salon.add(f.TotalTurnover, f.LoyaltyBonusAmount)
	supplier.add(f.TotalTurnover, f.LoyaltyBonusAmount)
	supplier.Periods[f.Period] = supplier.Periods[f.Period].Add(f.TotalTurnover)
	rollup.add(f.TotalTurnover, f.LoyaltyBonusAmount)
	rollup.Salons[f.SalonID] = struct{}{}
	month.add(f.TotalTurnover, f.LoyaltyBonusAmount)
	r.Chain.add(f.TotalTurnover, f.LoyaltyBonusAmount)

	detailSum := decimal.Zero
	for _, d := range f.Details {
		brand, ok := supplier.Brands[d.Brand]
		if !ok {
			brand = &BrandBucket{Brand: d.Brand, Periods: make(map[domain.Period]decimal.Decimal)}
			supplier.Brands[d.Brand] = brand
		}
		if d.IsKjemi() {
			brand.Kjemi = brand.Kjemi.Add(d.Turnover)
		} else {
			brand.Produkt = brand.Produkt.Add(d.Turnover)
		}
		brand.Loyalty = brand.Loyalty.Add(d.Loyalty)
		brand.Periods[f.Period] = brand.Periods[f.Period].Add(d.Turnover)
		detailSum = detailSum.Add(d.Turnover)
	}
	salon.DetailTurnover = salon.DetailTurnover.Add(detailSum)
	supplier.DetailTurnover = supplier.DetailTurnover.Add(detailSum)

	if f.TotalTurnover.Sub(detailSum).Abs().GreaterThan(IntegrityTolerance) {
		r.Warnings = append(r.Warnings, &domain.IntegrityWarning{
			SalonID:        f.SalonID,
			SupplierID:     f.SupplierID,
			Period:         f.Period,
			FactTurnover:   f.TotalTurnover,
			DetailTurnover: detailSum,
		})
	}
}

// Salon returns the bucket for salonID or nil.
func (r *Result) Salon(salonID string) *SalonBucket {
	return r.Salons[salonID]
}

func (r *Result) SalonIDs() []string {
	return slices.Sorted(maps.Keys(r.Salons))
}

func (r *Result) SupplierIDs() []string {
	return slices.Sorted(maps.Keys(r.Suppliers))
}

// SupplierTurnover sums one supplier's fact-level turnover across salons.
func (r *Result) SupplierTurnover(supplierID string) decimal.Decimal {
	if s, ok := r.Suppliers[supplierID]; ok {
		return s.Turnover
	}
	return decimal.Zero
}

// MonthlyTotals returns chain totals per period in calendar order.
func (r *Result) MonthlyTotals() []domain.MonthlyTotals {
	periods := slices.SortedFunc(maps.Keys(r.Months), comparePeriods)
	out := make([]domain.MonthlyTotals, 0, len(periods))
	for _, p := range periods {
		m := r.Months[p]
		out = append(out, domain.MonthlyTotals{Period: p, Turnover: m.Turnover, LoyaltyBonus: m.LoyaltyBonus})
	}
	return out
}

// WarningsFor returns the integrity warnings raised for one salon.
func (r *Result) WarningsFor(salonID string) []*domain.IntegrityWarning {
	var out []*domain.IntegrityWarning
	for _, w := range r.Warnings {
		if w.SalonID == salonID {
			out = append(out, w)
		}
	}
	return out
}

func sortedPeriods(m map[domain.Period]decimal.Decimal) []domain.PeriodAmount {
	periods := slices.SortedFunc(maps.Keys(m), comparePeriods)
	out := make([]domain.PeriodAmount, 0, len(periods))
	for _, p := range periods {
		out = append(out, domain.PeriodAmount{Period: p, Amount: m[p]})
	}
	return out
}

func comparePeriods(a, b domain.Period) int {
	switch {
	case a.Before(b):
		return -1
	case b.Before(a):
		return 1
	default:
		return 0
	}
}
