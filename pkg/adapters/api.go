package adapters

import (
	"github.com/de-tools/bonus-atlas/pkg/models/api"
	"github.com/de-tools/bonus-atlas/pkg/models/domain"
	"github.com/de-tools/bonus-atlas/pkg/models/store"
	"github.com/shopspring/decimal"
)

const percentPlaces = 2

func MapSalonBonusDomainToApi(s domain.AggregatedSalonBonus) api.SalonBonus {
	return api.SalonBonus{
		SalonID:        s.SalonID,
		SalonName:      s.SalonName,
		Turnover:       s.Turnover.InexactFloat64(),
		DetailTurnover: s.DetailTurnover.InexactFloat64(),
		LoyaltyBonus:   s.LoyaltyBonus.InexactFloat64(),
		GrowthBonus:    s.GrowthBonus.InexactFloat64(),
		TotalBonus:     s.TotalBonus.InexactFloat64(),
		Growth:         MapGrowthDomainToApi(s.Growth),
		Warnings:       mapWarnings(s.Warnings),
	}
}

func MapSalonBonusesDomainToApi(items []domain.AggregatedSalonBonus) []api.SalonBonus {
	out := make([]api.SalonBonus, 0, len(items))
	for _, item := range items {
		out = append(out, MapSalonBonusDomainToApi(item))
	}
	return out
}

func MapGrowthDomainToApi(g *domain.GrowthBonusResult) *api.GrowthBonus {
	if g == nil {
		return nil
	}

	var reason *string
	if g.Override != nil {
		r := g.Override.Reason
		reason = &r
	}

	return &api.GrowthBonus{
		SupplierID:             g.SupplierID,
		CurrentTurnover:        g.CurrentTurnover.InexactFloat64(),
		PrevTurnover:           g.PrevTurnover.InexactFloat64(),
		CalculatedPrevTurnover: g.CalculatedPrevTurnover.InexactFloat64(),
		OverrideReason:         reason,
		IsNewCustomer:          g.IsNewCustomer,
		GrowthPercent:          g.GrowthPercent.Round(percentPlaces).InexactFloat64(),
		Tier:                   g.Tier,
		BonusRate:              g.BonusRate.InexactFloat64(),
		BonusAmount:            g.BonusAmount.InexactFloat64(),
	}
}

func MapSalonDetailDomainToApi(d *domain.SalonDetail) api.SalonDetail {
	breakdown := make([]api.BrandBreakdown, 0, len(d.Breakdown))
	for _, b := range d.Breakdown {
		breakdown = append(breakdown, MapBrandBreakdownDomainToApi(b))
	}

	return api.SalonDetail{
		SalonID:          d.SalonID,
		SalonName:        d.SalonName,
		Year:             d.Year,
		Breakdown:        breakdown,
		Growth:           MapGrowthDomainToApi(d.Growth),
		CorrectionFactor: d.CorrectionFactor.InexactFloat64(),
		Warnings:         mapWarnings(d.Warnings),
	}
}

func MapBrandBreakdownDomainToApi(b domain.BrandBonusBreakdown) api.BrandBreakdown {
	monthly := make([]api.MonthAmount, 0, len(b.Monthly))
	for _, m := range b.Monthly {
		monthly = append(monthly, api.MonthAmount{Period: m.Period.String(), Amount: m.Amount.InexactFloat64()})
	}

	return api.BrandBreakdown{
		SupplierID:    b.SupplierID,
		Brand:         b.Brand,
		Kjemi:         b.Kjemi.InexactFloat64(),
		Produkt:       b.Produkt.InexactFloat64(),
		Total:         b.Total.InexactFloat64(),
		LoyaltyBonus:  b.LoyaltyBonus.InexactFloat64(),
		KjemiBonus:    b.KjemiBonus.InexactFloat64(),
		ProduktBonus:  b.ProduktBonus.InexactFloat64(),
		PrevYearTotal: b.PrevYearTotal.InexactFloat64(),
		TrendPercent:  roundedPercent(b.TrendPercent),
		Monthly:       monthly,
	}
}

func MapChainTotalsDomainToApi(t *domain.ChainTotals) api.ChainTotals {
	return api.ChainTotals{
		Year:                 t.Year,
		TotalTurnover:        t.TotalTurnover.InexactFloat64(),
		LoyaltyBonus:         t.LoyaltyBonus.InexactFloat64(),
		GrowthBonus:          t.GrowthBonus.InexactFloat64(),
		TotalBonus:           t.TotalBonus.InexactFloat64(),
		PreviousYearTurnover: t.PreviousYearTurnover.InexactFloat64(),
	}
}

func MapSupplierTotalsDomainToApi(items []domain.SupplierTotals) []api.SupplierTotals {
	out := make([]api.SupplierTotals, 0, len(items))
	for _, s := range items {
		out = append(out, api.SupplierTotals{
			SupplierID:   s.SupplierID,
			SupplierName: s.SupplierName,
			Turnover:     s.Turnover.InexactFloat64(),
			LoyaltyBonus: s.LoyaltyBonus.InexactFloat64(),
			SalonCount:   s.SalonCount,
		})
	}
	return out
}

func MapMonthlyTotalsDomainToApi(items []domain.MonthlyTotals) []api.MonthlyTotals {
	out := make([]api.MonthlyTotals, 0, len(items))
	for _, m := range items {
		out = append(out, api.MonthlyTotals{
			Period:       m.Period.String(),
			Turnover:     m.Turnover.InexactFloat64(),
			LoyaltyBonus: m.LoyaltyBonus.InexactFloat64(),
		})
	}
	return out
}

func roundedPercent(p *decimal.Decimal) *float64 {
	if p == nil {
		return nil
	}
	v := p.Round(percentPlaces).InexactFloat64()
	return &v
}

func mapWarnings(warnings []error) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, w.Error())
	}
	return out
}

// MapApiFactToDomain validates a seed fact the same way stored rows are.
func MapApiFactToDomain(f api.Fact) (domain.BonusFact, []QuarantinedDetail, error) {
	return MapStoreFactToDomain(store.BonusFactRecord{
		SalonID:            f.SalonID,
		SupplierID:         f.SupplierID,
		Period:             f.Period,
		TotalTurnover:      f.TotalTurnover,
		LoyaltyBonusAmount: f.LoyaltyBonusAmount,
		Details:            f.Details,
	})
}

func MapApiOverrideToDomain(o api.Override) domain.BaselineOverride {
	return domain.BaselineOverride{
		OverrideKey:      domain.OverrideKey{SalonID: o.SalonID, SupplierID: o.SupplierID, Year: o.Year},
		OverrideTurnover: decimal.NewFromFloat(o.OverrideTurnover),
		Reason:           o.Reason,
	}
}

func MapApiDirectoryToSalons(entries []api.DirectoryEntry) []domain.Salon {
	out := make([]domain.Salon, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.Salon{ID: e.ID, Name: e.Name})
	}
	return out
}

func MapApiDirectoryToSuppliers(entries []api.DirectoryEntry) []domain.Supplier {
	out := make([]domain.Supplier, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.Supplier{ID: e.ID, Name: e.Name})
	}
	return out
}
