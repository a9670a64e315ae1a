package breakdown

import (
	"maps"
	"slices"

	"github.com/de-tools/bonus-atlas/pkg/models/domain"
	"github.com/de-tools/bonus-atlas/pkg/services/aggregate"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Split allocates a loyalty bonus between kjemi and produkt in proportion to
// turnover. The produkt share is derived by subtraction so the two parts
// always add up to loyalty exactly.
func Split(loyalty, kjemi, produkt decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	total := kjemi.Add(produkt)
	if total.IsZero() {
		return decimal.Zero, decimal.Zero
	}
	kjemiBonus := loyalty.Mul(kjemi).Div(total)
	return kjemiBonus, loyalty.Sub(kjemiBonus)
}

// CorrectionFactor scales calculated prior-year figures to an overridden
// baseline. It is 1 without an override or when there is nothing to scale.
func CorrectionFactor(ov *domain.BaselineOverride, calculatedPrior decimal.Decimal) decimal.Decimal {
	if ov == nil || calculatedPrior.IsZero() {
		return decimal.NewFromInt(1)
	}
	return ov.OverrideTurnover.Div(calculatedPrior)
}

// Allocate builds the brand breakdown of one salon and supplier. Every prior
// brand total is multiplied by the same factor before the trend is computed.
// Brands seen only in the prior year are listed with zero current figures.
// Either bucket may be nil.
func Allocate(current, prior *aggregate.SupplierBucket, factor decimal.Decimal) []domain.BrandBonusBreakdown {
	supplierID := ""
	brands := make(map[string]struct{})
	for _, b := range []*aggregate.SupplierBucket{current, prior} {
		if b == nil {
			continue
		}
		supplierID = b.SupplierID
		for name := range b.Brands {
			brands[name] = struct{}{}
		}
	}

	out := make([]domain.BrandBonusBreakdown, 0, len(brands))
	for _, name := range slices.Sorted(maps.Keys(brands)) {
		row := domain.BrandBonusBreakdown{SupplierID: supplierID, Brand: name}

		if cur := brand(current, name); cur != nil {
			row.Kjemi = cur.Kjemi
			row.Produkt = cur.Produkt
			row.LoyaltyBonus = cur.Loyalty
			row.Monthly = cur.Monthly()
		}
		row.Total = row.Kjemi.Add(row.Produkt)
		row.KjemiBonus, row.ProduktBonus = Split(row.LoyaltyBonus, row.Kjemi, row.Produkt)

		if prev := brand(prior, name); prev != nil {
			row.PrevYearTotal = prev.Total().Mul(factor)
		}
		row.TrendPercent = Trend(row.Total, row.PrevYearTotal)

		out = append(out, row)
	}
	return out
}

// Trend returns the percentage change from prev to current, nil when prev is zero.
func Trend(current, prev decimal.Decimal) *decimal.Decimal {
	if prev.IsZero() {
		return nil
	}
	t := current.Sub(prev).Div(prev).Mul(hundred)
	return &t
}

func brand(b *aggregate.SupplierBucket, name string) *aggregate.BrandBucket {
	if b == nil {
		return nil
	}
	return b.Brands[name]
}
