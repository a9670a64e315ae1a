package domain

import "github.com/shopspring/decimal"

// ProductGroupKjemi marks chemical products; every other group counts as retail.
const ProductGroupKjemi = "kjemi"

type BrandDetail struct {
	Brand        string
	Turnover     decimal.Decimal
	Loyalty      decimal.Decimal
	ProductGroup string
}

func (d BrandDetail) IsKjemi() bool {
	return d.ProductGroup == ProductGroupKjemi
}

// BonusFact is one salon x supplier x period turnover row.
type BonusFact struct {
	SalonID            string
	SupplierID         string
	Period             Period
	TotalTurnover      decimal.Decimal
	LoyaltyBonusAmount decimal.Decimal
	Details            []BrandDetail
}

// DetailTurnover sums the brand-level turnover of the fact.
func (f BonusFact) DetailTurnover() decimal.Decimal {
	sum := decimal.Zero
	for _, d := range f.Details {
		sum = sum.Add(d.Turnover)
	}
	return sum
}

type OverrideKey struct {
	SalonID    string
	SupplierID string
	Year       int
}

// BaselineOverride replaces the calculated prior-year turnover for growth bonus comparison.
type BaselineOverride struct {
	OverrideKey
	OverrideTurnover decimal.Decimal
	Reason           string
}

type AggregatedSalonBonus struct {
	SalonID        string
	SalonName      string
	Turnover       decimal.Decimal // sum of fact totals
	DetailTurnover decimal.Decimal // sum of brand detail turnover
	LoyaltyBonus   decimal.Decimal
	GrowthBonus    decimal.Decimal
	TotalBonus     decimal.Decimal
	Growth         *GrowthBonusResult
	Warnings       []error
}

type BrandBonusBreakdown struct {
	SupplierID    string
	Brand         string
	Kjemi         decimal.Decimal
	Produkt       decimal.Decimal
	Total         decimal.Decimal
	LoyaltyBonus  decimal.Decimal
	KjemiBonus    decimal.Decimal
	ProduktBonus  decimal.Decimal
	PrevYearTotal decimal.Decimal
	TrendPercent  *decimal.Decimal // nil when there is no prior-year figure
	Monthly       []PeriodAmount
}

type PeriodAmount struct {
	Period Period
	Amount decimal.Decimal
}

type GrowthBonusResult struct {
	SupplierID             string
	CurrentTurnover        decimal.Decimal
	PrevTurnover           decimal.Decimal
	CalculatedPrevTurnover decimal.Decimal
	Override               *BaselineOverride
	IsNewCustomer          bool
	GrowthPercent          decimal.Decimal
	Tier                   int
	BonusRate              decimal.Decimal
	BonusAmount            decimal.Decimal
}

type SalonDetail struct {
	SalonID          string
	SalonName        string
	Year             int
	Breakdown        []BrandBonusBreakdown
	Growth           *GrowthBonusResult
	CorrectionFactor decimal.Decimal
	Warnings         []error
}

type ChainTotals struct {
	Year                 int
	TotalTurnover        decimal.Decimal
	LoyaltyBonus         decimal.Decimal
	GrowthBonus          decimal.Decimal
	TotalBonus           decimal.Decimal
	PreviousYearTurnover decimal.Decimal
}

type SupplierTotals struct {
	SupplierID   string
	SupplierName string
	Turnover     decimal.Decimal
	LoyaltyBonus decimal.Decimal
	SalonCount   int
}

type MonthlyTotals struct {
	Period       Period
	Turnover     decimal.Decimal
	LoyaltyBonus decimal.Decimal
}
