package api

import "encoding/json"

type GrowthBonus struct {
	SupplierID             string  `json:"supplier_id"`
	CurrentTurnover        float64 `json:"current_turnover"`
	PrevTurnover           float64 `json:"prev_turnover"`
	CalculatedPrevTurnover float64 `json:"calculated_prev_turnover"`
	OverrideReason         *string `json:"override_reason,omitempty"`
	IsNewCustomer          bool    `json:"is_new_customer"`
	GrowthPercent          float64 `json:"growth_percent"`
	Tier                   int     `json:"tier"`
	BonusRate              float64 `json:"bonus_rate"`
	BonusAmount            float64 `json:"bonus_amount"`
}

type SalonBonus struct {
	SalonID        string       `json:"salon_id"`
	SalonName      string       `json:"salon_name"`
	Turnover       float64      `json:"turnover"`
	DetailTurnover float64      `json:"detail_turnover"`
	LoyaltyBonus   float64      `json:"loyalty_bonus"`
	GrowthBonus    float64      `json:"growth_bonus"`
	TotalBonus     float64      `json:"total_bonus"`
	Growth         *GrowthBonus `json:"growth,omitempty"`
	Warnings       []string     `json:"warnings,omitempty"`
}

type MonthAmount struct {
	Period string  `json:"period"`
	Amount float64 `json:"amount"`
}

type BrandBreakdown struct {
	SupplierID    string        `json:"supplier_id"`
	Brand         string        `json:"brand"`
	Kjemi         float64       `json:"kjemi"`
	Produkt       float64       `json:"produkt"`
	Total         float64       `json:"total"`
	LoyaltyBonus  float64       `json:"loyalty_bonus"`
	KjemiBonus    float64       `json:"kjemi_bonus"`
	ProduktBonus  float64       `json:"produkt_bonus"`
	PrevYearTotal float64       `json:"prev_year_total"`
	TrendPercent  *float64      `json:"trend_percent,omitempty"`
	Monthly       []MonthAmount `json:"monthly,omitempty"`
}

type SalonDetail struct {
	SalonID          string           `json:"salon_id"`
	SalonName        string           `json:"salon_name"`
	Year             int              `json:"year"`
	Breakdown        []BrandBreakdown `json:"breakdown"`
	Growth           *GrowthBonus     `json:"growth,omitempty"`
	CorrectionFactor float64          `json:"correction_factor"`
	Warnings         []string         `json:"warnings,omitempty"`
}

type ChainTotals struct {
	Year                 int     `json:"year"`
	TotalTurnover        float64 `json:"total_turnover"`
	LoyaltyBonus         float64 `json:"loyalty_bonus"`
	GrowthBonus          float64 `json:"growth_bonus"`
	TotalBonus           float64 `json:"total_bonus"`
	PreviousYearTurnover float64 `json:"previous_year_turnover"`
}

type SupplierTotals struct {
	SupplierID   string  `json:"supplier_id"`
	SupplierName string  `json:"supplier_name"`
	Turnover     float64 `json:"turnover"`
	LoyaltyBonus float64 `json:"loyalty_bonus"`
	SalonCount   int     `json:"salon_count"`
}

type MonthlyTotals struct {
	Period       string  `json:"period"`
	Turnover     float64 `json:"turnover"`
	LoyaltyBonus float64 `json:"loyalty_bonus"`
}

// Report bundles every view of one year for file or object storage export.
type Report struct {
	Year        int              `json:"year"`
	GeneratedAt string           `json:"generated_at"`
	Suppliers   []string         `json:"supplier_filter,omitempty"`
	Totals      ChainTotals      `json:"totals"`
	Salons      []SalonBonus     `json:"salons"`
	BySupplier  []SupplierTotals `json:"by_supplier"`
	Monthly     []MonthlyTotals  `json:"monthly"`
}

type DirectoryEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Fact struct {
	SalonID            string          `json:"salon_id"`
	SupplierID         string          `json:"supplier_id"`
	Period             string          `json:"period"`
	TotalTurnover      float64         `json:"total_turnover"`
	LoyaltyBonusAmount float64         `json:"loyalty_bonus_amount"`
	Details            json.RawMessage `json:"details,omitempty"`
}

type Override struct {
	SalonID          string  `json:"salon_id"`
	SupplierID       string  `json:"supplier_id"`
	Year             int     `json:"year"`
	OverrideTurnover float64 `json:"override_turnover"`
	Reason           string  `json:"reason"`
}

// Seed is the document accepted by the load command.
type Seed struct {
	Salons    []DirectoryEntry `json:"salons"`
	Suppliers []DirectoryEntry `json:"suppliers"`
	Facts     []Fact           `json:"facts"`
	Overrides []Override       `json:"overrides"`
}
