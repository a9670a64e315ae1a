package store

// BonusFactRecord mirrors a bonus_facts row. Money columns are DOUBLE in the
// store and Details holds the raw JSON brand ledger.
type BonusFactRecord struct {
	SalonID            string  `db:"salon_id"`
	SupplierID         string  `db:"supplier_id"`
	Period             string  `db:"period"`
	TotalTurnover      float64 `db:"total_turnover"`
	LoyaltyBonusAmount float64 `db:"loyalty_bonus_amount"`
	Details            []byte  `db:"details"`
}

// BrandDetailRecord is one element of the details JSON payload.
type BrandDetailRecord struct {
	Brand        string   `json:"brand" validate:"required"`
	Turnover     *float64 `json:"turnover" validate:"required,gte=0"`
	Loyalty      *float64 `json:"loyalty" validate:"omitempty,gte=0"`
	ProductGroup string   `json:"productGroup"`
}

type BaselineOverrideRecord struct {
	SalonID          string  `db:"salon_id"`
	SupplierID       string  `db:"supplier_id"`
	Year             int     `db:"year"`
	OverrideTurnover float64 `db:"override_turnover"`
	Reason           string  `db:"reason"`
}

type DirectoryRecord struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}
