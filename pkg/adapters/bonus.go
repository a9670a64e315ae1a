package adapters

import (
	"encoding/json"
	"fmt"

	"github.com/de-tools/bonus-atlas/pkg/models/domain"
	"github.com/de-tools/bonus-atlas/pkg/models/store"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// QuarantinedDetail is a details entry that failed validation and was left out
// of the brand ledger.
type QuarantinedDetail struct {
	Index  int
	Raw    json.RawMessage
	Reason string
}

// MapStoreFactToDomain decodes the details payload and validates every entry.
// Malformed entries are returned as quarantined instead of failing the fact;
// a payload that is not a JSON array at all fails the whole record.
func MapStoreFactToDomain(record store.BonusFactRecord) (domain.BonusFact, []QuarantinedDetail, error) {
	period, err := domain.ParsePeriod(record.Period)
	if err != nil {
		return domain.BonusFact{}, nil, err
	}
	if record.SalonID == "" || record.SupplierID == "" {
		return domain.BonusFact{}, nil, fmt.Errorf("fact %s has empty salon or supplier id", record.Period)
	}
	if record.TotalTurnover < 0 || record.LoyaltyBonusAmount < 0 {
		return domain.BonusFact{}, nil, fmt.Errorf("fact %s/%s/%s has negative amounts",
			record.SalonID, record.SupplierID, record.Period)
	}

	fact := domain.BonusFact{
		SalonID:            record.SalonID,
		SupplierID:         record.SupplierID,
		Period:             period,
		TotalTurnover:      decimal.NewFromFloat(record.TotalTurnover),
		LoyaltyBonusAmount: decimal.NewFromFloat(record.LoyaltyBonusAmount),
	}

	if len(record.Details) == 0 || string(record.Details) == "null" {
		return fact, nil, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(record.Details, &raw); err != nil {
		return domain.BonusFact{}, nil, fmt.Errorf("decode details for %s/%s/%s: %w",
			record.SalonID, record.SupplierID, record.Period, err)
	}

	var quarantined []QuarantinedDetail
	fact.Details = make([]domain.BrandDetail, 0, len(raw))
	for i, item := range raw {
		detail, err := parseBrandDetail(item)
		if err != nil {
			quarantined = append(quarantined, QuarantinedDetail{Index: i, Raw: item, Reason: err.Error()})
			continue
		}
		fact.Details = append(fact.Details, detail)
	}

	return fact, quarantined, nil
}

func parseBrandDetail(raw json.RawMessage) (domain.BrandDetail, error) {
	var rec store.BrandDetailRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.BrandDetail{}, fmt.Errorf("decode brand detail: %w", err)
	}
	if err := validate.Struct(rec); err != nil {
		return domain.BrandDetail{}, fmt.Errorf("invalid brand detail: %w", err)
	}

	loyalty := decimal.Zero
	if rec.Loyalty != nil {
		loyalty = decimal.NewFromFloat(*rec.Loyalty)
	}

	return domain.BrandDetail{
		Brand:        rec.Brand,
		Turnover:     decimal.NewFromFloat(*rec.Turnover),
		Loyalty:      loyalty,
		ProductGroup: rec.ProductGroup,
	}, nil
}

func MapDomainFactToStore(fact domain.BonusFact) (store.BonusFactRecord, error) {
	details := make([]store.BrandDetailRecord, 0, len(fact.Details))
	for _, d := range fact.Details {
		turnover := d.Turnover.InexactFloat64()
		loyalty := d.Loyalty.InexactFloat64()
		details = append(details, store.BrandDetailRecord{
			Brand:        d.Brand,
			Turnover:     &turnover,
			Loyalty:      &loyalty,
			ProductGroup: d.ProductGroup,
		})
	}

	payload, err := json.Marshal(details)
	if err != nil {
		return store.BonusFactRecord{}, fmt.Errorf("marshal details: %w", err)
	}

	return store.BonusFactRecord{
		SalonID:            fact.SalonID,
		SupplierID:         fact.SupplierID,
		Period:             fact.Period.String(),
		TotalTurnover:      fact.TotalTurnover.InexactFloat64(),
		LoyaltyBonusAmount: fact.LoyaltyBonusAmount.InexactFloat64(),
		Details:            payload,
	}, nil
}

func MapStoreOverrideToDomain(record store.BaselineOverrideRecord) domain.BaselineOverride {
	return domain.BaselineOverride{
		OverrideKey: domain.OverrideKey{
			SalonID:    record.SalonID,
			SupplierID: record.SupplierID,
			Year:       record.Year,
		},
		OverrideTurnover: decimal.NewFromFloat(record.OverrideTurnover),
		Reason:           record.Reason,
	}
}
