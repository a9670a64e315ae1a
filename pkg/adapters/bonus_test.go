package adapters

import (
	"errors"
	"testing"
	"time"

	"github.com/de-tools/bonus-atlas/pkg/models/domain"
	"github.com/de-tools/bonus-atlas/pkg/models/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestMapStoreFactToDomain(t *testing.T) {
	tests := []struct {
		name            string
		record          store.BonusFactRecord
		wantErr         bool
		wantDetails     []string
		wantQuarantined []int
	}{
		{
			name: "valid payload",
			record: store.BonusFactRecord{
				SalonID: "A", SupplierID: "s", Period: "2024-03", TotalTurnover: 10, LoyaltyBonusAmount: 1,
				Details: []byte(`[{"brand":"X","turnover":4,"loyalty":0.4,"productGroup":"kjemi"},{"brand":"Y","turnover":6}]`),
			},
			wantDetails: []string{"X", "Y"},
		},
		{
			name: "malformed entries are quarantined",
			record: store.BonusFactRecord{
				SalonID: "A", SupplierID: "s", Period: "2024-03", TotalTurnover: 10,
				Details: []byte(`[{"brand":"X","turnover":4},"oops",{"turnover":1},{"brand":"Z","turnover":"six"},{"brand":"W","turnover":1,"loyalty":-1}]`),
			},
			wantDetails:     []string{"X"},
			wantQuarantined: []int{1, 2, 3, 4},
		},
		{
			name:   "null payload",
			record: store.BonusFactRecord{SalonID: "A", SupplierID: "s", Period: "2024-03", Details: []byte("null")},
		},
		{
			name:   "missing payload",
			record: store.BonusFactRecord{SalonID: "A", SupplierID: "s", Period: "2024-03"},
		},
		{
			name:    "payload is not an array",
			record:  store.BonusFactRecord{SalonID: "A", SupplierID: "s", Period: "2024-03", Details: []byte(`{"brand":"X"}`)},
			wantErr: true,
		},
		{
			name:    "bad period",
			record:  store.BonusFactRecord{SalonID: "A", SupplierID: "s", Period: "March 2024"},
			wantErr: true,
		},
		{
			name:    "missing supplier",
			record:  store.BonusFactRecord{SalonID: "A", Period: "2024-03"},
			wantErr: true,
		},
		{
			name:    "negative turnover",
			record:  store.BonusFactRecord{SalonID: "A", SupplierID: "s", Period: "2024-03", TotalTurnover: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fact, quarantined, err := MapStoreFactToDomain(tt.record)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.NewPeriod(2024, time.March), fact.Period)

			var brands []string
			for _, det := range fact.Details {
				brands = append(brands, det.Brand)
			}
			assert.Equal(t, tt.wantDetails, brands)

			var indexes []int
			for _, q := range quarantined {
				indexes = append(indexes, q.Index)
				assert.NotEmpty(t, q.Reason)
			}
			assert.Equal(t, tt.wantQuarantined, indexes)
		})
	}
}

func TestMapDomainFactToStore_RoundTrip(t *testing.T) {
	fact := domain.BonusFact{
		SalonID:            "A",
		SupplierID:         "s",
		Period:             domain.NewPeriod(2024, time.November),
		TotalTurnover:      d("1000.25"),
		LoyaltyBonusAmount: d("50"),
		Details: []domain.BrandDetail{
			{Brand: "X", Turnover: d("300.25"), Loyalty: d("15"), ProductGroup: domain.ProductGroupKjemi},
			{Brand: "Y", Turnover: d("700"), Loyalty: d("35"), ProductGroup: "retail"},
		},
	}

	rec, err := MapDomainFactToStore(fact)
	require.NoError(t, err)
	assert.Equal(t, "2024-11", rec.Period)

	back, quarantined, err := MapStoreFactToDomain(rec)
	require.NoError(t, err)
	assert.Empty(t, quarantined)
	assert.True(t, fact.TotalTurnover.Equal(back.TotalTurnover))
	require.Len(t, back.Details, 2)
	assert.True(t, back.Details[0].IsKjemi())
	assert.True(t, d("1000.25").Equal(back.DetailTurnover()))
}

func TestMapGrowthDomainToApi(t *testing.T) {
	assert.Nil(t, MapGrowthDomainToApi(nil))

	g := MapGrowthDomainToApi(&domain.GrowthBonusResult{
		SupplierID:    "s",
		GrowthPercent: d("-16.666666666"),
		Override:      &domain.BaselineOverride{OverrideTurnover: d("120000"), Reason: "merger"},
	})
	require.NotNil(t, g)
	assert.Equal(t, -16.67, g.GrowthPercent)
	require.NotNil(t, g.OverrideReason)
	assert.Equal(t, "merger", *g.OverrideReason)
}

func TestMapSalonBonusDomainToApi_Warnings(t *testing.T) {
	row := MapSalonBonusDomainToApi(domain.AggregatedSalonBonus{
		SalonID:  "C",
		Warnings: []error{&domain.MissingReferenceError{Kind: domain.ReferenceSalon, ID: "C"}, errors.New("other")},
	})

	assert.Equal(t, []string{`salon "C" not found in directory`, "other"}, row.Warnings)
	assert.Nil(t, row.Growth)
}
