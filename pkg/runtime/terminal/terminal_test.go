package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/de-tools/bonus-atlas/pkg/models/api"
	"github.com/de-tools/bonus-atlas/pkg/models/domain"
	"github.com/de-tools/bonus-atlas/pkg/runtime/terminal/commands"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) GetSalonBonusOverview(ctx context.Context, year int, suppliers []string) ([]domain.AggregatedSalonBonus, error) {
	args := m.Called(ctx, year, suppliers)
	return args.Get(0).([]domain.AggregatedSalonBonus), args.Error(1)
}

func (m *mockBackend) GetSalonDetail(ctx context.Context, salonID string, year int) (*domain.SalonDetail, error) {
	args := m.Called(ctx, salonID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalonDetail), args.Error(1)
}

func (m *mockBackend) GetChainTotals(ctx context.Context, year int, suppliers []string) (*domain.ChainTotals, error) {
	args := m.Called(ctx, year, suppliers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChainTotals), args.Error(1)
}

func (m *mockBackend) GetSupplierTotals(ctx context.Context, year int) ([]domain.SupplierTotals, error) {
	args := m.Called(ctx, year)
	return args.Get(0).([]domain.SupplierTotals), args.Error(1)
}

func (m *mockBackend) GetMonthlyTotals(ctx context.Context, year int, suppliers []string) ([]domain.MonthlyTotals, error) {
	args := m.Called(ctx, year, suppliers)
	return args.Get(0).([]domain.MonthlyTotals), args.Error(1)
}

func (m *mockBackend) AddFacts(ctx context.Context, facts []domain.BonusFact) error {
	return m.Called(ctx, facts).Error(0)
}

func (m *mockBackend) AddSalons(ctx context.Context, salons []domain.Salon) error {
	return m.Called(ctx, salons).Error(0)
}

func (m *mockBackend) AddSuppliers(ctx context.Context, suppliers []domain.Supplier) error {
	return m.Called(ctx, suppliers).Error(0)
}

func (m *mockBackend) PutOverride(ctx context.Context, o domain.BaselineOverride) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockBackend) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUploader struct {
	key  string
	body []byte
}

func (f *fakeUploader) Upload(_ context.Context, key string, body []byte) error {
	f.key = key
	f.body = body
	return nil
}

func newTestCLI(backend *mockBackend, out *bytes.Buffer, uploader *fakeUploader) *CLI {
	return NewCLI(Options{
		Open: func(_ context.Context, _ string) (Backend, error) {
			return backend, nil
		},
		Uploader: func(_ context.Context, profile, bucket string) (commands.Uploader, error) {
			if uploader == nil {
				return nil, errors.New("no uploader")
			}
			return uploader, nil
		},
		Output: out,
		Now:    func() time.Time { return time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC) },
	})
}

func overviewRows() []domain.AggregatedSalonBonus {
	return []domain.AggregatedSalonBonus{{
		SalonID:      "A",
		SalonName:    "Salong A",
		Turnover:     decimal.NewFromInt(101000),
		LoyaltyBonus: decimal.NewFromInt(75),
		GrowthBonus:  decimal.NewFromInt(10000),
		TotalBonus:   decimal.NewFromInt(10075),
		Growth:       &domain.GrowthBonusResult{SupplierID: "growth", Tier: 3},
	}}
}

func TestCLI_Overview(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		year     int
		filter   []string
		contains []string
	}{
		{
			name:     "table format with defaults",
			args:     []string{"overview"},
			year:     2025,
			contains: []string{"Salon bonus overview 2025", "Salong A", "101000.00", "10075.00"},
		},
		{
			name:     "text format with year and suppliers",
			args:     []string{"overview", "--format", "text", "--year", "2024", "--supplier", "growth,other"},
			year:     2024,
			filter:   []string{"growth", "other"},
			contains: []string{"=== Salong A (A) ===", "Growth bonus: 10000.00 (tier 3)"},
		},
		{
			name:     "json format",
			args:     []string{"overview", "--format", "json", "--year", "2024"},
			year:     2024,
			contains: []string{`"salon_id": "A"`, `"total_bonus": 10075`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given
			backend := new(mockBackend)
			backend.On("GetSalonBonusOverview", mock.Anything, tt.year, tt.filter).Return(overviewRows(), nil)
			out := &bytes.Buffer{}

			// When
			err := newTestCLI(backend, out, nil).ExecuteContext(context.Background(), tt.args...)

			// Then
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out.String(), s)
			}
			backend.AssertExpectations(t)
		})
	}
}

func TestCLI_UnsupportedFormat(t *testing.T) {
	backend := new(mockBackend)
	err := newTestCLI(backend, &bytes.Buffer{}, nil).ExecuteContext(context.Background(), "overview", "--format", "xml")

	assert.ErrorContains(t, err, `unsupported output format "xml"`)
}

func TestCLI_Salon(t *testing.T) {
	trend := decimal.NewFromInt(-10)
	backend := new(mockBackend)
	backend.On("GetSalonDetail", mock.Anything, "A", 2024).Return(&domain.SalonDetail{
		SalonID:          "A",
		SalonName:        "Salong A",
		Year:             2024,
		CorrectionFactor: decimal.NewFromInt(1),
		Breakdown: []domain.BrandBonusBreakdown{{
			SupplierID: "growth", Brand: "X",
			Kjemi: decimal.NewFromInt(30000), Produkt: decimal.NewFromInt(70000),
			LoyaltyBonus: decimal.NewFromInt(50), PrevYearTotal: decimal.NewFromInt(45000),
			TrendPercent: &trend,
		}},
		Warnings: []error{errors.New("detail turnover mismatch")},
	}, nil)
	out := &bytes.Buffer{}

	err := newTestCLI(backend, out, nil).ExecuteContext(context.Background(), "salon", "A", "--year", "2024")

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Salong A (A) 2024")
	assert.Contains(t, out.String(), "30000.00")
	assert.Contains(t, out.String(), "-10.00")
	assert.Contains(t, out.String(), "! detail turnover mismatch")
}

func TestCLI_SalonRequiresID(t *testing.T) {
	err := newTestCLI(new(mockBackend), &bytes.Buffer{}, nil).ExecuteContext(context.Background(), "salon")

	assert.Error(t, err)
}

func TestCLI_ReportFailure(t *testing.T) {
	backend := new(mockBackend)
	backend.On("GetSalonBonusOverview", mock.Anything, 2025, []string(nil)).
		Return([]domain.AggregatedSalonBonus(nil), &domain.DataFetchError{Source: "facts", Page: 1, Err: errors.New("timeout")})

	err := newTestCLI(backend, &bytes.Buffer{}, nil).ExecuteContext(context.Background(), "overview")

	var fetchErr *domain.DataFetchError
	assert.ErrorAs(t, err, &fetchErr)
}

func expectTotals(backend *mockBackend, filter []string) {
	backend.On("GetChainTotals", mock.Anything, 2024, filter).Return(&domain.ChainTotals{
		Year: 2024, TotalTurnover: decimal.NewFromInt(103500), TotalBonus: decimal.NewFromInt(10375),
	}, nil)
	backend.On("GetSupplierTotals", mock.Anything, 2024).Return([]domain.SupplierTotals{{
		SupplierID: "growth", SupplierName: "Growth AS", Turnover: decimal.NewFromInt(102000), SalonCount: 2,
	}}, nil)
	backend.On("GetMonthlyTotals", mock.Anything, 2024, filter).Return([]domain.MonthlyTotals{{
		Period: domain.NewPeriod(2024, time.January), Turnover: decimal.NewFromInt(60500),
	}}, nil)
}

func TestCLI_Totals(t *testing.T) {
	backend := new(mockBackend)
	expectTotals(backend, []string(nil))
	out := &bytes.Buffer{}

	err := newTestCLI(backend, out, nil).ExecuteContext(context.Background(), "totals", "--year", "2024", "--format", "text")

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Total turnover: 103500.00")
	assert.Contains(t, out.String(), "Growth AS: 102000.00 across 2 salons")
	assert.Contains(t, out.String(), "2024-01: 60500.00")
	backend.AssertExpectations(t)
}

func TestCLI_Export(t *testing.T) {
	t.Run("stdout", func(t *testing.T) {
		backend := new(mockBackend)
		expectTotals(backend, []string(nil))
		backend.On("GetSalonBonusOverview", mock.Anything, 2024, []string(nil)).Return(overviewRows(), nil)
		out := &bytes.Buffer{}

		err := newTestCLI(backend, out, nil).ExecuteContext(context.Background(), "export", "--year", "2024")

		require.NoError(t, err)
		var report api.Report
		require.NoError(t, json.Unmarshal(out.Bytes(), &report))
		assert.Equal(t, 2024, report.Year)
		assert.Equal(t, "2025-03-01T00:00:00Z", report.GeneratedAt)
		assert.Equal(t, 103500.0, report.Totals.TotalTurnover)
		require.Len(t, report.Salons, 1)
		require.Len(t, report.BySupplier, 1)
		require.Len(t, report.Monthly, 1)
	})

	t.Run("file", func(t *testing.T) {
		backend := new(mockBackend)
		expectTotals(backend, []string(nil))
		backend.On("GetSalonBonusOverview", mock.Anything, 2024, []string(nil)).Return(overviewRows(), nil)
		path := filepath.Join(t.TempDir(), "report.json")

		err := newTestCLI(backend, &bytes.Buffer{}, nil).ExecuteContext(context.Background(), "export", "--year", "2024", "-o", path)

		require.NoError(t, err)
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"year": 2024`)
	})

	t.Run("s3 with default key", func(t *testing.T) {
		backend := new(mockBackend)
		expectTotals(backend, []string{"growth"})
		backend.On("GetSalonBonusOverview", mock.Anything, 2024, []string{"growth"}).Return(overviewRows(), nil)
		uploader := &fakeUploader{}

		err := newTestCLI(backend, &bytes.Buffer{}, uploader).ExecuteContext(context.Background(),
			"export", "--year", "2024", "--supplier", "growth", "--s3-bucket", "reports")

		require.NoError(t, err)
		assert.Equal(t, "bonus/2024.json", uploader.key)
		assert.Contains(t, string(uploader.body), `"supplier_filter": [`)
	})

	t.Run("partial failure aborts the export", func(t *testing.T) {
		backend := new(mockBackend)
		expectTotals(backend, []string(nil))
		backend.On("GetSalonBonusOverview", mock.Anything, 2024, []string(nil)).
			Return([]domain.AggregatedSalonBonus(nil), errors.New("boom"))
		out := &bytes.Buffer{}

		err := newTestCLI(backend, out, nil).ExecuteContext(context.Background(), "export", "--year", "2024")

		assert.ErrorContains(t, err, "boom")
		assert.Empty(t, out.String())
	})
}

func TestCLI_Load(t *testing.T) {
	seed := `{
		"salons": [{"id": "A", "name": "Salong A"}],
		"suppliers": [{"id": "growth", "name": "Growth AS"}],
		"facts": [{"salon_id": "A", "supplier_id": "growth", "period": "2024-01", "total_turnover": 100,
			"details": [{"brand": "X", "turnover": 100}, {"turnover": 1}]}],
		"overrides": [{"salon_id": "A", "supplier_id": "growth", "year": 2023, "override_turnover": 90, "reason": "merge"}]
	}`
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	backend := new(mockBackend)
	backend.On("AddSalons", mock.Anything, []domain.Salon{{ID: "A", Name: "Salong A"}}).Return(nil)
	backend.On("AddSuppliers", mock.Anything, []domain.Supplier{{ID: "growth", Name: "Growth AS"}}).Return(nil)
	backend.On("AddFacts", mock.Anything, mock.MatchedBy(func(facts []domain.BonusFact) bool {
		return len(facts) == 1 && len(facts[0].Details) == 1 && facts[0].Details[0].Brand == "X"
	})).Return(nil)
	backend.On("PutOverride", mock.Anything, mock.MatchedBy(func(o domain.BaselineOverride) bool {
		return o.SalonID == "A" && o.Year == 2023 && o.OverrideTurnover.Equal(decimal.NewFromInt(90))
	})).Return(nil)
	out := &bytes.Buffer{}

	err := newTestCLI(backend, out, nil).ExecuteContext(context.Background(), "load", "-f", path)

	require.NoError(t, err)
	assert.Equal(t, "loaded 1 salons, 1 suppliers, 1 facts, 1 overrides\n", out.String())
	backend.AssertExpectations(t)
}

func TestCLI_OverrideSet(t *testing.T) {
	backend := new(mockBackend)
	backend.On("PutOverride", mock.Anything, mock.MatchedBy(func(o domain.BaselineOverride) bool {
		return o.SalonID == "A" && o.SupplierID == "growth" && o.Year == 2024 &&
			o.OverrideTurnover.Equal(decimal.RequireFromString("120000.5")) && o.Reason == "merge"
	})).Return(nil)
	out := &bytes.Buffer{}

	err := newTestCLI(backend, out, nil).ExecuteContext(context.Background(),
		"override", "set", "--salon", "A", "--supplier", "growth", "--turnover", "120000.5", "--reason", "merge")

	require.NoError(t, err)
	assert.Equal(t, "override set for A/growth 2024: 120000.50\n", out.String())
	backend.AssertExpectations(t)
}

func TestCLI_OverrideSetRejectsBadTurnover(t *testing.T) {
	err := newTestCLI(new(mockBackend), &bytes.Buffer{}, nil).ExecuteContext(context.Background(),
		"override", "set", "--salon", "A", "--supplier", "growth", "--turnover", "lots")

	assert.ErrorContains(t, err, "invalid turnover")
}
