package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/de-tools/bonus-atlas/pkg/metrics"
	"github.com/de-tools/bonus-atlas/pkg/models/api"
	"github.com/de-tools/bonus-atlas/pkg/models/domain"
	"github.com/de-tools/bonus-atlas/pkg/services/config"
	"github.com/de-tools/bonus-atlas/pkg/services/engine"
	"github.com/de-tools/bonus-atlas/pkg/store/duckdb"
	"github.com/huandu/go-sqlbuilder"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReports struct {
	mock.Mock
}

func (m *mockReports) GetSalonBonusOverview(ctx context.Context, year int, suppliers []string) ([]domain.AggregatedSalonBonus, error) {
	args := m.Called(ctx, year, suppliers)
	return args.Get(0).([]domain.AggregatedSalonBonus), args.Error(1)
}

func (m *mockReports) GetSalonDetail(ctx context.Context, salonID string, year int) (*domain.SalonDetail, error) {
	args := m.Called(ctx, salonID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalonDetail), args.Error(1)
}

func (m *mockReports) GetChainTotals(ctx context.Context, year int, suppliers []string) (*domain.ChainTotals, error) {
	args := m.Called(ctx, year, suppliers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChainTotals), args.Error(1)
}

func (m *mockReports) GetSupplierTotals(ctx context.Context, year int) ([]domain.SupplierTotals, error) {
	args := m.Called(ctx, year)
	return args.Get(0).([]domain.SupplierTotals), args.Error(1)
}

func (m *mockReports) GetMonthlyTotals(ctx context.Context, year int, suppliers []string) ([]domain.MonthlyTotals, error) {
	args := m.Called(ctx, year, suppliers)
	return args.Get(0).([]domain.MonthlyTotals), args.Error(1)
}

func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	mockRep := new(mockReports)

	cfg := Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		Dependencies: Dependencies{
			Reports: mockRep,
			Metrics: metrics.NewRegistry(),
			Logger:  logger,
		},
	}
	router := ConfigureRouter(cfg)
	testServer := httptest.NewServer(router)
	defer testServer.Close()

	tests := []struct {
		name           string
		path           string
		setupMocks     func()
		expectedStatus int
		expected       interface{}
		parseResponse  func([]byte) (interface{}, error)
	}{
		{
			name: "ListSalons",
			path: "/api/v1/bonus/salons?year=2024&supplier=growth",
			setupMocks: func() {
				mockRep.On("GetSalonBonusOverview", mock.Anything, 2024, []string{"growth"}).
					Return([]domain.AggregatedSalonBonus{{
						SalonID:     "A",
						SalonName:   "Salong A",
						Turnover:    decimal.NewFromInt(100000),
						GrowthBonus: decimal.NewFromInt(10000),
						TotalBonus:  decimal.NewFromInt(10000),
					}}, nil)
			},
			expectedStatus: http.StatusOK,
			expected: []api.SalonBonus{{
				SalonID:     "A",
				SalonName:   "Salong A",
				Turnover:    100000,
				GrowthBonus: 10000,
				TotalBonus:  10000,
			}},
			parseResponse: unmarshalResponse[[]api.SalonBonus](),
		},
		{
			name: "GetTotals",
			path: "/api/v1/bonus/totals?year=2024",
			setupMocks: func() {
				mockRep.On("GetChainTotals", mock.Anything, 2024, []string(nil)).
					Return(&domain.ChainTotals{Year: 2024, TotalTurnover: decimal.NewFromInt(5)}, nil)
			},
			expectedStatus: http.StatusOK,
			expected:       api.ChainTotals{Year: 2024, TotalTurnover: 5},
			parseResponse:  unmarshalResponse[api.ChainTotals](),
		},
		{
			name: "GetSalon_FetchFailure",
			path: "/api/v1/bonus/salons/B?year=2024",
			setupMocks: func() {
				mockRep.On("GetSalonDetail", mock.Anything, "B", 2024).
					Return(nil, &domain.DataFetchError{Source: "facts", Page: 2, Offset: 1000, Err: errors.New("timeout")})
			},
			expectedStatus: http.StatusBadGateway,
			expected:       "fetch facts page 2 (offset 1000): timeout\n",
			parseResponse: func(data []byte) (interface{}, error) {
				return string(data), nil
			},
		},
		{
			name:           "ListSuppliers_InvalidYear",
			path:           "/api/v1/bonus/suppliers?year=twenty",
			setupMocks:     func() {},
			expectedStatus: http.StatusBadRequest,
			expected:       "invalid year \"twenty\"\n",
			parseResponse: func(data []byte) (interface{}, error) {
				return string(data), nil
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMocks()
			resp, err := http.Get(testServer.URL + tc.path)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "Failed to read response body")

			actual, err := tc.parseResponse(body)
			require.NoError(t, err, "Failed to parse response")

			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestWebAPI_EngineEndToEnd(t *testing.T) {
	db, err := duckdb.NewDB(duckdb.Settings{})
	require.NoError(t, err)

	settings := &config.Settings{}
	settings.Growth.SupplierID = "growth"
	settings.Retrieval.PageSize = 1000
	registry := metrics.NewRegistry()

	eng, err := engine.New(settings, &config.Connection{DB: db, Flavor: sqlbuilder.SQLite, Local: true}, registry)
	require.NoError(t, err)
	defer eng.Close()

	ctx := context.Background()
	require.NoError(t, eng.AddSalons(ctx, []domain.Salon{{ID: "A", Name: "Salong A"}}))
	require.NoError(t, eng.AddFacts(ctx, []domain.BonusFact{
		{SalonID: "A", SupplierID: "growth", Period: domain.NewPeriod(2024, time.June), TotalTurnover: decimal.NewFromInt(1000)},
		{SalonID: "Z", SupplierID: "growth", Period: domain.NewPeriod(2024, time.June), TotalTurnover: decimal.NewFromInt(100)},
	}))

	testServer := httptest.NewServer(ConfigureRouter(Config{
		Dependencies: Dependencies{
			Reports: eng,
			Metrics: registry,
			Logger:  zerolog.New(zerolog.NewTestWriter(t)),
		},
	}))
	defer testServer.Close()

	resp, err := http.Get(testServer.URL + "/api/v1/bonus/salons?year=2024")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rows []api.SalonBonus
	require.NoError(t, json.Unmarshal(body, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Salong A", rows[0].SalonName)
	require.NotNil(t, rows[0].Growth)
	assert.True(t, rows[0].Growth.IsNewCustomer)
	assert.Equal(t, 100.0, rows[0].GrowthBonus)
	assert.Equal(t, "Ukjent salong (Z)", rows[1].SalonName)
	assert.NotEmpty(t, rows[1].Warnings)

	resp, err = http.Get(testServer.URL + "/metrics")
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "missing")
}

func unmarshalResponse[T any]() func([]byte) (interface{}, error) {
	return func(data []byte) (interface{}, error) {
		var response T
		err := json.Unmarshal(data, &response)
		return response, err
	}
}
