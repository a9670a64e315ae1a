package bonus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/bonus-atlas/pkg/adapters"
	"github.com/de-tools/bonus-atlas/pkg/models/domain"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Reports is the read side of the bonus engine served over HTTP.
type Reports interface {
	GetSalonBonusOverview(ctx context.Context, year int, supplierFilter []string) ([]domain.AggregatedSalonBonus, error)
	GetSalonDetail(ctx context.Context, salonID string, year int) (*domain.SalonDetail, error)
	GetChainTotals(ctx context.Context, year int, supplierFilter []string) (*domain.ChainTotals, error)
	GetSupplierTotals(ctx context.Context, year int) ([]domain.SupplierTotals, error)
	GetMonthlyTotals(ctx context.Context, year int, supplierFilter []string) ([]domain.MonthlyTotals, error)
}

type Handler struct {
	reports Reports
	now     func() time.Time
}

func NewHandler(reports Reports) *Handler {
	return &Handler{reports: reports, now: time.Now}
}

func (h *Handler) ListSalons(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	year, err := h.year(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	suppliers := supplierFilter(r)

	rows, err := h.reports.GetSalonBonusOverview(ctx, year, suppliers)
	if err != nil {
		writeError(ctx, w, err, "failed to build salon bonus overview")
		return
	}

	writeJSON(w, adapters.MapSalonBonusesDomainToApi(rows), logger.With().Int("year", year).Logger(), "salon overview")
}

func (h *Handler) GetSalon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	salonID := chi.URLParam(r, "salon")

	year, err := h.year(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	detail, err := h.reports.GetSalonDetail(ctx, salonID, year)
	if err != nil {
		writeError(ctx, w, err, "failed to build salon detail")
		return
	}

	writeJSON(w, adapters.MapSalonDetailDomainToApi(detail), logger.With().Str("salon", salonID).Logger(), "salon detail")
}

func (h *Handler) GetTotals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	year, err := h.year(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	totals, err := h.reports.GetChainTotals(ctx, year, supplierFilter(r))
	if err != nil {
		writeError(ctx, w, err, "failed to build chain totals")
		return
	}

	writeJSON(w, adapters.MapChainTotalsDomainToApi(totals), *logger, "chain totals")
}

func (h *Handler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	year, err := h.year(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	totals, err := h.reports.GetSupplierTotals(ctx, year)
	if err != nil {
		writeError(ctx, w, err, "failed to build supplier totals")
		return
	}

	writeJSON(w, adapters.MapSupplierTotalsDomainToApi(totals), *logger, "supplier totals")
}

func (h *Handler) ListMonths(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	year, err := h.year(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	months, err := h.reports.GetMonthlyTotals(ctx, year, supplierFilter(r))
	if err != nil {
		writeError(ctx, w, err, "failed to build monthly totals")
		return
	}

	writeJSON(w, adapters.MapMonthlyTotalsDomainToApi(months), *logger, "monthly totals")
}

// year reads the year query parameter, defaulting to the current year.
func (h *Handler) year(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return h.now().Year(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1 || year > 9999 {
		return 0, fmt.Errorf("invalid year %q", raw)
	}
	return year, nil
}

// supplierFilter accepts both ?supplier=a,b and repeated ?supplier= values.
func supplierFilter(r *http.Request) []string {
	var out []string
	for _, v := range r.URL.Query()["supplier"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

func writeError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	zerolog.Ctx(ctx).Error().Err(err).Msg(msg)

	var fetchErr *domain.DataFetchError
	if errors.As(err, &fetchErr) {
		http.Error(w, fetchErr.Error(), http.StatusBadGateway)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, body any, logger zerolog.Logger, what string) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error().
			Err(err).
			Msgf("failed to encode %s", what)
	}
}
