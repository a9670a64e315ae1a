package retrieval

import (
	"context"
	"fmt"

	"github.com/de-tools/bonus-atlas/pkg/metrics"
	"github.com/de-tools/bonus-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

const (
	DefaultPageSize = 1000
	sourceFacts     = "facts"
)

// PageSource serves one range-bounded slice [offset, offset+limit) of the
// facts matching filter.
type PageSource interface {
	FetchPage(ctx context.Context, filter domain.FactFilter, offset, limit int) ([]domain.BonusFact, error)
}

type Retriever struct {
	source   PageSource
	pageSize int
	metrics  *metrics.Registry
}

func NewRetriever(source PageSource, pageSize int, m *metrics.Registry) *Retriever {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Retriever{source: source, pageSize: pageSize, metrics: m}
}

func (r *Retriever) PageSize() int {
	return r.pageSize
}

// FetchAll requests pages [0,P), [P,2P), ... until a page comes back shorter
// than P. A full page is never terminal, so a result that is an exact multiple
// of P costs one extra, empty request. Any failing page aborts the retrieval
// and no partial result is returned.
func (r *Retriever) FetchAll(ctx context.Context, filter domain.FactFilter) ([]domain.BonusFact, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fact filter: %w", err)
	}

	logger := zerolog.Ctx(ctx).With().
		Str("from", filter.From.String()).
		Str("to", filter.To.String()).
		Strs("suppliers", filter.SupplierIDs).
		Logger()

	var all []domain.BonusFact
	for page := 0; ; page++ {
		offset := page * r.pageSize
		rows, err := r.source.FetchPage(ctx, filter, offset, r.pageSize)
		if err != nil {
			r.metrics.ObserveFetchFailure(sourceFacts)
			logger.Error().Err(err).Int("page", page).Int("offset", offset).Msg("fact page request failed")
			return nil, &domain.DataFetchError{Source: sourceFacts, Page: page, Offset: offset, Err: err}
		}

		r.metrics.ObservePage(sourceFacts, len(rows))
		logger.Debug().Int("page", page).Int("rows", len(rows)).Msg("fetched fact page")

		all = append(all, rows...)
		if len(rows) < r.pageSize {
			break
		}
	}

	logger.Debug().Int("total_rows", len(all)).Msg("fact retrieval complete")
	return all, nil
}
