package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the bonus engine collectors. A nil *Registry is valid and
// records nothing.
type Registry struct {
	reg                *prometheus.Registry
	PagesFetched       *prometheus.CounterVec
	RowsFetched        *prometheus.CounterVec
	FetchFailures      *prometheus.CounterVec
	QuarantinedDetails prometheus.Counter
	IntegrityWarnings  prometheus.Counter
	MissingReferences  *prometheus.CounterVec
	ReportLatencySec   *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	pages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bonus_fact_pages_fetched_total",
		Help: "Fact pages requested from the store.",
	}, []string{"source"})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bonus_fact_rows_fetched_total",
		Help: "Fact rows returned by the store.",
	}, []string{"source"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bonus_fetch_failures_total",
		Help: "Failed store requests.",
	}, []string{"source"})
	quarantined := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bonus_quarantined_details_total",
		Help: "Brand detail entries dropped by validation.",
	})
	integrity := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bonus_integrity_warnings_total",
		Help: "Facts whose brand details do not reconcile with the fact total.",
	})
	missing := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bonus_missing_references_total",
		Help: "Facts referencing ids absent from a directory.",
	}, []string{"kind"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bonus_report_latency_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"report"})

	r.MustRegister(pages, rows, failures, quarantined, integrity, missing, latency)
	return &Registry{
		reg:                r,
		PagesFetched:       pages,
		RowsFetched:        rows,
		FetchFailures:      failures,
		QuarantinedDetails: quarantined,
		IntegrityWarnings:  integrity,
		MissingReferences:  missing,
		ReportLatencySec:   latency,
	}
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func (r *Registry) ObservePage(source string, rows int) {
	if r == nil {
		return
	}
	r.PagesFetched.WithLabelValues(source).Inc()
	r.RowsFetched.WithLabelValues(source).Add(float64(rows))
}

func (r *Registry) ObserveFetchFailure(source string) {
	if r == nil {
		return
	}
	r.FetchFailures.WithLabelValues(source).Inc()
}

func (r *Registry) ObserveQuarantined(n int) {
	if r == nil || n == 0 {
		return
	}
	r.QuarantinedDetails.Add(float64(n))
}

func (r *Registry) ObserveIntegrityWarnings(n int) {
	if r == nil || n == 0 {
		return
	}
	r.IntegrityWarnings.Add(float64(n))
}

func (r *Registry) ObserveMissingReference(kind string) {
	if r == nil {
		return
	}
	r.MissingReferences.WithLabelValues(kind).Inc()
}

func (r *Registry) ObserveReport(report string, seconds float64) {
	if r == nil {
		return
	}
	r.ReportLatencySec.WithLabelValues(report).Observe(seconds)
}
