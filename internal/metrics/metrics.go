// Package metrics exposes Prometheus counters for scoring and planning.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FitScoresComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fit_scores_computed_total",
			Help: "Total number of fit scores computed, by category",
		},
		[]string{"category"},
	)

	ChecklistsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checklists_created_total",
			Help: "Total number of application checklists created",
		},
	)

	ChecklistItemsGenerated = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "checklist_items_generated",
			Help:    "Number of items generated per checklist",
			Buckets: prometheus.LinearBuckets(10, 5, 6),
		},
	)

	RemindersSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deadline_reminders_sent_total",
			Help: "Deadline reminder emails, by outcome",
		},
		[]string{"outcome"},
	)

	CatalogRowsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_rows_imported_total",
			Help: "University catalog rows processed, by outcome",
		},
		[]string{"outcome"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "status"},
	)
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Instrument records the duration of every request served by next under route.
func Instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		HTTPRequestDuration.WithLabelValues(route, strconv.Itoa(rec.status)).Observe(time.Since(start).Seconds())
	}
}
