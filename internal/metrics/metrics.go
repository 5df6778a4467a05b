// Package metrics holds the Prometheus counters exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Row outcomes.
const (
	OutcomeWritten = "written"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

var (
	BatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skuimg_batches_total",
		Help: "Image batches processed.",
	})
	RowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skuimg_rows_total",
		Help: "Input rows by outcome.",
	}, []string{"outcome"})
	MovesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gridchase_moves_total",
		Help: "Directional moves applied.",
	})
	WinsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gridchase_wins_total",
		Help: "Games won by grid size.",
	}, []string{"size"})
)

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
