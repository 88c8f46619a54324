// Package metrics exposes prometheus collectors for the submit and
// confirmation paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/IAliceBobI/sol-trade-sdk-sub001/swqos"
)

var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soltrade",
		Name:      "swqos_submissions_total",
		Help:      "Transaction submissions by provider and outcome.",
	}, []string{"provider", "outcome"})

	submitLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "soltrade",
		Name:      "swqos_submit_latency_seconds",
		Help:      "Wall time of a single provider submission.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"provider"})

	confirmationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soltrade",
		Name:      "confirmations_total",
		Help:      "Per-signature confirmation results.",
	}, []string{"status"})

	racesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soltrade",
		Name:      "races_total",
		Help:      "Completed transaction races by result.",
	}, []string{"result"})
)

const (
	ConfirmationConfirmed = "confirmed"
	ConfirmationRejected  = "rejected"
	ConfirmationTimeout   = "timeout"
)

func RecordSubmission(out swqos.Outcome) {
	status := "accepted"
	if !out.Ok() {
		status = "failed"
	}
	submissionsTotal.WithLabelValues(out.Provider.String(), status).Inc()
	submitLatency.WithLabelValues(out.Provider.String()).Observe(out.Latency.Seconds())
}

func RecordConfirmation(status string) {
	confirmationsTotal.WithLabelValues(status).Inc()
}

func RecordRace(success bool) {
	result := "won"
	if !success {
		result = "lost"
	}
	racesTotal.WithLabelValues(result).Inc()
}
