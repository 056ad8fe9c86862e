package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SettlementsTotal counts payment confirmations by outcome
	// (applied, replayed, rejected, conflict, error).
	SettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_settlements_total",
			Help: "Payment confirmations handled, by outcome",
		},
		[]string{"source", "outcome"},
	)

	SettlementDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_settlement_duration_seconds",
			Help:    "Duration of the settlement transaction in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"source"},
	)

	// RevealsTotal counts contact reveal attempts: granted, rate_limited,
	// forbidden, captcha_failed.
	RevealsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_contact_reveals_total",
			Help: "Blood donor contact reveal attempts, by outcome",
		},
		[]string{"outcome"},
	)

	PledgeChargesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pledge_charges_total",
			Help: "Recurring pledge charge attempts, by outcome",
		},
		[]string{"outcome"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// ObserveSettlement records one confirmation and how long it took.
func ObserveSettlement(source, outcome string, started time.Time) {
	SettlementsTotal.WithLabelValues(source, outcome).Inc()
	SettlementDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
}

func RecordReveal(outcome string) {
	RevealsTotal.WithLabelValues(outcome).Inc()
}

func RecordPledgeCharge(outcome string) {
	PledgeChargesTotal.WithLabelValues(outcome).Inc()
}
