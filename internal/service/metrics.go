package service

import "github.com/prometheus/client_golang/prometheus"

var (
	roundsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mines_rounds_started_total",
			Help: "Rounds started, by mode.",
		},
		[]string{"mode"},
	)

	roundsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mines_rounds_finished_total",
			Help: "Rounds finished, by mode and result.",
		},
		[]string{"mode", "result"},
	)

	settlementFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mines_settlement_failures_total",
			Help: "Payout transfers that failed and were queued for retry.",
		},
	)
)

func init() {
	prometheus.MustRegister(roundsStarted, roundsFinished, settlementFailures)
}
