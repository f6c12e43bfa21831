package ws

import "github.com/prometheus/client_golang/prometheus"

var (
	duelsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mines_duels_started_total",
			Help: "Duel rounds that got both sides and started play.",
		},
	)

	duelsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mines_duels_finished_total",
			Help: "Duel rounds finished, by decision reason.",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(duelsStarted, duelsFinished)
}
