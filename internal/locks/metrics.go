package locks

import "github.com/prometheus/client_golang/prometheus"

var (
	// lockDecisions counts lock requests by engine outcome.
	lockDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locks_decisions_total",
			Help: "Total number of lock requests by outcome.",
		},
		[]string{"outcome"},
	)

	// unlockDenials counts unlock attempts rejected by authorization.
	unlockDenials = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "locks_unlock_denials_total",
		Help: "Total number of unlock attempts denied by authorization.",
	})
)

func init() {
	prometheus.MustRegister(lockDecisions, unlockDenials)
}
