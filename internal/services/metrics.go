// Prometheus collectors for the background engine. Outcome labels are a
// small fixed set to keep cardinality bounded.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// pinnedRefreshes counts pinned-message refresh attempts by outcome.
	pinnedRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presence_pinned_refresh_total",
			Help: "Total number of pinned status message refresh attempts.",
		},
		[]string{"outcome"}, // edited | created | error
	)

	// messageRemovals counts scheduled message deletions by outcome.
	messageRemovals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presence_message_removals_total",
			Help: "Total number of scheduled message deletions.",
		},
		[]string{"outcome"}, // deleted | error
	)
)

func init() {
	prometheus.MustRegister(pinnedRefreshes, messageRemovals)
}
