// internal/httpserver/metrics.go
//
// Prometheus counters for the puzzle lifecycle, exposed on /metrics.

package httpserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	puzzlesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resolver_puzzles_created_total",
		Help: "Number of puzzles created.",
	})
	attemptsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resolver_attempts_submitted_total",
		Help: "Number of guesses accepted.",
	})
	puzzlesFinalized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resolver_puzzles_finalized_total",
		Help: "Number of puzzles finalized.",
	})
	winnersRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resolver_winners_recorded_total",
		Help: "Number of winning players recorded at finalize.",
	})
)
