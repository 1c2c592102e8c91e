// Package metrics holds the Prometheus collectors for the puzzle process.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AaronLay10/TowerEngine/internal/events"
	"github.com/AaronLay10/TowerEngine/internal/version"
)

const namespace = "hanoi"

// Move modes.
const (
	ModeManual = "manual"
	ModeAuto   = "auto"
)

// Auto-solve outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeCancelled = "cancelled"
)

var startTime = time.Now()

var (
	movesApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_applied_total",
			Help:      "Moves applied to the puzzle, by mode",
		},
		[]string{"mode"},
	)

	movesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_rejected_total",
			Help:      "Manual moves refused, by reason",
		},
		[]string{"reason"},
	)

	puzzlesSolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "puzzles_solved_total",
			Help:      "Puzzles solved by manual play",
		},
	)

	resets = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resets_total",
			Help:      "Puzzle resets",
		},
	)

	autoRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "autosolve_runs_total",
			Help:      "Finished auto-solve runs, by outcome",
		},
		[]string{"outcome"},
	)

	autoRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "autosolve_running",
			Help:      "Whether an auto-solve run is active (1) or not (0)",
		},
	)

	_ = promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_clients",
			Help:      "Number of event stream subscribers",
		},
		func() float64 { return float64(events.SubscriberCount()) },
	)

	_ = promauto.NewCounterFunc(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Total number of events emitted since startup",
		},
		func() float64 { return float64(events.TotalCount()) },
	)

	_ = promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "uptime_seconds",
			Help:        "Seconds since the process started",
			ConstLabels: prometheus.Labels{"version": version.Version},
		},
		func() float64 { return time.Since(startTime).Seconds() },
	)
)

// MoveApplied counts an applied move.
func MoveApplied(mode string) {
	movesApplied.WithLabelValues(mode).Inc()
}

// MoveRejected counts a refused manual move.
func MoveRejected(reason string) {
	movesRejected.WithLabelValues(reason).Inc()
}

// PuzzleSolved counts a manual win.
func PuzzleSolved() {
	puzzlesSolved.Inc()
}

// Reset counts a puzzle reset.
func Reset() {
	resets.Inc()
}

// AutoSolveStarted marks a run as active.
func AutoSolveStarted() {
	autoRunning.Set(1)
}

// AutoSolveFinished records how a run ended.
func AutoSolveFinished(outcome string) {
	autoRunning.Set(0)
	autoRuns.WithLabelValues(outcome).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
