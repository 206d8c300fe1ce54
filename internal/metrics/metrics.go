package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	launches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "launchr",
			Subsystem: "child",
			Name:      "launches_total",
			Help:      "Number of successful child launches.",
		}, []string{"name"},
	)
	launchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "launchr",
			Subsystem: "child",
			Name:      "launch_failures_total",
			Help:      "Number of rejected or failed launches by reason.",
		}, []string{"name", "reason"},
	)
	exits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "launchr",
			Subsystem: "child",
			Name:      "exits_total",
			Help:      "Number of child exits observed by the exit watcher.",
		}, []string{"name"},
	)
	runDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "launchr",
			Subsystem: "child",
			Name:      "run_duration_seconds",
			Help:      "Time between launch and observed exit.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"name"},
	)
	runningHandles = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "launchr",
			Subsystem: "child",
			Name:      "running_handles",
			Help:      "Handles currently in the running state.",
		},
	)
	stateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "launchr",
			Subsystem: "child",
			Name:      "state_transitions_total",
			Help:      "Number of state transitions between run states.",
		}, []string{"name", "from", "to"},
	)
	currentStates = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "launchr",
			Subsystem: "child",
			Name:      "current_state",
			Help:      "Current run state per handle name (1 = active state, 0 = inactive).",
		}, []string{"name", "state"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{launches, launchFailures, exits, runDuration, runningHandles, stateTransitions, currentStates}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Registered reports whether Register has succeeded.
func Registered() bool { return regOK.Load() }

// Handler returns an http.Handler that serves Prometheus metrics for the DefaultGatherer.
func Handler() http.Handler { return promhttp.Handler() }

// HandlerFor serves metrics from a specific gatherer.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Helpers below no-op until Register has been called.

func IncLaunch(name string) {
	if regOK.Load() {
		launches.WithLabelValues(name).Inc()
		runningHandles.Inc()
	}
}

func IncLaunchFailure(name, reason string) {
	if regOK.Load() {
		launchFailures.WithLabelValues(name, reason).Inc()
	}
}

func ObserveExit(name string, ranSeconds float64) {
	if regOK.Load() {
		exits.WithLabelValues(name).Inc()
		runningHandles.Dec()
		if ranSeconds >= 0 {
			runDuration.WithLabelValues(name).Observe(ranSeconds)
		}
	}
}

func RecordStateTransition(name, from, to string) {
	if regOK.Load() {
		stateTransitions.WithLabelValues(name, from, to).Inc()
	}
}

// SetCurrentState marks state as the only active state for name.
func SetCurrentState(name, state string, all []string) {
	if regOK.Load() {
		for _, s := range all {
			v := 0.0
			if s == state {
				v = 1
			}
			currentStates.WithLabelValues(name, s).Set(v)
		}
	}
}
