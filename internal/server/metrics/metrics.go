// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "kinogate"

var (
	// UpdatesTotal counts inbound events by kind.
	UpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Inbound events by kind.",
		},
		[]string{"kind"},
	)

	// GateDecisions counts access gate outcomes ("allowed" or "blocked").
	GateDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_decisions_total",
			Help:      "Access gate decisions by outcome.",
		},
		[]string{"decision"},
	)

	MembershipCheckFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "membership_check_failures_total",
			Help:      "Membership checks that failed and were treated as non-membership.",
		},
	)

	// BroadcastDeliveries counts fan-out deliveries ("success" or "failed").
	BroadcastDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcast_deliveries_total",
			Help:      "Broadcast deliveries by outcome.",
		},
		[]string{"outcome"},
	)

	WizardCommits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wizard_commits_total",
			Help:      "Completed wizards by name and outcome.",
		},
		[]string{"wizard", "outcome"},
	)

	HandlerPanics = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_panics_total",
			Help:      "Recovered panics while handling an event.",
		},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more
// than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			UpdatesTotal,
			GateDecisions,
			MembershipCheckFailures,
			BroadcastDeliveries,
			WizardCommits,
			HandlerPanics,
		)
	})
}
