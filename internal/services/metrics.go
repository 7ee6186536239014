// Prometheus collectors for dispatch outcomes.
//
// Dispatch-level metrics, label cardinality kept deliberately small:
// topics and outcomes are fixed vocabularies, domains are the three
// status domains.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// eventsTotal counts inbound webhook events by topic and outcome.
	eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_events_total",
			Help: "Inbound order events by topic and dispatch outcome.",
		},
		[]string{"topic", "outcome"},
	)

	// repliesTotal counts successfully posted thread replies per domain.
	repliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_replies_total",
			Help: "Status replies posted to Slack threads, by status domain.",
		},
		[]string{"domain"},
	)

	// sendFailures counts reply posts that Slack did not confirm.
	sendFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_send_failures_total",
			Help: "Failed reply posts, by status domain.",
		},
		[]string{"domain"},
	)

	// locatorScans counts per-channel history scans by result.
	locatorScans = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_locator_scans_total",
			Help: "Channel history scans by result (hit, miss, error).",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(eventsTotal, repliesTotal, sendFailures, locatorScans)
}
