// Package metrics exposes this relay's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for EventsIngested.
const (
	OutcomeStored    = "stored"
	OutcomeDuplicate = "duplicate"
	OutcomeDeleted   = "deleted"
	OutcomeRejected  = "rejected"
)

var (
	// EventsIngested counts ingested events by outcome.
	EventsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "strtr",
		Name:      "events_ingested_total",
		Help:      "Events offered to the ingestor, by outcome.",
	}, []string{"outcome"})

	// ActiveSubscriptions gauges the live subscription count.
	ActiveSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "strtr",
		Name:      "active_subscriptions",
		Help:      "Number of currently registered subscriptions.",
	})

	// QueryFanout histograms how many events a single query returns.
	QueryFanout = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "strtr",
		Name:      "query_fanout_events",
		Help:      "Number of events returned per repository query.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})
)
