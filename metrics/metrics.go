// Package metrics exposes Prometheus collectors for the notification engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CycleRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_cycle_runs_total",
		Help: "Completed notification cycles.",
	})

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "notifier_cycle_duration_seconds",
		Help:    "Wall time of one full notification cycle.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_notifications_sent_total",
		Help: "Notifications sent and logged, by rule type.",
	}, []string{"rule"})

	SendFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_send_failures_total",
		Help: "Dispatch attempts that failed before a log entry was written, by rule type.",
	}, []string{"rule"})

	SessionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_session_failures_total",
		Help: "Sessions whose rule evaluation aborted mid-cycle.",
	})
)
