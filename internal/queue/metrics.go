package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkcare_goal_jobs_enqueued_total",
		Help: "Goal regeneration jobs accepted onto the queue, by trigger reason.",
	}, []string{"reason"})

	jobsCoalesced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkcare_goal_jobs_coalesced_total",
		Help: "Enqueue attempts dropped because the (group, week) key was already in flight.",
	})

	jobsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkcare_goal_jobs_dropped_total",
		Help: "Jobs dropped because the queue buffer was full.",
	})

	jobsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkcare_goal_jobs_processed_total",
		Help: "Jobs completed successfully.",
	})

	jobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkcare_goal_jobs_failed_total",
		Help: "Jobs that returned an error or panicked.",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "linkcare_goal_queue_depth",
		Help: "Jobs currently buffered in the queue.",
	})

	jobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "linkcare_goal_job_duration_seconds",
		Help:    "Wall time of successful goal regeneration jobs.",
		Buckets: prometheus.DefBuckets,
	})
)
