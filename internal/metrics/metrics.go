package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Pipeline Metrics
var (
	EventsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameEventsIngested,
			Help: HelpTextEventsIngested,
		},
	)

	EventsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsRejected,
			Help: HelpTextEventsRejected,
		},
		[]string{LabelReason},
	)

	EventsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameEventsProcessed,
			Help: HelpTextEventsProcessed,
		},
	)

	EventsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsFailed,
			Help: HelpTextEventsFailed,
		},
		[]string{LabelPhase},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameQueueDepth,
			Help: HelpTextQueueDepth,
		},
	)

	EventsPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameEventsPurged,
			Help: HelpTextEventsPurged,
		},
	)
)

// Reward Metrics
var (
	RewardsGranted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRewardsGranted,
			Help: HelpTextRewardsGranted,
		},
		[]string{LabelType},
	)

	RewardsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRewardsFailed,
			Help: HelpTextRewardsFailed,
		},
		[]string{LabelType, LabelReason},
	)
)

// Leaderboard Metrics
var (
	LeaderboardCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameLeaderboardCacheHits,
			Help: HelpTextLeaderboardCacheHits,
		},
	)

	LeaderboardCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameLeaderboardCacheMisses,
			Help: HelpTextLeaderboardCacheMisses,
		},
	)

	LeaderboardGenDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    MetricNameLeaderboardGenDuration,
			Help:    HelpTextLeaderboardGenDuration,
			Buckets: HTTPLatencyBuckets,
		},
	)
)
