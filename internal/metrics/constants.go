package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Pipeline metric names
const (
	MetricNameEventsIngested  = "events_ingested_total"
	MetricNameEventsRejected  = "events_rejected_total"
	MetricNameEventsProcessed = "events_processed_total"
	MetricNameEventsFailed    = "events_failed_total"
	MetricNameQueueDepth      = "event_queue_depth"
	MetricNameEventsPurged    = "events_purged_total"
)

// Reward metric names
const (
	MetricNameRewardsGranted = "rewards_granted_total"
	MetricNameRewardsFailed  = "rewards_failed_total"
)

// Leaderboard metric names
const (
	MetricNameLeaderboardCacheHits   = "leaderboard_cache_hits_total"
	MetricNameLeaderboardCacheMisses = "leaderboard_cache_misses_total"
	MetricNameLeaderboardGenDuration = "leaderboard_generation_duration_seconds"
)

// ============================================================================
// Metric Help Text
// ============================================================================

const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"

	HelpTextEventsIngested  = "Total number of events accepted into the queue"
	HelpTextEventsRejected  = "Total number of events rejected at ingestion"
	HelpTextEventsProcessed = "Total number of events fully processed"
	HelpTextEventsFailed    = "Total number of event processing failures by phase"
	HelpTextQueueDepth      = "Current number of events waiting in the queue"
	HelpTextEventsPurged    = "Total number of events removed by the retention job"

	HelpTextRewardsGranted = "Total number of rewards granted by type"
	HelpTextRewardsFailed  = "Total number of reward applications that failed"

	HelpTextLeaderboardCacheHits   = "Total number of leaderboard cache hits"
	HelpTextLeaderboardCacheMisses = "Total number of leaderboard cache misses"
	HelpTextLeaderboardGenDuration = "Leaderboard generation latency in seconds"
)

// ============================================================================
// Metric Label Names
// ============================================================================

const (
	LabelMethod = "method"
	LabelPath   = "path"
	LabelStatus = "status"
	LabelType   = "type"
	LabelPhase  = "phase"
	LabelReason = "reason"
)

// Processing phase label values
const (
	PhaseStore    = "store"
	PhaseEvaluate = "evaluate"
	PhaseApply    = "apply"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds. These buckets range from 1ms to 10s to capture various latency
// patterns: fast (1-10ms), normal (10-100ms), slow (100ms-1s), very slow (1-10s)
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
