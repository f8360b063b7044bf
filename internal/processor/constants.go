package processor

import "time"

const (
	// DefaultShards is the number of shard workers when none is configured.
	DefaultShards = 4

	// DefaultGracePeriod bounds how long Stop waits for in-flight events.
	DefaultGracePeriod = 5 * time.Second

	// shardBuffer is the per-shard channel capacity.
	shardBuffer = 64
)

// Log messages
const (
	LogMsgAlreadyRunning = "Queue processor already running, start ignored"
	LogMsgStarted        = "Queue processor started"
	LogMsgStopTimeout    = "Queue processor stop timed out waiting for in-flight events"
	LogMsgStoreFailed    = "Failed to store event"
	LogMsgEvaluateFailed = "Failed to evaluate event"
	LogMsgApplyFailed    = "Failed to apply rewards"
	LogMsgProcessed      = "Event processed"
)
