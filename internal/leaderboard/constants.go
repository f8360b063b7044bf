package leaderboard

import "time"

// Cache defaults.
const (
	DefaultCacheSize = 256
	DefaultCacheTTL  = 5 * time.Minute
)

// Log messages
const (
	LogMsgGenerated        = "Leaderboard generated"
	LogMsgCacheHit         = "Leaderboard cache hit"
	LogMsgCacheRefreshed   = "Leaderboard cache refreshed"
	LogMsgCacheCleared     = "Leaderboard cache cleared"
	LogMsgCacheInvalidated = "Leaderboard cache invalidated"
)
