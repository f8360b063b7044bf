package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	// HTTP status messages
	ErrMsgMethodNotAllowed      = "Method not allowed"
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	// Query parameter error messages
	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgInvalidLimit      = "Invalid limit parameter"
	ErrMsgInvalidOffset     = "Invalid offset parameter"
	ErrMsgInvalidPage       = "Invalid page parameter"
	ErrMsgInvalidDate       = "Invalid date parameter, expected RFC 3339"

	// Event operation error messages
	ErrMsgIngestEventFailed = "Failed to ingest event"
	ErrMsgDryRunFailed      = "Failed to evaluate event"
	ErrMsgGetEventsFailed   = "Failed to retrieve events"

	// User operation error messages
	ErrMsgGetUserStateFailed = "Failed to retrieve user state"
	ErrMsgGetHistoryFailed   = "Failed to retrieve reward history"

	// Rule operation error messages
	ErrMsgGetRulesFailed   = "Failed to retrieve rules"
	ErrMsgCreateRuleFailed = "Failed to create rule"
	ErrMsgUpdateRuleFailed = "Failed to update rule"
	ErrMsgDeleteRuleFailed = "Failed to delete rule"

	// Leaderboard error messages
	ErrMsgGetLeaderboardFailed = "Failed to retrieve leaderboard"

	// Wallet error messages
	ErrMsgGetWalletFailed = "Failed to retrieve wallet"
	ErrMsgSpendFailed     = "Failed to post spend"
	ErrMsgTransferFailed  = "Failed to process transfer"
)

// Success messages for API responses
const (
	MsgRuleDeletedSuccess      = "Rule deleted"
	MsgLeaderboardRefreshed    = "Leaderboard refreshed"
	MsgLeaderboardCacheCleared = "Leaderboard cache cleared"
)
