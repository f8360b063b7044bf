package reward

// Log messages
const (
	LogMsgRewardApplied     = "Reward applied"
	LogMsgRewardReplayed    = "Reward already applied, skipping replay"
	LogMsgRewardFailed      = "Reward application failed"
	LogMsgUnknownRewardType = "Unknown reward type"
	LogMsgHistoryWriteFailed = "Failed to record reward history"
)

// Failure reasons recorded on unsuccessful history entries
const (
	ReasonInsufficientBalance = "insufficient balance"
	ReasonUnknownCategory     = "unknown point category"
	ReasonUnknownRewardType   = "unknown reward type"
)
