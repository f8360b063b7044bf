package rules

const (
	// DefaultHistoryLimit is the number of recent events fetched per
	// evaluation when no rule declares a larger window.
	DefaultHistoryLimit = 1000

	// DefaultMaxOccurrences bounds firstOccurrence when the rule omits the
	// parameter.
	DefaultMaxOccurrences = 1
)

// Log messages
const (
	LogMsgRuleSkippedInvalid   = "Skipping invalid rule"
	LogMsgConditionFailed      = "Condition evaluation failed, treating as false"
	LogMsgUnknownParamKeys     = "Condition has unknown parameter keys"
	LogMsgRuleMatched          = "Rule matched, emitting rewards"
	LogMsgHistoryFetchFailed   = "Failed to fetch event history"
	LogMsgRuleCreated          = "Rule created"
	LogMsgRuleUpdated          = "Rule updated"
	LogMsgRuleDeleted          = "Rule deleted"
)

// Error messages
const (
	ErrMsgUnknownConditionType = "unknown condition type"
	ErrMsgRuleIDMismatch       = "rule id in path and body do not match"
)
