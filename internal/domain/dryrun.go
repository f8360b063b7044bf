package domain

import "time"

// DryRunTrace is the structured result of evaluating an event against the
// rule set without applying any side effects.
type DryRunTrace struct {
	TriggerEventID string           `json:"triggerEventId"`
	UserID         string           `json:"userId"`
	EventType      string           `json:"eventType"`
	EvaluatedAt    time.Time        `json:"evaluatedAt"`
	Rules          []DryRunRule     `json:"rules"`
	Summary        DryRunSummary    `json:"summary"`
}

// DryRunRule traces the evaluation of one rule.
type DryRunRule struct {
	RuleID           string            `json:"ruleId"`
	Name             string            `json:"name"`
	Description      string            `json:"description,omitempty"`
	TriggerMatched   bool              `json:"triggerMatched"`
	Conditions       []DryRunCondition `json:"conditions"`
	PredictedRewards []DryRunReward    `json:"predictedRewards"`
	WouldExecute     bool              `json:"wouldExecute"`
	EvaluationTimeMs float64           `json:"evaluationTimeMs"`
}

// DryRunCondition traces one condition evaluation.
type DryRunCondition struct {
	ConditionID      string         `json:"conditionId,omitempty"`
	Type             string         `json:"type"`
	Parameters       map[string]any `json:"parameters,omitempty"`
	Result           bool           `json:"result"`
	Details          string         `json:"details,omitempty"`
	EvaluationTimeMs float64        `json:"evaluationTimeMs"`
}

// DryRunReward is a reward the rule would emit.
type DryRunReward struct {
	Type        string         `json:"type"`
	TargetID    string         `json:"targetId"`
	Amount      int64          `json:"amount,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
}

// DryRunSummary aggregates the trace.
type DryRunSummary struct {
	TotalRulesEvaluated   int      `json:"totalRulesEvaluated"`
	RulesThatWouldExecute int      `json:"rulesThatWouldExecute"`
	TotalPredictedRewards int      `json:"totalPredictedRewards"`
	TotalEvaluationTimeMs float64  `json:"totalEvaluationTimeMs"`
	EventValid            bool     `json:"eventValid"`
	ValidationErrors      []string `json:"validationErrors,omitempty"`
}
