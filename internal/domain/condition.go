package domain

// Condition type tags. Each tag selects an evaluator from the condition
// registry; unknown tags surface as ErrInvalidRuleConfig.
const (
	ConditionAlwaysTrue         = "alwaysTrue"
	ConditionAttributeEquals    = "attributeEquals"
	ConditionCount              = "count"
	ConditionThreshold          = "threshold"
	ConditionSequence           = "sequence"
	ConditionTimeSinceLastEvent = "timeSinceLastEvent"
	ConditionFirstOccurrence    = "firstOccurrence"
	ConditionCustomScript       = "customScript"
)

// Comparator values accepted by count/threshold/timeSinceLastEvent conditions.
const (
	ComparatorLess           = "<"
	ComparatorLessOrEqual    = "<="
	ComparatorEqual          = "="
	ComparatorGreaterOrEqual = ">="
	ComparatorGreater        = ">"
)

// Parameter keys consumed by the condition evaluators.
const (
	ParamAttributeName  = "attributeName"
	ParamExpectedValue  = "expectedValue"
	ParamEventType      = "eventType"
	ParamThreshold      = "threshold"
	ParamComparator     = "comparator"
	ParamPattern        = "pattern"
	ParamMaxWindow      = "maxWindowSeconds"
	ParamDuration       = "durationSeconds"
	ParamMaxOccurrences = "maxOccurrences"
	ParamAttributes     = "attributes"
	ParamHistoryLimit   = "historyLimit"
)

// Condition is a tagged predicate evaluated against event history and the
// trigger event. Parameters are free-form; each type documents which keys it
// consumes and unknown keys are ignored (logged at debug level).
type Condition struct {
	ID         string         `json:"id,omitempty"`
	Type       string         `json:"type"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Param returns a raw parameter value and whether the key is present.
func (c Condition) Param(key string) (any, bool) {
	if c.Parameters == nil {
		return nil, false
	}
	v, ok := c.Parameters[key]
	return v, ok
}
