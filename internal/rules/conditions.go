package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/logger"
)

// ScriptHost evaluates customScript conditions. The engine treats the
// condition as false when no host is installed.
type ScriptHost interface {
	EvaluateScript(ctx context.Context, cond domain.Condition, history []domain.Event, trigger domain.Event) (bool, error)
}

// Evaluator is the pure condition evaluator. Evaluation never mutates state;
// it only inspects the trigger event and the supplied history, which must be
// in chronological order and must not contain the trigger event itself.
type Evaluator struct {
	script ScriptHost
}

// NewEvaluator creates an evaluator, optionally with a script host.
func NewEvaluator(script ScriptHost) *Evaluator {
	return &Evaluator{script: script}
}

// knownParams maps each condition type to the parameter keys it consumes.
// Unknown keys are ignored but logged.
var knownParams = map[string][]string{
	domain.ConditionAlwaysTrue:         {},
	domain.ConditionAttributeEquals:    {domain.ParamAttributeName, domain.ParamExpectedValue},
	domain.ConditionCount:              {domain.ParamEventType, domain.ParamThreshold, domain.ParamComparator, domain.ParamAttributes, domain.ParamHistoryLimit},
	domain.ConditionThreshold:          {domain.ParamAttributeName, domain.ParamThreshold, domain.ParamComparator},
	domain.ConditionSequence:           {domain.ParamPattern, domain.ParamMaxWindow},
	domain.ConditionTimeSinceLastEvent: {domain.ParamEventType, domain.ParamDuration, domain.ParamComparator},
	domain.ConditionFirstOccurrence:    {domain.ParamEventType, domain.ParamMaxOccurrences},
	domain.ConditionCustomScript:       {},
}

// EvaluateConditions evaluates an ordered condition sequence under the given
// logic mode ("all" or "any"). Evaluator errors on individual conditions are
// logged and treated as false; an unknown condition type aborts with
// domain.ErrInvalidRuleConfig so the engine can skip the whole rule.
func (e *Evaluator) EvaluateConditions(ctx context.Context, conditions []domain.Condition, history []domain.Event, trigger domain.Event, logic string) (bool, error) {
	log := logger.FromContext(ctx)

	for _, cond := range conditions {
		result, _, err := e.EvaluateCondition(ctx, cond, history, trigger)
		if err != nil {
			// Configuration problems disqualify the whole rule; anything
			// else just fails this condition.
			if errors.Is(err, domain.ErrInvalidRuleConfig) {
				return false, err
			}
			log.Warn(LogMsgConditionFailed, "condition_type", cond.Type, "error", err)
			result = false
		}
		switch logic {
		case domain.RuleLogicAny:
			if result {
				return true, nil
			}
		default: // all
			if !result {
				return false, nil
			}
		}
	}
	return logic != domain.RuleLogicAny, nil
}

// EvaluateCondition dispatches one condition to its evaluator. The returned
// detail string feeds the dry-run trace.
func (e *Evaluator) EvaluateCondition(ctx context.Context, cond domain.Condition, history []domain.Event, trigger domain.Event) (bool, string, error) {
	e.logUnknownParams(ctx, cond)

	switch cond.Type {
	case domain.ConditionAlwaysTrue:
		return true, "always true", nil
	case domain.ConditionAttributeEquals:
		return evalAttributeEquals(cond, trigger)
	case domain.ConditionCount:
		return evalCount(cond, history)
	case domain.ConditionThreshold:
		return evalThreshold(cond, trigger)
	case domain.ConditionSequence:
		return evalSequence(cond, history, trigger)
	case domain.ConditionTimeSinceLastEvent:
		return evalTimeSinceLastEvent(cond, history, trigger)
	case domain.ConditionFirstOccurrence:
		return evalFirstOccurrence(cond, history, trigger)
	case domain.ConditionCustomScript:
		if e.script == nil {
			return false, "no script host installed", nil
		}
		ok, err := e.script.EvaluateScript(ctx, cond, history, trigger)
		return ok, "script evaluated", err
	default:
		return false, "", fmt.Errorf("%w: %s %q", domain.ErrInvalidRuleConfig, ErrMsgUnknownConditionType, cond.Type)
	}
}

func (e *Evaluator) logUnknownParams(ctx context.Context, cond domain.Condition) {
	known, ok := knownParams[cond.Type]
	if !ok || len(cond.Parameters) == 0 {
		return
	}
	var unknown []string
	for key := range cond.Parameters {
		found := false
		for _, k := range known {
			if k == key {
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		logger.FromContext(ctx).Debug(LogMsgUnknownParamKeys, "condition_type", cond.Type, "keys", unknown)
	}
}

func evalAttributeEquals(cond domain.Condition, trigger domain.Event) (bool, string, error) {
	name, err := stringParam(cond, domain.ParamAttributeName)
	if err != nil {
		return false, "", err
	}
	expected, hasExpected := cond.Param(domain.ParamExpectedValue)
	if !hasExpected {
		return false, "", fmt.Errorf("%w: attributeEquals requires %s", domain.ErrInvalidRuleConfig, domain.ParamExpectedValue)
	}
	actual, present := trigger.Attribute(name)
	if !present {
		// A missing attribute is distinct from null and never equal.
		return false, fmt.Sprintf("attribute %q missing", name), nil
	}
	if valuesEqual(actual, expected) {
		return true, fmt.Sprintf("attribute %q equals expected value", name), nil
	}
	return false, fmt.Sprintf("attribute %q is %v, expected %v", name, actual, expected), nil
}

func evalCount(cond domain.Condition, history []domain.Event) (bool, string, error) {
	target, err := stringParam(cond, domain.ParamEventType)
	if err != nil {
		return false, "", err
	}
	threshold, err := intParam(cond, domain.ParamThreshold, 0)
	if err != nil {
		return false, "", err
	}
	comparator := stringParamOr(cond, domain.ParamComparator, domain.ComparatorGreaterOrEqual)

	var predicates map[string]any
	if raw, ok := cond.Param(domain.ParamAttributes); ok {
		predicates, ok = raw.(map[string]any)
		if !ok {
			return false, "", fmt.Errorf("%w: count %s must be an object", domain.ErrInvalidRuleConfig, domain.ParamAttributes)
		}
	}

	count := 0
	for _, event := range history {
		if !strings.EqualFold(event.EventType, target) {
			continue
		}
		if !matchesAttributes(event, predicates) {
			continue
		}
		count++
	}

	ok, err := compareInts(int64(count), int64(threshold), comparator)
	if err != nil {
		return false, "", err
	}
	return ok, fmt.Sprintf("counted %d events of type %q, threshold %s %d", count, target, comparator, threshold), nil
}

func evalThreshold(cond domain.Condition, trigger domain.Event) (bool, string, error) {
	name, err := stringParam(cond, domain.ParamAttributeName)
	if err != nil {
		return false, "", err
	}
	threshold, err := floatParam(cond, domain.ParamThreshold)
	if err != nil {
		return false, "", err
	}
	comparator := stringParamOr(cond, domain.ParamComparator, domain.ComparatorGreaterOrEqual)

	raw, present := trigger.Attribute(name)
	if !present {
		return false, fmt.Sprintf("attribute %q missing", name), nil
	}
	value, ok := toFloat(raw)
	if !ok {
		return false, fmt.Sprintf("attribute %q is not numeric", name), nil
	}
	met, err := compareFloats(value, threshold, comparator)
	if err != nil {
		return false, "", err
	}
	return met, fmt.Sprintf("attribute %q is %v, threshold %s %v", name, value, comparator, threshold), nil
}

func evalSequence(cond domain.Condition, history []domain.Event, trigger domain.Event) (bool, string, error) {
	rawPattern, ok := cond.Param(domain.ParamPattern)
	if !ok {
		return false, "", fmt.Errorf("%w: sequence requires %s", domain.ErrInvalidRuleConfig, domain.ParamPattern)
	}
	pattern, err := toStringSlice(rawPattern)
	if err != nil {
		return false, "", fmt.Errorf("%w: sequence %s: %v", domain.ErrInvalidRuleConfig, domain.ParamPattern, err)
	}
	if len(pattern) == 0 {
		return false, "", fmt.Errorf("%w: sequence pattern must not be empty", domain.ErrInvalidRuleConfig)
	}
	if len(history) < len(pattern) {
		return false, fmt.Sprintf("history has %d events, pattern needs %d", len(history), len(pattern)), nil
	}

	tail := history[len(history)-len(pattern):]
	for i, want := range pattern {
		if !strings.EqualFold(tail[i].EventType, want) {
			return false, fmt.Sprintf("event %d is %q, pattern wants %q", i, tail[i].EventType, want), nil
		}
	}

	if windowSeconds, err := floatParamOr(cond, domain.ParamMaxWindow, 0); err != nil {
		return false, "", err
	} else if windowSeconds > 0 {
		elapsed := trigger.OccurredAt.Sub(tail[0].OccurredAt)
		if elapsed > time.Duration(windowSeconds*float64(time.Second)) {
			return false, fmt.Sprintf("sequence spans %s, window is %vs", elapsed, windowSeconds), nil
		}
	}
	return true, "sequence matched", nil
}

func evalTimeSinceLastEvent(cond domain.Condition, history []domain.Event, trigger domain.Event) (bool, string, error) {
	target, err := stringParam(cond, domain.ParamEventType)
	if err != nil {
		return false, "", err
	}
	durationSeconds, err := floatParam(cond, domain.ParamDuration)
	if err != nil {
		return false, "", err
	}
	comparator := stringParamOr(cond, domain.ParamComparator, domain.ComparatorGreater)

	var last *domain.Event
	for i := len(history) - 1; i >= 0; i-- {
		if strings.EqualFold(history[i].EventType, target) {
			last = &history[i]
			break
		}
	}
	if last == nil {
		// No prior event is treated as infinitely long ago.
		switch comparator {
		case domain.ComparatorGreater, domain.ComparatorGreaterOrEqual:
			return true, "no prior event of type, treated as infinitely long ago", nil
		default:
			return false, "no prior event of type, treated as infinitely long ago", nil
		}
	}

	elapsed := trigger.OccurredAt.Sub(last.OccurredAt).Seconds()
	met, err := compareFloats(elapsed, durationSeconds, comparator)
	if err != nil {
		return false, "", err
	}
	return met, fmt.Sprintf("%.1fs since last %q, threshold %s %vs", elapsed, target, comparator, durationSeconds), nil
}

func evalFirstOccurrence(cond domain.Condition, history []domain.Event, trigger domain.Event) (bool, string, error) {
	target := stringParamOr(cond, domain.ParamEventType, trigger.EventType)
	maxOccurrences, err := intParam(cond, domain.ParamMaxOccurrences, DefaultMaxOccurrences)
	if err != nil {
		return false, "", err
	}
	if maxOccurrences < 1 {
		return false, fmt.Sprintf("maxOccurrences is %d", maxOccurrences), nil
	}

	prior := 0
	for _, event := range history {
		if strings.EqualFold(event.EventType, target) {
			prior++
		}
	}
	// The trigger event itself counts as occurrence prior+1.
	if prior < maxOccurrences {
		return true, fmt.Sprintf("occurrence %d of %q within bound %d", prior+1, target, maxOccurrences), nil
	}
	return false, fmt.Sprintf("occurrence %d of %q exceeds bound %d", prior+1, target, maxOccurrences), nil
}

func matchesAttributes(event domain.Event, predicates map[string]any) bool {
	for key, expected := range predicates {
		actual, present := event.Attribute(key)
		if !present || !valuesEqual(actual, expected) {
			return false
		}
	}
	return true
}

// valuesEqual compares attribute values with numeric promotion: numbers
// compare as floats regardless of concrete type, strings compare
// case-sensitively, everything else by formatted representation.
func valuesEqual(a, b any) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
		return false
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return as == bs
		}
		return false
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func compareInts(value, threshold int64, comparator string) (bool, error) {
	return compareFloats(float64(value), float64(threshold), comparator)
}

func compareFloats(value, threshold float64, comparator string) (bool, error) {
	switch comparator {
	case domain.ComparatorLess:
		return value < threshold, nil
	case domain.ComparatorLessOrEqual:
		return value <= threshold, nil
	case domain.ComparatorEqual:
		return value == threshold, nil
	case domain.ComparatorGreaterOrEqual:
		return value >= threshold, nil
	case domain.ComparatorGreater:
		return value > threshold, nil
	default:
		return false, fmt.Errorf("%w: unknown comparator %q", domain.ErrInvalidRuleConfig, comparator)
	}
}

func stringParam(cond domain.Condition, key string) (string, error) {
	raw, ok := cond.Param(key)
	if !ok {
		return "", fmt.Errorf("%w: %s requires %s", domain.ErrInvalidRuleConfig, cond.Type, key)
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: %s %s must be a non-empty string", domain.ErrInvalidRuleConfig, cond.Type, key)
	}
	return s, nil
}

func stringParamOr(cond domain.Condition, key, fallback string) string {
	raw, ok := cond.Param(key)
	if !ok {
		return fallback
	}
	if s, ok := raw.(string); ok && s != "" {
		return s
	}
	return fallback
}

func intParam(cond domain.Condition, key string, fallback int) (int, error) {
	raw, ok := cond.Param(key)
	if !ok {
		return fallback, nil
	}
	f, ok := toFloat(raw)
	if !ok {
		return 0, fmt.Errorf("%w: %s %s must be numeric", domain.ErrInvalidRuleConfig, cond.Type, key)
	}
	return int(f), nil
}

func floatParam(cond domain.Condition, key string) (float64, error) {
	raw, ok := cond.Param(key)
	if !ok {
		return 0, fmt.Errorf("%w: %s requires %s", domain.ErrInvalidRuleConfig, cond.Type, key)
	}
	f, ok := toFloat(raw)
	if !ok {
		return 0, fmt.Errorf("%w: %s %s must be numeric", domain.ErrInvalidRuleConfig, cond.Type, key)
	}
	return f, nil
}

func floatParamOr(cond domain.Condition, key string, fallback float64) (float64, error) {
	raw, ok := cond.Param(key)
	if !ok {
		return fallback, nil
	}
	f, ok := toFloat(raw)
	if !ok {
		return 0, fmt.Errorf("%w: %s %s must be numeric", domain.ErrInvalidRuleConfig, cond.Type, key)
	}
	return f, nil
}

func toStringSlice(raw any) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element %v is not a string", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value is not a string list")
	}
}
