package rules

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osheron/meritum/internal/domain"
)

func evt(id, eventType string, at time.Time, attrs map[string]any) domain.Event {
	return domain.NewEvent(id, eventType, "user-1", at, attrs)
}

func condition(condType string, params map[string]any) domain.Condition {
	return domain.Condition{Type: condType, Parameters: params}
}

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestAlwaysTrue(t *testing.T) {
	e := NewEvaluator(nil)
	ok, _, err := e.EvaluateCondition(context.Background(), condition(domain.ConditionAlwaysTrue, nil), nil, evt("e1", "user.login", baseTime, nil))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAttributeEquals(t *testing.T) {
	e := NewEvaluator(nil)
	trigger := evt("e1", "purchase.completed", baseTime, map[string]any{
		"plan":   "gold",
		"amount": float64(100),
		"flag":   nil,
	})

	tests := []struct {
		name     string
		params   map[string]any
		expected bool
	}{
		{"string match", map[string]any{"attributeName": "plan", "expectedValue": "gold"}, true},
		{"string mismatch", map[string]any{"attributeName": "plan", "expectedValue": "silver"}, false},
		{"numeric promotion int vs float", map[string]any{"attributeName": "amount", "expectedValue": 100}, true},
		{"missing attribute never equal", map[string]any{"attributeName": "absent", "expectedValue": "x"}, false},
		{"null value present but not equal", map[string]any{"attributeName": "flag", "expectedValue": "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, _, err := e.EvaluateCondition(context.Background(), condition(domain.ConditionAttributeEquals, tt.params), nil, trigger)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func TestAttributeEqualsRequiresParams(t *testing.T) {
	e := NewEvaluator(nil)
	_, _, err := e.EvaluateCondition(context.Background(),
		condition(domain.ConditionAttributeEquals, map[string]any{"attributeName": "plan"}),
		nil, evt("e1", "x", baseTime, nil))
	require.ErrorIs(t, err, domain.ErrInvalidRuleConfig)
}

func TestCountCondition(t *testing.T) {
	e := NewEvaluator(nil)
	history := []domain.Event{
		evt("h1", "user.login", baseTime, nil),
		evt("h2", "User.Login", baseTime.Add(time.Minute), nil),
		evt("h3", "content.shared", baseTime.Add(2*time.Minute), map[string]any{"kind": "photo"}),
		evt("h4", "content.shared", baseTime.Add(3*time.Minute), map[string]any{"kind": "video"}),
	}
	trigger := evt("e1", "user.login", baseTime.Add(4*time.Minute), nil)

	// Case-insensitive event type matching
	ok, _, err := e.EvaluateCondition(context.Background(),
		condition(domain.ConditionCount, map[string]any{"eventType": "user.login", "threshold": 2}),
		history, trigger)
	require.NoError(t, err)
	assert.True(t, ok)

	// Attribute predicates narrow the count
	ok, _, err = e.EvaluateCondition(context.Background(),
		condition(domain.ConditionCount, map[string]any{
			"eventType": "content.shared", "threshold": 2,
			"attributes": map[string]any{"kind": "photo"},
		}),
		history, trigger)
	require.NoError(t, err)
	assert.False(t, ok)

	// Explicit comparator
	ok, _, err = e.EvaluateCondition(context.Background(),
		condition(domain.ConditionCount, map[string]any{"eventType": "user.login", "threshold": 2, "comparator": "<"}),
		history, trigger)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestThresholdCondition(t *testing.T) {
	e := NewEvaluator(nil)
	trigger := evt("e1", "purchase.completed", baseTime, map[string]any{"amount": 150.0, "label": "big"})

	ok, _, err := e.EvaluateCondition(context.Background(),
		condition(domain.ConditionThreshold, map[string]any{"attributeName": "amount", "threshold": 100}),
		nil, trigger)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, err = e.EvaluateCondition(context.Background(),
		condition(domain.ConditionThreshold, map[string]any{"attributeName": "amount", "threshold": 150, "comparator": ">"}),
		nil, trigger)
	require.NoError(t, err)
	assert.False(t, ok)

	// Non-numeric attribute is false, not an error
	ok, details, err := e.EvaluateCondition(context.Background(),
		condition(domain.ConditionThreshold, map[string]any{"attributeName": "label", "threshold": 1}),
		nil, trigger)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, details, "not numeric")

	// Unknown comparator is a configuration error
	_, _, err = e.EvaluateCondition(context.Background(),
		condition(domain.ConditionThreshold, map[string]any{"attributeName": "amount", "threshold": 1, "comparator": "~~"}),
		nil, trigger)
	require.ErrorIs(t, err, domain.ErrInvalidRuleConfig)
}

func TestSequenceCondition(t *testing.T) {
	e := NewEvaluator(nil)
	history := []domain.Event{
		evt("h1", "cart.add", baseTime, nil),
		evt("h2", "checkout.start", baseTime.Add(time.Minute), nil),
		evt("h3", "payment.submit", baseTime.Add(2*time.Minute), nil),
	}
	trigger := evt("e1", "purchase.completed", baseTime.Add(3*time.Minute), nil)

	ok, _, err := e.EvaluateCondition(context.Background(),
		condition(domain.ConditionSequence, map[string]any{
			"pattern": []any{"checkout.start", "payment.submit"},
		}),
		history, trigger)
	require.NoError(t, err)
	assert.True(t, ok)

	// Pattern must match the tail of history
	ok, _, err = e.EvaluateCondition(context.Background(),
		condition(domain.ConditionSequence, map[string]any{
			"pattern": []any{"cart.add", "checkout.start"},
		}),
		history, trigger)
	require.NoError(t, err)
	assert.False(t, ok)

	// Time window measured from first pattern event to trigger
	ok, _, err = e.EvaluateCondition(context.Background(),
		condition(domain.ConditionSequence, map[string]any{
			"pattern":   []any{"checkout.start", "payment.submit"},
			"maxWindowSeconds": 60,
		}),
		history, trigger)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = e.EvaluateCondition(context.Background(),
		condition(domain.ConditionSequence, map[string]any{"pattern": []any{}}),
		history, trigger)
	require.ErrorIs(t, err, domain.ErrInvalidRuleConfig)
}

func TestTimeSinceLastEventCondition(t *testing.T) {
	e := NewEvaluator(nil)
	history := []domain.Event{
		evt("h1", "user.login", baseTime, nil),
	}
	trigger := evt("e1", "user.login", baseTime.Add(2*time.Hour), nil)

	// 7200s elapsed > 3600s
	ok, _, err := e.EvaluateCondition(context.Background(),
		condition(domain.ConditionTimeSinceLastEvent, map[string]any{"eventType": "user.login", "durationSeconds": 3600}),
		history, trigger)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, err = e.EvaluateCondition(context.Background(),
		condition(domain.ConditionTimeSinceLastEvent, map[string]any{"eventType": "user.login", "durationSeconds": 3600, "comparator": "<"}),
		history, trigger)
	require.NoError(t, err)
	assert.False(t, ok)

	// No prior event counts as infinitely long ago
	ok, _, err = e.EvaluateCondition(context.Background(),
		condition(domain.ConditionTimeSinceLastEvent, map[string]any{"eventType": "session.end", "durationSeconds": 3600}),
		nil, trigger)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, err = e.EvaluateCondition(context.Background(),
		condition(domain.ConditionTimeSinceLastEvent, map[string]any{"eventType": "session.end", "durationSeconds": 3600, "comparator": "<"}),
		nil, trigger)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFirstOccurrenceCondition(t *testing.T) {
	e := NewEvaluator(nil)
	trigger := evt("e1", "user.login", baseTime.Add(time.Hour), nil)

	// No prior events: the trigger is the first occurrence
	ok, _, err := e.EvaluateCondition(context.Background(),
		condition(domain.ConditionFirstOccurrence, nil), nil, trigger)
	require.NoError(t, err)
	assert.True(t, ok)

	// One prior event of the same type: no longer first
	history := []domain.Event{evt("h1", "user.login", baseTime, nil)}
	ok, _, err = e.EvaluateCondition(context.Background(),
		condition(domain.ConditionFirstOccurrence, nil), history, trigger)
	require.NoError(t, err)
	assert.False(t, ok)

	// maxOccurrences extends the bound
	ok, _, err = e.EvaluateCondition(context.Background(),
		condition(domain.ConditionFirstOccurrence, map[string]any{"maxOccurrences": 2}), history, trigger)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCustomScriptWithoutHost(t *testing.T) {
	e := NewEvaluator(nil)
	ok, details, err := e.EvaluateCondition(context.Background(),
		condition(domain.ConditionCustomScript, nil), nil, evt("e1", "x", baseTime, nil))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, details, "no script host")
}

func TestUnknownConditionType(t *testing.T) {
	e := NewEvaluator(nil)
	_, _, err := e.EvaluateCondition(context.Background(),
		condition("telepathy", nil), nil, evt("e1", "x", baseTime, nil))
	require.ErrorIs(t, err, domain.ErrInvalidRuleConfig)
}

func TestEvaluateConditionsLogic(t *testing.T) {
	e := NewEvaluator(nil)
	trigger := evt("e1", "user.login", baseTime, map[string]any{"plan": "gold"})
	trueCondition := condition(domain.ConditionAlwaysTrue, nil)
	falseCondition := condition(domain.ConditionAttributeEquals, map[string]any{"attributeName": "plan", "expectedValue": "silver"})

	ok, err := e.EvaluateConditions(context.Background(), []domain.Condition{trueCondition, falseCondition}, nil, trigger, domain.RuleLogicAll)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.EvaluateConditions(context.Background(), []domain.Condition{falseCondition, trueCondition}, nil, trigger, domain.RuleLogicAny)
	require.NoError(t, err)
	assert.True(t, ok)

	// Unknown type aborts the whole rule
	_, err = e.EvaluateConditions(context.Background(), []domain.Condition{condition("telepathy", nil)}, nil, trigger, domain.RuleLogicAll)
	require.ErrorIs(t, err, domain.ErrInvalidRuleConfig)
}
