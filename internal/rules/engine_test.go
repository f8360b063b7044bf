package rules

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osheron/meritum/internal/database/memory"
	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/repository"
)

func seedRule(t *testing.T, repo repository.Rule, rule domain.Rule) {
	t.Helper()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = baseTime
		rule.UpdatedAt = baseTime
	}
	require.NoError(t, repo.SaveRule(context.Background(), rule))
}

func pointsRule(id string, triggers []string, conditions []domain.Condition) domain.Rule {
	return domain.Rule{
		ID:         id,
		Name:       "rule " + id,
		Triggers:   triggers,
		Conditions: conditions,
		Rewards: []domain.Reward{
			{Type: domain.RewardPoints, TargetID: "xp", Amount: 10},
		},
		IsActive: true,
	}
}

func TestEngineEvaluatesMatchingRulesInOrder(t *testing.T) {
	rules := memory.NewRuleRepository()
	events := memory.NewEventRepository()
	engine := NewEngine(rules, events)
	ctx := context.Background()

	always := []domain.Condition{{Type: domain.ConditionAlwaysTrue}}
	seedRule(t, rules, pointsRule("rule-b", []string{"user.login"}, always))
	seedRule(t, rules, pointsRule("rule-a", []string{"User.Login"}, always))
	seedRule(t, rules, pointsRule("rule-c", []string{"purchase.completed"}, always))

	trigger := domain.NewEvent("evt-1", "user.login", "user-1", baseTime, nil)
	instructions, err := engine.Evaluate(ctx, trigger)
	require.NoError(t, err)

	// Case-insensitive trigger match, rule-id order, unrelated rule skipped
	require.Len(t, instructions, 2)
	assert.Equal(t, "rule-a", instructions[0].RuleID)
	assert.Equal(t, "rule-b", instructions[1].RuleID)
	assert.Equal(t, "evt-1", instructions[0].EventID)
	assert.Equal(t, 0, instructions[0].RewardIndex)
}

func TestEngineEmitsRewardsInDeclaredOrder(t *testing.T) {
	rules := memory.NewRuleRepository()
	events := memory.NewEventRepository()
	engine := NewEngine(rules, events)

	rule := pointsRule("rule-multi", []string{"user.login"}, []domain.Condition{{Type: domain.ConditionAlwaysTrue}})
	rule.Rewards = []domain.Reward{
		{Type: domain.RewardPoints, TargetID: "xp", Amount: 10},
		{Type: domain.RewardBadge, TargetID: "first-login"},
	}
	seedRule(t, rules, rule)

	instructions, err := engine.Evaluate(context.Background(), domain.NewEvent("evt-1", "user.login", "user-1", baseTime, nil))
	require.NoError(t, err)
	require.Len(t, instructions, 2)
	assert.Equal(t, domain.RewardPoints, instructions[0].Reward.Type)
	assert.Equal(t, 0, instructions[0].RewardIndex)
	assert.Equal(t, domain.RewardBadge, instructions[1].Reward.Type)
	assert.Equal(t, 1, instructions[1].RewardIndex)
}

func TestEngineExcludesTriggerFromHistory(t *testing.T) {
	rules := memory.NewRuleRepository()
	events := memory.NewEventRepository()
	engine := NewEngine(rules, events)
	ctx := context.Background()

	// firstOccurrence must not see the trigger event in history even after
	// it has been stored.
	seedRule(t, rules, pointsRule("rule-first", []string{"user.login"},
		[]domain.Condition{{Type: domain.ConditionFirstOccurrence}}))

	trigger := domain.NewEvent("evt-1", "user.login", "user-1", baseTime, nil)
	require.NoError(t, events.StoreEvent(ctx, trigger))

	instructions, err := engine.Evaluate(ctx, trigger)
	require.NoError(t, err)
	assert.Len(t, instructions, 1, "stored trigger must not count as prior occurrence")

	// A genuinely second login does not match
	second := domain.NewEvent("evt-2", "user.login", "user-1", baseTime.Add(time.Hour), nil)
	require.NoError(t, events.StoreEvent(ctx, second))

	instructions, err = engine.Evaluate(ctx, second)
	require.NoError(t, err)
	assert.Empty(t, instructions)
}

func TestEngineSkipsInvalidRules(t *testing.T) {
	rules := memory.NewRuleRepository()
	events := memory.NewEventRepository()
	engine := NewEngine(rules, events)

	bad := pointsRule("rule-bad", []string{"user.login"},
		[]domain.Condition{{Type: "telepathy"}})
	good := pointsRule("rule-good", []string{"user.login"},
		[]domain.Condition{{Type: domain.ConditionAlwaysTrue}})
	seedRule(t, rules, bad)
	seedRule(t, rules, good)

	instructions, err := engine.Evaluate(context.Background(), domain.NewEvent("evt-1", "user.login", "user-1", baseTime, nil))
	require.NoError(t, err)
	require.Len(t, instructions, 1)
	assert.Equal(t, "rule-good", instructions[0].RuleID)
}

func TestEngineAnyLogic(t *testing.T) {
	rules := memory.NewRuleRepository()
	events := memory.NewEventRepository()
	engine := NewEngine(rules, events)

	rule := pointsRule("rule-any", []string{"user.login"}, []domain.Condition{
		{Type: domain.ConditionAttributeEquals, Parameters: map[string]any{"attributeName": "plan", "expectedValue": "gold"}},
		{Type: domain.ConditionAlwaysTrue},
	})
	rule.Logic = domain.RuleLogicAny
	seedRule(t, rules, rule)

	instructions, err := engine.Evaluate(context.Background(),
		domain.NewEvent("evt-1", "user.login", "user-1", baseTime, map[string]any{"plan": "free"}))
	require.NoError(t, err)
	assert.Len(t, instructions, 1)
}

func TestEngineNoMatchingRules(t *testing.T) {
	engine := NewEngine(memory.NewRuleRepository(), memory.NewEventRepository())
	instructions, err := engine.Evaluate(context.Background(),
		domain.NewEvent("evt-1", "nobody.cares", "user-1", baseTime, nil))
	require.NoError(t, err)
	assert.Empty(t, instructions)
}
