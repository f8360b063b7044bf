// Package rules holds the rule configuration service, the evaluation engine,
// and the dry-run sandbox.
package rules

import (
	"context"
	"errors"
	"fmt"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/logger"
	"github.com/osheron/meritum/internal/repository"
)

// Engine evaluates events against the active rule set and produces reward
// instructions. It never applies rewards itself.
type Engine struct {
	rules        repository.Rule
	events       repository.Event
	evaluator    *Evaluator
	historyLimit int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithHistoryLimit overrides the default history fetch window.
func WithHistoryLimit(limit int) EngineOption {
	return func(e *Engine) {
		if limit > 0 {
			e.historyLimit = limit
		}
	}
}

// WithScriptHost installs a customScript evaluator.
func WithScriptHost(host ScriptHost) EngineOption {
	return func(e *Engine) {
		e.evaluator = NewEvaluator(host)
	}
}

// NewEngine creates a rule engine over the given repositories.
func NewEngine(ruleRepo repository.Rule, eventRepo repository.Event, opts ...EngineOption) *Engine {
	e := &Engine{
		rules:        ruleRepo,
		events:       eventRepo,
		evaluator:    NewEvaluator(nil),
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate loads active rules triggered by the event type and evaluates each
// one's conditions against the user's history. Rules are processed in rule-id
// order; within a rule, rewards are emitted in declared order. Invalid rules
// are logged and skipped.
func (e *Engine) Evaluate(ctx context.Context, event domain.Event) ([]domain.RewardInstruction, error) {
	log := logger.FromContext(ctx)

	matched, err := e.rules.ListRulesByTrigger(ctx, event.EventType)
	if err != nil {
		return nil, fmt.Errorf("listing rules for trigger %q: %w", event.EventType, err)
	}
	if len(matched) == 0 {
		return nil, nil
	}

	history, err := e.fetchHistory(ctx, event, matched)
	if err != nil {
		log.Error(LogMsgHistoryFetchFailed, "user_id", event.UserID, "error", err)
		return nil, err
	}

	var instructions []domain.RewardInstruction
	for _, rule := range matched {
		if err := rule.Validate(); err != nil {
			log.Warn(LogMsgRuleSkippedInvalid, "rule_id", rule.ID, "error", err)
			continue
		}

		ok, err := e.evaluator.EvaluateConditions(ctx, rule.Conditions, history, event, rule.EffectiveLogic())
		if err != nil {
			if errors.Is(err, domain.ErrInvalidRuleConfig) {
				log.Warn(LogMsgRuleSkippedInvalid, "rule_id", rule.ID, "error", err)
				continue
			}
			return nil, err
		}
		if !ok {
			continue
		}

		log.Debug(LogMsgRuleMatched, "rule_id", rule.ID, "rewards", len(rule.Rewards))
		for i, reward := range rule.Rewards {
			instructions = append(instructions, domain.RewardInstruction{
				RuleID:      rule.ID,
				RuleName:    rule.Name,
				EventID:     event.ID,
				UserID:      event.UserID,
				RewardIndex: i,
				Reward:      reward,
			})
		}
	}
	return instructions, nil
}

// fetchHistory loads the user's most recent events, honoring any larger
// historyLimit a matched rule declares, and strips the trigger event so
// conditions see only prior history.
func (e *Engine) fetchHistory(ctx context.Context, event domain.Event, matched []domain.Rule) ([]domain.Event, error) {
	limit := e.historyLimit
	for _, rule := range matched {
		for _, cond := range rule.Conditions {
			if declared, err := intParam(cond, domain.ParamHistoryLimit, 0); err == nil && declared > limit {
				limit = declared
			}
		}
	}

	fetched, err := e.events.GetRecentEventsByUser(ctx, event.UserID, limit)
	if err != nil {
		return nil, err
	}

	history := fetched[:0:0]
	for _, h := range fetched {
		if h.ID != event.ID {
			history = append(history, h)
		}
	}
	return history, nil
}
