package rules

import (
	"context"
	"time"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/logger"
)

// Sandbox runs the rule engine over a candidate event without storing the
// event, applying rewards, or mutating any state. It may read repositories.
type Sandbox struct {
	engine *Engine
}

// NewSandbox creates a sandbox over the given engine.
func NewSandbox(engine *Engine) *Sandbox {
	return &Sandbox{engine: engine}
}

// DryRun evaluates the event against every active rule and returns a
// structured trace of what would happen.
func (s *Sandbox) DryRun(ctx context.Context, event domain.Event) (*domain.DryRunTrace, error) {
	log := logger.FromContext(ctx)
	startedAt := time.Now()

	trace := &domain.DryRunTrace{
		TriggerEventID: event.ID,
		UserID:         event.UserID,
		EventType:      event.EventType,
		EvaluatedAt:    startedAt.UTC(),
	}

	trace.Summary.EventValid = true
	if err := event.Validate(); err != nil {
		trace.Summary.EventValid = false
		trace.Summary.ValidationErrors = append(trace.Summary.ValidationErrors, err.Error())
	}

	active, err := s.engine.rules.ListActiveRules(ctx)
	if err != nil {
		return nil, err
	}

	// The candidate event is never stored, so fetched history is naturally
	// prior history only.
	history, err := s.engine.fetchHistory(ctx, event, active)
	if err != nil {
		return nil, err
	}

	for _, rule := range active {
		ruleStart := time.Now()
		ruleTrace := domain.DryRunRule{
			RuleID:      rule.ID,
			Name:        rule.Name,
			Description: rule.Description,
		}

		ruleTrace.TriggerMatched = rule.ShouldTrigger(event.EventType)
		if ruleTrace.TriggerMatched {
			if err := rule.Validate(); err != nil {
				log.Warn(LogMsgRuleSkippedInvalid, "rule_id", rule.ID, "error", err)
				ruleTrace.TriggerMatched = false
			}
		}

		if ruleTrace.TriggerMatched {
			ruleTrace.WouldExecute = s.traceConditions(ctx, rule, history, event, &ruleTrace)
			if ruleTrace.WouldExecute {
				for _, reward := range rule.Rewards {
					ruleTrace.PredictedRewards = append(ruleTrace.PredictedRewards, domain.DryRunReward{
						Type:        reward.Type,
						TargetID:    reward.TargetID,
						Amount:      reward.Amount,
						Parameters:  reward.Parameters,
						Name:        rule.Name,
						Description: rule.Description,
					})
				}
				trace.Summary.RulesThatWouldExecute++
				trace.Summary.TotalPredictedRewards += len(ruleTrace.PredictedRewards)
			}
		}

		ruleTrace.EvaluationTimeMs = float64(time.Since(ruleStart).Microseconds()) / 1000.0
		trace.Rules = append(trace.Rules, ruleTrace)
	}

	trace.Summary.TotalRulesEvaluated = len(active)
	trace.Summary.TotalEvaluationTimeMs = float64(time.Since(startedAt).Microseconds()) / 1000.0
	return trace, nil
}

// traceConditions evaluates each condition individually so the trace records
// per-condition results, then combines them under the rule's logic mode.
func (s *Sandbox) traceConditions(ctx context.Context, rule domain.Rule, history []domain.Event, event domain.Event, ruleTrace *domain.DryRunRule) bool {
	logic := rule.EffectiveLogic()
	anyTrue := false
	allTrue := true

	for _, cond := range rule.Conditions {
		condStart := time.Now()
		result, details, err := s.engine.evaluator.EvaluateCondition(ctx, cond, history, event)
		if err != nil {
			result = false
			details = err.Error()
		}
		ruleTrace.Conditions = append(ruleTrace.Conditions, domain.DryRunCondition{
			ConditionID:      cond.ID,
			Type:             cond.Type,
			Parameters:       cond.Parameters,
			Result:           result,
			Details:          details,
			EvaluationTimeMs: float64(time.Since(condStart).Microseconds()) / 1000.0,
		})
		if result {
			anyTrue = true
		} else {
			allTrue = false
		}
	}

	if logic == domain.RuleLogicAny {
		return anyTrue
	}
	return allTrue
}
