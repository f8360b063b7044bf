package domain

import (
	"fmt"
	"strings"
	"time"
)

// Condition logic aggregation modes.
const (
	RuleLogicAll = "all"
	RuleLogicAny = "any"
)

// Rule binds a set of event-type triggers to conditions and rewards.
type Rule struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Triggers    []string    `json:"triggers"`
	Conditions  []Condition `json:"conditions"`
	Rewards     []Reward    `json:"rewards"`
	Logic       string      `json:"logic,omitempty"`
	IsActive    bool        `json:"isActive"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Validate checks the rule invariants: non-empty id, at least one trigger,
// one condition, and one reward, and a known logic mode.
func (r Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: rule id must not be empty", ErrInvalidRuleConfig)
	}
	if len(r.Triggers) == 0 {
		return fmt.Errorf("%w: rule %q has no triggers", ErrInvalidRuleConfig, r.ID)
	}
	if len(r.Conditions) == 0 {
		return fmt.Errorf("%w: rule %q has no conditions", ErrInvalidRuleConfig, r.ID)
	}
	if len(r.Rewards) == 0 {
		return fmt.Errorf("%w: rule %q has no rewards", ErrInvalidRuleConfig, r.ID)
	}
	switch r.EffectiveLogic() {
	case RuleLogicAll, RuleLogicAny:
	default:
		return fmt.Errorf("%w: rule %q has unknown logic %q", ErrInvalidRuleConfig, r.ID, r.Logic)
	}
	return nil
}

// EffectiveLogic returns the condition aggregation mode, defaulting to "all".
func (r Rule) EffectiveLogic() string {
	if r.Logic == "" {
		return RuleLogicAll
	}
	return strings.ToLower(r.Logic)
}

// ShouldTrigger reports whether the rule is active and the event type is one
// of its triggers. Trigger matching is case-insensitive.
func (r Rule) ShouldTrigger(eventType string) bool {
	if !r.IsActive {
		return false
	}
	for _, t := range r.Triggers {
		if strings.EqualFold(t, eventType) {
			return true
		}
	}
	return false
}
