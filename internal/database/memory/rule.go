package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/repository"
)

type ruleRepository struct {
	mu    sync.RWMutex
	rules map[string]domain.Rule
}

// NewRuleRepository creates an in-memory rule repository.
func NewRuleRepository() repository.Rule {
	return &ruleRepository{
		rules: make(map[string]domain.Rule),
	}
}

func (r *ruleRepository) GetRuleByID(ctx context.Context, ruleID string) (*domain.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[ruleID]
	if !ok {
		return nil, fmt.Errorf("%w: rule %s", domain.ErrNotFound, ruleID)
	}
	return &rule, nil
}

func (r *ruleRepository) ListRules(ctx context.Context) ([]domain.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortRules(r.rules, func(domain.Rule) bool { return true }), nil
}

func (r *ruleRepository) ListActiveRules(ctx context.Context) ([]domain.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortRules(r.rules, func(rule domain.Rule) bool { return rule.IsActive }), nil
}

func (r *ruleRepository) ListRulesByTrigger(ctx context.Context, eventType string) ([]domain.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortRules(r.rules, func(rule domain.Rule) bool { return rule.ShouldTrigger(eventType) }), nil
}

func (r *ruleRepository) SaveRule(ctx context.Context, rule domain.Rule) error {
	if rule.ID == "" {
		return fmt.Errorf("%w: rule id must not be empty", domain.ErrValidation)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.ID] = rule
	return nil
}

func (r *ruleRepository) DeleteRule(ctx context.Context, ruleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[ruleID]; !ok {
		return fmt.Errorf("%w: rule %s", domain.ErrNotFound, ruleID)
	}
	delete(r.rules, ruleID)
	return nil
}

func sortRules(rules map[string]domain.Rule, keep func(domain.Rule) bool) []domain.Rule {
	out := make([]domain.Rule, 0, len(rules))
	for _, rule := range rules {
		if keep(rule) {
			out = append(out, rule)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
