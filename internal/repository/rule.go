package repository

import (
	"context"

	"github.com/osheron/meritum/internal/domain"
)

// Rule defines the interface for rule configuration persistence.
type Rule interface {
	GetRuleByID(ctx context.Context, ruleID string) (*domain.Rule, error)
	ListRules(ctx context.Context) ([]domain.Rule, error)

	// ListActiveRules returns active rules ordered by rule id ascending so
	// engine evaluation order is deterministic.
	ListActiveRules(ctx context.Context) ([]domain.Rule, error)

	// ListRulesByTrigger returns active rules whose trigger set contains the
	// event type (case-insensitive), ordered by rule id ascending.
	ListRulesByTrigger(ctx context.Context, eventType string) ([]domain.Rule, error)

	SaveRule(ctx context.Context, rule domain.Rule) error
	DeleteRule(ctx context.Context, ruleID string) error
}
