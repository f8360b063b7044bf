package rules

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/logger"
	"github.com/osheron/meritum/internal/repository"
)

// Service defines the interface for rule configuration management.
type Service interface {
	GetRule(ctx context.Context, ruleID string) (*domain.Rule, error)
	ListRules(ctx context.Context) ([]domain.Rule, error)
	ListActiveRules(ctx context.Context) ([]domain.Rule, error)
	ListRulesByTrigger(ctx context.Context, eventType string) ([]domain.Rule, error)
	CreateRule(ctx context.Context, rule domain.Rule) (*domain.Rule, error)
	UpdateRule(ctx context.Context, ruleID string, rule domain.Rule) (*domain.Rule, error)
	SetRuleActive(ctx context.Context, ruleID string, active bool) (*domain.Rule, error)
	DeleteRule(ctx context.Context, ruleID string) error
}

type service struct {
	repo repository.Rule
}

// NewService creates a new rule configuration service.
func NewService(repo repository.Rule) Service {
	return &service{repo: repo}
}

func (s *service) GetRule(ctx context.Context, ruleID string) (*domain.Rule, error) {
	return s.repo.GetRuleByID(ctx, ruleID)
}

func (s *service) ListRules(ctx context.Context) ([]domain.Rule, error) {
	return s.repo.ListRules(ctx)
}

func (s *service) ListActiveRules(ctx context.Context) ([]domain.Rule, error) {
	return s.repo.ListActiveRules(ctx)
}

func (s *service) ListRulesByTrigger(ctx context.Context, eventType string) ([]domain.Rule, error) {
	return s.repo.ListRulesByTrigger(ctx, eventType)
}

func (s *service) CreateRule(ctx context.Context, rule domain.Rule) (*domain.Rule, error) {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if existing, err := s.repo.GetRuleByID(ctx, rule.ID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: rule %s already exists", domain.ErrValidation, rule.ID)
	}
	if err := s.repo.SaveRule(ctx, rule); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info(LogMsgRuleCreated, "rule_id", rule.ID, "triggers", rule.Triggers)
	return &rule, nil
}

func (s *service) UpdateRule(ctx context.Context, ruleID string, rule domain.Rule) (*domain.Rule, error) {
	if rule.ID == "" {
		rule.ID = ruleID
	}
	if rule.ID != ruleID {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, ErrMsgRuleIDMismatch)
	}
	existing, err := s.repo.GetRuleByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = time.Now().UTC()
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.SaveRule(ctx, rule); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info(LogMsgRuleUpdated, "rule_id", rule.ID)
	return &rule, nil
}

func (s *service) SetRuleActive(ctx context.Context, ruleID string, active bool) (*domain.Rule, error) {
	rule, err := s.repo.GetRuleByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if rule.IsActive == active {
		return rule, nil
	}
	rule.IsActive = active
	rule.UpdatedAt = time.Now().UTC()
	if err := s.repo.SaveRule(ctx, *rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *service) DeleteRule(ctx context.Context, ruleID string) error {
	if err := s.repo.DeleteRule(ctx, ruleID); err != nil {
		return err
	}
	logger.FromContext(ctx).Info(LogMsgRuleDeleted, "rule_id", ruleID)
	return nil
}
