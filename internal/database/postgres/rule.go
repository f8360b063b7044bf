package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/repository"
)

type ruleRepository struct {
	db *pgxpool.Pool
}

// NewRuleRepository creates a new PostgreSQL rule repository
func NewRuleRepository(db *pgxpool.Pool) repository.Rule {
	return &ruleRepository{db: db}
}

const ruleColumns = `rule_id, name, description, triggers, conditions, rewards, logic, is_active, created_at, updated_at`

func (r *ruleRepository) GetRuleByID(ctx context.Context, ruleID string) (*domain.Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM rules WHERE rule_id = $1`

	rule, err := scanRule(r.db.QueryRow(ctx, query, ruleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: rule %s", domain.ErrNotFound, ruleID)
		}
		return nil, fmt.Errorf(ErrMsgScanFailed, domain.ErrRepository, "get rule", err)
	}
	return rule, nil
}

func (r *ruleRepository) ListRules(ctx context.Context) ([]domain.Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM rules ORDER BY rule_id`
	return r.queryRules(ctx, query)
}

func (r *ruleRepository) ListActiveRules(ctx context.Context) ([]domain.Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM rules WHERE is_active ORDER BY rule_id`
	return r.queryRules(ctx, query)
}

// ListRulesByTrigger matches the event type case-insensitively against the
// stored trigger array.
func (r *ruleRepository) ListRulesByTrigger(ctx context.Context, eventType string) ([]domain.Rule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM rules
		WHERE is_active
		  AND EXISTS (
			SELECT 1 FROM jsonb_array_elements_text(triggers) trigger_type
			WHERE LOWER(trigger_type) = LOWER($1)
		  )
		ORDER BY rule_id
	`
	return r.queryRules(ctx, query, eventType)
}

func (r *ruleRepository) SaveRule(ctx context.Context, rule domain.Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	triggersJSON, err := marshalJSON(rule.Triggers, "rule triggers")
	if err != nil {
		return err
	}
	conditionsJSON, err := marshalJSON(rule.Conditions, "rule conditions")
	if err != nil {
		return err
	}
	rewardsJSON, err := marshalJSON(rule.Rewards, "rule rewards")
	if err != nil {
		return err
	}

	query := `
		INSERT INTO rules (rule_id, name, description, triggers, conditions, rewards, logic, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (rule_id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			triggers = EXCLUDED.triggers,
			conditions = EXCLUDED.conditions,
			rewards = EXCLUDED.rewards,
			logic = EXCLUDED.logic,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.Exec(ctx, query, rule.ID, rule.Name, rule.Description, triggersJSON, conditionsJSON, rewardsJSON,
		rule.Logic, rule.IsActive, rule.CreatedAt, rule.UpdatedAt)
	if err != nil {
		return fmt.Errorf(ErrMsgExecFailed, domain.ErrRepository, "save rule", err)
	}
	return nil
}

func (r *ruleRepository) DeleteRule(ctx context.Context, ruleID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM rules WHERE rule_id = $1`, ruleID)
	if err != nil {
		return fmt.Errorf(ErrMsgExecFailed, domain.ErrRepository, "delete rule", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: rule %s", domain.ErrNotFound, ruleID)
	}
	return nil
}

func (r *ruleRepository) queryRules(ctx context.Context, query string, args ...any) ([]domain.Rule, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, domain.ErrRepository, "rules", err)
	}
	defer rows.Close()

	rules := make([]domain.Rule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf(ErrMsgScanFailed, domain.ErrRepository, "rules", err)
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, domain.ErrRepository, "rules", err)
	}
	return rules, nil
}

func scanRule(row rowScanner) (*domain.Rule, error) {
	var (
		rule                                      domain.Rule
		triggersJSON, conditionsJSON, rewardsJSON []byte
	)
	err := row.Scan(&rule.ID, &rule.Name, &rule.Description, &triggersJSON, &conditionsJSON, &rewardsJSON,
		&rule.Logic, &rule.IsActive, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(triggersJSON) > 0 {
		if err := json.Unmarshal(triggersJSON, &rule.Triggers); err != nil {
			return nil, err
		}
	}
	if len(conditionsJSON) > 0 {
		if err := json.Unmarshal(conditionsJSON, &rule.Conditions); err != nil {
			return nil, err
		}
	}
	if len(rewardsJSON) > 0 {
		if err := json.Unmarshal(rewardsJSON, &rule.Rewards); err != nil {
			return nil, err
		}
	}
	return &rule, nil
}
