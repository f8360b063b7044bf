package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/logger"
	"github.com/osheron/meritum/internal/repository"
)

// Config is the JSON shape of the catalog file.
type Config struct {
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`

	Categories []domain.PointCategory       `json:"categories"`
	Badges     []domain.Badge               `json:"badges"`
	Trophies   []domain.Trophy              `json:"trophies"`
	Levels     []domain.Level               `json:"levels"`
	EventTypes []domain.EventTypeDescriptor `json:"eventTypes"`
}

// RulesConfig is the JSON shape of the seed rules file.
type RulesConfig struct {
	Version string        `json:"version"`
	Rules   []domain.Rule `json:"rules"`
}

// Load reads and validates the catalog file at path.
func Load(ctx context.Context, path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgReadConfigFileFailed, err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(ErrMsgParseConfigFailed, err)
	}

	c, err := New(config.Categories, config.Badges, config.Trophies, config.Levels, config.EventTypes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logger.FromContext(ctx).Info(LogMsgCatalogLoaded,
		"path", path,
		"categories", len(config.Categories),
		"badges", len(config.Badges),
		"trophies", len(config.Trophies),
		"levels", len(config.Levels),
		"event_types", len(config.EventTypes))
	return c, nil
}

// SeedRules loads the rules file at path and inserts each rule that does not
// already exist. Existing rules are never overwritten, so operator edits
// survive restarts.
func SeedRules(ctx context.Context, path string, repo repository.Rule) (int, error) {
	log := logger.FromContext(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf(ErrMsgReadConfigFileFailed, err)
	}

	var config RulesConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return 0, fmt.Errorf(ErrMsgParseConfigFailed, err)
	}

	inserted := 0
	for _, rule := range config.Rules {
		if err := rule.Validate(); err != nil {
			return inserted, fmt.Errorf("%w: seed rule %q: %s", ErrInvalidConfig, rule.ID, err)
		}
		if _, err := repo.GetRuleByID(ctx, rule.ID); err == nil {
			log.Debug(LogMsgSeedRuleSkipped, "rule_id", rule.ID)
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return inserted, err
		}
		if err := repo.SaveRule(ctx, rule); err != nil {
			return inserted, err
		}
		inserted++
	}

	log.Info(LogMsgSeedRulesLoaded, "path", path, "inserted", inserted, "total", len(config.Rules))
	return inserted, nil
}
