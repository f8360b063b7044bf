// Package reward applies reward instructions produced by the rule engine to
// user state, wallets, and the reward history log.
package reward

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/osheron/meritum/internal/bus"
	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/logger"
	"github.com/osheron/meritum/internal/metrics"
	"github.com/osheron/meritum/internal/repository"
)

// Catalog resolves point category, badge, trophy, and level descriptors.
type Catalog interface {
	Category(id string) (domain.PointCategory, bool)
	Badge(id string) (domain.Badge, bool)
	Trophy(id string) (domain.Trophy, bool)
	Levels() []domain.Level
}

// Applier mutates per-user state according to reward instructions. It is
// idempotent per (ruleId, eventId, rewardIndex): the history entry id is
// composed from that triple and a replay is skipped when the entry exists.
type Applier struct {
	states  repository.UserState
	wallets repository.Wallet
	history repository.RewardHistory
	catalog Catalog
	bus     bus.Bus
	now     func() time.Time
}

// NewApplier creates a reward applier.
func NewApplier(states repository.UserState, wallets repository.Wallet, history repository.RewardHistory, catalog Catalog, notifier bus.Bus) *Applier {
	return &Applier{
		states:  states,
		wallets: wallets,
		history: history,
		catalog: catalog,
		bus:     notifier,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// historyID composes the idempotency key for one instruction.
func historyID(in domain.RewardInstruction) string {
	return fmt.Sprintf("%s:%s:%d", in.RuleID, in.EventID, in.RewardIndex)
}

// Apply processes each instruction in order. A failing reward is recorded as
// an unsuccessful history entry and processing continues with the next one;
// only repository-level failures abort.
func (a *Applier) Apply(ctx context.Context, instructions []domain.RewardInstruction) error {
	for _, in := range instructions {
		if err := a.applyOne(ctx, in); err != nil {
			return err
		}
	}
	return nil
}

func (a *Applier) applyOne(ctx context.Context, in domain.RewardInstruction) error {
	log := logger.FromContext(ctx).With("rule_id", in.RuleID, "event_id", in.EventID, "reward_type", in.Reward.Type, "user_id", in.UserID)

	entryID := historyID(in)
	exists, err := a.history.HistoryExists(ctx, entryID)
	if err != nil {
		return fmt.Errorf("checking reward history: %w", err)
	}
	if exists {
		log.Debug(LogMsgRewardReplayed, "history_id", entryID)
		return nil
	}

	entry := domain.RewardHistory{
		ID:         entryID,
		UserID:     in.UserID,
		RewardType: in.Reward.Type,
		Success:    true,
		AwardedAt:  a.now(),
		Details: map[string]any{
			domain.HistoryDetailRuleID:      in.RuleID,
			domain.HistoryDetailEventID:     in.EventID,
			domain.HistoryDetailRewardIndex: in.RewardIndex,
		},
	}

	switch in.Reward.Type {
	case domain.RewardPoints:
		err = a.applyPoints(ctx, in, &entry, false)
	case domain.RewardPenalty:
		err = a.applyPenalty(ctx, in, &entry)
	case domain.RewardBadge:
		err = a.applyBadge(ctx, in, &entry)
	case domain.RewardTrophy:
		err = a.applyTrophy(ctx, in, &entry)
	case domain.RewardLevel:
		err = a.applyLevel(ctx, in, &entry)
	default:
		log.Warn(LogMsgUnknownRewardType)
		entry.Success = false
		entry.FailureReason = ReasonUnknownRewardType
	}

	if err != nil {
		// Business failures are recorded, repository failures propagate.
		if errors.Is(err, domain.ErrInsufficientBalance) {
			entry.Success = false
			entry.FailureReason = ReasonInsufficientBalance
			log.Warn(LogMsgRewardFailed, "reason", entry.FailureReason)
		} else if errors.Is(err, domain.ErrValidation) {
			entry.Success = false
			entry.FailureReason = err.Error()
			log.Warn(LogMsgRewardFailed, "reason", entry.FailureReason)
		} else {
			return err
		}
	}

	if entry.Success {
		metrics.RewardsGranted.WithLabelValues(in.Reward.Type).Inc()
	} else {
		metrics.RewardsFailed.WithLabelValues(in.Reward.Type, entry.FailureReason).Inc()
	}

	if err := a.history.AppendHistory(ctx, entry); err != nil {
		log.Error(LogMsgHistoryWriteFailed, "error", err)
		return err
	}

	if a.bus != nil {
		duplicate, _ := entry.Details[domain.HistoryDetailDuplicate].(bool)
		// The category the grant landed in, once parameter overrides are
		// resolved; empty for badge and trophy grants.
		categoryID, _ := entry.Details[domain.HistoryDetailCategory].(string)
		evtType := bus.RewardGranted
		if !entry.Success {
			evtType = bus.RewardDenied
		}
		evt := bus.NewRewardGrantedEvent(in.UserID, in.RuleID, in.Reward.Type, in.Reward.TargetID, categoryID, in.Reward.Amount, duplicate)
		evt.Type = evtType
		if err := a.bus.Publish(ctx, evt); err != nil {
			log.Warn("Notification publish failed", "error", err)
		}
	}

	log.Debug(LogMsgRewardApplied, "success", entry.Success)
	return nil
}

// applyPoints credits amount*multiplier to the category, recomputes the
// user's level for it, and mirrors the posting into the wallet when the
// category is spendable. When the wallet posting is rejected the user state
// is left untouched.
func (a *Applier) applyPoints(ctx context.Context, in domain.RewardInstruction, entry *domain.RewardHistory, penalty bool) error {
	categoryID := in.Reward.TargetID
	if c, ok := in.Reward.Param(domain.RewardParamCategory); ok {
		if s, ok := c.(string); ok && s != "" {
			categoryID = s
		}
	}
	category, ok := a.catalog.Category(categoryID)
	if !ok {
		return fmt.Errorf("%w: %s %q", domain.ErrValidation, ReasonUnknownCategory, categoryID)
	}

	amount := in.Reward.Amount
	if m, ok := in.Reward.Param(domain.RewardParamMultiplier); ok {
		if f, ok := toFloat(m); ok {
			amount = int64(float64(amount) * f)
		}
	}

	entry.Details[domain.HistoryDetailCategory] = categoryID
	entry.Details[domain.HistoryDetailAmount] = amount

	state, err := a.states.GetOrCreateUserState(ctx, in.UserID)
	if err != nil {
		return err
	}

	next := applyAggregation(category.Aggregation, state.Points(categoryID), amount)
	if !category.NegativeBalanceAllowed && next < 0 {
		return fmt.Errorf("%w: category %q balance would be %d", domain.ErrInsufficientBalance, categoryID, next)
	}

	// Post the wallet leg first: if the ledger rejects the posting the user
	// state must not change.
	if category.IsSpendable {
		txType := domain.TransactionEarned
		if penalty {
			txType = domain.TransactionPenalty
		}
		tx := domain.WalletTransaction{
			ID:          uuid.NewString(),
			UserID:      in.UserID,
			CategoryID:  categoryID,
			Amount:      amount,
			Type:        txType,
			Description: fmt.Sprintf("rule %s", in.RuleID),
			ReferenceID: historyID(in),
			CreatedAt:   a.now(),
		}
		if err := a.wallets.PostTransaction(ctx, tx, category.NegativeBalanceAllowed); err != nil {
			return err
		}
		if a.bus != nil {
			_ = a.bus.Publish(ctx, bus.NewWalletPostedEvent(in.UserID, categoryID, amount, string(txType), tx.ReferenceID))
		}
	}

	state.PointsByCategory[categoryID] = next
	a.recomputeLevel(ctx, state, categoryID)
	return a.states.SaveUserState(ctx, state)
}

func (a *Applier) applyPenalty(ctx context.Context, in domain.RewardInstruction, entry *domain.RewardHistory) error {
	if badgeID, ok := in.Reward.Param(domain.RewardParamRevoke); ok {
		if id, ok := badgeID.(string); ok && id != "" {
			return a.revokeBadge(ctx, in, id, entry)
		}
	}
	// Penalties are negative-amount points postings.
	if in.Reward.Amount > 0 {
		in.Reward.Amount = -in.Reward.Amount
	}
	return a.applyPoints(ctx, in, entry, true)
}

func (a *Applier) revokeBadge(ctx context.Context, in domain.RewardInstruction, badgeID string, entry *domain.RewardHistory) error {
	state, err := a.states.GetOrCreateUserState(ctx, in.UserID)
	if err != nil {
		return err
	}
	entry.Details[domain.HistoryDetailBadgeID] = badgeID
	if !state.RemoveBadge(badgeID) {
		entry.Details[domain.HistoryDetailDuplicate] = true
		return nil
	}
	return a.states.SaveUserState(ctx, state)
}

// applyBadge grants a badge. Granting an already-held badge is a no-op that
// still records a successful history entry marked duplicate.
func (a *Applier) applyBadge(ctx context.Context, in domain.RewardInstruction, entry *domain.RewardHistory) error {
	badgeID := in.Reward.TargetID
	if id, ok := in.Reward.Param(domain.RewardParamBadgeID); ok {
		if s, ok := id.(string); ok && s != "" {
			badgeID = s
		}
	}
	entry.Details[domain.HistoryDetailBadgeID] = badgeID

	state, err := a.states.GetOrCreateUserState(ctx, in.UserID)
	if err != nil {
		return err
	}
	if !state.AddBadge(badgeID) {
		entry.Details[domain.HistoryDetailDuplicate] = true
		return nil
	}
	return a.states.SaveUserState(ctx, state)
}

func (a *Applier) applyTrophy(ctx context.Context, in domain.RewardInstruction, entry *domain.RewardHistory) error {
	trophyID := in.Reward.TargetID
	if id, ok := in.Reward.Param(domain.RewardParamTrophyID); ok {
		if s, ok := id.(string); ok && s != "" {
			trophyID = s
		}
	}
	entry.Details[domain.HistoryDetailTrophyID] = trophyID

	state, err := a.states.GetOrCreateUserState(ctx, in.UserID)
	if err != nil {
		return err
	}
	if !state.AddTrophy(trophyID) {
		entry.Details[domain.HistoryDetailDuplicate] = true
		return nil
	}
	return a.states.SaveUserState(ctx, state)
}

// applyLevel recomputes the user's level for the target category without
// storing any points.
func (a *Applier) applyLevel(ctx context.Context, in domain.RewardInstruction, entry *domain.RewardHistory) error {
	state, err := a.states.GetOrCreateUserState(ctx, in.UserID)
	if err != nil {
		return err
	}
	a.recomputeLevel(ctx, state, in.Reward.TargetID)
	if levelID, ok := state.CurrentLevelByCategory[in.Reward.TargetID]; ok {
		entry.Details[domain.HistoryDetailLevelID] = levelID
	}
	entry.Details[domain.HistoryDetailCategory] = in.Reward.TargetID
	return a.states.SaveUserState(ctx, state)
}

func (a *Applier) recomputeLevel(ctx context.Context, state *domain.UserState, categoryID string) {
	levels := a.catalog.Levels()
	if len(levels) == 0 {
		return
	}
	level, found := domain.LevelForPoints(levels, categoryID, state.Points(categoryID))
	old := state.CurrentLevelByCategory[categoryID]
	if !found {
		delete(state.CurrentLevelByCategory, categoryID)
		return
	}
	if old != level.ID {
		state.CurrentLevelByCategory[categoryID] = level.ID
		if a.bus != nil {
			_ = a.bus.Publish(ctx, bus.NewLevelChangedEvent(state.UserID, categoryID, old, level.ID))
		}
	}
}

// applyAggregation combines a point delta with the current balance under the
// category's aggregation mode.
func applyAggregation(mode domain.Aggregation, current, amount int64) int64 {
	switch mode {
	case domain.AggregationMax:
		if amount > current {
			return amount
		}
		return current
	case domain.AggregationLast:
		return amount
	default: // sum
		return current + amount
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
