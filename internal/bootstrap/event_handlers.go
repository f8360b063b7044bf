package bootstrap

import (
	"context"
	"log/slog"

	"github.com/osheron/meritum/internal/bus"
)

// BoardCache invalidates cached leaderboard projections after a state change.
type BoardCache interface {
	InvalidateAllTime(ctx context.Context, rewardType, categoryID string)
}

// RegisterNotificationHandlers subscribes the standard observers to the
// notification bus: structured logging for every pipeline notification and
// all-time leaderboard invalidation for grants that change a ranked score.
// A nil boards is allowed and skips invalidation.
func RegisterNotificationHandlers(notifier bus.Bus, boards BoardCache) {
	notifier.Subscribe(bus.RewardGranted, func(ctx context.Context, event bus.Event) error {
		if payload, ok := event.Payload.(bus.RewardGrantedPayloadV1); ok {
			slog.Debug(LogMsgRewardGranted,
				"user_id", payload.UserID,
				"rule_id", payload.RuleID,
				"reward_type", payload.RewardType,
				"target_id", payload.TargetID,
				"amount", payload.Amount,
				"duplicate", payload.Duplicate)
			if boards != nil && !payload.Duplicate {
				categoryID := payload.CategoryID
				if categoryID == "" {
					categoryID = payload.TargetID
				}
				boards.InvalidateAllTime(ctx, payload.RewardType, categoryID)
			}
		}
		return nil
	})

	notifier.Subscribe(bus.RewardDenied, func(ctx context.Context, event bus.Event) error {
		if payload, ok := event.Payload.(bus.RewardGrantedPayloadV1); ok {
			slog.Debug(LogMsgRewardDenied,
				"user_id", payload.UserID,
				"rule_id", payload.RuleID,
				"reward_type", payload.RewardType)
		}
		return nil
	})

	notifier.Subscribe(bus.LevelChanged, func(ctx context.Context, event bus.Event) error {
		if payload, ok := event.Payload.(bus.LevelChangedPayloadV1); ok {
			slog.Info(LogMsgLevelChanged,
				"user_id", payload.UserID,
				"category_id", payload.CategoryID,
				"old_level", payload.OldLevelID,
				"new_level", payload.NewLevelID)
		}
		return nil
	})

	notifier.Subscribe(bus.WalletPosted, func(ctx context.Context, event bus.Event) error {
		if payload, ok := event.Payload.(bus.WalletPostedPayloadV1); ok {
			slog.Debug(LogMsgWalletPosted,
				"user_id", payload.UserID,
				"category_id", payload.CategoryID,
				"amount", payload.Amount,
				"transaction_type", payload.TransactionType,
				"reference_id", payload.ReferenceID)
		}
		return nil
	})
}
