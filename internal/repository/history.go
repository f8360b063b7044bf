package repository

import (
	"context"
	"time"

	"github.com/osheron/meritum/internal/domain"
)

// RewardHistory defines the interface for the append-only reward log.
type RewardHistory interface {
	// AppendHistory records one reward attempt. Appending an entry whose id
	// already exists returns domain.ErrValidation; the applier uses the id
	// as its replay-idempotency key.
	AppendHistory(ctx context.Context, entry domain.RewardHistory) error

	HistoryExists(ctx context.Context, entryID string) (bool, error)

	GetHistoryByUser(ctx context.Context, userID string, page, pageSize int) (*domain.HistoryPage, error)
	GetHistoryByUserAndType(ctx context.Context, userID, rewardType string, page, pageSize int) (*domain.HistoryPage, error)

	// GetHistoryInRange streams successful entries within [start, end) for
	// leaderboard time-window aggregation, ordered by awardedAt ascending.
	GetHistoryInRange(ctx context.Context, start, end time.Time) ([]domain.RewardHistory, error)

	GetHistoryByUserInRange(ctx context.Context, userID string, start, end time.Time) ([]domain.RewardHistory, error)
}
