package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/repository"
)

type historyRepository struct {
	mu      sync.RWMutex
	entries []domain.RewardHistory
	byID    map[string]struct{}
}

// NewRewardHistoryRepository creates an in-memory reward history repository.
func NewRewardHistoryRepository() repository.RewardHistory {
	return &historyRepository{
		byID: make(map[string]struct{}),
	}
}

func (r *historyRepository) AppendHistory(ctx context.Context, entry domain.RewardHistory) error {
	if entry.ID == "" || entry.UserID == "" {
		return fmt.Errorf("%w: history entry requires id and userId", domain.ErrValidation)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[entry.ID]; exists {
		return fmt.Errorf("%w: history entry %s already recorded", domain.ErrValidation, entry.ID)
	}
	r.byID[entry.ID] = struct{}{}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *historyRepository) HistoryExists(ctx context.Context, entryID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[entryID]
	return ok, nil
}

func (r *historyRepository) GetHistoryByUser(ctx context.Context, userID string, page, pageSize int) (*domain.HistoryPage, error) {
	return r.pageFiltered(page, pageSize, func(e domain.RewardHistory) bool {
		return e.UserID == userID
	})
}

func (r *historyRepository) GetHistoryByUserAndType(ctx context.Context, userID, rewardType string, page, pageSize int) (*domain.HistoryPage, error) {
	return r.pageFiltered(page, pageSize, func(e domain.RewardHistory) bool {
		return e.UserID == userID && e.RewardType == rewardType
	})
}

func (r *historyRepository) GetHistoryInRange(ctx context.Context, start, end time.Time) ([]domain.RewardHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RewardHistory, 0)
	for _, e := range r.entries {
		if e.Success && !e.AwardedAt.Before(start) && e.AwardedAt.Before(end) {
			out = append(out, e)
		}
	}
	sortHistoryAscending(out)
	return out, nil
}

func (r *historyRepository) GetHistoryByUserInRange(ctx context.Context, userID string, start, end time.Time) ([]domain.RewardHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RewardHistory, 0)
	for _, e := range r.entries {
		if e.UserID == userID && !e.AwardedAt.Before(start) && e.AwardedAt.Before(end) {
			out = append(out, e)
		}
	}
	sortHistoryAscending(out)
	return out, nil
}

// pageFiltered returns entries newest-first, paginated 1-based.
func (r *historyRepository) pageFiltered(page, pageSize int, keep func(domain.RewardHistory) bool) (*domain.HistoryPage, error) {
	if page < 1 || pageSize < 1 {
		return nil, fmt.Errorf("%w: page and pageSize must be positive", domain.ErrValidation)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := make([]domain.RewardHistory, 0)
	for _, e := range r.entries {
		if keep(e) {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].AwardedAt.After(matched[j].AwardedAt)
	})
	total := len(matched)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return &domain.HistoryPage{
		Entries:    matched[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}, nil
}

func sortHistoryAscending(entries []domain.RewardHistory) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AwardedAt.Before(entries[j].AwardedAt)
	})
}
