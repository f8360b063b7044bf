// Package leaderboard builds ranked projections over user state and reward
// history, with a TTL'd LRU cache in front of generation.
package leaderboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/logger"
	"github.com/osheron/meritum/internal/metrics"
	"github.com/osheron/meritum/internal/repository"
)

// Catalog resolves level descriptors for the level projection.
type Catalog interface {
	Levels() []domain.Level
}

// UserContext is a window of entries centered on one user.
type UserContext struct {
	UserID  string                    `json:"userId"`
	Entries []domain.LeaderboardEntry `json:"entries"`
}

// Engine generates leaderboards. All-time projections read the current user
// aggregates; windowed projections re-aggregate the reward history inside
// UTC window bounds.
type Engine struct {
	states  repository.UserState
	history repository.RewardHistory
	catalog Catalog
	cache   *expirable.LRU[string, *board]
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	cacheSize int
	cacheTTL  time.Duration
}

// WithCacheSize overrides the cached-board capacity.
func WithCacheSize(size int) Option {
	return func(o *options) { o.cacheSize = size }
}

// WithCacheTTL overrides how long a cached board stays fresh.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) { o.cacheTTL = ttl }
}

// NewEngine creates a leaderboard engine.
func NewEngine(states repository.UserState, history repository.RewardHistory, catalog Catalog, opts ...Option) *Engine {
	o := options{cacheSize: DefaultCacheSize, cacheTTL: DefaultCacheTTL}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{
		states:  states,
		history: history,
		catalog: catalog,
		cache:   newCache(o.cacheSize, o.cacheTTL),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// GetLeaderboard returns one page of the ranked projection for the query.
// Pagination applies after the cached board, so page requests within the TTL
// share one generation.
func (e *Engine) GetLeaderboard(ctx context.Context, query domain.LeaderboardQuery) (*domain.LeaderboardResult, error) {
	query = query.Normalize(e.now())
	if err := query.Validate(); err != nil {
		return nil, err
	}

	b, err := e.loadBoard(ctx, query)
	if err != nil {
		return nil, err
	}

	result := &domain.LeaderboardResult{
		Query:       query,
		TotalCount:  len(b.entries),
		GeneratedAt: e.now(),
	}
	if len(b.entries) > 0 {
		top := b.entries[0]
		result.TopEntry = &top
	}

	offset := (query.Page - 1) * query.PageSize
	if offset < len(b.entries) {
		end := offset + query.PageSize
		if end > len(b.entries) {
			end = len(b.entries)
		}
		result.Entries = append([]domain.LeaderboardEntry(nil), b.entries[offset:end]...)
	}
	return result, nil
}

// GetUserRank returns the user's entry in the projection, or
// domain.ErrNotFound when the user has no positive score in it.
func (e *Engine) GetUserRank(ctx context.Context, query domain.LeaderboardQuery, userID string) (*domain.LeaderboardEntry, error) {
	query = query.Normalize(e.now())
	if err := query.Validate(); err != nil {
		return nil, err
	}

	b, err := e.loadBoard(ctx, query)
	if err != nil {
		return nil, err
	}
	idx, ok := b.rankByUser[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user %s has no rank in this leaderboard", domain.ErrNotFound, userID)
	}
	entry := b.entries[idx]
	return &entry, nil
}

// GetUserContext returns up to contextSize entries around the user, with
// floor(contextSize/2) entries above them when available.
func (e *Engine) GetUserContext(ctx context.Context, query domain.LeaderboardQuery, userID string, contextSize int) (*UserContext, error) {
	query = query.Normalize(e.now())
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if contextSize <= 0 {
		contextSize = 5
	}

	b, err := e.loadBoard(ctx, query)
	if err != nil {
		return nil, err
	}
	idx, ok := b.rankByUser[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user %s has no rank in this leaderboard", domain.ErrNotFound, userID)
	}

	start := idx - contextSize/2
	if start < 0 {
		start = 0
	}
	end := start + contextSize
	if end > len(b.entries) {
		end = len(b.entries)
		if start = end - contextSize; start < 0 {
			start = 0
		}
	}
	return &UserContext{
		UserID:  userID,
		Entries: append([]domain.LeaderboardEntry(nil), b.entries[start:end]...),
	}, nil
}

// Refresh regenerates the board for the query and replaces the cached copy.
func (e *Engine) Refresh(ctx context.Context, query domain.LeaderboardQuery) error {
	query = query.Normalize(e.now())
	if err := query.Validate(); err != nil {
		return err
	}
	b, err := e.generate(ctx, query)
	if err != nil {
		return err
	}
	e.cache.Add(cacheKey(query), b)
	logger.FromContext(ctx).Info(LogMsgCacheRefreshed, "key", cacheKey(query))
	return nil
}

// Clear drops every cached board.
func (e *Engine) Clear(ctx context.Context) {
	e.cache.Purge()
	logger.FromContext(ctx).Info(LogMsgCacheCleared)
}

// InvalidateAllTime drops cached all-time boards affected by a reward of the
// given type. Windowed boards age out via TTL; only the long-lived all-time
// projections are invalidated eagerly.
func (e *Engine) InvalidateAllTime(ctx context.Context, rewardType, categoryID string) {
	var prefixes []string
	switch rewardType {
	case domain.RewardPoints, domain.RewardPenalty, domain.RewardLevel:
		prefixes = []string{
			fmt.Sprintf("%s:%s:%s:", domain.LeaderboardPoints, categoryID, domain.TimeRangeAllTime),
			fmt.Sprintf("%s:%s:%s:", domain.LeaderboardLevel, categoryID, domain.TimeRangeAllTime),
		}
	case domain.RewardBadge:
		prefixes = []string{fmt.Sprintf("%s::%s:", domain.LeaderboardBadges, domain.TimeRangeAllTime)}
	case domain.RewardTrophy:
		prefixes = []string{fmt.Sprintf("%s::%s:", domain.LeaderboardTrophies, domain.TimeRangeAllTime)}
	default:
		return
	}

	dropped := 0
	for _, key := range e.cache.Keys() {
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) {
				e.cache.Remove(key)
				dropped++
			}
		}
	}
	if dropped > 0 {
		logger.FromContext(ctx).Debug(LogMsgCacheInvalidated, "reward_type", rewardType, "category", categoryID, "dropped", dropped)
	}
}

func (e *Engine) loadBoard(ctx context.Context, query domain.LeaderboardQuery) (*board, error) {
	key := cacheKey(query)
	if b, ok := e.cache.Get(key); ok {
		metrics.LeaderboardCacheHits.Inc()
		logger.FromContext(ctx).Debug(LogMsgCacheHit, "key", key)
		return b, nil
	}
	metrics.LeaderboardCacheMisses.Inc()

	b, err := e.generate(ctx, query)
	if err != nil {
		return nil, err
	}
	e.cache.Add(key, b)
	return b, nil
}

// generate builds the full ranked board for the query.
func (e *Engine) generate(ctx context.Context, query domain.LeaderboardQuery) (*board, error) {
	start := time.Now()

	var (
		scores map[string]int64
		err    error
	)
	if windowStart, windowEnd, windowed := windowBounds(query.TimeRange, query.ReferenceDate); windowed {
		scores, err = e.windowedScores(ctx, query, windowStart, windowEnd)
	} else {
		scores, err = e.allTimeScores(ctx, query)
	}
	if err != nil {
		return nil, err
	}

	b := rank(scores, query, e.catalog)

	elapsed := time.Since(start)
	metrics.LeaderboardGenDuration.Observe(elapsed.Seconds())
	logger.FromContext(ctx).Debug(LogMsgGenerated,
		"key", cacheKey(query), "entries", len(b.entries), "duration_ms", elapsed.Milliseconds())
	return b, nil
}

// allTimeScores projects current user aggregates.
func (e *Engine) allTimeScores(ctx context.Context, query domain.LeaderboardQuery) (map[string]int64, error) {
	states, err := e.states.ListUserStates(ctx)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]int64, len(states))
	for _, state := range states {
		switch query.Type {
		case domain.LeaderboardPoints:
			scores[state.UserID] = state.Points(query.Category)
		case domain.LeaderboardBadges:
			scores[state.UserID] = int64(len(state.BadgeIDs))
		case domain.LeaderboardTrophies:
			scores[state.UserID] = int64(len(state.TrophyIDs))
		case domain.LeaderboardLevel:
			scores[state.UserID] = state.Points(query.Category)
		}
	}
	return scores, nil
}

// windowedScores re-aggregates successful reward history inside the window:
// signed point sums for points/level, distinct grant counts for
// badges/trophies (duplicate grants do not count).
func (e *Engine) windowedScores(ctx context.Context, query domain.LeaderboardQuery, start, end time.Time) (map[string]int64, error) {
	entries, err := e.history.GetHistoryInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]int64)
	for _, entry := range entries {
		switch query.Type {
		case domain.LeaderboardPoints, domain.LeaderboardLevel:
			if entry.RewardType != domain.RewardPoints && entry.RewardType != domain.RewardPenalty {
				continue
			}
			category, _ := entry.Details[domain.HistoryDetailCategory].(string)
			if category != query.Category {
				continue
			}
			scores[entry.UserID] += detailAmount(entry)
		case domain.LeaderboardBadges:
			if entry.RewardType != domain.RewardBadge || isDuplicate(entry) {
				continue
			}
			scores[entry.UserID]++
		case domain.LeaderboardTrophies:
			if entry.RewardType != domain.RewardTrophy || isDuplicate(entry) {
				continue
			}
			scores[entry.UserID]++
		}
	}
	return scores, nil
}

// rank sorts scores descending with user-id tie-break. Ties share a rank and
// the next distinct score resumes at its positional rank, so two users tied
// at 1 are followed by rank 3. Users with score <= 0 are omitted.
func rank(scores map[string]int64, query domain.LeaderboardQuery, catalog Catalog) *board {
	entries := make([]domain.LeaderboardEntry, 0, len(scores))
	for userID, score := range scores {
		if score <= 0 {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{UserID: userID, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].UserID < entries[j].UserID
	})

	var levels []domain.Level
	if query.Type == domain.LeaderboardLevel && catalog != nil {
		levels = catalog.Levels()
	}

	rankByUser := make(map[string]int, len(entries))
	current := 0
	var prevScore int64
	for i := range entries {
		if i == 0 || entries[i].Score != prevScore {
			current = i + 1
			prevScore = entries[i].Score
		}
		entries[i].Rank = current
		if levels != nil {
			if level, ok := domain.LevelForPoints(levels, query.Category, entries[i].Score); ok {
				entries[i].LevelID = level.ID
			}
		}
		rankByUser[entries[i].UserID] = i
	}
	return &board{entries: entries, rankByUser: rankByUser}
}

func detailAmount(entry domain.RewardHistory) int64 {
	switch v := entry.Details[domain.HistoryDetailAmount].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func isDuplicate(entry domain.RewardHistory) bool {
	dup, _ := entry.Details[domain.HistoryDetailDuplicate].(bool)
	return dup
}
