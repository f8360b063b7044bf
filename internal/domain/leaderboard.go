package domain

import (
	"fmt"
	"time"
)

// LeaderboardType selects the score projection.
type LeaderboardType string

// Leaderboard types.
const (
	LeaderboardPoints   LeaderboardType = "points"
	LeaderboardBadges   LeaderboardType = "badges"
	LeaderboardTrophies LeaderboardType = "trophies"
	LeaderboardLevel    LeaderboardType = "level"
)

// TimeRange selects the aggregation window.
type TimeRange string

// Leaderboard time ranges.
const (
	TimeRangeDaily   TimeRange = "daily"
	TimeRangeWeekly  TimeRange = "weekly"
	TimeRangeMonthly TimeRange = "monthly"
	TimeRangeAllTime TimeRange = "alltime"
)

// Pagination bounds for leaderboard queries.
const (
	LeaderboardMinPageSize = 1
	LeaderboardMaxPageSize = 1000
)

// LeaderboardQuery identifies one ranked projection.
type LeaderboardQuery struct {
	Type          LeaderboardType `json:"type"`
	Category      string          `json:"category,omitempty"`
	TimeRange     TimeRange       `json:"timeRange"`
	ReferenceDate time.Time       `json:"referenceDate"`
	Page          int             `json:"page"`
	PageSize      int             `json:"pageSize"`
}

// Normalize fills defaults: all-time range, reference date of now, first page,
// 50 entries per page.
func (q LeaderboardQuery) Normalize(now time.Time) LeaderboardQuery {
	if q.TimeRange == "" {
		q.TimeRange = TimeRangeAllTime
	}
	if q.ReferenceDate.IsZero() {
		q.ReferenceDate = now.UTC()
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = 50
	}
	return q
}

// Validate enforces the query invariants: points and level projections require
// a category, badge and trophy projections forbid one, and pagination must be
// within bounds.
func (q LeaderboardQuery) Validate() error {
	switch q.Type {
	case LeaderboardPoints, LeaderboardLevel:
		if q.Category == "" {
			return fmt.Errorf("%w: %s leaderboard requires a category", ErrInvalidQuery, q.Type)
		}
	case LeaderboardBadges, LeaderboardTrophies:
		if q.Category != "" {
			return fmt.Errorf("%w: %s leaderboard does not accept a category", ErrInvalidQuery, q.Type)
		}
	default:
		return fmt.Errorf("%w: unknown leaderboard type %q", ErrInvalidQuery, q.Type)
	}
	switch q.TimeRange {
	case TimeRangeDaily, TimeRangeWeekly, TimeRangeMonthly, TimeRangeAllTime:
	default:
		return fmt.Errorf("%w: unknown time range %q", ErrInvalidQuery, q.TimeRange)
	}
	if q.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1", ErrInvalidQuery)
	}
	if q.PageSize < LeaderboardMinPageSize || q.PageSize > LeaderboardMaxPageSize {
		return fmt.Errorf("%w: pageSize must be in [%d,%d]", ErrInvalidQuery, LeaderboardMinPageSize, LeaderboardMaxPageSize)
	}
	return nil
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Rank    int    `json:"rank"`
	UserID  string `json:"userId"`
	Score   int64  `json:"score"`
	LevelID string `json:"levelId,omitempty"`
}

// LeaderboardResult is one page of a ranked projection.
type LeaderboardResult struct {
	Query       LeaderboardQuery   `json:"query"`
	Entries     []LeaderboardEntry `json:"entries"`
	TotalCount  int                `json:"totalCount"`
	TopEntry    *LeaderboardEntry  `json:"topEntry,omitempty"`
	GeneratedAt time.Time          `json:"generatedAt"`
}
