package leaderboard

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osheron/meritum/internal/domain"
)

// board is a fully ranked, unpaginated projection held in the cache.
type board struct {
	entries []domain.LeaderboardEntry
	// rankByUser indexes the same entries for O(1) user lookups.
	rankByUser map[string]int
}

// cacheKey identifies one cached board. The reference date is truncated to
// day precision so every query inside the same window shares an entry.
func cacheKey(q domain.LeaderboardQuery) string {
	return fmt.Sprintf("%s:%s:%s:%s", q.Type, q.Category, q.TimeRange, q.ReferenceDate.UTC().Format("2006-01-02"))
}

func newCache(size int, ttl time.Duration) *expirable.LRU[string, *board] {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return expirable.NewLRU[string, *board](size, nil, ttl)
}
