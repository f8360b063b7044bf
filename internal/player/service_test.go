package player

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osheron/meritum/internal/database/memory"
	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/repository"
)

type fakeCatalog struct{}

func (fakeCatalog) Badge(id string) (domain.Badge, bool) {
	if id == "first-login" {
		return domain.Badge{ID: id, Name: "First Login"}, true
	}
	return domain.Badge{}, false
}

func (fakeCatalog) Trophy(id string) (domain.Trophy, bool) {
	return domain.Trophy{ID: id, Name: "Champion"}, true
}

func (fakeCatalog) Levels() []domain.Level {
	return []domain.Level{
		{ID: "bronze", CategoryID: "xp", MinPoints: 0, Name: "Bronze"},
		{ID: "silver", CategoryID: "xp", MinPoints: 100, Name: "Silver"},
	}
}

func newFixture(t *testing.T) (Service, repository.UserState, repository.RewardHistory) {
	t.Helper()
	states := memory.NewUserStateRepository()
	history := memory.NewRewardHistoryRepository()
	return NewService(states, history, fakeCatalog{}), states, history
}

func TestGetProfile(t *testing.T) {
	svc, states, _ := newFixture(t)
	ctx := context.Background()

	state := domain.NewUserState("alice")
	state.PointsByCategory["xp"] = 150
	state.CurrentLevelByCategory["xp"] = "silver"
	state.AddBadge("first-login")
	state.AddBadge("unlisted-badge")
	state.AddTrophy("season-1")
	require.NoError(t, states.SaveUserState(ctx, state))

	profile, err := svc.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(150), profile.Points["xp"])

	require.Len(t, profile.Badges, 2)
	assert.Equal(t, "First Login", profile.Badges[0].Name)
	assert.Empty(t, profile.Badges[1].Name, "unknown badge keeps bare id")

	require.Len(t, profile.Trophies, 1)
	require.Len(t, profile.Levels, 1)
	assert.Equal(t, "silver", profile.Levels[0].LevelID)
	assert.Equal(t, int64(100), profile.Levels[0].MinPoints)
}

func TestGetProfileUnknownUser(t *testing.T) {
	svc, _, _ := newFixture(t)
	_, err := svc.GetProfile(context.Background(), "ghost")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetHistoryPagination(t *testing.T) {
	svc, _, history := newFixture(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, history.AppendHistory(ctx, domain.RewardHistory{
			ID:         fmt.Sprintf("entry-%d", i),
			UserID:     "alice",
			RewardType: domain.RewardPoints,
			Success:    true,
			AwardedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	page, err := svc.GetHistory(ctx, "alice", "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, page.TotalCount)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, "entry-4", page.Entries[0].ID, "newest first")

	page, err = svc.GetHistory(ctx, "alice", "", 3, 2)
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, "entry-0", page.Entries[0].ID)
}

func TestGetHistoryFiltersByType(t *testing.T) {
	svc, _, history := newFixture(t)
	ctx := context.Background()

	require.NoError(t, history.AppendHistory(ctx, domain.RewardHistory{
		ID: "p1", UserID: "alice", RewardType: domain.RewardPoints, Success: true, AwardedAt: time.Now().UTC(),
	}))
	require.NoError(t, history.AppendHistory(ctx, domain.RewardHistory{
		ID: "b1", UserID: "alice", RewardType: domain.RewardBadge, Success: true, AwardedAt: time.Now().UTC(),
	}))

	page, err := svc.GetHistory(ctx, "alice", domain.RewardBadge, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, "b1", page.Entries[0].ID)
}

func TestGetHistoryRejectsOversizePage(t *testing.T) {
	svc, _, _ := newFixture(t)
	_, err := svc.GetHistory(context.Background(), "alice", "", 1, MaxHistoryPageSize+1)
	require.ErrorIs(t, err, domain.ErrValidation)
}
