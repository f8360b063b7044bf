package postgres

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/osheron/meritum/internal/database"
	"github.com/osheron/meritum/internal/domain"
)

var testDBConnString string

func TestMain(m *testing.M) {
	flag.Parse()

	var terminate func()

	if !testing.Short() {
		ctx := context.Background()
		var connStr string
		connStr, terminate = setupContainer(ctx)
		testDBConnString = connStr
	}

	code := m.Run()

	if terminate != nil {
		terminate()
	}

	os.Exit(code)
}

func setupContainer(ctx context.Context) (string, func()) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic in setupContainer: %v\n", r)
		}
	}()

	container, err := pgcontainer.Run(ctx,
		"postgres:15-alpine",
		pgcontainer.WithDatabase("testdb"),
		pgcontainer.WithUsername("testuser"),
		pgcontainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		fmt.Printf("WARNING: Failed to start postgres container: %v\n", err)
		return "", func() {}
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Printf("WARNING: Failed to get connection string: %v\n", err)
		container.Terminate(ctx)
		return "", func() {}
	}

	if err := database.RunMigrations(ctx, connStr); err != nil {
		fmt.Printf("WARNING: Failed to run migrations: %v\n", err)
		container.Terminate(ctx)
		return "", func() {}
	}

	return connStr, func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Printf("Failed to terminate container: %v\n", err)
		}
	}
}

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if testDBConnString == "" {
		t.Skip("Skipping integration test: database not available")
	}
	pool, err := database.NewPool(testDBConnString, 5, time.Minute, 5*time.Minute)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestEventRepositoryRoundTrip(t *testing.T) {
	pool := setupPool(t)
	repo := NewEventRepository(pool)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		evt := domain.NewEvent(fmt.Sprintf("evt-rt-%d", i), "user.login", "user-rt",
			base.Add(time.Duration(i)*time.Minute), map[string]any{"seq": i})
		require.NoError(t, repo.StoreEvent(ctx, evt))
	}

	// Duplicate ids are rejected
	err := repo.StoreEvent(ctx, domain.NewEvent("evt-rt-0", "user.login", "user-rt", base, nil))
	require.ErrorIs(t, err, domain.ErrValidation)

	got, err := repo.GetEventByID(ctx, "evt-rt-3")
	require.NoError(t, err)
	assert.Equal(t, "user-rt", got.UserID)
	assert.EqualValues(t, 3, got.Attributes["seq"])

	_, err = repo.GetEventByID(ctx, "evt-rt-missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	// Page of 2, offset 0 over the newest-first sequence, returned oldest-first
	page, err := repo.GetEventsByUser(ctx, "user-rt", 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "evt-rt-3", page[0].ID)
	assert.Equal(t, "evt-rt-4", page[1].ID)

	count, err := repo.CountEventsByUser(ctx, "user-rt")
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	recent, err := repo.GetRecentEventsByUser(ctx, "user-rt", 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.True(t, recent[0].OccurredAt.Before(recent[2].OccurredAt))
}

func TestEventRepositoryRetention(t *testing.T) {
	pool := setupPool(t)
	repo := NewEventRepository(pool)
	ctx := context.Background()

	old := domain.NewEvent("evt-old", "user.login", "user-ret", time.Now().UTC().Add(-48*time.Hour), nil)
	fresh := domain.NewEvent("evt-fresh", "user.login", "user-ret", time.Now().UTC(), nil)
	require.NoError(t, repo.StoreEvent(ctx, old))
	require.NoError(t, repo.StoreEvent(ctx, fresh))

	removed, err := repo.DeleteEventsBefore(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, int64(1))

	_, err = repo.GetEventByID(ctx, "evt-old")
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetEventByID(ctx, "evt-fresh")
	require.NoError(t, err)
}

func TestUserStateRepositoryPersistsAggregates(t *testing.T) {
	pool := setupPool(t)
	repo := NewUserStateRepository(pool)
	ctx := context.Background()

	state, err := repo.GetOrCreateUserState(ctx, "user-state")
	require.NoError(t, err)
	state.PointsByCategory["xp"] = 150
	state.AddBadge("first-login")
	state.CurrentLevelByCategory["xp"] = "silver"
	require.NoError(t, repo.SaveUserState(ctx, state))

	got, err := repo.GetUserState(ctx, "user-state")
	require.NoError(t, err)
	assert.EqualValues(t, 150, got.Points("xp"))
	assert.True(t, got.HasBadge("first-login"))
	assert.Equal(t, "silver", got.CurrentLevelByCategory["xp"])

	_, err = repo.GetUserState(ctx, "user-ghost")
	require.ErrorIs(t, err, domain.ErrNotFound)

	states, err := repo.ListUserStates(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, states)
}

func TestRuleRepositoryTriggerLookup(t *testing.T) {
	pool := setupPool(t)
	repo := NewRuleRepository(pool)
	ctx := context.Background()
	now := time.Now().UTC()

	rule := domain.Rule{
		ID:       "rule-pg-login",
		Name:     "Login XP",
		Triggers: []string{"User.Login"},
		Conditions: []domain.Condition{
			{Type: domain.ConditionAlwaysTrue},
		},
		Rewards: []domain.Reward{
			{Type: domain.RewardPoints, Amount: 10, Parameters: map[string]any{"category": "xp"}},
		},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.SaveRule(ctx, rule))

	// Trigger lookup is case-insensitive
	matched, err := repo.ListRulesByTrigger(ctx, "user.login")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "rule-pg-login", matched[0].ID)

	// Deactivated rules drop out of trigger lookup
	rule.IsActive = false
	rule.UpdatedAt = now.Add(time.Second)
	require.NoError(t, repo.SaveRule(ctx, rule))

	matched, err = repo.ListRulesByTrigger(ctx, "user.login")
	require.NoError(t, err)
	assert.Empty(t, matched)

	require.NoError(t, repo.DeleteRule(ctx, "rule-pg-login"))
	require.ErrorIs(t, repo.DeleteRule(ctx, "rule-pg-login"), domain.ErrNotFound)
}

func TestHistoryRepositoryIdempotencyKey(t *testing.T) {
	pool := setupPool(t)
	repo := NewRewardHistoryRepository(pool)
	ctx := context.Background()

	entry := domain.RewardHistory{
		ID:         "rule-x:evt-x:0",
		UserID:     "user-hist",
		RewardType: string(domain.RewardPoints),
		Details:    map[string]any{"category": "xp", "amount": 10},
		Success:    true,
		AwardedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.AppendHistory(ctx, entry))

	exists, err := repo.HistoryExists(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	// Re-appending the same id fails so the applier can detect replays
	require.ErrorIs(t, repo.AppendHistory(ctx, entry), domain.ErrValidation)

	page, err := repo.GetHistoryByUser(ctx, "user-hist", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)
}

func TestWalletRepositoryAtomicPosting(t *testing.T) {
	pool := setupPool(t)
	repo := NewWalletRepository(pool)
	ctx := context.Background()

	post := func(id string, amount int64, allowNegative bool) error {
		return repo.PostTransaction(ctx, domain.WalletTransaction{
			ID:         id,
			UserID:     "user-wal",
			CategoryID: "coins",
			Amount:     amount,
			Type:       domain.TransactionEarned,
			CreatedAt:  time.Now().UTC(),
		}, allowNegative)
	}

	require.NoError(t, post("tx-wal-1", 100, false))

	// Overdraft is rejected and leaves no ledger entry
	err := post("tx-wal-2", -150, false)
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	wallet, err := repo.GetWallet(ctx, "user-wal", "coins")
	require.NoError(t, err)
	assert.EqualValues(t, 100, wallet.Balance)

	txs, err := repo.GetTransactions(ctx, "user-wal", "coins", 10)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "tx-wal-1", txs[0].ID)
}

func TestWalletRepositoryTransferLifecycle(t *testing.T) {
	pool := setupPool(t)
	repo := NewWalletRepository(pool)
	ctx := context.Background()
	now := time.Now().UTC()

	transfer := domain.WalletTransfer{
		ID:         "tr-pg-1",
		FromUserID: "user-a",
		ToUserID:   "user-b",
		CategoryID: "coins",
		Amount:     25,
		Status:     domain.TransferPending,
		CreatedAt:  now,
	}
	require.NoError(t, repo.CreateTransfer(ctx, transfer))

	completed := now.Add(time.Second)
	transfer.Status = domain.TransferCompleted
	transfer.CompletedAt = &completed
	require.NoError(t, repo.UpdateTransfer(ctx, transfer))

	got, err := repo.GetTransferByID(ctx, "tr-pg-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TransferCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)

	_, err = repo.GetTransferByID(ctx, "tr-pg-missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
