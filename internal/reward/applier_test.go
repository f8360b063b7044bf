package reward

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osheron/meritum/internal/bus"
	"github.com/osheron/meritum/internal/database/memory"
	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/repository"
)

type fakeCatalog struct {
	categories map[string]domain.PointCategory
	levels     []domain.Level
}

func (f fakeCatalog) Category(id string) (domain.PointCategory, bool) {
	c, ok := f.categories[id]
	return c, ok
}

func (f fakeCatalog) Badge(id string) (domain.Badge, bool) {
	return domain.Badge{ID: id}, true
}

func (f fakeCatalog) Trophy(id string) (domain.Trophy, bool) {
	return domain.Trophy{ID: id}, true
}

func (f fakeCatalog) Levels() []domain.Level { return f.levels }

func testCatalog() fakeCatalog {
	return fakeCatalog{
		categories: map[string]domain.PointCategory{
			"xp": {
				ID:          "xp",
				Aggregation: domain.AggregationSum,
			},
			"coins": {
				ID:          "coins",
				Aggregation: domain.AggregationSum,
				IsSpendable: true,
			},
		},
		levels: []domain.Level{
			{ID: "bronze", CategoryID: "xp", MinPoints: 0},
			{ID: "silver", CategoryID: "xp", MinPoints: 100},
			{ID: "gold", CategoryID: "xp", MinPoints: 500},
		},
	}
}

type applierFixture struct {
	applier *Applier
	states  repository.UserState
	wallets repository.Wallet
	history repository.RewardHistory
	bus     *bus.MemoryBus
}

func newApplierFixture(t *testing.T) applierFixture {
	t.Helper()
	states := memory.NewUserStateRepository()
	wallets := memory.NewWalletRepository()
	history := memory.NewRewardHistoryRepository()
	notifier := bus.NewMemoryBus()
	a := NewApplier(states, wallets, history, testCatalog(), notifier)
	a.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return applierFixture{applier: a, states: states, wallets: wallets, history: history, bus: notifier}
}

func pointsInstruction(userID, ruleID, eventID string, amount int64, index int) domain.RewardInstruction {
	return domain.RewardInstruction{
		RuleID:      ruleID,
		EventID:     eventID,
		UserID:      userID,
		RewardIndex: index,
		Reward:      domain.Reward{Type: domain.RewardPoints, TargetID: "xp", Amount: amount},
	}
}

func TestApplyPointsCreditsAndLevels(t *testing.T) {
	fx := newApplierFixture(t)
	ctx := context.Background()

	err := fx.applier.Apply(ctx, []domain.RewardInstruction{pointsInstruction("alice", "rule-1", "evt-1", 150, 0)})
	require.NoError(t, err)

	state, err := fx.states.GetUserState(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(150), state.Points("xp"))
	assert.Equal(t, "silver", state.CurrentLevelByCategory["xp"])

	page, err := fx.history.GetHistoryByUser(ctx, "alice", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.True(t, page.Entries[0].Success)
	assert.Equal(t, "rule-1:evt-1:0", page.Entries[0].ID)
}

func TestApplyIsIdempotentOnReplay(t *testing.T) {
	fx := newApplierFixture(t)
	ctx := context.Background()

	in := pointsInstruction("alice", "rule-1", "evt-1", 50, 0)
	require.NoError(t, fx.applier.Apply(ctx, []domain.RewardInstruction{in}))
	require.NoError(t, fx.applier.Apply(ctx, []domain.RewardInstruction{in}))

	state, err := fx.states.GetUserState(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(50), state.Points("xp"), "replay must not double-credit")

	page, err := fx.history.GetHistoryByUser(ctx, "alice", 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Entries, 1, "replay must not add a second history entry")
}

func TestApplyBadgeDuplicateIsSuccessfulNoOp(t *testing.T) {
	fx := newApplierFixture(t)
	ctx := context.Background()

	badge := func(eventID string) domain.RewardInstruction {
		return domain.RewardInstruction{
			RuleID:  "rule-badge",
			EventID: eventID,
			UserID:  "bob",
			Reward:  domain.Reward{Type: domain.RewardBadge, TargetID: "first-login"},
		}
	}

	require.NoError(t, fx.applier.Apply(ctx, []domain.RewardInstruction{badge("evt-1")}))
	require.NoError(t, fx.applier.Apply(ctx, []domain.RewardInstruction{badge("evt-2")}))

	state, err := fx.states.GetUserState(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"first-login"}, state.BadgeIDs)

	page, err := fx.history.GetHistoryByUser(ctx, "bob", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	for _, e := range page.Entries {
		assert.True(t, e.Success)
	}
	// Entries are newest first: the second grant carries the duplicate marker.
	assert.Equal(t, true, page.Entries[0].Details[domain.HistoryDetailDuplicate])
	_, hasDup := page.Entries[1].Details[domain.HistoryDetailDuplicate]
	assert.False(t, hasDup)
}

func TestApplyPenaltyBelowZeroRejected(t *testing.T) {
	fx := newApplierFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.applier.Apply(ctx, []domain.RewardInstruction{pointsInstruction("carol", "rule-1", "evt-1", 30, 0)}))

	penalty := domain.RewardInstruction{
		RuleID:  "rule-penalty",
		EventID: "evt-2",
		UserID:  "carol",
		Reward:  domain.Reward{Type: domain.RewardPenalty, TargetID: "xp", Amount: 100},
	}
	require.NoError(t, fx.applier.Apply(ctx, []domain.RewardInstruction{penalty}))

	state, err := fx.states.GetUserState(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, int64(30), state.Points("xp"), "rejected penalty must not mutate state")

	page, err := fx.history.GetHistoryByUser(ctx, "carol", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.False(t, page.Entries[0].Success)
	assert.Equal(t, ReasonInsufficientBalance, page.Entries[0].FailureReason)
}

func TestApplyPenaltyDebitsPoints(t *testing.T) {
	fx := newApplierFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.applier.Apply(ctx, []domain.RewardInstruction{pointsInstruction("dave", "rule-1", "evt-1", 200, 0)}))

	penalty := domain.RewardInstruction{
		RuleID:  "rule-penalty",
		EventID: "evt-2",
		UserID:  "dave",
		Reward:  domain.Reward{Type: domain.RewardPenalty, TargetID: "xp", Amount: 150},
	}
	require.NoError(t, fx.applier.Apply(ctx, []domain.RewardInstruction{penalty}))

	state, err := fx.states.GetUserState(ctx, "dave")
	require.NoError(t, err)
	assert.Equal(t, int64(50), state.Points("xp"))
	assert.Equal(t, "bronze", state.CurrentLevelByCategory["xp"], "level recomputed after penalty")
}

func TestApplySpendableCategoryPostsWalletLeg(t *testing.T) {
	fx := newApplierFixture(t)
	ctx := context.Background()

	in := domain.RewardInstruction{
		RuleID:  "rule-coins",
		EventID: "evt-1",
		UserID:  "erin",
		Reward:  domain.Reward{Type: domain.RewardPoints, TargetID: "coins", Amount: 25},
	}
	require.NoError(t, fx.applier.Apply(ctx, []domain.RewardInstruction{in}))

	wallet, err := fx.wallets.GetWallet(ctx, "erin", "coins")
	require.NoError(t, err)
	assert.Equal(t, int64(25), wallet.Balance)

	txs, err := fx.wallets.GetTransactions(ctx, "erin", "coins", 10)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TransactionEarned, txs[0].Type)
	assert.Equal(t, "rule-coins:evt-1:0", txs[0].ReferenceID)
}

func TestApplyUnknownCategoryRecordsFailure(t *testing.T) {
	fx := newApplierFixture(t)
	ctx := context.Background()

	in := domain.RewardInstruction{
		RuleID:  "rule-bad",
		EventID: "evt-1",
		UserID:  "frank",
		Reward:  domain.Reward{Type: domain.RewardPoints, TargetID: "nope", Amount: 10},
	}
	require.NoError(t, fx.applier.Apply(ctx, []domain.RewardInstruction{in}))

	page, err := fx.history.GetHistoryByUser(ctx, "frank", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.False(t, page.Entries[0].Success)
}

func TestApplyMultiplierScalesAmount(t *testing.T) {
	fx := newApplierFixture(t)
	ctx := context.Background()

	in := domain.RewardInstruction{
		RuleID:  "rule-multi",
		EventID: "evt-1",
		UserID:  "gina",
		Reward: domain.Reward{
			Type:       domain.RewardPoints,
			TargetID:   "xp",
			Amount:     10,
			Parameters: map[string]any{domain.RewardParamMultiplier: 2.5},
		},
	}
	require.NoError(t, fx.applier.Apply(ctx, []domain.RewardInstruction{in}))

	state, err := fx.states.GetUserState(ctx, "gina")
	require.NoError(t, err)
	assert.Equal(t, int64(25), state.Points("xp"))
}

func TestApplyPublishesResolvedCategory(t *testing.T) {
	fx := newApplierFixture(t)
	ctx := context.Background()

	var grants []bus.RewardGrantedPayloadV1
	fx.bus.Subscribe(bus.RewardGranted, func(_ context.Context, e bus.Event) error {
		grants = append(grants, e.Payload.(bus.RewardGrantedPayloadV1))
		return nil
	})

	// The category parameter overrides the target; the notification must
	// carry the category the points actually landed in.
	in := domain.RewardInstruction{
		RuleID:  "rule-override",
		EventID: "evt-1",
		UserID:  "ivy",
		Reward: domain.Reward{
			Type:       domain.RewardPoints,
			TargetID:   "xp",
			Amount:     10,
			Parameters: map[string]any{domain.RewardParamCategory: "coins"},
		},
	}
	require.NoError(t, fx.applier.Apply(ctx, []domain.RewardInstruction{in}))

	require.Len(t, grants, 1)
	assert.Equal(t, "xp", grants[0].TargetID)
	assert.Equal(t, "coins", grants[0].CategoryID)

	state, err := fx.states.GetUserState(ctx, "ivy")
	require.NoError(t, err)
	assert.Equal(t, int64(10), state.Points("coins"))
	assert.Equal(t, int64(0), state.Points("xp"))
}

func TestApplyPublishesLevelChangeNotification(t *testing.T) {
	fx := newApplierFixture(t)
	ctx := context.Background()

	var changes []bus.LevelChangedPayloadV1
	fx.bus.Subscribe(bus.LevelChanged, func(_ context.Context, e bus.Event) error {
		changes = append(changes, e.Payload.(bus.LevelChangedPayloadV1))
		return nil
	})

	require.NoError(t, fx.applier.Apply(ctx, []domain.RewardInstruction{pointsInstruction("hana", "rule-1", "evt-1", 600, 0)}))

	require.Len(t, changes, 1)
	assert.Equal(t, "gold", changes[0].NewLevelID)
	assert.Equal(t, "hana", changes[0].UserID)
}
