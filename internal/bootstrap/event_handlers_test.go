package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osheron/meritum/internal/bus"
)

type recordingBoardCache struct {
	calls []string
}

func (r *recordingBoardCache) InvalidateAllTime(_ context.Context, rewardType, categoryID string) {
	r.calls = append(r.calls, rewardType+"/"+categoryID)
}

func TestRewardGrantInvalidatesResolvedCategory(t *testing.T) {
	notifier := bus.NewMemoryBus()
	boards := &recordingBoardCache{}
	RegisterNotificationHandlers(notifier, boards)

	// A grant whose category was overridden invalidates the category the
	// points landed in, not the reward target.
	evt := bus.NewRewardGrantedEvent("user-1", "rule-1", "points", "xp", "coins", 10, false)
	require.NoError(t, notifier.Publish(context.Background(), evt))
	require.Len(t, boards.calls, 1)
	assert.Equal(t, "points/coins", boards.calls[0])

	// Without an override the target id is the category.
	evt = bus.NewRewardGrantedEvent("user-1", "rule-1", "points", "xp", "", 10, false)
	require.NoError(t, notifier.Publish(context.Background(), evt))
	require.Len(t, boards.calls, 2)
	assert.Equal(t, "points/xp", boards.calls[1])
}

func TestDuplicateGrantSkipsInvalidation(t *testing.T) {
	notifier := bus.NewMemoryBus()
	boards := &recordingBoardCache{}
	RegisterNotificationHandlers(notifier, boards)

	evt := bus.NewRewardGrantedEvent("user-1", "rule-1", "badge", "first-login", "", 0, true)
	require.NoError(t, notifier.Publish(context.Background(), evt))
	assert.Empty(t, boards.calls, "duplicate grants change no ranked score")
}
