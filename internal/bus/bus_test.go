package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBusDeliversToSubscribers(t *testing.T) {
	b := NewMemoryBus()
	var got []Event
	b.Subscribe(RewardGranted, func(ctx context.Context, event Event) error {
		got = append(got, event)
		return nil
	})

	event := NewRewardGrantedEvent("user-1", "rule-1", "points", "xp", "bonus-xp", 10, false)
	require.NoError(t, b.Publish(context.Background(), event))

	require.Len(t, got, 1)
	assert.Equal(t, EventSchemaVersion, got[0].Version)
	payload, ok := got[0].Payload.(RewardGrantedPayloadV1)
	require.True(t, ok)
	assert.Equal(t, "user-1", payload.UserID)
	assert.Equal(t, "bonus-xp", payload.CategoryID)
	assert.Equal(t, int64(10), payload.Amount)
}

func TestMemoryBusIgnoresUnsubscribedTypes(t *testing.T) {
	b := NewMemoryBus()
	called := false
	b.Subscribe(RewardGranted, func(ctx context.Context, event Event) error {
		called = true
		return nil
	})

	require.NoError(t, b.Publish(context.Background(), NewLevelChangedEvent("user-1", "xp", "", "bronze")))
	assert.False(t, called)
}

func TestMemoryBusContinuesPastFailingHandler(t *testing.T) {
	b := NewMemoryBus()
	var delivered int
	b.Subscribe(WalletPosted, func(ctx context.Context, event Event) error {
		return errors.New("sink unavailable")
	})
	b.Subscribe(WalletPosted, func(ctx context.Context, event Event) error {
		delivered++
		return nil
	})

	err := b.Publish(context.Background(), NewWalletPostedEvent("user-1", "coins", -5, "Spent", ""))
	require.Error(t, err)
	assert.Equal(t, 1, delivered, "later handlers still run after a failure")
}
