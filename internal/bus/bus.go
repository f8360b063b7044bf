// Package bus provides an in-process publish/subscribe channel for internal
// notifications emitted by the reward pipeline. Subscribers keep business
// metrics current and invalidate leaderboard cache entries.
package bus

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Type represents the type of a notification
type Type string

// Notification types published by the pipeline.
const (
	RewardGranted Type = "reward.granted"
	RewardDenied  Type = "reward.denied"
	LevelChanged  Type = "level.changed"
	WalletPosted  Type = "wallet.posted"
)

// EventSchemaVersion is the current notification schema version.
const EventSchemaVersion = "1.0"

// Event represents a generic notification on the bus
type Event struct {
	Version string `json:"version"`
	Type    Type   `json:"type"`
	Payload any    `json:"payload"`
}

// RewardGrantedPayloadV1 is the typed payload for reward grant notifications.
// CategoryID is the point category the grant actually landed in, which may
// differ from TargetID when the reward overrides its category.
type RewardGrantedPayloadV1 struct {
	UserID     string `json:"user_id"`
	RuleID     string `json:"rule_id"`
	RewardType string `json:"reward_type"`
	TargetID   string `json:"target_id"`
	CategoryID string `json:"category_id,omitempty"`
	Amount     int64  `json:"amount,omitempty"`
	Duplicate  bool   `json:"duplicate,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// LevelChangedPayloadV1 is the typed payload for level change notifications
type LevelChangedPayloadV1 struct {
	UserID     string `json:"user_id"`
	CategoryID string `json:"category_id"`
	OldLevelID string `json:"old_level_id,omitempty"`
	NewLevelID string `json:"new_level_id"`
	Timestamp  int64  `json:"timestamp"`
}

// WalletPostedPayloadV1 is the typed payload for wallet ledger notifications
type WalletPostedPayloadV1 struct {
	UserID          string `json:"user_id"`
	CategoryID      string `json:"category_id"`
	Amount          int64  `json:"amount"`
	TransactionType string `json:"transaction_type"`
	ReferenceID     string `json:"reference_id,omitempty"`
	Timestamp       int64  `json:"timestamp"`
}

// NewRewardGrantedEvent creates a reward grant notification with a type-safe payload
func NewRewardGrantedEvent(userID, ruleID, rewardType, targetID, categoryID string, amount int64, duplicate bool) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    RewardGranted,
		Payload: RewardGrantedPayloadV1{
			UserID:     userID,
			RuleID:     ruleID,
			RewardType: rewardType,
			TargetID:   targetID,
			CategoryID: categoryID,
			Amount:     amount,
			Duplicate:  duplicate,
			Timestamp:  time.Now().Unix(),
		},
	}
}

// NewLevelChangedEvent creates a level change notification
func NewLevelChangedEvent(userID, categoryID, oldLevelID, newLevelID string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    LevelChanged,
		Payload: LevelChangedPayloadV1{
			UserID:     userID,
			CategoryID: categoryID,
			OldLevelID: oldLevelID,
			NewLevelID: newLevelID,
			Timestamp:  time.Now().Unix(),
		},
	}
}

// NewWalletPostedEvent creates a wallet ledger notification
func NewWalletPostedEvent(userID, categoryID string, amount int64, txType, referenceID string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    WalletPosted,
		Payload: WalletPostedPayloadV1{
			UserID:          userID,
			CategoryID:      categoryID,
			Amount:          amount,
			TransactionType: txType,
			ReferenceID:     referenceID,
			Timestamp:       time.Now().Unix(),
		},
	}
}

// Handler is a function that handles a notification
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for the notification bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the notification bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes a notification to all subscribers synchronously. Handler
// errors are collected; publication continues past failures.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d handler(s) failed for %s: %v", len(errs), event.Type, errs)
	}
	return nil
}

// Subscribe registers a handler for a notification type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
