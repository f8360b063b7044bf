package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Validation errors
	ErrMsgValidation      = "validation failed"
	ErrMsgEventTypeEmpty  = "eventType must not be empty"
	ErrMsgUserIDEmpty     = "userId must not be empty"
	ErrMsgEventIDEmpty    = "event id must not be empty"

	// Lookup errors
	ErrMsgNotFound = "not found"

	// Queue errors
	ErrMsgQueueFull   = "event queue is full"
	ErrMsgQueueClosed = "event queue is closed"

	// Rule errors
	ErrMsgInvalidRuleConfig = "invalid rule configuration"

	// Wallet errors
	ErrMsgInsufficientBalance = "insufficient balance"
	ErrMsgTransferState       = "invalid transfer state transition"

	// Storage errors
	ErrMsgRepository = "repository error"

	// Leaderboard errors
	ErrMsgInvalidQuery = "invalid leaderboard query"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// ErrValidation indicates caller input failed constraint checks.
	ErrValidation = errors.New(ErrMsgValidation)

	// ErrNotFound indicates a referenced entity is absent.
	ErrNotFound = errors.New(ErrMsgNotFound)

	// ErrQueueFull indicates ingestion was rejected due to back-pressure.
	ErrQueueFull = errors.New(ErrMsgQueueFull)

	// ErrQueueClosed indicates the queue no longer accepts events.
	ErrQueueClosed = errors.New(ErrMsgQueueClosed)

	// ErrInvalidRuleConfig indicates a malformed rule, condition, or reward.
	ErrInvalidRuleConfig = errors.New(ErrMsgInvalidRuleConfig)

	// ErrInsufficientBalance indicates a wallet invariant would be violated.
	ErrInsufficientBalance = errors.New(ErrMsgInsufficientBalance)

	// ErrTransferState indicates an invalid transfer state transition.
	ErrTransferState = errors.New(ErrMsgTransferState)

	// ErrRepository indicates an underlying store failure.
	ErrRepository = errors.New(ErrMsgRepository)

	// ErrInvalidQuery indicates an invalid leaderboard query combination.
	ErrInvalidQuery = errors.New(ErrMsgInvalidQuery)
)
