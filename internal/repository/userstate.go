package repository

import (
	"context"

	"github.com/osheron/meritum/internal/domain"
)

// UserState defines the interface for user aggregate persistence.
type UserState interface {
	// GetUserState returns the aggregate or domain.ErrNotFound.
	GetUserState(ctx context.Context, userID string) (*domain.UserState, error)

	// GetOrCreateUserState returns the aggregate, creating an empty one on
	// first reward.
	GetOrCreateUserState(ctx context.Context, userID string) (*domain.UserState, error)

	SaveUserState(ctx context.Context, state *domain.UserState) error

	// ListUserStates returns all aggregates, for all-time leaderboard
	// projection.
	ListUserStates(ctx context.Context) ([]*domain.UserState, error)
}
