package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/repository"
)

type userStateRepository struct {
	mu     sync.RWMutex
	states map[string]*domain.UserState
}

// NewUserStateRepository creates an in-memory user state repository.
func NewUserStateRepository() repository.UserState {
	return &userStateRepository{
		states: make(map[string]*domain.UserState),
	}
}

func (r *userStateRepository) GetUserState(ctx context.Context, userID string) (*domain.UserState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.states[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user state %s", domain.ErrNotFound, userID)
	}
	return state.Clone(), nil
}

func (r *userStateRepository) GetOrCreateUserState(ctx context.Context, userID string) (*domain.UserState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.states[userID]
	if !ok {
		state = domain.NewUserState(userID)
		r.states[userID] = state
	}
	return state.Clone(), nil
}

func (r *userStateRepository) SaveUserState(ctx context.Context, state *domain.UserState) error {
	if state == nil || state.UserID == "" {
		return fmt.Errorf("%w: user state requires a user id", domain.ErrValidation)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[state.UserID] = state.Clone()
	return nil
}

func (r *userStateRepository) ListUserStates(ctx context.Context) ([]*domain.UserState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	states := make([]*domain.UserState, 0, len(r.states))
	for _, state := range r.states {
		states = append(states, state.Clone())
	}
	sort.Slice(states, func(i, j int) bool {
		return states[i].UserID < states[j].UserID
	})
	return states, nil
}
