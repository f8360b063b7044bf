// Package player exposes read-side views over a user's gamification state:
// points, badges, trophies, levels, and the reward history.
package player

import (
	"context"
	"fmt"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/repository"
)

// Default and maximum page sizes for history listings.
const (
	DefaultHistoryPageSize = 50
	MaxHistoryPageSize     = 1000
)

// Catalog resolves badge, trophy, and level descriptors for view enrichment.
type Catalog interface {
	Badge(id string) (domain.Badge, bool)
	Trophy(id string) (domain.Trophy, bool)
	Levels() []domain.Level
}

// BadgeView pairs a held badge id with its descriptor when known.
type BadgeView struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	ImageRef    string `json:"imageRef,omitempty"`
}

// TrophyView pairs a held trophy id with its descriptor when known.
type TrophyView struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	ImageRef    string `json:"imageRef,omitempty"`
}

// LevelView is the user's current level within one category.
type LevelView struct {
	CategoryID string `json:"categoryId"`
	LevelID    string `json:"levelId"`
	Name       string `json:"name,omitempty"`
	MinPoints  int64  `json:"minPoints"`
}

// Profile is the full read model for one user.
type Profile struct {
	UserID   string           `json:"userId"`
	Points   map[string]int64 `json:"points"`
	Badges   []BadgeView      `json:"badges"`
	Trophies []TrophyView     `json:"trophies"`
	Levels   []LevelView      `json:"levels"`
}

// Service defines the interface for player state queries.
type Service interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	GetPoints(ctx context.Context, userID string) (map[string]int64, error)
	GetBadges(ctx context.Context, userID string) ([]BadgeView, error)
	GetTrophies(ctx context.Context, userID string) ([]TrophyView, error)
	GetLevels(ctx context.Context, userID string) ([]LevelView, error)
	GetHistory(ctx context.Context, userID, rewardType string, page, pageSize int) (*domain.HistoryPage, error)
}

type service struct {
	states  repository.UserState
	history repository.RewardHistory
	catalog Catalog
}

// NewService creates a player query service.
func NewService(states repository.UserState, history repository.RewardHistory, catalog Catalog) Service {
	return &service{states: states, history: history, catalog: catalog}
}

func (s *service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	state, err := s.states.GetUserState(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		UserID:   state.UserID,
		Points:   state.PointsByCategory,
		Badges:   s.badgeViews(state),
		Trophies: s.trophyViews(state),
		Levels:   s.levelViews(state),
	}, nil
}

func (s *service) GetPoints(ctx context.Context, userID string) (map[string]int64, error) {
	state, err := s.states.GetUserState(ctx, userID)
	if err != nil {
		return nil, err
	}
	return state.PointsByCategory, nil
}

func (s *service) GetBadges(ctx context.Context, userID string) ([]BadgeView, error) {
	state, err := s.states.GetUserState(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.badgeViews(state), nil
}

func (s *service) GetTrophies(ctx context.Context, userID string) ([]TrophyView, error) {
	state, err := s.states.GetUserState(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.trophyViews(state), nil
}

func (s *service) GetLevels(ctx context.Context, userID string) ([]LevelView, error) {
	state, err := s.states.GetUserState(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.levelViews(state), nil
}

func (s *service) GetHistory(ctx context.Context, userID, rewardType string, page, pageSize int) (*domain.HistoryPage, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultHistoryPageSize
	}
	if pageSize > MaxHistoryPageSize {
		return nil, fmt.Errorf("%w: pageSize must be at most %d", domain.ErrValidation, MaxHistoryPageSize)
	}
	if rewardType != "" {
		return s.history.GetHistoryByUserAndType(ctx, userID, rewardType, page, pageSize)
	}
	return s.history.GetHistoryByUser(ctx, userID, page, pageSize)
}

func (s *service) badgeViews(state *domain.UserState) []BadgeView {
	views := make([]BadgeView, 0, len(state.BadgeIDs))
	for _, id := range state.BadgeIDs {
		view := BadgeView{ID: id}
		if badge, ok := s.catalog.Badge(id); ok {
			view.Name = badge.Name
			view.Description = badge.Description
			view.ImageRef = badge.ImageRef
		}
		views = append(views, view)
	}
	return views
}

func (s *service) trophyViews(state *domain.UserState) []TrophyView {
	views := make([]TrophyView, 0, len(state.TrophyIDs))
	for _, id := range state.TrophyIDs {
		view := TrophyView{ID: id}
		if trophy, ok := s.catalog.Trophy(id); ok {
			view.Name = trophy.Name
			view.Description = trophy.Description
			view.ImageRef = trophy.ImageRef
		}
		views = append(views, view)
	}
	return views
}

func (s *service) levelViews(state *domain.UserState) []LevelView {
	levels := s.catalog.Levels()
	byID := make(map[string]domain.Level, len(levels))
	for _, l := range levels {
		byID[l.ID] = l
	}
	views := make([]LevelView, 0, len(state.CurrentLevelByCategory))
	for categoryID, levelID := range state.CurrentLevelByCategory {
		view := LevelView{CategoryID: categoryID, LevelID: levelID}
		if l, ok := byID[levelID]; ok {
			view.Name = l.Name
			view.MinPoints = l.MinPoints
		}
		views = append(views, view)
	}
	return views
}
