package domain

// UserState is the per-user aggregate of accumulated gamification outcomes.
// It is created on the first reward for a user and mutated only by the
// reward applier.
type UserState struct {
	UserID                 string           `json:"userId"`
	PointsByCategory       map[string]int64 `json:"pointsByCategory"`
	BadgeIDs               []string         `json:"badgeIds"`
	TrophyIDs              []string         `json:"trophyIds"`
	CurrentLevelByCategory map[string]string `json:"currentLevelByCategory"`
}

// NewUserState creates an empty aggregate for the given user.
func NewUserState(userID string) *UserState {
	return &UserState{
		UserID:                 userID,
		PointsByCategory:       make(map[string]int64),
		BadgeIDs:               []string{},
		TrophyIDs:              []string{},
		CurrentLevelByCategory: make(map[string]string),
	}
}

// Points returns the balance for a category, zero when absent.
func (s *UserState) Points(categoryID string) int64 {
	if s.PointsByCategory == nil {
		return 0
	}
	return s.PointsByCategory[categoryID]
}

// HasBadge reports whether the user already holds the badge.
func (s *UserState) HasBadge(badgeID string) bool {
	for _, id := range s.BadgeIDs {
		if id == badgeID {
			return true
		}
	}
	return false
}

// HasTrophy reports whether the user already holds the trophy.
func (s *UserState) HasTrophy(trophyID string) bool {
	for _, id := range s.TrophyIDs {
		if id == trophyID {
			return true
		}
	}
	return false
}

// AddBadge grants a badge. Returns false when the badge was already held.
func (s *UserState) AddBadge(badgeID string) bool {
	if s.HasBadge(badgeID) {
		return false
	}
	s.BadgeIDs = append(s.BadgeIDs, badgeID)
	return true
}

// RemoveBadge revokes a badge. Returns false when the badge was not held.
func (s *UserState) RemoveBadge(badgeID string) bool {
	for i, id := range s.BadgeIDs {
		if id == badgeID {
			s.BadgeIDs = append(s.BadgeIDs[:i], s.BadgeIDs[i+1:]...)
			return true
		}
	}
	return false
}

// AddTrophy grants a trophy. Returns false when the trophy was already held.
func (s *UserState) AddTrophy(trophyID string) bool {
	if s.HasTrophy(trophyID) {
		return false
	}
	s.TrophyIDs = append(s.TrophyIDs, trophyID)
	return true
}

// Clone returns a deep copy. Repositories hand out clones so callers can
// never mutate shared state.
func (s *UserState) Clone() *UserState {
	if s == nil {
		return nil
	}
	clone := &UserState{
		UserID:                 s.UserID,
		PointsByCategory:       make(map[string]int64, len(s.PointsByCategory)),
		BadgeIDs:               append([]string{}, s.BadgeIDs...),
		TrophyIDs:              append([]string{}, s.TrophyIDs...),
		CurrentLevelByCategory: make(map[string]string, len(s.CurrentLevelByCategory)),
	}
	for k, v := range s.PointsByCategory {
		clone.PointsByCategory[k] = v
	}
	for k, v := range s.CurrentLevelByCategory {
		clone.CurrentLevelByCategory[k] = v
	}
	return clone
}
