package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/repository"
)

type userStateRepository struct {
	db *pgxpool.Pool
}

// NewUserStateRepository creates a new PostgreSQL user state repository
func NewUserStateRepository(db *pgxpool.Pool) repository.UserState {
	return &userStateRepository{db: db}
}

func (r *userStateRepository) GetUserState(ctx context.Context, userID string) (*domain.UserState, error) {
	query := `
		SELECT user_id, points, badges, trophies, levels
		FROM user_states
		WHERE user_id = $1
	`

	state, err := scanUserState(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
		}
		return nil, fmt.Errorf(ErrMsgScanFailed, domain.ErrRepository, "get user state", err)
	}
	return state, nil
}

func (r *userStateRepository) GetOrCreateUserState(ctx context.Context, userID string) (*domain.UserState, error) {
	state, err := r.GetUserState(ctx, userID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	state = domain.NewUserState(userID)
	if err := r.SaveUserState(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (r *userStateRepository) SaveUserState(ctx context.Context, state *domain.UserState) error {
	if state == nil || state.UserID == "" {
		return fmt.Errorf("%w: user state requires a userId", domain.ErrValidation)
	}

	pointsJSON, err := marshalJSON(state.PointsByCategory, "user points")
	if err != nil {
		return err
	}
	badgesJSON, err := marshalJSON(state.BadgeIDs, "user badges")
	if err != nil {
		return err
	}
	trophiesJSON, err := marshalJSON(state.TrophyIDs, "user trophies")
	if err != nil {
		return err
	}
	levelsJSON, err := marshalJSON(state.CurrentLevelByCategory, "user levels")
	if err != nil {
		return err
	}

	query := `
		INSERT INTO user_states (user_id, points, badges, trophies, levels)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			points = EXCLUDED.points,
			badges = EXCLUDED.badges,
			trophies = EXCLUDED.trophies,
			levels = EXCLUDED.levels,
			updated_at = NOW()
	`

	if _, err := r.db.Exec(ctx, query, state.UserID, pointsJSON, badgesJSON, trophiesJSON, levelsJSON); err != nil {
		return fmt.Errorf(ErrMsgExecFailed, domain.ErrRepository, "save user state", err)
	}
	return nil
}

func (r *userStateRepository) ListUserStates(ctx context.Context) ([]*domain.UserState, error) {
	query := `
		SELECT user_id, points, badges, trophies, levels
		FROM user_states
		ORDER BY user_id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, domain.ErrRepository, "list user states", err)
	}
	defer rows.Close()

	states := make([]*domain.UserState, 0)
	for rows.Next() {
		state, err := scanUserState(rows)
		if err != nil {
			return nil, fmt.Errorf(ErrMsgScanFailed, domain.ErrRepository, "user states", err)
		}
		states = append(states, state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, domain.ErrRepository, "user states", err)
	}
	return states, nil
}

func scanUserState(row rowScanner) (*domain.UserState, error) {
	var (
		userID                                           string
		pointsJSON, badgesJSON, trophiesJSON, levelsJSON []byte
	)
	if err := row.Scan(&userID, &pointsJSON, &badgesJSON, &trophiesJSON, &levelsJSON); err != nil {
		return nil, err
	}

	state := domain.NewUserState(userID)
	if len(pointsJSON) > 0 {
		if err := json.Unmarshal(pointsJSON, &state.PointsByCategory); err != nil {
			return nil, err
		}
	}
	if len(badgesJSON) > 0 {
		if err := json.Unmarshal(badgesJSON, &state.BadgeIDs); err != nil {
			return nil, err
		}
	}
	if len(trophiesJSON) > 0 {
		if err := json.Unmarshal(trophiesJSON, &state.TrophyIDs); err != nil {
			return nil, err
		}
	}
	if len(levelsJSON) > 0 {
		if err := json.Unmarshal(levelsJSON, &state.CurrentLevelByCategory); err != nil {
			return nil, err
		}
	}
	return state, nil
}
