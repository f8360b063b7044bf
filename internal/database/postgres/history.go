package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/repository"
)

type historyRepository struct {
	db *pgxpool.Pool
}

// NewRewardHistoryRepository creates a new PostgreSQL reward history repository
func NewRewardHistoryRepository(db *pgxpool.Pool) repository.RewardHistory {
	return &historyRepository{db: db}
}

const historyColumns = `entry_id, user_id, reward_type, details, success, awarded_at, failure_reason`

func (r *historyRepository) AppendHistory(ctx context.Context, entry domain.RewardHistory) error {
	if entry.ID == "" || entry.UserID == "" {
		return fmt.Errorf("%w: history entry requires id and userId", domain.ErrValidation)
	}

	detailsJSON, err := marshalJSON(entry.Details, "history details")
	if err != nil {
		return err
	}

	query := `
		INSERT INTO reward_history (entry_id, user_id, reward_type, details, success, awarded_at, failure_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.Exec(ctx, query, entry.ID, entry.UserID, entry.RewardType, detailsJSON,
		entry.Success, entry.AwardedAt, entry.FailureReason)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: history entry %s already recorded", domain.ErrValidation, entry.ID)
		}
		return fmt.Errorf(ErrMsgExecFailed, domain.ErrRepository, "append history", err)
	}
	return nil
}

func (r *historyRepository) HistoryExists(ctx context.Context, entryID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM reward_history WHERE entry_id = $1)`, entryID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf(ErrMsgScanFailed, domain.ErrRepository, "history exists", err)
	}
	return exists, nil
}

func (r *historyRepository) GetHistoryByUser(ctx context.Context, userID string, page, pageSize int) (*domain.HistoryPage, error) {
	return r.pageFiltered(ctx, page, pageSize, `user_id = $1`, userID)
}

func (r *historyRepository) GetHistoryByUserAndType(ctx context.Context, userID, rewardType string, page, pageSize int) (*domain.HistoryPage, error) {
	return r.pageFiltered(ctx, page, pageSize, `user_id = $1 AND reward_type = $2`, userID, rewardType)
}

func (r *historyRepository) GetHistoryInRange(ctx context.Context, start, end time.Time) ([]domain.RewardHistory, error) {
	query := `
		SELECT ` + historyColumns + `
		FROM reward_history
		WHERE success AND awarded_at >= $1 AND awarded_at < $2
		ORDER BY awarded_at ASC, entry_id ASC
	`
	return r.queryHistory(ctx, query, start, end)
}

func (r *historyRepository) GetHistoryByUserInRange(ctx context.Context, userID string, start, end time.Time) ([]domain.RewardHistory, error) {
	query := `
		SELECT ` + historyColumns + `
		FROM reward_history
		WHERE user_id = $1 AND awarded_at >= $2 AND awarded_at < $3
		ORDER BY awarded_at ASC, entry_id ASC
	`
	return r.queryHistory(ctx, query, userID, start, end)
}

// pageFiltered returns entries newest-first, paginated 1-based.
func (r *historyRepository) pageFiltered(ctx context.Context, page, pageSize int, where string, args ...any) (*domain.HistoryPage, error) {
	if page < 1 || pageSize < 1 {
		return nil, fmt.Errorf("%w: page and pageSize must be positive", domain.ErrValidation)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM reward_history WHERE ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf(ErrMsgScanFailed, domain.ErrRepository, "count history", err)
	}

	query := fmt.Sprintf(`
		SELECT `+historyColumns+`
		FROM reward_history
		WHERE `+where+`
		ORDER BY awarded_at DESC, entry_id DESC
		LIMIT $%d OFFSET $%d
	`, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	entries, err := r.queryHistory(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &domain.HistoryPage{
		Entries:    entries,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}, nil
}

func (r *historyRepository) queryHistory(ctx context.Context, query string, args ...any) ([]domain.RewardHistory, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, domain.ErrRepository, "history", err)
	}
	defer rows.Close()

	return scanHistoryEntries(rows)
}

func scanHistoryEntries(rows pgx.Rows) ([]domain.RewardHistory, error) {
	entries := make([]domain.RewardHistory, 0)
	for rows.Next() {
		var (
			entry       domain.RewardHistory
			detailsJSON []byte
		)
		err := rows.Scan(&entry.ID, &entry.UserID, &entry.RewardType, &detailsJSON,
			&entry.Success, &entry.AwardedAt, &entry.FailureReason)
		if err != nil {
			return nil, fmt.Errorf(ErrMsgScanFailed, domain.ErrRepository, "history", err)
		}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &entry.Details); err != nil {
				return nil, fmt.Errorf(ErrMsgScanFailed, domain.ErrRepository, "history details", err)
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, domain.ErrRepository, "history", err)
	}
	return entries, nil
}
