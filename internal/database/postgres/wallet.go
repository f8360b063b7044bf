package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/repository"
)

type walletRepository struct {
	db *pgxpool.Pool
}

// NewWalletRepository creates a new PostgreSQL wallet repository
func NewWalletRepository(db *pgxpool.Pool) repository.Wallet {
	return &walletRepository{db: db}
}

func (r *walletRepository) GetWallet(ctx context.Context, userID, categoryID string) (*domain.Wallet, error) {
	wallet := &domain.Wallet{UserID: userID, CategoryID: categoryID}

	err := r.db.QueryRow(ctx,
		`SELECT balance FROM wallets WHERE user_id = $1 AND category_id = $2`,
		userID, categoryID).Scan(&wallet.Balance)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf(ErrMsgScanFailed, domain.ErrRepository, "get wallet", err)
	}
	return wallet, nil
}

// PostTransaction updates the balance and appends the ledger entry in one
// database transaction. The balance row is locked for the duration so
// concurrent postings serialize.
func (r *walletRepository) PostTransaction(ctx context.Context, tx domain.WalletTransaction, allowNegative bool) error {
	dbTx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf(ErrMsgBeginTxFailed, domain.ErrRepository, err)
	}
	defer func() {
		if rbErr := dbTx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.Error("Wallet transaction rollback failed", "error", rbErr)
		}
	}()

	// Ensure the balance row exists, then lock it.
	_, err = dbTx.Exec(ctx,
		`INSERT INTO wallets (user_id, category_id, balance) VALUES ($1, $2, 0)
		 ON CONFLICT (user_id, category_id) DO NOTHING`,
		tx.UserID, tx.CategoryID)
	if err != nil {
		return fmt.Errorf(ErrMsgExecFailed, domain.ErrRepository, "ensure wallet", err)
	}

	var balance int64
	err = dbTx.QueryRow(ctx,
		`SELECT balance FROM wallets WHERE user_id = $1 AND category_id = $2 FOR UPDATE`,
		tx.UserID, tx.CategoryID).Scan(&balance)
	if err != nil {
		return fmt.Errorf(ErrMsgScanFailed, domain.ErrRepository, "lock wallet", err)
	}

	newBalance := balance + tx.Amount
	if !allowNegative && newBalance < 0 {
		return fmt.Errorf("%w: balance %d, posting %d", domain.ErrInsufficientBalance, balance, tx.Amount)
	}

	_, err = dbTx.Exec(ctx,
		`UPDATE wallets SET balance = $3, updated_at = NOW() WHERE user_id = $1 AND category_id = $2`,
		tx.UserID, tx.CategoryID, newBalance)
	if err != nil {
		return fmt.Errorf(ErrMsgExecFailed, domain.ErrRepository, "update balance", err)
	}

	_, err = dbTx.Exec(ctx,
		`INSERT INTO wallet_transactions (transaction_id, user_id, category_id, amount, tx_type, description, reference_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		tx.ID, tx.UserID, tx.CategoryID, tx.Amount, string(tx.Type), tx.Description, tx.ReferenceID, tx.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transaction %s already posted", domain.ErrValidation, tx.ID)
		}
		return fmt.Errorf(ErrMsgExecFailed, domain.ErrRepository, "insert transaction", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf(ErrMsgExecFailed, domain.ErrRepository, "commit transaction", err)
	}
	return nil
}

func (r *walletRepository) GetTransactions(ctx context.Context, userID, categoryID string, limit int) ([]domain.WalletTransaction, error) {
	query := `
		SELECT transaction_id, user_id, category_id, amount, tx_type, description, reference_id, created_at
		FROM wallet_transactions
		WHERE user_id = $1 AND category_id = $2
		ORDER BY created_at DESC, transaction_id DESC
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, userID, categoryID, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, domain.ErrRepository, "wallet transactions", err)
	}
	defer rows.Close()

	txs := make([]domain.WalletTransaction, 0)
	for rows.Next() {
		var (
			tx     domain.WalletTransaction
			txType string
		)
		err := rows.Scan(&tx.ID, &tx.UserID, &tx.CategoryID, &tx.Amount, &txType,
			&tx.Description, &tx.ReferenceID, &tx.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf(ErrMsgScanFailed, domain.ErrRepository, "wallet transactions", err)
		}
		tx.Type = domain.TransactionType(txType)
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(ErrMsgQueryFailed, domain.ErrRepository, "wallet transactions", err)
	}
	return txs, nil
}

func (r *walletRepository) CreateTransfer(ctx context.Context, transfer domain.WalletTransfer) error {
	query := `
		INSERT INTO wallet_transfers (transfer_id, from_user_id, to_user_id, category_id, amount, status, failure_reason, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query, transfer.ID, transfer.FromUserID, transfer.ToUserID, transfer.CategoryID,
		transfer.Amount, string(transfer.Status), transfer.FailureReason, transfer.CreatedAt, transfer.CompletedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transfer %s already exists", domain.ErrValidation, transfer.ID)
		}
		return fmt.Errorf(ErrMsgExecFailed, domain.ErrRepository, "create transfer", err)
	}
	return nil
}

func (r *walletRepository) GetTransferByID(ctx context.Context, transferID string) (*domain.WalletTransfer, error) {
	query := `
		SELECT transfer_id, from_user_id, to_user_id, category_id, amount, status, failure_reason, created_at, completed_at
		FROM wallet_transfers
		WHERE transfer_id = $1
	`

	var (
		transfer domain.WalletTransfer
		status   string
	)
	err := r.db.QueryRow(ctx, query, transferID).Scan(&transfer.ID, &transfer.FromUserID, &transfer.ToUserID,
		&transfer.CategoryID, &transfer.Amount, &status, &transfer.FailureReason, &transfer.CreatedAt, &transfer.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: transfer %s", domain.ErrNotFound, transferID)
		}
		return nil, fmt.Errorf(ErrMsgScanFailed, domain.ErrRepository, "get transfer", err)
	}
	transfer.Status = domain.TransferStatus(status)
	return &transfer, nil
}

func (r *walletRepository) UpdateTransfer(ctx context.Context, transfer domain.WalletTransfer) error {
	// Compare-and-swap on the stored status: a transfer that already left
	// Pending must not be overwritten by a racing transition.
	query := `
		UPDATE wallet_transfers
		SET status = $2, failure_reason = $3, completed_at = $4
		WHERE transfer_id = $1 AND status = $5
	`

	tag, err := r.db.Exec(ctx, query, transfer.ID, string(transfer.Status), transfer.FailureReason,
		transfer.CompletedAt, string(domain.TransferPending))
	if err != nil {
		return fmt.Errorf(ErrMsgExecFailed, domain.ErrRepository, "update transfer", err)
	}
	if tag.RowsAffected() == 0 {
		var current string
		err := r.db.QueryRow(ctx,
			`SELECT status FROM wallet_transfers WHERE transfer_id = $1`,
			transfer.ID).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: transfer %s", domain.ErrNotFound, transfer.ID)
		}
		if err != nil {
			return fmt.Errorf(ErrMsgScanFailed, domain.ErrRepository, "update transfer", err)
		}
		return fmt.Errorf("%w: transfer %s is %s", domain.ErrTransferState, transfer.ID, current)
	}
	return nil
}
