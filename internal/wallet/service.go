// Package wallet manages ledger-backed balances for spendable point
// categories: spends, transaction listings, and two-party transfers with a
// Pending/Completed/Failed/Cancelled state machine.
package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/osheron/meritum/internal/bus"
	"github.com/osheron/meritum/internal/concurrency"
	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/logger"
	"github.com/osheron/meritum/internal/repository"
)

// Catalog resolves point category descriptors.
type Catalog interface {
	Category(id string) (domain.PointCategory, bool)
}

// Service defines the interface for wallet operations.
type Service interface {
	GetBalance(ctx context.Context, userID, categoryID string) (*domain.Wallet, error)
	GetTransactions(ctx context.Context, userID, categoryID string, limit int) ([]domain.WalletTransaction, error)
	Spend(ctx context.Context, userID, categoryID string, amount int64, description string) (*domain.WalletTransaction, error)
	CreateTransfer(ctx context.Context, fromUserID, toUserID, categoryID string, amount int64) (*domain.WalletTransfer, error)
	CompleteTransfer(ctx context.Context, transferID string) (*domain.WalletTransfer, error)
	CancelTransfer(ctx context.Context, transferID string) (*domain.WalletTransfer, error)
	GetTransfer(ctx context.Context, transferID string) (*domain.WalletTransfer, error)
}

type service struct {
	wallets  repository.Wallet
	catalog  Catalog
	locks    *concurrency.LockManager
	notifier bus.Bus
	now      func() time.Time
}

// NewService creates a wallet service.
func NewService(wallets repository.Wallet, catalog Catalog, notifier bus.Bus) Service {
	return &service{
		wallets:  wallets,
		catalog:  catalog,
		locks:    concurrency.NewLockManager(),
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// spendableCategory resolves the category and rejects non-spendable ones.
func (s *service) spendableCategory(categoryID string) (domain.PointCategory, error) {
	category, ok := s.catalog.Category(categoryID)
	if !ok {
		return domain.PointCategory{}, fmt.Errorf("%w: %s %q", domain.ErrValidation, ErrMsgUnknownCategory, categoryID)
	}
	if !category.IsSpendable {
		return domain.PointCategory{}, fmt.Errorf("%w: %s: %q", domain.ErrValidation, ErrMsgCategoryNotSpendable, categoryID)
	}
	return category, nil
}

func (s *service) GetBalance(ctx context.Context, userID, categoryID string) (*domain.Wallet, error) {
	if _, err := s.spendableCategory(categoryID); err != nil {
		return nil, err
	}
	return s.wallets.GetWallet(ctx, userID, categoryID)
}

func (s *service) GetTransactions(ctx context.Context, userID, categoryID string, limit int) ([]domain.WalletTransaction, error) {
	if _, err := s.spendableCategory(categoryID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultTransactionLimit
	}
	return s.wallets.GetTransactions(ctx, userID, categoryID, limit)
}

// Spend posts a negative ledger entry. The posting is atomic: on
// insufficient balance nothing changes and domain.ErrInsufficientBalance is
// returned.
func (s *service) Spend(ctx context.Context, userID, categoryID string, amount int64, description string) (*domain.WalletTransaction, error) {
	category, err := s.spendableCategory(categoryID)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, ErrMsgAmountNotPositive)
	}

	lock := s.locks.GetLock(walletLockKey(userID, categoryID))
	lock.Lock()
	defer lock.Unlock()

	tx := domain.WalletTransaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		CategoryID:  categoryID,
		Amount:      -amount,
		Type:        domain.TransactionSpent,
		Description: description,
		CreatedAt:   s.now(),
	}
	if err := s.wallets.PostTransaction(ctx, tx, category.NegativeBalanceAllowed); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info(LogMsgSpendPosted, "user_id", userID, "category", categoryID, "amount", amount)
	s.publishPosting(ctx, tx)
	return &tx, nil
}

// CreateTransfer records a Pending transfer after validating it. No funds
// move until CompleteTransfer.
func (s *service) CreateTransfer(ctx context.Context, fromUserID, toUserID, categoryID string, amount int64) (*domain.WalletTransfer, error) {
	if _, err := s.spendableCategory(categoryID); err != nil {
		return nil, err
	}

	transfer := domain.WalletTransfer{
		ID:         uuid.NewString(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		CategoryID: categoryID,
		Amount:     amount,
		Status:     domain.TransferPending,
		CreatedAt:  s.now(),
	}
	if err := transfer.Validate(); err != nil {
		return nil, err
	}

	if err := s.wallets.CreateTransfer(ctx, transfer); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info(LogMsgTransferCreated, "transfer_id", transfer.ID, "from", fromUserID, "to", toUserID, "amount", amount)
	return &transfer, nil
}

// CompleteTransfer executes a pending transfer: a TransferOut debit on the
// sender and a TransferIn credit on the receiver, both referencing the
// transfer id. Both wallets are locked in lexical user-id order so two
// opposing transfers cannot deadlock. On insufficient balance the transfer
// moves to Failed and no funds move.
func (s *service) CompleteTransfer(ctx context.Context, transferID string) (*domain.WalletTransfer, error) {
	log := logger.FromContext(ctx)

	transfer, unlock, err := s.lockPendingTransfer(ctx, transferID, domain.TransferCompleted)
	if err != nil {
		return nil, err
	}
	defer unlock()

	category, err := s.spendableCategory(transfer.CategoryID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	debit := domain.WalletTransaction{
		ID:          uuid.NewString(),
		UserID:      transfer.FromUserID,
		CategoryID:  transfer.CategoryID,
		Amount:      -transfer.Amount,
		Type:        domain.TransactionTransferOut,
		Description: fmt.Sprintf("transfer to %s", transfer.ToUserID),
		ReferenceID: transfer.ID,
		CreatedAt:   now,
	}
	if err := s.wallets.PostTransaction(ctx, debit, category.NegativeBalanceAllowed); err != nil {
		if markErr := s.markTransfer(ctx, transfer, domain.TransferFailed, err.Error()); markErr != nil {
			return nil, markErr
		}
		log.Warn(LogMsgTransferFailed, "transfer_id", transferID, "reason", err)
		return transfer, err
	}

	credit := domain.WalletTransaction{
		ID:          uuid.NewString(),
		UserID:      transfer.ToUserID,
		CategoryID:  transfer.CategoryID,
		Amount:      transfer.Amount,
		Type:        domain.TransactionTransferIn,
		Description: fmt.Sprintf("transfer from %s", transfer.FromUserID),
		ReferenceID: transfer.ID,
		CreatedAt:   now,
	}
	if err := s.wallets.PostTransaction(ctx, credit, true); err != nil {
		// Undo the debit so the pair stays balanced.
		refund := debit
		refund.ID = uuid.NewString()
		refund.Amount = transfer.Amount
		refund.Type = domain.TransactionRefund
		refund.Description = fmt.Sprintf("refund for transfer %s", transfer.ID)
		if refundErr := s.wallets.PostTransaction(ctx, refund, true); refundErr != nil {
			log.Error("Transfer refund failed, ledger inconsistent", "transfer_id", transferID, "error", refundErr)
		}
		if markErr := s.markTransfer(ctx, transfer, domain.TransferFailed, err.Error()); markErr != nil {
			return nil, markErr
		}
		return transfer, err
	}

	if err := s.markTransfer(ctx, transfer, domain.TransferCompleted, ""); err != nil {
		return nil, err
	}
	log.Info(LogMsgTransferCompleted, "transfer_id", transferID, "amount", transfer.Amount)
	s.publishPosting(ctx, debit)
	s.publishPosting(ctx, credit)
	return transfer, nil
}

// CancelTransfer moves a pending transfer to Cancelled without moving funds.
// It takes the same wallet locks as CompleteTransfer so the two cannot
// interleave on one transfer.
func (s *service) CancelTransfer(ctx context.Context, transferID string) (*domain.WalletTransfer, error) {
	transfer, unlock, err := s.lockPendingTransfer(ctx, transferID, domain.TransferCancelled)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := s.markTransfer(ctx, transfer, domain.TransferCancelled, ""); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info(LogMsgTransferCancelled, "transfer_id", transferID)
	return transfer, nil
}

func (s *service) GetTransfer(ctx context.Context, transferID string) (*domain.WalletTransfer, error) {
	return s.wallets.GetTransferByID(ctx, transferID)
}

// markTransfer records a terminal transition. CompletedAt marks when the
// transfer settled, whichever terminal state it reached.
func (s *service) markTransfer(ctx context.Context, transfer *domain.WalletTransfer, status domain.TransferStatus, reason string) error {
	transfer.Status = status
	transfer.FailureReason = reason
	completedAt := s.now()
	transfer.CompletedAt = &completedAt
	return s.wallets.UpdateTransfer(ctx, *transfer)
}

// lockPendingTransfer locks the transfer's wallet pair and re-reads the
// transfer inside the critical section, so a transition observed as allowed
// cannot be invalidated by a racing caller between check and posting.
func (s *service) lockPendingTransfer(ctx context.Context, transferID string, target domain.TransferStatus) (*domain.WalletTransfer, func(), error) {
	transfer, err := s.wallets.GetTransferByID(ctx, transferID)
	if err != nil {
		return nil, nil, err
	}

	unlock := s.lockPair(transfer.FromUserID, transfer.ToUserID, transfer.CategoryID)
	transfer, err = s.wallets.GetTransferByID(ctx, transferID)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	if !transfer.CanTransitionTo(target) {
		unlock()
		return nil, nil, fmt.Errorf("%w: transfer %s is %s", domain.ErrTransferState, transferID, transfer.Status)
	}
	return transfer, unlock, nil
}

// lockPair acquires both wallet locks in lexical user-id order and returns
// the paired unlock.
func (s *service) lockPair(userA, userB, categoryID string) func() {
	first, second := userA, userB
	if second < first {
		first, second = second, first
	}
	lockA := s.locks.GetLock(walletLockKey(first, categoryID))
	lockB := s.locks.GetLock(walletLockKey(second, categoryID))
	lockA.Lock()
	lockB.Lock()
	return func() {
		lockB.Unlock()
		lockA.Unlock()
	}
}

func (s *service) publishPosting(ctx context.Context, tx domain.WalletTransaction) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Publish(ctx, bus.NewWalletPostedEvent(tx.UserID, tx.CategoryID, tx.Amount, string(tx.Type), tx.ReferenceID))
}

func walletLockKey(userID, categoryID string) string {
	return "wallet/" + userID + "/" + categoryID
}
