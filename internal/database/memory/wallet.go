package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/repository"
)

type walletRepository struct {
	mu        sync.RWMutex
	wallets   map[string]*domain.Wallet // key: userID + "/" + categoryID
	transfers map[string]domain.WalletTransfer
}

// NewWalletRepository creates an in-memory wallet repository.
func NewWalletRepository() repository.Wallet {
	return &walletRepository{
		wallets:   make(map[string]*domain.Wallet),
		transfers: make(map[string]domain.WalletTransfer),
	}
}

func walletKey(userID, categoryID string) string {
	return userID + "/" + categoryID
}

func (r *walletRepository) GetWallet(ctx context.Context, userID, categoryID string) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := r.walletLocked(userID, categoryID)
	return cloneWallet(w), nil
}

// walletLocked returns the live wallet, creating it when absent. Callers must
// hold the write lock.
func (r *walletRepository) walletLocked(userID, categoryID string) *domain.Wallet {
	key := walletKey(userID, categoryID)
	w, ok := r.wallets[key]
	if !ok {
		w = &domain.Wallet{UserID: userID, CategoryID: categoryID}
		r.wallets[key] = w
	}
	return w
}

func (r *walletRepository) PostTransaction(ctx context.Context, tx domain.WalletTransaction, allowNegative bool) error {
	if tx.ID == "" || tx.UserID == "" || tx.CategoryID == "" {
		return fmt.Errorf("%w: transaction requires id, userId, and categoryId", domain.ErrValidation)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	w := r.walletLocked(tx.UserID, tx.CategoryID)
	next := w.Balance + tx.Amount
	if !allowNegative && next < 0 {
		return fmt.Errorf("%w: balance %d, attempted %+d", domain.ErrInsufficientBalance, w.Balance, tx.Amount)
	}
	w.Balance = next
	w.Ledger = append(w.Ledger, tx)
	return nil
}

func (r *walletRepository) GetTransactions(ctx context.Context, userID, categoryID string, limit int) ([]domain.WalletTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[walletKey(userID, categoryID)]
	if !ok {
		return []domain.WalletTransaction{}, nil
	}
	ledger := w.Ledger
	if limit > 0 && len(ledger) > limit {
		ledger = ledger[len(ledger)-limit:]
	}
	out := make([]domain.WalletTransaction, len(ledger))
	copy(out, ledger)
	return out, nil
}

func (r *walletRepository) CreateTransfer(ctx context.Context, transfer domain.WalletTransfer) error {
	if transfer.ID == "" {
		return fmt.Errorf("%w: transfer id must not be empty", domain.ErrValidation)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.transfers[transfer.ID]; exists {
		return fmt.Errorf("%w: transfer %s already exists", domain.ErrValidation, transfer.ID)
	}
	r.transfers[transfer.ID] = transfer
	return nil
}

func (r *walletRepository) GetTransferByID(ctx context.Context, transferID string) (*domain.WalletTransfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transfers[transferID]
	if !ok {
		return nil, fmt.Errorf("%w: transfer %s", domain.ErrNotFound, transferID)
	}
	return &t, nil
}

func (r *walletRepository) UpdateTransfer(ctx context.Context, transfer domain.WalletTransfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.transfers[transfer.ID]
	if !ok {
		return fmt.Errorf("%w: transfer %s", domain.ErrNotFound, transfer.ID)
	}
	if existing.Status != domain.TransferPending {
		return fmt.Errorf("%w: transfer %s is %s", domain.ErrTransferState, transfer.ID, existing.Status)
	}
	r.transfers[transfer.ID] = transfer
	return nil
}

func cloneWallet(w *domain.Wallet) *domain.Wallet {
	clone := &domain.Wallet{
		UserID:     w.UserID,
		CategoryID: w.CategoryID,
		Balance:    w.Balance,
		Ledger:     make([]domain.WalletTransaction, len(w.Ledger)),
	}
	copy(clone.Ledger, w.Ledger)
	return clone
}
