package repository

import (
	"context"

	"github.com/osheron/meritum/internal/domain"
)

// Wallet defines the interface for wallet and transfer persistence.
// PostTransaction must be atomic across (balance, ledger): the transaction is
// either recorded and reflected in the balance, or neither.
type Wallet interface {
	// GetWallet returns the wallet for (userID, categoryID), creating an
	// empty one when absent.
	GetWallet(ctx context.Context, userID, categoryID string) (*domain.Wallet, error)

	// PostTransaction applies a signed ledger entry. When allowNegative is
	// false and the posting would drive the balance below zero it returns
	// domain.ErrInsufficientBalance without mutating anything.
	PostTransaction(ctx context.Context, tx domain.WalletTransaction, allowNegative bool) error

	GetTransactions(ctx context.Context, userID, categoryID string, limit int) ([]domain.WalletTransaction, error)

	CreateTransfer(ctx context.Context, transfer domain.WalletTransfer) error
	GetTransferByID(ctx context.Context, transferID string) (*domain.WalletTransfer, error)

	// UpdateTransfer applies a terminal transition. The update lands only
	// when the stored transfer is still Pending; a transfer that already
	// reached a terminal state returns domain.ErrTransferState unchanged.
	UpdateTransfer(ctx context.Context, transfer domain.WalletTransfer) error
}
