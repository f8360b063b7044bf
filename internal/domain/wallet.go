package domain

import (
	"fmt"
	"time"
)

// TransactionType classifies wallet ledger entries.
type TransactionType string

// Wallet transaction types.
const (
	TransactionEarned      TransactionType = "Earned"
	TransactionSpent       TransactionType = "Spent"
	TransactionTransferOut TransactionType = "TransferOut"
	TransactionTransferIn  TransactionType = "TransferIn"
	TransactionRefund      TransactionType = "Refund"
	TransactionPenalty     TransactionType = "Penalty"
	TransactionAdjustment  TransactionType = "Adjustment"
)

// Wallet is a ledger-backed balance for one (user, spendable category) pair.
// The ledger and balance are updated together or not at all.
type Wallet struct {
	UserID     string              `json:"userId"`
	CategoryID string              `json:"categoryId"`
	Balance    int64               `json:"balance"`
	Ledger     []WalletTransaction `json:"ledger,omitempty"`
}

// WalletTransaction is a single signed ledger entry.
type WalletTransaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	CategoryID  string          `json:"categoryId"`
	Amount      int64           `json:"amount"`
	Type        TransactionType `json:"type"`
	Description string          `json:"description,omitempty"`
	ReferenceID string          `json:"referenceId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// TransferStatus is the wallet transfer state machine.
type TransferStatus string

// Transfer states. Transitions are allowed only from Pending.
const (
	TransferPending   TransferStatus = "Pending"
	TransferCompleted TransferStatus = "Completed"
	TransferFailed    TransferStatus = "Failed"
	TransferCancelled TransferStatus = "Cancelled"
)

// WalletTransfer moves a positive amount between two users in one category.
type WalletTransfer struct {
	ID            string         `json:"id"`
	FromUserID    string         `json:"fromUserId"`
	ToUserID      string         `json:"toUserId"`
	CategoryID    string         `json:"categoryId"`
	Amount        int64          `json:"amount"`
	Status        TransferStatus `json:"status"`
	FailureReason string         `json:"failureReason,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	CompletedAt   *time.Time     `json:"completedAt,omitempty"`
}

// CanTransitionTo reports whether the transfer may move to the target state.
func (t WalletTransfer) CanTransitionTo(target TransferStatus) bool {
	if t.Status != TransferPending {
		return false
	}
	switch target {
	case TransferCompleted, TransferFailed, TransferCancelled:
		return true
	default:
		return false
	}
}

// Validate checks the transfer invariants.
func (t WalletTransfer) Validate() error {
	if t.FromUserID == "" || t.ToUserID == "" {
		return fmt.Errorf("%w: transfer requires both user ids", ErrValidation)
	}
	if t.FromUserID == t.ToUserID {
		return fmt.Errorf("%w: cannot transfer to self", ErrValidation)
	}
	if t.CategoryID == "" {
		return fmt.Errorf("%w: transfer requires a category", ErrValidation)
	}
	if t.Amount <= 0 {
		return fmt.Errorf("%w: transfer amount must be positive", ErrValidation)
	}
	return nil
}
