package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osheron/meritum/internal/wallet"
)

// SpendRequest represents the body for a wallet spend
type SpendRequest struct {
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Description string `json:"description" validate:"max=500"`
}

// TransferRequest represents the body for creating a transfer
type TransferRequest struct {
	FromUserID string `json:"fromUserId" validate:"required,max=200"`
	ToUserID   string `json:"toUserId" validate:"required,max=200"`
	CategoryID string `json:"categoryId" validate:"required,max=200"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
}

// HandleGetWallet returns the balance for one (user, category) wallet
// @Summary Get wallet balance
// @Tags wallets
// @Produce json
// @Param userId path string true "User id"
// @Param categoryId path string true "Spendable point category"
// @Success 200 {object} domain.Wallet
// @Failure 400 {object} ErrorResponse
// @Router /api/wallets/{userId}/{categoryId} [get]
func HandleGetWallet(svc wallet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		balance, err := svc.GetBalance(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "categoryId"))
		if err != nil {
			respondServiceError(w, r, "Get wallet", err)
			return
		}
		respondJSON(w, http.StatusOK, balance)
	}
}

// HandleGetWalletTransactions lists recent ledger entries
// @Summary List wallet transactions
// @Tags wallets
// @Produce json
// @Param userId path string true "User id"
// @Param categoryId path string true "Spendable point category"
// @Param limit query int false "Maximum entries (1-1000)"
// @Success 200 {array} domain.WalletTransaction
// @Failure 400 {object} ErrorResponse
// @Router /api/wallets/{userId}/{categoryId}/transactions [get]
func HandleGetWalletTransactions(svc wallet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := intQueryParam(r, w, "limit", wallet.DefaultTransactionLimit, 1, 1000, ErrMsgInvalidLimit)
		if !ok {
			return
		}
		txs, err := svc.GetTransactions(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "categoryId"), limit)
		if err != nil {
			respondServiceError(w, r, "List wallet transactions", err)
			return
		}
		respondJSON(w, http.StatusOK, txs)
	}
}

// HandleSpend posts a spend against a wallet
// @Summary Spend from a wallet
// @Tags wallets
// @Accept json
// @Produce json
// @Param userId path string true "User id"
// @Param categoryId path string true "Spendable point category"
// @Param spend body SpendRequest true "Spend details"
// @Success 201 {object} domain.WalletTransaction
// @Failure 400 {object} ErrorResponse
// @Router /api/wallets/{userId}/{categoryId}/spend [post]
func HandleSpend(svc wallet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SpendRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Spend"); err != nil {
			return
		}
		tx, err := svc.Spend(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "categoryId"), req.Amount, req.Description)
		if err != nil {
			respondServiceError(w, r, "Spend", err)
			return
		}
		respondJSON(w, http.StatusCreated, tx)
	}
}

// HandleCreateTransfer records a pending transfer
// @Summary Create transfer
// @Tags wallets
// @Accept json
// @Produce json
// @Param transfer body TransferRequest true "Transfer details"
// @Success 201 {object} domain.WalletTransfer
// @Failure 400 {object} ErrorResponse
// @Router /api/transfers [post]
func HandleCreateTransfer(svc wallet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TransferRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Create transfer"); err != nil {
			return
		}
		transfer, err := svc.CreateTransfer(r.Context(), req.FromUserID, req.ToUserID, req.CategoryID, req.Amount)
		if err != nil {
			respondServiceError(w, r, "Create transfer", err)
			return
		}
		respondJSON(w, http.StatusCreated, transfer)
	}
}

// HandleGetTransfer returns a transfer by id
// @Summary Get transfer
// @Tags wallets
// @Produce json
// @Param transferId path string true "Transfer id"
// @Success 200 {object} domain.WalletTransfer
// @Failure 404 {object} ErrorResponse
// @Router /api/transfers/{transferId} [get]
func HandleGetTransfer(svc wallet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transfer, err := svc.GetTransfer(r.Context(), chi.URLParam(r, "transferId"))
		if err != nil {
			respondServiceError(w, r, "Get transfer", err)
			return
		}
		respondJSON(w, http.StatusOK, transfer)
	}
}

// HandleCompleteTransfer executes a pending transfer
// @Summary Complete transfer
// @Tags wallets
// @Produce json
// @Param transferId path string true "Transfer id"
// @Success 200 {object} domain.WalletTransfer
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/transfers/{transferId}/complete [post]
func HandleCompleteTransfer(svc wallet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transfer, err := svc.CompleteTransfer(r.Context(), chi.URLParam(r, "transferId"))
		if err != nil {
			respondServiceError(w, r, "Complete transfer", err)
			return
		}
		respondJSON(w, http.StatusOK, transfer)
	}
}

// HandleCancelTransfer cancels a pending transfer
// @Summary Cancel transfer
// @Tags wallets
// @Produce json
// @Param transferId path string true "Transfer id"
// @Success 200 {object} domain.WalletTransfer
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/transfers/{transferId}/cancel [post]
func HandleCancelTransfer(svc wallet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transfer, err := svc.CancelTransfer(r.Context(), chi.URLParam(r, "transferId"))
		if err != nil {
			respondServiceError(w, r, "Cancel transfer", err)
			return
		}
		respondJSON(w, http.StatusOK, transfer)
	}
}
