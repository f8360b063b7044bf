package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osheron/meritum/internal/database/memory"
	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/handler"
	"github.com/osheron/meritum/internal/repository"
	"github.com/osheron/meritum/internal/wallet"
)

func newWalletRouter(t *testing.T) (chi.Router, repository.Wallet) {
	repo := memory.NewWalletRepository()
	svc := wallet.NewService(repo, testCatalog(t), nil)

	r := chi.NewRouter()
	r.Route("/api/wallets/{userId}/{categoryId}", func(r chi.Router) {
		r.Get("/", handler.HandleGetWallet(svc))
		r.Get("/transactions", handler.HandleGetWalletTransactions(svc))
		r.Post("/spend", handler.HandleSpend(svc))
	})
	r.Route("/api/transfers", func(r chi.Router) {
		r.Post("/", handler.HandleCreateTransfer(svc))
		r.Get("/{transferId}", handler.HandleGetTransfer(svc))
		r.Post("/{transferId}/complete", handler.HandleCompleteTransfer(svc))
		r.Post("/{transferId}/cancel", handler.HandleCancelTransfer(svc))
	})
	return r, repo
}

func seedBalance(t *testing.T, repo repository.Wallet, userID string, amount int64) {
	t.Helper()
	require.NoError(t, repo.PostTransaction(context.Background(), domain.WalletTransaction{
		ID:         "seed-" + userID,
		UserID:     userID,
		CategoryID: "coins",
		Amount:     amount,
		Type:       domain.TransactionEarned,
	}, false))
}

func TestHandleSpend(t *testing.T) {
	r, repo := newWalletRouter(t)
	seedBalance(t, repo, "alice", 100)

	rec := doJSON(t, r, http.MethodPost, "/api/wallets/alice/coins/spend", handler.SpendRequest{
		Amount:      40,
		Description: "shop purchase",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var tx domain.WalletTransaction
	decodeBody(t, rec, &tx)
	assert.Equal(t, int64(-40), tx.Amount)

	rec = doJSON(t, r, http.MethodGet, "/api/wallets/alice/coins", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balance domain.Wallet
	decodeBody(t, rec, &balance)
	assert.Equal(t, int64(60), balance.Balance)
}

func TestHandleSpendRejectsOverdraft(t *testing.T) {
	r, repo := newWalletRouter(t)
	seedBalance(t, repo, "alice", 10)

	rec := doJSON(t, r, http.MethodPost, "/api/wallets/alice/coins/spend", handler.SpendRequest{Amount: 50})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp handler.ErrorResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, handler.ErrMsgInsufficientError, resp.Error)
}

func TestHandleSpendRejectsNonSpendableCategory(t *testing.T) {
	r, _ := newWalletRouter(t)
	rec := doJSON(t, r, http.MethodPost, "/api/wallets/alice/xp/spend", handler.SpendRequest{Amount: 5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSpendRejectsNonPositiveAmount(t *testing.T) {
	r, _ := newWalletRouter(t)
	rec := doJSON(t, r, http.MethodPost, "/api/wallets/alice/coins/spend", handler.SpendRequest{Amount: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransferLifecycleOverHTTP(t *testing.T) {
	r, repo := newWalletRouter(t)
	seedBalance(t, repo, "alice", 100)

	rec := doJSON(t, r, http.MethodPost, "/api/transfers", handler.TransferRequest{
		FromUserID: "alice",
		ToUserID:   "bob",
		CategoryID: "coins",
		Amount:     30,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var transfer domain.WalletTransfer
	decodeBody(t, rec, &transfer)
	assert.Equal(t, domain.TransferPending, transfer.Status)

	rec = doJSON(t, r, http.MethodPost, "/api/transfers/"+transfer.ID+"/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &transfer)
	assert.Equal(t, domain.TransferCompleted, transfer.Status)

	// Completing twice conflicts
	rec = doJSON(t, r, http.MethodPost, "/api/transfers/"+transfer.ID+"/complete", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Cancelling a completed transfer conflicts
	rec = doJSON(t, r, http.MethodPost, "/api/transfers/"+transfer.ID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Balances moved
	rec = doJSON(t, r, http.MethodGet, "/api/wallets/bob/coins", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balance domain.Wallet
	decodeBody(t, rec, &balance)
	assert.Equal(t, int64(30), balance.Balance)
}

func TestHandleGetTransferNotFound(t *testing.T) {
	r, _ := newWalletRouter(t)
	rec := doJSON(t, r, http.MethodGet, "/api/transfers/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
