// internal/api/handler/wallet.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"captcha-rewards/internal/api/middleware"
	"captcha-rewards/internal/api/types"
	"captcha-rewards/internal/domain"
	"captcha-rewards/internal/service"
	"captcha-rewards/internal/util"
)

// WalletHandler handles HTTP requests related to wallet operations.
type WalletHandler struct {
	service service.WalletService
	logger  *slog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(svc service.WalletService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		service: svc,
		logger:  logger,
	}
}

// GetWallet returns the caller's wallet, creating it on first access.
// GET /wallet
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(h.logger, w, util.ErrUnauthorized)
		return
	}

	wallet, err := h.service.EnsureWallet(r.Context(), userID)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, wallet)
}

// GetBalance returns only the caller's balance figures.
// GET /wallet/balance
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(h.logger, w, util.ErrUnauthorized)
		return
	}

	wallet, err := h.service.GetBalance(r.Context(), userID)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"balance":         wallet.Balance,
		"total_earned":    wallet.TotalEarned,
		"total_withdrawn": wallet.TotalWithdrawn,
	})
}

// GetTransactions returns a newest-first page of the caller's ledger.
// GET /wallet/transactions?page=&limit=
func (h *WalletHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(h.logger, w, util.ErrUnauthorized)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	transactions, totalCount, err := h.service.GetHistory(r.Context(), userID, page, pageSize)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	if page < 1 {
		page = 1
	}
	respondWithJSON(h.logger, w, http.StatusOK, types.PaginatedResponse[domain.Transaction]{
		Data:       transactions,
		Page:       page,
		PageSize:   len(transactions),
		TotalCount: totalCount,
	})
}

// GetStats returns the caller's earnings over rolling windows.
// GET /wallet/stats
func (h *WalletHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(h.logger, w, util.ErrUnauthorized)
		return
	}

	stats, err := h.service.GetEarningsStats(r.Context(), userID)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, stats)
}

// AddFundsRequest represents the request body for an admin credit.
type AddFundsRequest struct {
	UserID      int64           `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// AddFunds credits a user's wallet out of band.
// POST /wallet/add-funds
func (h *WalletHandler) AddFunds(w http.ResponseWriter, r *http.Request) {
	var req AddFundsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}
	if req.UserID == 0 || req.Amount.IsNegative() || req.Amount.IsZero() {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	description := req.Description
	if description == "" {
		description = "Funds added by admin"
	}

	wallet, transaction, err := h.service.Credit(r.Context(), req.UserID, req.Amount, description, nil)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"message":        "Funds added successfully",
		"user_id":        req.UserID,
		"new_balance":    wallet.Balance,
		"transaction_id": transaction.ID,
	})
}
