// internal/api/handler/withdrawal.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"captcha-rewards/internal/api/middleware"
	"captcha-rewards/internal/api/types"
	"captcha-rewards/internal/domain"
	"captcha-rewards/internal/service"
	"captcha-rewards/internal/util"
)

// WithdrawalHandler handles HTTP requests for the payout workflow.
type WithdrawalHandler struct {
	service service.WithdrawalService
	logger  *slog.Logger
}

// NewWithdrawalHandler creates a new WithdrawalHandler.
func NewWithdrawalHandler(svc service.WithdrawalService, logger *slog.Logger) *WithdrawalHandler {
	return &WithdrawalHandler{
		service: svc,
		logger:  logger,
	}
}

// RequestWithdrawalRequest represents the request body for a payout request.
type RequestWithdrawalRequest struct {
	Amount      decimal.Decimal    `json:"amount"`
	BankDetails domain.BankDetails `json:"bank_details"`
}

// Request creates a pending withdrawal for the caller.
// POST /withdrawals/request
func (h *WithdrawalHandler) Request(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(h.logger, w, util.ErrUnauthorized)
		return
	}

	var req RequestWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	withdrawal, err := h.service.Request(r.Context(), userID, req.Amount, req.BankDetails)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusCreated, withdrawal)
}

// ListMine returns the caller's withdrawal requests, newest first.
// GET /withdrawals/my
func (h *WithdrawalHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(h.logger, w, util.ErrUnauthorized)
		return
	}

	withdrawals, err := h.service.ListMine(r.Context(), userID)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, map[string]interface{}{"data": withdrawals})
}

// ListAll returns withdrawals across users with an optional status filter.
// GET /withdrawals?status=&page=&limit=
func (h *WithdrawalHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	status := domain.WithdrawalStatus(r.URL.Query().Get("status"))
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	withdrawals, totalCount, err := h.service.ListAll(r.Context(), status, page, pageSize)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	if page < 1 {
		page = 1
	}
	respondWithJSON(h.logger, w, http.StatusOK, types.PaginatedResponse[domain.Withdrawal]{
		Data:       withdrawals,
		Page:       page,
		PageSize:   len(withdrawals),
		TotalCount: totalCount,
	})
}

// ReviewRequest represents the request body for approve/reject/complete.
type ReviewRequest struct {
	Remarks string `json:"remarks"`
}

func (h *WithdrawalHandler) withdrawalID(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "withdrawalID")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, util.ErrInvalidInput
	}
	return id, nil
}

// Approve moves a pending withdrawal to approved and debits the wallet.
// PUT /withdrawals/{withdrawalID}/approve
func (h *WithdrawalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(h.logger, w, util.ErrUnauthorized)
		return
	}

	id, err := h.withdrawalID(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	var req ReviewRequest
	_ = json.NewDecoder(r.Body).Decode(&req) // body is optional

	withdrawal, err := h.service.Approve(r.Context(), id, adminID, req.Remarks)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, withdrawal)
}

// Reject moves a pending withdrawal to rejected.
// PUT /withdrawals/{withdrawalID}/reject
func (h *WithdrawalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := h.withdrawalID(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	var req ReviewRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	withdrawal, err := h.service.Reject(r.Context(), id, req.Remarks)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, withdrawal)
}

// Complete marks an approved withdrawal as paid out.
// PUT /withdrawals/{withdrawalID}/complete
func (h *WithdrawalHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := h.withdrawalID(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	var req ReviewRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	withdrawal, err := h.service.Complete(r.Context(), id, req.Remarks)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, withdrawal)
}
