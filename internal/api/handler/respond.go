// internal/api/handler/respond.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"captcha-rewards/internal/util"
)

// DefaultTimeout is the per-request timeout applied by the router.
const DefaultTimeout = 60 * time.Second

// respondWithJSON sends a JSON response with the given status code.
func respondWithJSON(logger *slog.Logger, w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError maps service errors to HTTP status codes.
func respondWithError(logger *slog.Logger, w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = "Invalid input"
	case util.IsError(err, util.ErrBelowMinimum):
		statusCode = http.StatusBadRequest
		message = "Amount is below the minimum withdrawal"
	case util.IsError(err, util.ErrProofInvalid):
		statusCode = http.StatusBadRequest
		message = "Captcha is invalid, expired or already used"
	case util.IsError(err, util.ErrPaymentRejected):
		statusCode = http.StatusBadRequest
		message = "Payment verification failed"
	case util.IsError(err, util.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		message = "Invalid credentials"
	case util.IsError(err, util.ErrForbidden):
		statusCode = http.StatusForbidden
		message = "Forbidden"
	case util.IsError(err, util.ErrNotEligible):
		statusCode = http.StatusForbidden
		message = "No active plan"
	case util.IsError(err, util.ErrNotFound), util.IsError(err, util.ErrWalletNotFound), util.IsError(err, util.ErrUserNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case util.IsError(err, util.ErrInsufficientBalance):
		statusCode = http.StatusPaymentRequired // 402 Payment Required
		message = "Insufficient balance"
	case util.IsError(err, util.ErrDuplicateEntry):
		statusCode = http.StatusConflict
		message = "Resource already exists"
	case util.IsError(err, util.ErrInvalidState):
		statusCode = http.StatusConflict
		message = "Operation not allowed in current state"
	default:
		logger.Error("Unhandled service error", "error", err)
	}

	respondWithJSON(logger, w, statusCode, map[string]string{"error": message})
}
