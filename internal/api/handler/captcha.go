// internal/api/handler/captcha.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"captcha-rewards/internal/api/middleware"
	"captcha-rewards/internal/service"
	"captcha-rewards/internal/util"
)

// CaptchaHandler handles HTTP requests for challenge issuance and submission.
type CaptchaHandler struct {
	service service.CaptchaService
	logger  *slog.Logger
}

// NewCaptchaHandler creates a new CaptchaHandler.
func NewCaptchaHandler(svc service.CaptchaService, logger *slog.Logger) *CaptchaHandler {
	return &CaptchaHandler{
		service: svc,
		logger:  logger,
	}
}

// GetRandom issues a fresh challenge to the caller.
// GET /captchas/random
func (h *CaptchaHandler) GetRandom(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(h.logger, w, util.ErrUnauthorized)
		return
	}

	challenge, err := h.service.Issue(r.Context(), userID)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, challenge)
}

// SubmitRequest represents the request body for an answer submission.
type SubmitRequest struct {
	Answer    string `json:"answer"`
	CaptchaID string `json:"captchaId"`
}

// Submit verifies an answer and credits the reward on success.
// POST /captchas/submit
func (h *CaptchaHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(h.logger, w, util.ErrUnauthorized)
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}
	if req.Answer == "" || req.CaptchaID == "" {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	result, err := h.service.Submit(r.Context(), userID, req.Answer, req.CaptchaID)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, result)
}
