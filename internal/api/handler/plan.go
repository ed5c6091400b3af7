// internal/api/handler/plan.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"captcha-rewards/internal/api/middleware"
	"captcha-rewards/internal/domain"
	"captcha-rewards/internal/service"
	"captcha-rewards/internal/util"
)

// PlanHandler handles HTTP requests for the plan catalog and purchases.
type PlanHandler struct {
	service service.PlanService
	logger  *slog.Logger
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(svc service.PlanService, logger *slog.Logger) *PlanHandler {
	return &PlanHandler{
		service: svc,
		logger:  logger,
	}
}

func (h *PlanHandler) planID(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "planID")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, util.ErrInvalidInput
	}
	return id, nil
}

// List returns active plans; admins may pass ?all=true for the full catalog.
// GET /plans
func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	includeInactive := false
	if r.URL.Query().Get("all") == "true" {
		role, _ := middleware.RoleFromContext(r.Context())
		includeInactive = role == domain.RoleAdmin
	}

	plans, err := h.service.ListPlans(r.Context(), includeInactive)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, map[string]interface{}{"data": plans})
}

// Get returns a single plan.
// GET /plans/{planID}
func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.planID(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	plan, err := h.service.GetPlan(r.Context(), id)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, plan)
}

// PlanRequest represents the request body for plan create/update.
type PlanRequest struct {
	Name               string          `json:"name"`
	Price              decimal.Decimal `json:"price"`
	Currency           string          `json:"currency"`
	CaptchaLimit       int             `json:"captcha_limit"`
	ValidityDays       int             `json:"validity_days"`
	EarningsPerCaptcha decimal.Decimal `json:"earnings_per_captcha"`
	Description        string          `json:"description"`
	IsActive           *bool           `json:"is_active"`
}

// Create adds a plan to the catalog.
// POST /plans
func (h *PlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	plan := domain.NewPlan(req.Name, req.Price, req.CaptchaLimit, req.ValidityDays, req.EarningsPerCaptcha, req.Description)
	if req.Currency != "" {
		plan.Currency = req.Currency
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := h.service.CreatePlan(r.Context(), plan); err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusCreated, plan)
}

// Update overwrites a plan's fields.
// PUT /plans/{planID}
func (h *PlanHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.planID(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	plan := domain.NewPlan(req.Name, req.Price, req.CaptchaLimit, req.ValidityDays, req.EarningsPerCaptcha, req.Description)
	plan.ID = id
	if req.Currency != "" {
		plan.Currency = req.Currency
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := h.service.UpdatePlan(r.Context(), plan); err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, plan)
}

// Delete removes a plan from the catalog.
// DELETE /plans/{planID}
func (h *PlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.planID(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	if err := h.service.DeletePlan(r.Context(), id); err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, map[string]string{"message": "Plan deleted"})
}

// Purchase creates a payment gateway order for a plan.
// POST /plans/{planID}/purchase
func (h *PlanHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(h.logger, w, util.ErrUnauthorized)
		return
	}

	id, err := h.planID(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	order, err := h.service.InitiatePurchase(r.Context(), userID, id)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusCreated, order)
}

// SelectDemo assigns the free demo plan to the caller.
// POST /plans/demo
func (h *PlanHandler) SelectDemo(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(h.logger, w, util.ErrUnauthorized)
		return
	}

	plan, err := h.service.SelectDemoPlan(r.Context(), userID)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"message": "Demo plan activated",
		"plan":    plan,
	})
}

// Notification receives the payment gateway's settlement callback.
// POST /payments/notification
func (h *PlanHandler) Notification(w http.ResponseWriter, r *http.Request) {
	var n service.GatewayNotification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	if err := h.service.HandleNotification(r.Context(), n); err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	// The gateway retries on anything but 200.
	respondWithJSON(h.logger, w, http.StatusOK, map[string]string{"status": "ok"})
}
