// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"captcha-rewards/internal/api/handler"
	appmw "captcha-rewards/internal/api/middleware"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	AuthHandler       *handler.AuthHandler
	WalletHandler     *handler.WalletHandler
	CaptchaHandler    *handler.CaptchaHandler
	WithdrawalHandler *handler.WithdrawalHandler
	PlanHandler       *handler.PlanHandler
	RateLimiter       *appmw.RateLimiter
	JWTSecret         string
	Logger            *slog.Logger
}

// NewRouter sets up and returns a new HTTP router.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)                       // Add a request ID to the context
	r.Use(middleware.RealIP)                          // Use the real IP address
	r.Use(middleware.Logger)                          // Log HTTP requests
	r.Use(middleware.Recoverer)                       // Recover from panics and return 500
	r.Use(middleware.Timeout(handler.DefaultTimeout)) // Set a default timeout for requests
	r.Use(deps.RateLimiter.Handler)

	authenticated := appmw.Authenticator(deps.JWTSecret)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Public routes
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", deps.AuthHandler.Register)
		r.Post("/login", deps.AuthHandler.Login)
		r.With(authenticated).Get("/me", deps.AuthHandler.Me)
	})
	r.Get("/plans", deps.PlanHandler.List)
	r.Get("/plans/{planID}", deps.PlanHandler.Get)

	// Gateway callback, authenticated by its signature rather than a token.
	r.Post("/payments/notification", deps.PlanHandler.Notification)

	// Authenticated user routes
	r.Group(func(r chi.Router) {
		r.Use(authenticated)

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", deps.WalletHandler.GetWallet)
			r.Get("/balance", deps.WalletHandler.GetBalance)
			r.Get("/transactions", deps.WalletHandler.GetTransactions)
			r.Get("/stats", deps.WalletHandler.GetStats)
			r.With(appmw.AdminOnly).Post("/add-funds", deps.WalletHandler.AddFunds)
		})

		r.Route("/captchas", func(r chi.Router) {
			r.Get("/random", deps.CaptchaHandler.GetRandom)
			r.Post("/submit", deps.CaptchaHandler.Submit)
		})

		r.Route("/withdrawals", func(r chi.Router) {
			r.Post("/request", deps.WithdrawalHandler.Request)
			r.Get("/my", deps.WithdrawalHandler.ListMine)

			r.With(appmw.AdminOnly).Get("/", deps.WithdrawalHandler.ListAll)
			r.With(appmw.AdminOnly).Put("/{withdrawalID}/approve", deps.WithdrawalHandler.Approve)
			r.With(appmw.AdminOnly).Put("/{withdrawalID}/reject", deps.WithdrawalHandler.Reject)
			r.With(appmw.AdminOnly).Put("/{withdrawalID}/complete", deps.WithdrawalHandler.Complete)
		})

		r.Post("/plans/demo", deps.PlanHandler.SelectDemo)
		r.Post("/plans/{planID}/purchase", deps.PlanHandler.Purchase)

		r.With(appmw.AdminOnly).Post("/plans", deps.PlanHandler.Create)
		r.With(appmw.AdminOnly).Put("/plans/{planID}", deps.PlanHandler.Update)
		r.With(appmw.AdminOnly).Delete("/plans/{planID}", deps.PlanHandler.Delete)
	})

	return r
}
