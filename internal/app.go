// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "captcha-rewards/internal/api"
	"captcha-rewards/internal/api/handler"
	"captcha-rewards/internal/api/middleware"
	"captcha-rewards/internal/captcha"
	"captcha-rewards/internal/config"
	"captcha-rewards/internal/payment"
	"captcha-rewards/internal/repository"
	"captcha-rewards/internal/repository/postgres"
	"captcha-rewards/internal/service"
	"captcha-rewards/internal/util"
	"captcha-rewards/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	UserRepository        repository.UserRepository
	WalletRepository      repository.WalletRepository
	TransactionRepository repository.TransactionRepository
	WithdrawalRepository  repository.WithdrawalRepository
	PlanRepository        repository.PlanRepository
	PaymentRepository     repository.PaymentRepository

	// Services
	AuthService       service.AuthService
	WalletService     service.WalletService
	WithdrawalService service.WithdrawalService
	CaptchaService    service.CaptchaService
	PlanService       service.PlanService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger()
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if err := db.EnsureSchema(ctx, app.DB); err != nil {
		return fmt.Errorf("failed to ensure database schema: %w", err)
	}
	app.Logger.Info("Database schema ensured.")

	// 4. Initialize Repositories
	app.UserRepository = postgres.NewUserRepository(app.DB)
	app.WalletRepository = postgres.NewWalletRepository(app.DB)
	app.TransactionRepository = postgres.NewTransactionRepository(app.DB)
	app.WithdrawalRepository = postgres.NewWithdrawalRepository(app.DB)
	app.PlanRepository = postgres.NewPlanRepository(app.DB)
	app.PaymentRepository = postgres.NewPaymentRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize domain helpers
	generator := captcha.NewImageGenerator()
	prover := captcha.NewProver(app.Config.ProofSecret, app.Config.ProofTTL)
	gateway := payment.NewMidtransGateway(app.Config.MidtransServerKey, app.Config.MidtransProduction)

	// 6. Initialize Services
	// Pass the concrete db.BeginTx, db.CommitTx, db.RollbackTx functions from pkg/db
	app.AuthService = service.NewAuthService(
		app.DB,
		app.UserRepository,
		app.WalletRepository,
		app.Config.JWTSecret,
		app.Config.AuthTokenTTL,
	)
	app.WalletService = service.NewWalletService(
		app.DB, // This is the DBTxBeginner
		app.DB, // This is the DBExecutor
		app.WalletRepository,
		app.TransactionRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.WithdrawalService = service.NewWithdrawalService(
		app.DB,
		app.DB,
		app.WalletRepository,
		app.TransactionRepository,
		app.WithdrawalRepository,
		app.Config.MinWithdrawal,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.CaptchaService = service.NewCaptchaService(
		app.DB,
		app.DB,
		app.UserRepository,
		app.PlanRepository,
		app.WalletRepository,
		app.TransactionRepository,
		generator,
		prover,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.PlanService = service.NewPlanService(
		app.DB,
		app.DB,
		app.UserRepository,
		app.PlanRepository,
		app.WalletRepository,
		app.PaymentRepository,
		gateway,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.Logger.Info("Services initialized.")

	// 7. Initialize HTTP Handlers and Router
	app.HTTPHandler = router.NewRouter(router.RouterDeps{
		AuthHandler:       handler.NewAuthHandler(app.AuthService, app.Logger),
		WalletHandler:     handler.NewWalletHandler(app.WalletService, app.Logger),
		CaptchaHandler:    handler.NewCaptchaHandler(app.CaptchaService, app.Logger),
		WithdrawalHandler: handler.NewWithdrawalHandler(app.WithdrawalService, app.Logger),
		PlanHandler:       handler.NewPlanHandler(app.PlanService, app.Logger),
		RateLimiter:       middleware.NewRateLimiter(app.Config.RateLimitPerSecond, app.Config.RateLimitBurst),
		JWTSecret:         app.Config.JWTSecret,
		Logger:            app.Logger,
	})
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
