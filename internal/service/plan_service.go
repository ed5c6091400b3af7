// internal/service/plan_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"captcha-rewards/internal/domain"
	"captcha-rewards/internal/payment"
	"captcha-rewards/internal/repository"
	"captcha-rewards/internal/util"
	"captcha-rewards/pkg/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrder is handed to the client to drive the gateway checkout.
type PurchaseOrder struct {
	OrderID     string          `json:"order_id"`
	Token       string          `json:"token"`
	RedirectURL string          `json:"redirect_url"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
}

// GatewayNotification is the settlement callback payload the gateway posts.
type GatewayNotification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
}

// PlanService owns the plan catalog and the purchase flow that assigns plans
// to users. The ledger core consumes its output (payout rate, expiry) read-only.
type PlanService interface {
	ListPlans(ctx context.Context, includeInactive bool) ([]domain.Plan, error)
	GetPlan(ctx context.Context, id int64) (*domain.Plan, error)
	CreatePlan(ctx context.Context, plan *domain.Plan) error
	UpdatePlan(ctx context.Context, plan *domain.Plan) error
	DeletePlan(ctx context.Context, id int64) error
	InitiatePurchase(ctx context.Context, userID, planID int64) (*PurchaseOrder, error)
	HandleNotification(ctx context.Context, n GatewayNotification) error
	SelectDemoPlan(ctx context.Context, userID int64) (*domain.Plan, error)
}

// planService implements the PlanService interface.
type planService struct {
	dbBeginner  db.DBTxBeginner
	dbExecutor  repository.DBExecutor
	userRepo    repository.UserRepository
	planRepo    repository.PlanRepository
	walletRepo  repository.WalletRepository
	paymentRepo repository.PaymentRepository
	gateway     payment.Gateway
	beginTx     db.BeginTxFunc
	commitTx    db.CommitTxFunc
	rollbackTx  db.RollbackTxFunc
}

// NewPlanService creates a new instance of PlanService.
func NewPlanService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	planRepo repository.PlanRepository,
	walletRepo repository.WalletRepository,
	paymentRepo repository.PaymentRepository,
	gateway payment.Gateway,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) PlanService {
	return &planService{
		dbBeginner:  dbBeginner,
		dbExecutor:  dbExecutor,
		userRepo:    userRepo,
		planRepo:    planRepo,
		walletRepo:  walletRepo,
		paymentRepo: paymentRepo,
		gateway:     gateway,
		beginTx:     beginTx,
		commitTx:    commitTx,
		rollbackTx:  rollbackTx,
	}
}

// ListPlans returns the catalog; users only see active plans.
func (s *planService) ListPlans(ctx context.Context, includeInactive bool) ([]domain.Plan, error) {
	plans, err := s.planRepo.ListPlans(ctx, s.dbExecutor, !includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// GetPlan retrieves a single plan.
func (s *planService) GetPlan(ctx context.Context, id int64) (*domain.Plan, error) {
	return s.planRepo.GetPlanByID(ctx, s.dbExecutor, id)
}

// CreatePlan adds a plan to the catalog (admin).
func (s *planService) CreatePlan(ctx context.Context, plan *domain.Plan) error {
	if plan.Name == "" || plan.Price.IsNegative() || plan.EarningsPerCaptcha.IsNegative() || plan.ValidityDays <= 0 {
		return util.ErrInvalidInput
	}
	return s.planRepo.CreatePlan(ctx, s.dbExecutor, plan)
}

// UpdatePlan overwrites a plan's fields (admin).
func (s *planService) UpdatePlan(ctx context.Context, plan *domain.Plan) error {
	if plan.Name == "" || plan.Price.IsNegative() || plan.EarningsPerCaptcha.IsNegative() || plan.ValidityDays <= 0 {
		return util.ErrInvalidInput
	}
	return s.planRepo.UpdatePlan(ctx, s.dbExecutor, plan)
}

// DeletePlan removes a plan from the catalog (admin).
func (s *planService) DeletePlan(ctx context.Context, id int64) error {
	return s.planRepo.DeletePlan(ctx, s.dbExecutor, id)
}

// InitiatePurchase creates a gateway order for the plan's price and records
// an initiated payment keyed by the generated order id.
func (s *planService) InitiatePurchase(ctx context.Context, userID, planID int64) (*PurchaseOrder, error) {
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, err
	}
	plan, err := s.planRepo.GetPlanByID(ctx, s.dbExecutor, planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive || plan.Price.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidInput
	}

	orderID := "ORD-" + uuid.NewString()
	order, err := s.gateway.CreateOrder(ctx, orderID, plan.Price, payment.Customer{
		Name:  user.Name,
		Email: user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("initiate purchase: %w", err)
	}

	record := domain.NewPayment(userID, planID, plan.Price, plan.Currency, orderID)
	if err := s.paymentRepo.CreatePayment(ctx, s.dbExecutor, record); err != nil {
		return nil, fmt.Errorf("initiate purchase: failed to record payment: %w", err)
	}

	return &PurchaseOrder{
		OrderID:     order.OrderID,
		Token:       order.Token,
		RedirectURL: order.RedirectURL,
		Amount:      plan.Price,
		Currency:    plan.Currency,
	}, nil
}

// HandleNotification processes a gateway settlement callback. The signature
// is verified before anything is trusted; a settled payment assigns the plan
// and makes sure the user has a wallet to earn into. Repeated notifications
// for an already-settled order are acknowledged without effect.
func (s *planService) HandleNotification(ctx context.Context, n GatewayNotification) error {
	if !s.gateway.VerifySignature(n.OrderID, n.StatusCode, n.GrossAmount, n.SignatureKey) {
		return util.ErrPaymentRejected
	}

	settled := n.TransactionStatus == "settlement" ||
		(n.TransactionStatus == "capture" && n.FraudStatus == "accept")
	failed := n.TransactionStatus == "deny" || n.TransactionStatus == "cancel" || n.TransactionStatus == "expire"

	if failed {
		if err := s.paymentRepo.MarkStatus(ctx, s.dbExecutor, n.OrderID, domain.PaymentStatusFailed, n.TransactionStatus); err != nil {
			return fmt.Errorf("handle notification: %w", err)
		}
		return nil
	}
	if !settled {
		// Pending / challenge states: nothing to do yet.
		return nil
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fmt.Errorf("handle notification: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("handle notification: transaction controller does not implement DBExecutor")
	}

	record, err := s.paymentRepo.GetPaymentByOrderID(ctx, txExecutor, n.OrderID)
	if err != nil {
		return err
	}
	if record.Status == domain.PaymentStatusCompleted {
		return nil // duplicate notification
	}

	if err := s.paymentRepo.MarkStatus(ctx, txExecutor, n.OrderID, domain.PaymentStatusCompleted, n.TransactionStatus); err != nil {
		return fmt.Errorf("handle notification: %w", err)
	}

	plan, err := s.planRepo.GetPlanByID(ctx, txExecutor, record.PlanID)
	if err != nil {
		return err
	}
	expiry := plan.ExpiryFrom(time.Now().UTC())
	if err := s.userRepo.AssignPlan(ctx, txExecutor, record.UserID, plan.ID, expiry); err != nil {
		return fmt.Errorf("handle notification: failed to assign plan: %w", err)
	}
	if _, err := s.walletRepo.EnsureWallet(ctx, txExecutor, record.UserID); err != nil {
		return fmt.Errorf("handle notification: failed to ensure wallet: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("handle notification: failed to commit transaction: %w", err)
	}
	return nil
}

// SelectDemoPlan assigns the free one-day demo plan to the user, creating
// the plan row on first use. Two users racing on that first creation both
// end up on the same plan via the duplicate-entry refetch.
func (s *planService) SelectDemoPlan(ctx context.Context, userID int64) (*domain.Plan, error) {
	plan, err := s.planRepo.GetPlanByName(ctx, s.dbExecutor, domain.DemoPlanName)
	if util.IsError(err, util.ErrNotFound) {
		plan = domain.NewDemoPlan()
		if createErr := s.planRepo.CreatePlan(ctx, s.dbExecutor, plan); createErr != nil {
			if !util.IsError(createErr, util.ErrDuplicateEntry) {
				return nil, fmt.Errorf("select demo plan: %w", createErr)
			}
			plan, err = s.planRepo.GetPlanByName(ctx, s.dbExecutor, domain.DemoPlanName)
			if err != nil {
				return nil, fmt.Errorf("select demo plan: %w", err)
			}
		}
	} else if err != nil {
		return nil, fmt.Errorf("select demo plan: %w", err)
	}

	if !plan.IsActive {
		plan.IsActive = true
		if err := s.planRepo.UpdatePlan(ctx, s.dbExecutor, plan); err != nil {
			return nil, fmt.Errorf("select demo plan: failed to reactivate: %w", err)
		}
	}

	expiry := plan.ExpiryFrom(time.Now().UTC())
	if err := s.userRepo.AssignPlan(ctx, s.dbExecutor, userID, plan.ID, expiry); err != nil {
		return nil, fmt.Errorf("select demo plan: failed to assign: %w", err)
	}
	if _, err := s.walletRepo.EnsureWallet(ctx, s.dbExecutor, userID); err != nil {
		return nil, fmt.Errorf("select demo plan: failed to ensure wallet: %w", err)
	}
	return plan, nil
}
