// internal/service/captcha_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"captcha-rewards/internal/captcha"
	"captcha-rewards/internal/domain"
	"captcha-rewards/internal/repository"
	"captcha-rewards/internal/util"
	"captcha-rewards/pkg/db"

	"github.com/shopspring/decimal"
)

/// IssuedChallenge is what the client receives: the rendered image and the
// signed proof it must echo back with its answer.
type IssuedChallenge struct {
	Image      string `json:"image"`
	Proof      string `json:"captchaId"` // opaque to the client
	Difficulty string `json:"difficulty"`
}

// SubmitResult reports the outcome of an answer submission. A wrong answer
// is a normal result, not an error.
type SubmitResult struct {
	Correct bool            `json:"success"`
	Earned  decimal.Decimal `json:"earned"`
	Balance decimal.Decimal `json:"totalBalance"`
}

// CaptchaService issues challenges to eligible users and credits rewards on
// correct answers.
type CaptchaService interface {
	Issue(ctx context.Context, userID int64) (*IssuedChallenge, error)
	Submit(ctx context.Context, userID int64, answer, proofToken string) (*SubmitResult, error)
}

// captchaService implements the CaptchaService interface.
type captchaService struct {
	dbBeginner      db.DBTxBeginner
	dbExecutor      repository.DBExecutor
	userRepo        repository.UserRepository
	planRepo        repository.PlanRepository
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	generator       captcha.Generator
	prover          *captcha.Prover
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
}

// NewCaptchaService creates a new instance of CaptchaService.
func NewCaptchaService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	planRepo repository.PlanRepository,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	generator captcha.Generator,
	prover *captcha.Prover,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) CaptchaService {
	return &captchaService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		userRepo:        userRepo,
		planRepo:        planRepo,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		generator:       generator,
		prover:          prover,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
	}
}

// Issue produces a challenge for an eligible user. Eligibility means the
// user holds a plan whose expiry is in the future.
func (s *captchaService) Issue(ctx context.Context, userID int64) (*IssuedChallenge, error) {
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasActivePlan(time.Now().UTC()) {
		return nil, util.ErrNotEligible
	}

	challenge, err := s.generator.Generate()
	if err != nil {
		return nil, fmt.Errorf("issue captcha: %w", err)
	}

	proofToken, _, err := s.prover.Issue(userID, challenge.Answer)
	if err != nil {
		return nil, fmt.Errorf("issue captcha: %w", err)
	}

	return &IssuedChallenge{
		Image:      challenge.Image,
		Proof:      proofToken,
		Difficulty: challenge.Difficulty,
	}, nil
}

// answersMatch compares a submission against the expected answer:
// whitespace-trimmed, case-insensitive.
func answersMatch(submitted, expected string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(expected))
}

// Submit verifies an answer against its proof and credits the reward. A
// proof is single-use: its id is recorded in the same database transaction
// as the credit, so a replayed proof fails on the unique key no matter which
// server process handles it. The payout rate comes from the user's plan at
// submission time, falling back to 0 if the plan is gone.
func (s *captchaService) Submit(ctx context.Context, userID int64, answer, proofToken string) (*SubmitResult, error) {
	proof, err := s.prover.Verify(proofToken, userID)
	if err != nil {
		return nil, util.ErrProofInvalid
	}

	if !answersMatch(answer, proof.Answer) {
		return &SubmitResult{Correct: false, Earned: decimal.Zero, Balance: decimal.Zero}, nil
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("submit captcha: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("submit captcha: transaction controller does not implement DBExecutor")
	}

	if err := s.transactionRepo.RedeemProof(ctx, txExecutor, proof.ID, userID); err != nil {
		if util.IsError(err, util.ErrDuplicateEntry) {
			return nil, util.ErrProofInvalid
		}
		return nil, fmt.Errorf("submit captcha: failed to redeem proof: %w", err)
	}

	user, err := s.userRepo.GetUserByID(ctx, txExecutor, userID)
	if err != nil {
		return nil, err
	}

	earned := s.payoutRate(ctx, txExecutor, user)

	wallet, err := s.walletRepo.EnsureWallet(ctx, txExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("submit captcha: failed to ensure wallet: %w", err)
	}

	// A zero-rate plan (demo) still counts the solve but writes no ledger
	// entry; transaction amounts are strictly positive.
	if earned.GreaterThan(decimal.Zero) {
		if err := s.walletRepo.Credit(ctx, txExecutor, userID, earned); err != nil {
			return nil, fmt.Errorf("submit captcha: failed to credit wallet: %w", err)
		}
		referenceID := proof.ID
		transaction := domain.NewTransaction(userID, wallet.ID, domain.TransactionTypeCredit, earned, "Captcha solved - Earnings", &referenceID)
		if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, transaction); err != nil {
			return nil, fmt.Errorf("submit captcha: failed to create transaction: %w", err)
		}
	}

	if err := s.userRepo.IncrementSolveCounters(ctx, txExecutor, userID, earned); err != nil {
		return nil, fmt.Errorf("submit captcha: failed to update user counters: %w", err)
	}

	updatedWallet, err := s.walletRepo.GetWalletByUserID(ctx, txExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("submit captcha: failed to re-fetch wallet: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("submit captcha: failed to commit transaction: %w", err)
	}

	return &SubmitResult{Correct: true, Earned: earned, Balance: updatedWallet.Balance}, nil
}

// payoutRate returns the user's per-captcha earnings, or zero when the plan
// reference is missing or dangling. A missing plan at this point is a data
// inconsistency, not a user error, so it degrades to a zero payout instead
// of failing the submission.
func (s *captchaService) payoutRate(ctx context.Context, q repository.DBExecutor, user *domain.User) decimal.Decimal {
	if user.PlanID == nil {
		return decimal.Zero
	}
	plan, err := s.planRepo.GetPlanByID(ctx, q, *user.PlanID)
	if err != nil {
		return decimal.Zero
	}
	return plan.EarningsPerCaptcha
}
