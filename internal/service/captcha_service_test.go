// internal/service/captcha_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"captcha-rewards/internal/captcha"
	"captcha-rewards/internal/domain"
	"captcha-rewards/internal/util"
	"captcha-rewards/pkg/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newCaptchaServiceForTest(
	mockUserRepo *MockUserRepository,
	mockPlanRepo *MockPlanRepository,
	mockWalletRepo *MockWalletRepository,
	mockTransactionRepo *MockTransactionRepository,
	mockGenerator *MockGenerator,
	prover *captcha.Prover,
	mockDBBeginner *MockDBBeginner,
	mockDBExecutor *MockDBExecutor,
	mockTxController *MockTxController,
) CaptchaService {
	return NewCaptchaService(
		mockDBBeginner,
		mockDBExecutor,
		mockUserRepo,
		mockPlanRepo,
		mockWalletRepo,
		mockTransactionRepo,
		mockGenerator,
		prover,
		func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
			return mockTxController, nil
		},
		func(tx db.TxController) error {
			return mockTxController.Commit()
		},
		func(tx db.TxController) {
			_ = mockTxController.Rollback()
		},
	)
}

func userWithPlan(userID, planID int64, expiry time.Time) *domain.User {
	return &domain.User{
		ID:         userID,
		Name:       "Test User",
		Email:      "test@example.com",
		Role:       domain.RoleUser,
		PlanID:     &planID,
		PlanExpiry: &expiry,
	}
}

// TestIssueCaptcha tests the Issue method of CaptchaService.
func TestIssueCaptcha(t *testing.T) {
	userID := int64(1)
	prover := captcha.NewProver("test-secret", 10*time.Minute)

	t.Run("SuccessfulIssue", func(t *testing.T) {
		ctx := context.Background()
		mockUserRepo := new(MockUserRepository)
		mockPlanRepo := new(MockPlanRepository)
		mockWalletRepo := new(MockWalletRepository)
		mockTransactionRepo := new(MockTransactionRepository)
		mockGenerator := new(MockGenerator)
		mockDBBeginner := new(MockDBBeginner)
		mockDBExecutor := new(MockDBExecutor)
		mockTxController := new(MockTxController)

		service := newCaptchaServiceForTest(mockUserRepo, mockPlanRepo, mockWalletRepo, mockTransactionRepo, mockGenerator, prover, mockDBBeginner, mockDBExecutor, mockTxController)

		user := userWithPlan(userID, 2, time.Now().UTC().Add(24*time.Hour))
		mockUserRepo.On("GetUserByID", ctx, mock.Anything, userID).Return(user, nil).Once()
		mockGenerator.On("Generate").Return(&captcha.Challenge{
			Image:      "data:image/png;base64,AAAA",
			Answer:     "48213",
			Difficulty: "medium",
		}, nil).Once()

		challenge, err := service.Issue(ctx, userID)

		assert.NoError(t, err)
		assert.NotNil(t, challenge)
		assert.NotEmpty(t, challenge.Image)
		assert.NotEmpty(t, challenge.Proof)

		// The issued proof verifies for the same user and carries the answer.
		proof, err := prover.Verify(challenge.Proof, userID)
		assert.NoError(t, err)
		assert.Equal(t, "48213", proof.Answer)

		mock.AssertExpectationsForObjects(t, mockUserRepo, mockGenerator)
	})

	t.Run("NoActivePlan", func(t *testing.T) {
		ctx := context.Background()
		mockUserRepo := new(MockUserRepository)
		mockPlanRepo := new(MockPlanRepository)
		mockWalletRepo := new(MockWalletRepository)
		mockTransactionRepo := new(MockTransactionRepository)
		mockGenerator := new(MockGenerator)
		mockDBBeginner := new(MockDBBeginner)
		mockDBExecutor := new(MockDBExecutor)
		mockTxController := new(MockTxController)

		service := newCaptchaServiceForTest(mockUserRepo, mockPlanRepo, mockWalletRepo, mockTransactionRepo, mockGenerator, prover, mockDBBeginner, mockDBExecutor, mockTxController)

		user := &domain.User{ID: userID, Role: domain.RoleUser} // no plan assigned
		mockUserRepo.On("GetUserByID", ctx, mock.Anything, userID).Return(user, nil).Once()

		challenge, err := service.Issue(ctx, userID)

		assert.ErrorIs(t, err, util.ErrNotEligible)
		assert.Nil(t, challenge)

		mockGenerator.AssertNotCalled(t, "Generate")
	})

	t.Run("ExpiredPlan", func(t *testing.T) {
		ctx := context.Background()
		mockUserRepo := new(MockUserRepository)
		mockPlanRepo := new(MockPlanRepository)
		mockWalletRepo := new(MockWalletRepository)
		mockTransactionRepo := new(MockTransactionRepository)
		mockGenerator := new(MockGenerator)
		mockDBBeginner := new(MockDBBeginner)
		mockDBExecutor := new(MockDBExecutor)
		mockTxController := new(MockTxController)

		service := newCaptchaServiceForTest(mockUserRepo, mockPlanRepo, mockWalletRepo, mockTransactionRepo, mockGenerator, prover, mockDBBeginner, mockDBExecutor, mockTxController)

		user := userWithPlan(userID, 2, time.Now().UTC().Add(-time.Hour))
		mockUserRepo.On("GetUserByID", ctx, mock.Anything, userID).Return(user, nil).Once()

		challenge, err := service.Issue(ctx, userID)

		assert.ErrorIs(t, err, util.ErrNotEligible)
		assert.Nil(t, challenge)
	})
}

// TestSubmitCaptcha tests the Submit method of CaptchaService.
func TestSubmitCaptcha(t *testing.T) {
	userID := int64(1)
	planID := int64(2)
	prover := captcha.NewProver("test-secret", 10*time.Minute)

	t.Run("CorrectAnswerCredits", func(t *testing.T) {
		ctx := context.Background()
		mockUserRepo := new(MockUserRepository)
		mockPlanRepo := new(MockPlanRepository)
		mockWalletRepo := new(MockWalletRepository)
		mockTransactionRepo := new(MockTransactionRepository)
		mockGenerator := new(MockGenerator)
		mockDBBeginner := new(MockDBBeginner)
		mockDBExecutor := new(MockDBExecutor)
		mockTxController := new(MockTxController)

		service := newCaptchaServiceForTest(mockUserRepo, mockPlanRepo, mockWalletRepo, mockTransactionRepo, mockGenerator, prover, mockDBBeginner, mockDBExecutor, mockTxController)

		token, _, err := prover.Issue(userID, "48213")
		assert.NoError(t, err)

		rate := decimal.NewFromFloat(0.50)
		user := userWithPlan(userID, planID, time.Now().UTC().Add(24*time.Hour))
		plan := &domain.Plan{ID: planID, Name: "Silver", EarningsPerCaptcha: rate, IsActive: true}
		wallet := &domain.Wallet{ID: 10, UserID: userID, Balance: decimal.NewFromInt(5)}
		updatedWallet := &domain.Wallet{ID: 10, UserID: userID, Balance: decimal.NewFromFloat(5.50)}

		mockTxController.On("Commit").Return(nil).Once()
		mockTxController.On("Rollback").Return(nil).Maybe()

		mockTransactionRepo.On("RedeemProof", ctx, mock.Anything, mock.AnythingOfType("string"), userID).Return(nil).Once()
		mockUserRepo.On("GetUserByID", ctx, mock.Anything, userID).Return(user, nil).Once()
		mockPlanRepo.On("GetPlanByID", ctx, mock.Anything, planID).Return(plan, nil).Once()
		mockWalletRepo.On("EnsureWallet", ctx, mock.Anything, userID).Return(wallet, nil).Once()
		mockWalletRepo.On("Credit", ctx, mock.Anything, userID, rate).Return(nil).Once()
		mockTransactionRepo.On("CreateTransaction", ctx, mock.Anything, mock.AnythingOfType("*domain.Transaction")).Return(nil).Once()
		mockUserRepo.On("IncrementSolveCounters", ctx, mock.Anything, userID, rate).Return(nil).Once()
		mockWalletRepo.On("GetWalletByUserID", ctx, mock.Anything, userID).Return(updatedWallet, nil).Once()

		result, err := service.Submit(ctx, userID, "48213", token)

		assert.NoError(t, err)
		assert.True(t, result.Correct)
		assert.True(t, result.Earned.Equal(rate))
		assert.True(t, result.Balance.Equal(updatedWallet.Balance))

		mock.AssertExpectationsForObjects(t, mockTxController, mockUserRepo, mockPlanRepo, mockWalletRepo, mockTransactionRepo)
	})

	t.Run("AnswerComparisonIsLenient", func(t *testing.T) {
		ctx := context.Background()
		mockUserRepo := new(MockUserRepository)
		mockPlanRepo := new(MockPlanRepository)
		mockWalletRepo := new(MockWalletRepository)
		mockTransactionRepo := new(MockTransactionRepository)
		mockGenerator := new(MockGenerator)
		mockDBBeginner := new(MockDBBeginner)
		mockDBExecutor := new(MockDBExecutor)
		mockTxController := new(MockTxController)

		service := newCaptchaServiceForTest(mockUserRepo, mockPlanRepo, mockWalletRepo, mockTransactionRepo, mockGenerator, prover, mockDBBeginner, mockDBExecutor, mockTxController)

		token, _, err := prover.Issue(userID, "AbC42")
		assert.NoError(t, err)

		user := userWithPlan(userID, planID, time.Now().UTC().Add(24*time.Hour))
		plan := &domain.Plan{ID: planID, EarningsPerCaptcha: decimal.NewFromFloat(0.25), IsActive: true}
		wallet := &domain.Wallet{ID: 10, UserID: userID}

		mockTxController.On("Commit").Return(nil).Once()
		mockTxController.On("Rollback").Return(nil).Maybe()
		mockTransactionRepo.On("RedeemProof", ctx, mock.Anything, mock.AnythingOfType("string"), userID).Return(nil).Once()
		mockUserRepo.On("GetUserByID", ctx, mock.Anything, userID).Return(user, nil).Once()
		mockPlanRepo.On("GetPlanByID", ctx, mock.Anything, planID).Return(plan, nil).Once()
		mockWalletRepo.On("EnsureWallet", ctx, mock.Anything, userID).Return(wallet, nil).Once()
		mockWalletRepo.On("Credit", ctx, mock.Anything, userID, mock.Anything).Return(nil).Once()
		mockTransactionRepo.On("CreateTransaction", ctx, mock.Anything, mock.Anything).Return(nil).Once()
		mockUserRepo.On("IncrementSolveCounters", ctx, mock.Anything, userID, mock.Anything).Return(nil).Once()
		mockWalletRepo.On("GetWalletByUserID", ctx, mock.Anything, userID).Return(wallet, nil).Once()

		// Trimmed and case-folded input still counts as correct.
		result, err := service.Submit(ctx, userID, "  abc42 ", token)

		assert.NoError(t, err)
		assert.True(t, result.Correct)
	})

	t.Run("WrongAnswerIsNotAnError", func(t *testing.T) {
		ctx := context.Background()
		mockUserRepo := new(MockUserRepository)
		mockPlanRepo := new(MockPlanRepository)
		mockWalletRepo := new(MockWalletRepository)
		mockTransactionRepo := new(MockTransactionRepository)
		mockGenerator := new(MockGenerator)
		mockDBBeginner := new(MockDBBeginner)
		mockDBExecutor := new(MockDBExecutor)
		mockTxController := new(MockTxController)

		service := newCaptchaServiceForTest(mockUserRepo, mockPlanRepo, mockWalletRepo, mockTransactionRepo, mockGenerator, prover, mockDBBeginner, mockDBExecutor, mockTxController)

		token, _, err := prover.Issue(userID, "48213")
		assert.NoError(t, err)

		result, err := service.Submit(ctx, userID, "11111", token)

		assert.NoError(t, err)
		assert.False(t, result.Correct)
		assert.True(t, result.Earned.IsZero())

		// A wrong answer must not consume the proof or touch the wallet.
		mockTransactionRepo.AssertNotCalled(t, "RedeemProof", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mockWalletRepo.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mockTxController.AssertNotCalled(t, "Commit")
	})

	t.Run("InvalidProof", func(t *testing.T) {
		ctx := context.Background()
		mockUserRepo := new(MockUserRepository)
		mockPlanRepo := new(MockPlanRepository)
		mockWalletRepo := new(MockWalletRepository)
		mockTransactionRepo := new(MockTransactionRepository)
		mockGenerator := new(MockGenerator)
		mockDBBeginner := new(MockDBBeginner)
		mockDBExecutor := new(MockDBExecutor)
		mockTxController := new(MockTxController)

		service := newCaptchaServiceForTest(mockUserRepo, mockPlanRepo, mockWalletRepo, mockTransactionRepo, mockGenerator, prover, mockDBBeginner, mockDBExecutor, mockTxController)

		result, err := service.Submit(ctx, userID, "48213", "not-a-token")

		assert.ErrorIs(t, err, util.ErrProofInvalid)
		assert.Nil(t, result)
	})

	t.Run("ProofIssuedToAnotherUser", func(t *testing.T) {
		ctx := context.Background()
		mockUserRepo := new(MockUserRepository)
		mockPlanRepo := new(MockPlanRepository)
		mockWalletRepo := new(MockWalletRepository)
		mockTransactionRepo := new(MockTransactionRepository)
		mockGenerator := new(MockGenerator)
		mockDBBeginner := new(MockDBBeginner)
		mockDBExecutor := new(MockDBExecutor)
		mockTxController := new(MockTxController)

		service := newCaptchaServiceForTest(mockUserRepo, mockPlanRepo, mockWalletRepo, mockTransactionRepo, mockGenerator, prover, mockDBBeginner, mockDBExecutor, mockTxController)

		token, _, err := prover.Issue(int64(42), "48213")
		assert.NoError(t, err)

		result, err := service.Submit(ctx, userID, "48213", token)

		assert.ErrorIs(t, err, util.ErrProofInvalid)
		assert.Nil(t, result)
	})

	t.Run("ReplayedProof", func(t *testing.T) {
		ctx := context.Background()
		mockUserRepo := new(MockUserRepository)
		mockPlanRepo := new(MockPlanRepository)
		mockWalletRepo := new(MockWalletRepository)
		mockTransactionRepo := new(MockTransactionRepository)
		mockGenerator := new(MockGenerator)
		mockDBBeginner := new(MockDBBeginner)
		mockDBExecutor := new(MockDBExecutor)
		mockTxController := new(MockTxController)

		service := newCaptchaServiceForTest(mockUserRepo, mockPlanRepo, mockWalletRepo, mockTransactionRepo, mockGenerator, prover, mockDBBeginner, mockDBExecutor, mockTxController)

		token, _, err := prover.Issue(userID, "48213")
		assert.NoError(t, err)

		// The redemption insert hits the primary key: second use of the proof.
		mockTransactionRepo.On("RedeemProof", ctx, mock.Anything, mock.AnythingOfType("string"), userID).Return(util.ErrDuplicateEntry).Once()
		mockTxController.On("Rollback").Return(nil).Once()

		result, err := service.Submit(ctx, userID, "48213", token)

		assert.ErrorIs(t, err, util.ErrProofInvalid)
		assert.Nil(t, result)

		mockTxController.AssertNotCalled(t, "Commit")
		mockWalletRepo.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ZeroRatePlanCountsSolveWithoutLedgerEntry", func(t *testing.T) {
		ctx := context.Background()
		mockUserRepo := new(MockUserRepository)
		mockPlanRepo := new(MockPlanRepository)
		mockWalletRepo := new(MockWalletRepository)
		mockTransactionRepo := new(MockTransactionRepository)
		mockGenerator := new(MockGenerator)
		mockDBBeginner := new(MockDBBeginner)
		mockDBExecutor := new(MockDBExecutor)
		mockTxController := new(MockTxController)

		service := newCaptchaServiceForTest(mockUserRepo, mockPlanRepo, mockWalletRepo, mockTransactionRepo, mockGenerator, prover, mockDBBeginner, mockDBExecutor, mockTxController)

		token, _, err := prover.Issue(userID, "48213")
		assert.NoError(t, err)

		user := userWithPlan(userID, planID, time.Now().UTC().Add(24*time.Hour))
		demoPlan := domain.NewDemoPlan()
		demoPlan.ID = planID
		wallet := &domain.Wallet{ID: 10, UserID: userID, Balance: decimal.Zero}

		mockTxController.On("Commit").Return(nil).Once()
		mockTxController.On("Rollback").Return(nil).Maybe()
		mockTransactionRepo.On("RedeemProof", ctx, mock.Anything, mock.AnythingOfType("string"), userID).Return(nil).Once()
		mockUserRepo.On("GetUserByID", ctx, mock.Anything, userID).Return(user, nil).Once()
		mockPlanRepo.On("GetPlanByID", ctx, mock.Anything, planID).Return(demoPlan, nil).Once()
		mockWalletRepo.On("EnsureWallet", ctx, mock.Anything, userID).Return(wallet, nil).Once()
		mockUserRepo.On("IncrementSolveCounters", ctx, mock.Anything, userID, decimal.Zero).Return(nil).Once()
		mockWalletRepo.On("GetWalletByUserID", ctx, mock.Anything, userID).Return(wallet, nil).Once()

		result, err := service.Submit(ctx, userID, "48213", token)

		assert.NoError(t, err)
		assert.True(t, result.Correct)
		assert.True(t, result.Earned.IsZero())

		mockWalletRepo.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mockTransactionRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)

		mock.AssertExpectationsForObjects(t, mockTxController, mockUserRepo, mockPlanRepo, mockWalletRepo, mockTransactionRepo)
	})
}
