// internal/service/mocks_test.go
package service

import (
	"context"
	"database/sql"
	"time"

	"captcha-rewards/internal/captcha"
	"captcha-rewards/internal/domain"
	"captcha-rewards/internal/payment"
	"captcha-rewards/internal/repository"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	args := m.Called(ctx, q, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, q repository.DBExecutor, email string) (*domain.User, error) {
	args := m.Called(ctx, q, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) AssignPlan(ctx context.Context, q repository.DBExecutor, userID, planID int64, expiry time.Time) error {
	args := m.Called(ctx, q, userID, planID, expiry)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementSolveCounters(ctx context.Context, q repository.DBExecutor, userID int64, earned decimal.Decimal) error {
	args := m.Called(ctx, q, userID, earned)
	return args.Error(0)
}

// MockWalletRepository is a mock implementation of repository.WalletRepository.
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) EnsureWallet(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Wallet, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetWalletByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Wallet, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Credit(ctx context.Context, q repository.DBExecutor, userID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, q, userID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) Debit(ctx context.Context, q repository.DBExecutor, userID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, q, userID, amount)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of repository.TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	args := m.Called(ctx, q, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetTransactionsByUserID(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, q, userID, limit, offset)
	return args.Get(0).([]domain.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) SumCompletedSince(ctx context.Context, q repository.DBExecutor, userID int64, txType domain.TransactionType, since time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, q, userID, txType, since)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) RedeemProof(ctx context.Context, q repository.DBExecutor, proofID string, userID int64) error {
	args := m.Called(ctx, q, proofID, userID)
	return args.Error(0)
}

// MockWithdrawalRepository is a mock implementation of repository.WithdrawalRepository.
type MockWithdrawalRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRepository) CreateWithdrawal(ctx context.Context, q repository.DBExecutor, w *domain.Withdrawal) error {
	args := m.Called(ctx, q, w)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) GetWithdrawalByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Withdrawal, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepository) ListByUserID(ctx context.Context, q repository.DBExecutor, userID int64) ([]domain.Withdrawal, error) {
	args := m.Called(ctx, q, userID)
	return args.Get(0).([]domain.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepository) ListAll(ctx context.Context, q repository.DBExecutor, status domain.WithdrawalStatus, limit, offset int) ([]domain.Withdrawal, int64, error) {
	args := m.Called(ctx, q, status, limit, offset)
	return args.Get(0).([]domain.Withdrawal), args.Get(1).(int64), args.Error(2)
}

func (m *MockWithdrawalRepository) MarkApproved(ctx context.Context, q repository.DBExecutor, id, adminID int64, remarks string, at time.Time) (bool, error) {
	args := m.Called(ctx, q, id, adminID, remarks, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockWithdrawalRepository) MarkRejected(ctx context.Context, q repository.DBExecutor, id int64, remarks string) (bool, error) {
	args := m.Called(ctx, q, id, remarks)
	return args.Bool(0), args.Error(1)
}

func (m *MockWithdrawalRepository) MarkCompleted(ctx context.Context, q repository.DBExecutor, id int64, remarks string, at time.Time) (bool, error) {
	args := m.Called(ctx, q, id, remarks, at)
	return args.Bool(0), args.Error(1)
}

// MockPlanRepository is a mock implementation of repository.PlanRepository.
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) CreatePlan(ctx context.Context, q repository.DBExecutor, plan *domain.Plan) error {
	args := m.Called(ctx, q, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) GetPlanByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Plan, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Plan), args.Error(1)
}

func (m *MockPlanRepository) GetPlanByName(ctx context.Context, q repository.DBExecutor, name string) (*domain.Plan, error) {
	args := m.Called(ctx, q, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Plan), args.Error(1)
}

func (m *MockPlanRepository) ListPlans(ctx context.Context, q repository.DBExecutor, activeOnly bool) ([]domain.Plan, error) {
	args := m.Called(ctx, q, activeOnly)
	return args.Get(0).([]domain.Plan), args.Error(1)
}

func (m *MockPlanRepository) UpdatePlan(ctx context.Context, q repository.DBExecutor, plan *domain.Plan) error {
	args := m.Called(ctx, q, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) DeletePlan(ctx context.Context, q repository.DBExecutor, id int64) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of repository.PaymentRepository.
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) CreatePayment(ctx context.Context, q repository.DBExecutor, payment *domain.Payment) error {
	args := m.Called(ctx, q, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetPaymentByOrderID(ctx context.Context, q repository.DBExecutor, orderID string) (*domain.Payment, error) {
	args := m.Called(ctx, q, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) MarkStatus(ctx context.Context, q repository.DBExecutor, orderID string, status domain.PaymentStatus, gatewayRef string) error {
	args := m.Called(ctx, q, orderID, status, gatewayRef)
	return args.Error(0)
}

// MockDBBeginner is a mock implementation of db.DBTxBeginner.
type MockDBBeginner struct {
	mock.Mock
}

func (m *MockDBBeginner) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	args := m.Called(ctx, opts)
	return &sqlx.Tx{}, args.Error(1)
}

// MockTxController is a mock implementation of db.TxController.
// It also implicitly implements repository.DBExecutor for testing purposes
// by embedding MockDBExecutor.
type MockTxController struct {
	mock.Mock
	MockDBExecutor // Embed MockDBExecutor to satisfy repository.DBExecutor interface
}

func (m *MockTxController) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockGenerator is a mock implementation of captcha.Generator.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate() (*captcha.Challenge, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*captcha.Challenge), args.Error(1)
}

// MockGateway is a mock implementation of payment.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateOrder(ctx context.Context, orderID string, amount decimal.Decimal, customer payment.Customer) (*payment.Order, error) {
	args := m.Called(ctx, orderID, amount, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Order), args.Error(1)
}

func (m *MockGateway) VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool {
	args := m.Called(orderID, statusCode, grossAmount, signatureKey)
	return args.Bool(0)
}
