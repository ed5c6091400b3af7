// internal/service/withdrawal_service.go
package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"captcha-rewards/internal/domain"
	"captcha-rewards/internal/repository"
	"captcha-rewards/internal/util"
	"captcha-rewards/pkg/db"

	"github.com/shopspring/decimal"
)

// WithdrawalService drives the payout request workflow:
// pending -> approved -> completed, with pending -> rejected as the only
// other transition. The wallet debit happens at approval time.
type WithdrawalService interface {
	Request(ctx context.Context, userID int64, amount decimal.Decimal, bank domain.BankDetails) (*domain.Withdrawal, error)
	ListMine(ctx context.Context, userID int64) ([]domain.Withdrawal, error)
	ListAll(ctx context.Context, status domain.WithdrawalStatus, page, pageSize int) ([]domain.Withdrawal, int64, error)
	Approve(ctx context.Context, withdrawalID, adminID int64, remarks string) (*domain.Withdrawal, error)
	Reject(ctx context.Context, withdrawalID int64, remarks string) (*domain.Withdrawal, error)
	Complete(ctx context.Context, withdrawalID int64, remarks string) (*domain.Withdrawal, error)
}

// withdrawalService implements the WithdrawalService interface.
type withdrawalService struct {
	dbBeginner      db.DBTxBeginner
	dbExecutor      repository.DBExecutor
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	withdrawalRepo  repository.WithdrawalRepository
	minWithdrawal   decimal.Decimal
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
}

// NewWithdrawalService creates a new instance of WithdrawalService.
func NewWithdrawalService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	withdrawalRepo repository.WithdrawalRepository,
	minWithdrawal decimal.Decimal,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) WithdrawalService {
	return &withdrawalService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		withdrawalRepo:  withdrawalRepo,
		minWithdrawal:   minWithdrawal,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
	}
}

// Request creates a pending withdrawal. The balance check here is advisory
// only: funds are not reserved, and approval re-validates against the live
// wallet. Several pending requests may together exceed the balance.
func (s *withdrawalService) Request(ctx context.Context, userID int64, amount decimal.Decimal, bank domain.BankDetails) (*domain.Withdrawal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidInput
	}
	if amount.LessThan(s.minWithdrawal) {
		return nil, util.ErrBelowMinimum
	}

	wallet, err := s.walletRepo.EnsureWallet(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("request withdrawal: failed to ensure wallet for user %d: %w", userID, err)
	}
	if wallet.Balance.LessThan(amount) {
		return nil, util.ErrInsufficientBalance
	}

	withdrawal := domain.NewWithdrawal(userID, amount, bank)
	if err := s.withdrawalRepo.CreateWithdrawal(ctx, s.dbExecutor, withdrawal); err != nil {
		return nil, fmt.Errorf("request withdrawal: failed to create withdrawal: %w", err)
	}
	return withdrawal, nil
}

// ListMine retrieves a user's withdrawals, newest first.
func (s *withdrawalService) ListMine(ctx context.Context, userID int64) ([]domain.Withdrawal, error) {
	withdrawals, err := s.withdrawalRepo.ListByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	return withdrawals, nil
}

// ListAll retrieves withdrawals across users with an optional status filter.
func (s *withdrawalService) ListAll(ctx context.Context, status domain.WithdrawalStatus, page, pageSize int) ([]domain.Withdrawal, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}
	offset := (page - 1) * pageSize

	withdrawals, totalCount, err := s.withdrawalRepo.ListAll(ctx, s.dbExecutor, status, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list all withdrawals: %w", err)
	}
	return withdrawals, totalCount, nil
}

// Approve moves a pending withdrawal to approved and debits the wallet.
// Everything happens in one database transaction: claiming the row (status
// predicate), the conditional debit, and the ledger entry. Two admins
// approving the same request race on the claim; two approvals of different
// requests against the same wallet race on the debit. Either way at most the
// covered amount leaves the wallet.
func (s *withdrawalService) Approve(ctx context.Context, withdrawalID, adminID int64, remarks string) (*domain.Withdrawal, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("approve withdrawal: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("approve withdrawal: transaction controller does not implement DBExecutor")
	}

	withdrawal, err := s.withdrawalRepo.GetWithdrawalByID(ctx, txExecutor, withdrawalID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	claimed, err := s.withdrawalRepo.MarkApproved(ctx, txExecutor, withdrawalID, adminID, remarks, now)
	if err != nil {
		return nil, fmt.Errorf("approve withdrawal: %w", err)
	}
	if !claimed {
		return nil, util.ErrInvalidState
	}

	wallet, err := s.walletRepo.GetWalletByUserID(ctx, txExecutor, withdrawal.UserID)
	if err != nil {
		return nil, fmt.Errorf("approve withdrawal: failed to get wallet for user %d: %w", withdrawal.UserID, err)
	}

	// Re-validated at write time: the request-time check was advisory and the
	// balance may have moved since.
	if err := s.walletRepo.Debit(ctx, txExecutor, withdrawal.UserID, withdrawal.Amount); err != nil {
		if util.IsError(err, util.ErrInsufficientBalance) {
			return nil, util.ErrInsufficientBalance
		}
		return nil, fmt.Errorf("approve withdrawal: failed to debit wallet: %w", err)
	}

	referenceID := strconv.FormatInt(withdrawal.ID, 10)
	transaction := domain.NewTransaction(
		withdrawal.UserID,
		wallet.ID,
		domain.TransactionTypeDebit,
		withdrawal.Amount,
		fmt.Sprintf("Withdrawal approved - ID: %d", withdrawal.ID),
		&referenceID,
	)
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, transaction); err != nil {
		return nil, fmt.Errorf("approve withdrawal: failed to create transaction: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("approve withdrawal: failed to commit transaction: %w", err)
	}

	withdrawal.Status = domain.WithdrawalStatusApproved
	withdrawal.ApprovedBy = &adminID
	withdrawal.ApprovalDate = &now
	if remarks != "" {
		withdrawal.Remarks = remarks
	}
	return withdrawal, nil
}

// Reject moves a pending withdrawal to rejected. No wallet effect, so a
// single conditional update suffices; no surrounding transaction is needed.
func (s *withdrawalService) Reject(ctx context.Context, withdrawalID int64, remarks string) (*domain.Withdrawal, error) {
	withdrawal, err := s.withdrawalRepo.GetWithdrawalByID(ctx, s.dbExecutor, withdrawalID)
	if err != nil {
		return nil, err
	}

	claimed, err := s.withdrawalRepo.MarkRejected(ctx, s.dbExecutor, withdrawalID, remarks)
	if err != nil {
		return nil, fmt.Errorf("reject withdrawal: %w", err)
	}
	if !claimed {
		return nil, util.ErrInvalidState
	}

	withdrawal.Status = domain.WithdrawalStatusRejected
	if remarks != "" {
		withdrawal.Remarks = remarks
	}
	return withdrawal, nil
}

// Complete marks an approved withdrawal as paid out. Purely administrative;
// the debit already happened at approval.
func (s *withdrawalService) Complete(ctx context.Context, withdrawalID int64, remarks string) (*domain.Withdrawal, error) {
	withdrawal, err := s.withdrawalRepo.GetWithdrawalByID(ctx, s.dbExecutor, withdrawalID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	claimed, err := s.withdrawalRepo.MarkCompleted(ctx, s.dbExecutor, withdrawalID, remarks, now)
	if err != nil {
		return nil, fmt.Errorf("complete withdrawal: %w", err)
	}
	if !claimed {
		return nil, util.ErrInvalidState
	}

	withdrawal.Status = domain.WithdrawalStatusCompleted
	withdrawal.CompletionDate = &now
	if remarks != "" {
		withdrawal.Remarks = remarks
	}
	return withdrawal, nil
}
