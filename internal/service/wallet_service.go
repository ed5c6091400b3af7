// internal/service/wallet_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"captcha-rewards/internal/domain"
	"captcha-rewards/internal/repository"
	"captcha-rewards/internal/util"
	"captcha-rewards/pkg/db"

	"github.com/shopspring/decimal"
)

// EarningsStats aggregates a user's credited earnings over rolling windows.
type EarningsStats struct {
	Today decimal.Decimal `json:"today"`
	Week  decimal.Decimal `json:"week"`
	Month decimal.Decimal `json:"month"`
}

// WalletService defines the interface for wallet-related business logic.
// It is the sole writer of balance, total_earned and total_withdrawn.
type WalletService interface {
	EnsureWallet(ctx context.Context, userID int64) (*domain.Wallet, error)
	Credit(ctx context.Context, userID int64, amount decimal.Decimal, description string, referenceID *string) (*domain.Wallet, *domain.Transaction, error)
	Debit(ctx context.Context, userID int64, amount decimal.Decimal, description string, referenceID *string) (*domain.Wallet, *domain.Transaction, error)
	GetBalance(ctx context.Context, userID int64) (*domain.Wallet, error)
	GetHistory(ctx context.Context, userID int64, page, pageSize int) ([]domain.Transaction, int64, error)
	GetEarningsStats(ctx context.Context, userID int64) (*EarningsStats, error)
}

// walletService implements the WalletService interface.
type walletService struct {
	dbBeginner      db.DBTxBeginner       // For starting transactions (e.g., *sqlx.DB)
	dbExecutor      repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
}

// NewWalletService creates a new instance of WalletService.
func NewWalletService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) WalletService {
	return &walletService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
	}
}

// EnsureWallet returns the user's wallet, creating a zeroed one on first
// access. The upsert in the repository makes this idempotent under
// concurrent first access.
func (s *walletService) EnsureWallet(ctx context.Context, userID int64) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.EnsureWallet(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("ensure wallet: %w", err)
	}
	return wallet, nil
}

// Credit adds earnings to a user's wallet. The balance mutation and the
// ledger entry commit in a single database transaction, so there is no
// window in which the balance has moved but no transaction explains it.
func (s *walletService) Credit(ctx context.Context, userID int64, amount decimal.Decimal, description string, referenceID *string) (*domain.Wallet, *domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, util.ErrInvalidInput
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, nil, fmt.Errorf("credit: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, nil, fmt.Errorf("credit: transaction controller does not implement DBExecutor")
	}

	wallet, err := s.walletRepo.EnsureWallet(ctx, txExecutor, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("credit: failed to ensure wallet for user %d: %w", userID, err)
	}

	if err := s.walletRepo.Credit(ctx, txExecutor, userID, amount); err != nil {
		return nil, nil, fmt.Errorf("credit: failed to update wallet balance: %w", err)
	}

	transaction := domain.NewTransaction(userID, wallet.ID, domain.TransactionTypeCredit, amount, description, referenceID)
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, transaction); err != nil {
		return nil, nil, fmt.Errorf("credit: failed to create transaction: %w", err)
	}

	updatedWallet, err := s.walletRepo.GetWalletByUserID(ctx, txExecutor, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("credit: failed to re-fetch updated wallet for user %d: %w", userID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, nil, fmt.Errorf("credit: failed to commit transaction: %w", err)
	}

	return updatedWallet, transaction, nil
}

// Debit removes funds from a user's wallet. The sufficiency check happens
// inside the conditional UPDATE at write time, never as a separate read, so
// concurrent debits against the same wallet cannot overdraw it.
func (s *walletService) Debit(ctx context.Context, userID int64, amount decimal.Decimal, description string, referenceID *string) (*domain.Wallet, *domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, util.ErrInvalidInput
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, nil, fmt.Errorf("debit: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, nil, fmt.Errorf("debit: transaction controller does not implement DBExecutor")
	}

	wallet, err := s.walletRepo.GetWalletByUserID(ctx, txExecutor, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("debit: failed to get wallet for user %d: %w", userID, err)
	}

	if err := s.walletRepo.Debit(ctx, txExecutor, userID, amount); err != nil {
		if util.IsError(err, util.ErrInsufficientBalance) {
			return nil, nil, util.ErrInsufficientBalance
		}
		return nil, nil, fmt.Errorf("debit: failed to update wallet balance: %w", err)
	}

	transaction := domain.NewTransaction(userID, wallet.ID, domain.TransactionTypeDebit, amount, description, referenceID)
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, transaction); err != nil {
		return nil, nil, fmt.Errorf("debit: failed to create transaction: %w", err)
	}

	updatedWallet, err := s.walletRepo.GetWalletByUserID(ctx, txExecutor, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("debit: failed to re-fetch updated wallet for user %d: %w", userID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, nil, fmt.Errorf("debit: failed to commit transaction: %w", err)
	}

	return updatedWallet, transaction, nil
}

// GetBalance returns the user's wallet, creating it on first access.
func (s *walletService) GetBalance(ctx context.Context, userID int64) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.EnsureWallet(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return wallet, nil
}

// GetHistory retrieves a newest-first page of the user's ledger entries.
func (s *walletService) GetHistory(ctx context.Context, userID int64, page, pageSize int) ([]domain.Transaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 15
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	transactions, totalCount, err := s.transactionRepo.GetTransactionsByUserID(ctx, s.dbExecutor, userID, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve transaction history: %w", err)
	}
	return transactions, totalCount, nil
}

// GetEarningsStats sums completed credits for today, the last 7 days and the
// current calendar month.
func (s *walletService) GetEarningsStats(ctx context.Context, userID int64) (*EarningsStats, error) {
	now := time.Now().UTC()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekAgo := todayStart.AddDate(0, 0, -7)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	today, err := s.transactionRepo.SumCompletedSince(ctx, s.dbExecutor, userID, domain.TransactionTypeCredit, todayStart)
	if err != nil {
		return nil, fmt.Errorf("earnings stats: %w", err)
	}
	week, err := s.transactionRepo.SumCompletedSince(ctx, s.dbExecutor, userID, domain.TransactionTypeCredit, weekAgo)
	if err != nil {
		return nil, fmt.Errorf("earnings stats: %w", err)
	}
	month, err := s.transactionRepo.SumCompletedSince(ctx, s.dbExecutor, userID, domain.TransactionTypeCredit, monthStart)
	if err != nil {
		return nil, fmt.Errorf("earnings stats: %w", err)
	}

	return &EarningsStats{Today: today, Week: week, Month: month}, nil
}
