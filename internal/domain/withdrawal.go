// internal/domain/withdrawal.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalStatus defines the state of a payout request.
type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusApproved  WithdrawalStatus = "approved"
	WithdrawalStatusRejected  WithdrawalStatus = "rejected"
	WithdrawalStatusCompleted WithdrawalStatus = "completed"
)

// CanTransition reports whether a withdrawal may move from s to next.
// Allowed: pending -> approved, pending -> rejected, approved -> completed.
// rejected and completed are terminal.
func (s WithdrawalStatus) CanTransition(next WithdrawalStatus) bool {
	switch s {
	case WithdrawalStatusPending:
		return next == WithdrawalStatusApproved || next == WithdrawalStatusRejected
	case WithdrawalStatusApproved:
		return next == WithdrawalStatusCompleted
	default:
		return false
	}
}

// BankDetails holds the payout destination supplied with a request.
type BankDetails struct {
	AccountHolder string `db:"account_holder" json:"account_holder"`
	AccountNumber string `db:"account_number" json:"account_number"`
	BankName      string `db:"bank_name" json:"bank_name"`
	IFSCCode      string `db:"ifsc_code" json:"ifsc_code"`
	UPIID         string `db:"upi_id" json:"upi_id"`
}

// Withdrawal is a user-initiated payout request moving through an admin
// approval workflow. The wallet debit happens at approval time, not at
// request time; pending requests do not reserve funds.
type Withdrawal struct {
	ID             int64            `db:"id" json:"id"`
	UserID         int64            `db:"user_id" json:"user_id"`
	Amount         decimal.Decimal  `db:"amount" json:"amount"`
	Status         WithdrawalStatus `db:"status" json:"status"`
	BankDetails    `json:"bank_details"`
	Remarks        string           `db:"remarks" json:"remarks"`
	ApprovedBy     *int64           `db:"approved_by" json:"approved_by"`
	ApprovalDate   *time.Time       `db:"approval_date" json:"approval_date"`
	CompletionDate *time.Time       `db:"completion_date" json:"completion_date"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// NewWithdrawal creates a pending Withdrawal request.
func NewWithdrawal(userID int64, amount decimal.Decimal, bank BankDetails) *Withdrawal {
	now := time.Now().UTC()
	return &Withdrawal{
		UserID:      userID,
		Amount:      amount,
		Status:      WithdrawalStatusPending,
		BankDetails: bank,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
