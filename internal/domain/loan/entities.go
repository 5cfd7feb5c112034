package loan

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("loan not found")
	ErrConflict     = errors.New("user already has an active loan")
	ErrInvalidState = errors.New("loan is not in a valid state for this operation")
	ErrValidation   = errors.New("loan validation failed")
)

// Intake bounds.
const (
	MinAmount = 1000
	MaxAmount = 50000
	MinTenure = 1
	MaxTenure = 24
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCompleted Status = "COMPLETED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether no further transition may leave s.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusCompleted:
		return true
	case StatusPending, StatusApproved:
		return false
	}
	return false
}

// ParseStatus is case-insensitive.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, raw)
	}
	return s, nil
}

// Table: loans
type Loan struct {
	ID              uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID          string          `gorm:"column:loan_id;size:32;not null;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	UserID          string          `gorm:"column:user_id;size:32;not null;index:idx_loans_user_status" json:"user_id"`
	Amount          decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	InterestRate    decimal.Decimal `gorm:"column:interest_rate;type:decimal(6,2);not null" json:"interest_rate"`
	Tenure          int             `gorm:"column:tenure;not null" json:"tenure"`
	EMI             decimal.Decimal `gorm:"column:emi;type:decimal(18,2);not null" json:"emi"`
	TotalPayable    decimal.Decimal `gorm:"column:total_payable;type:decimal(18,2);not null" json:"total_payable"`
	PaidAmount      decimal.Decimal `gorm:"column:paid_amount;type:decimal(18,2);not null" json:"paid_amount"`
	RemainingAmount decimal.Decimal `gorm:"column:remaining_amount;type:decimal(18,2);not null" json:"remaining_amount"`
	Status          Status          `gorm:"column:status;size:16;not null;index:idx_loans_user_status;index:idx_loans_status" json:"status"`
	StartDate       *time.Time      `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate         *time.Time      `gorm:"column:end_date" json:"end_date,omitempty"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// ValidateTerms checks the intake bounds on principal and tenure.
func ValidateTerms(amount decimal.Decimal, tenure int) error {
	if amount.LessThan(decimal.NewFromInt(MinAmount)) || amount.GreaterThan(decimal.NewFromInt(MaxAmount)) {
		return fmt.Errorf("%w: loan amount must be between %d and %d", ErrValidation, MinAmount, MaxAmount)
	}
	if tenure < MinTenure || tenure > MaxTenure {
		return fmt.Errorf("%w: tenure must be between %d and %d months", ErrValidation, MinTenure, MaxTenure)
	}
	return nil
}

// Approve moves a pending loan to APPROVED and stamps its start date.
func (l *Loan) Approve(now time.Time) error {
	if l.Status != StatusPending {
		return fmt.Errorf("%w: cannot approve a %s loan", ErrInvalidState, l.Status)
	}
	l.Status = StatusApproved
	l.StartDate = &now
	return nil
}

// Reject marks the loan REJECTED regardless of its current status.
// It reports whether the loan was pending, so callers can flag the others.
func (l *Loan) Reject() (wasPending bool) {
	wasPending = l.Status == StatusPending
	l.Status = StatusRejected
	return wasPending
}

// ApplyEMI records an installment against an active loan. The loan is left
// untouched when an error is returned.
func (l *Loan) ApplyEMI(amount decimal.Decimal, now time.Time) error {
	if l.Status != StatusApproved {
		return fmt.Errorf("%w: loan is not active", ErrInvalidState)
	}
	if err := checkPayment(amount); err != nil {
		return err
	}
	if amount.GreaterThan(l.RemainingAmount) {
		return fmt.Errorf("%w: payment amount exceeds remaining balance", ErrValidation)
	}
	l.PaidAmount = l.PaidAmount.Add(amount)
	l.RemainingAmount = l.RemainingAmount.Sub(amount)
	if !l.RemainingAmount.IsPositive() {
		l.complete(now)
	}
	return nil
}

// Settle closes an active loan in one payment. Anything tendered above the
// outstanding balance is absorbed: paid is pinned to the total payable.
func (l *Loan) Settle(amount decimal.Decimal, now time.Time) error {
	if l.Status != StatusApproved {
		return fmt.Errorf("%w: loan is not active", ErrInvalidState)
	}
	if err := checkPayment(amount); err != nil {
		return err
	}
	if amount.LessThan(l.RemainingAmount) {
		return fmt.Errorf("%w: insufficient amount to close the loan", ErrValidation)
	}
	l.PaidAmount = l.TotalPayable
	l.RemainingAmount = decimal.Zero
	l.complete(now)
	return nil
}

// checkPayment rejects amounts that are not a positive whole number of cents;
// the ledger and balance columns hold two decimal places.
func checkPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: payment amount must be positive", ErrValidation)
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: payment amount has more than 2 decimal places", ErrValidation)
	}
	return nil
}

func (l *Loan) complete(now time.Time) {
	l.Status = StatusCompleted
	l.EndDate = &now
}
