package ledger

import (
	"context"
	"fmt"
	"time"

	"miniloan-backend/internal/domain/payment"
	"miniloan-backend/pkg/id"

	"github.com/shopspring/decimal"
)

// Ledger appends payment entries. Built over a tx-bound repository, its writes
// commit or roll back with the surrounding loan mutation.
type Ledger struct {
	repo payment.Repository
	now  func() time.Time
}

func New(repo payment.Repository, now func() time.Time) *Ledger {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Ledger{repo: repo, now: now}
}

func (l *Ledger) Record(ctx context.Context, loanID string, amount decimal.Decimal, t payment.Type) (*payment.Payment, error) {
	if loanID == "" {
		return nil, fmt.Errorf("%w: loan id is required", payment.ErrInvalid)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", payment.ErrInvalid)
	}
	if !amount.Equal(amount.Round(2)) {
		return nil, fmt.Errorf("%w: amount %s is not in whole cents", payment.ErrInvalid, amount)
	}
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown payment type %q", payment.ErrInvalid, t)
	}
	p := &payment.Payment{
		PaymentID:   id.NewID32(),
		LoanID:      loanID,
		AmountPaid:  amount,
		PaymentType: t,
		PaymentDate: l.now(),
	}
	if err := l.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (l *Ledger) ForLoan(ctx context.Context, loanID string) ([]payment.Payment, error) {
	return l.repo.ListByLoanID(ctx, loanID)
}
