package uow

import (
	"context"

	"miniloan-backend/internal/domain/loan"
	"miniloan-backend/internal/domain/payment"
	"miniloan-backend/internal/domain/user"
)

// Repos are bound to the same transaction.
type Repos struct {
	Loans    loan.Repository
	Payments payment.Repository
	Users    user.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock loan first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
