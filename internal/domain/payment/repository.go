package payment

import "context"

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	// Ordered by payment_date, then id, ascending.
	ListByLoanID(ctx context.Context, loanID string) ([]Payment, error)
}
