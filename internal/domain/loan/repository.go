package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	Save(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// Row-locked read; only meaningful inside a transaction.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	// First loan (oldest) for the user in the given status.
	GetByUserIDAndStatus(ctx context.Context, userID string, s Status) (*Loan, error)
	ListByUserID(ctx context.Context, userID string) ([]Loan, error)
	ListByStatus(ctx context.Context, s Status) ([]Loan, error)
	// Bulk PENDING -> REJECTED for every loan of the user except exceptID.
	RejectPendingByUserID(ctx context.Context, userID string, exceptID uint64) (int64, error)
}
