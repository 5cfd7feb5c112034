package loanmock

import (
	"context"

	domain "miniloan-backend/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Reads with no func set return context.Canceled; writes are no-ops.
type Repo struct {
	CreateFn                func(ctx context.Context, l *domain.Loan) error
	SaveFn                  func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn           func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn  func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByUserIDAndStatusFn  func(ctx context.Context, userID string, s domain.Status) (*domain.Loan, error)
	ListByUserIDFn          func(ctx context.Context, userID string) ([]domain.Loan, error)
	ListByStatusFn          func(ctx context.Context, s domain.Status) ([]domain.Loan, error)
	RejectPendingByUserIDFn func(ctx context.Context, userID string, exceptID uint64) (int64, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByUserIDAndStatus(ctx context.Context, userID string, s domain.Status) (*domain.Loan, error) {
	if m.GetByUserIDAndStatusFn != nil {
		return m.GetByUserIDAndStatusFn(ctx, userID, s)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByUserID(ctx context.Context, userID string) ([]domain.Loan, error) {
	if m.ListByUserIDFn != nil {
		return m.ListByUserIDFn(ctx, userID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByStatus(ctx context.Context, s domain.Status) ([]domain.Loan, error) {
	if m.ListByStatusFn != nil {
		return m.ListByStatusFn(ctx, s)
	}
	return nil, context.Canceled
}

func (m *Repo) RejectPendingByUserID(ctx context.Context, userID string, exceptID uint64) (int64, error) {
	if m.RejectPendingByUserIDFn != nil {
		return m.RejectPendingByUserIDFn(ctx, userID, exceptID)
	}
	return 0, nil
}
