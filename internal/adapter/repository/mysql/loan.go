package mysql

import (
	"context"

	loanDomain "miniloan-backend/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

// sqlite drops the FOR UPDATE clause; mysql/postgres lock the row until commit.
func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetByUserIDAndStatus(ctx context.Context, userID string, s loanDomain.Status) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, s).
		Order("id ASC").
		First(&out)
	return &out, res.Error
}

func (r *LoanRepository) ListByUserID(ctx context.Context, userID string) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&out)
	return out, res.Error
}

func (r *LoanRepository) ListByStatus(ctx context.Context, s loanDomain.Status) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	res := r.db.WithContext(ctx).Where("status = ?", s).Order("id ASC").Find(&out)
	return out, res.Error
}

func (r *LoanRepository) RejectPendingByUserID(ctx context.Context, userID string, exceptID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&loanDomain.Loan{}).
		Where("user_id = ? AND status = ? AND id <> ?", userID, loanDomain.StatusPending, exceptID).
		Update("status", loanDomain.StatusRejected)
	return res.RowsAffected, res.Error
}
