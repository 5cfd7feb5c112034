package mysql

import (
	"context"

	paymentDomain "miniloan-backend/internal/domain/payment"

	"gorm.io/gorm"
)

// PaymentRepository is insert/read only.
type PaymentRepository struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) *PaymentRepository { return &PaymentRepository{db: db} }

func (r *PaymentRepository) Create(ctx context.Context, p *paymentDomain.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) ListByLoanID(ctx context.Context, loanID string) ([]paymentDomain.Payment, error) {
	var out []paymentDomain.Payment
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("payment_date ASC, id ASC").
		Find(&out)
	return out, res.Error
}
