package loan

import (
	"time"

	domain "miniloan-backend/internal/domain/loan"
	"miniloan-backend/internal/domain/payment"

	"github.com/shopspring/decimal"
)

type ApplyInput struct {
	UserID string
	Amount decimal.Decimal
	Tenure int
}

type LoanDTO struct {
	LoanID          string          `json:"loan_id"`
	UserID          string          `json:"user_id"`
	Amount          decimal.Decimal `json:"loan_amount"`
	InterestRate    decimal.Decimal `json:"interest_rate"`
	Tenure          int             `json:"tenure"`
	EMI             decimal.Decimal `json:"emi"`
	TotalPayable    decimal.Decimal `json:"total_payable"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Status          string          `json:"status"`
	StartDate       *time.Time      `json:"start_date,omitempty"`
	EndDate         *time.Time      `json:"end_date,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type PaymentDTO struct {
	PaymentID   string          `json:"payment_id"`
	LoanID      string          `json:"loan_id"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	PaymentType string          `json:"payment_type"`
	PaymentDate time.Time       `json:"payment_date"`
}

// Receipt is returned by the pay operations: the ledger entry plus the loan after it.
type Receipt struct {
	Payment PaymentDTO `json:"payment"`
	Loan    LoanDTO    `json:"loan"`
}

// Event is what the lifecycle manager hands to a Notifier after commit.
type Event struct {
	Type      string          `json:"type"`
	LoanID    string          `json:"loan_id"`
	UserID    string          `json:"user_id"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Count     int64           `json:"count,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

const (
	EventApplied      = "loan.applied"
	EventApproved     = "loan.approved"
	EventRejected     = "loan.rejected"
	EventAutoRejected = "loan.auto_rejected"
	EventPayment      = "loan.payment"
	EventCompleted    = "loan.completed"
)

func toDTO(l *domain.Loan) LoanDTO {
	return LoanDTO{
		LoanID:          l.LoanID,
		UserID:          l.UserID,
		Amount:          l.Amount,
		InterestRate:    l.InterestRate,
		Tenure:          l.Tenure,
		EMI:             l.EMI,
		TotalPayable:    l.TotalPayable,
		PaidAmount:      l.PaidAmount,
		RemainingAmount: l.RemainingAmount,
		Status:          string(l.Status),
		StartDate:       l.StartDate,
		EndDate:         l.EndDate,
		CreatedAt:       l.CreatedAt,
	}
}

func toDTOs(ls []domain.Loan) []LoanDTO {
	out := make([]LoanDTO, 0, len(ls))
	for i := range ls {
		out = append(out, toDTO(&ls[i]))
	}
	return out
}

func toPaymentDTO(p *payment.Payment) PaymentDTO {
	return PaymentDTO{
		PaymentID:   p.PaymentID,
		LoanID:      p.LoanID,
		AmountPaid:  p.AmountPaid,
		PaymentType: string(p.PaymentType),
		PaymentDate: p.PaymentDate,
	}
}
