package payment

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalid = errors.New("invalid payment")

type Type string

const (
	TypeEMI  Type = "EMI"
	TypeFull Type = "FULL"
)

func (t Type) Valid() bool {
	switch t {
	case TypeEMI, TypeFull:
		return true
	}
	return false
}

// Table: payments. Rows are append-only; nothing updates or deletes them.
type Payment struct {
	ID          uint64          `gorm:"primaryKey;column:id" json:"-"`
	PaymentID   string          `gorm:"column:payment_id;size:32;not null;uniqueIndex:ux_payments_payment_id" json:"payment_id"`
	LoanID      string          `gorm:"column:loan_id;size:32;not null;index:idx_payments_loan_date" json:"loan_id"`
	AmountPaid  decimal.Decimal `gorm:"column:amount_paid;type:decimal(18,2);not null" json:"amount_paid"`
	PaymentType Type            `gorm:"column:payment_type;size:8;not null" json:"payment_type"`
	PaymentDate time.Time       `gorm:"column:payment_date;not null;index:idx_payments_loan_date" json:"payment_date"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Payment) TableName() string { return "payments" }
