// Package emi holds the closed-form installment math used for loan intake
// and for the public calculator. Every function here is pure.
package emi

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var ErrInvalidInput = errors.New("invalid emi parameters")

// Income tiers, monthly. Upper bounds are exclusive.
const (
	tierLow  = 20000
	tierMid  = 50000
	tierHigh = 100000
)

// InterestRate maps a monthly income onto the annual rate (percent) offered to it.
func InterestRate(monthlyIncome float64) (float64, error) {
	switch {
	case monthlyIncome < 0 || math.IsNaN(monthlyIncome):
		return 0, fmt.Errorf("%w: monthly income must not be negative", ErrInvalidInput)
	case monthlyIncome < tierLow:
		return 15.0, nil
	case monthlyIncome < tierMid:
		return 12.0, nil
	case monthlyIncome < tierHigh:
		return 10.0, nil
	default:
		return 8.0, nil
	}
}

// EMI returns the unrounded monthly installment for a principal borrowed at
// annualRatePercent over tenureMonths.
func EMI(principal, annualRatePercent float64, tenureMonths int) (float64, error) {
	if principal <= 0 || annualRatePercent < 0 || tenureMonths <= 0 {
		return 0, fmt.Errorf("%w: principal=%v rate=%v tenure=%d", ErrInvalidInput, principal, annualRatePercent, tenureMonths)
	}
	r := annualRatePercent / 100 / 12
	if r == 0 {
		return principal / float64(tenureMonths), nil
	}
	f := math.Pow(1+r, float64(tenureMonths))
	return principal * r * f / (f - 1), nil
}

func TotalPayable(installment float64, tenureMonths int) float64 {
	return installment * float64(tenureMonths)
}

// Quote is an installment plan expressed in persisted (2dp) money.
type Quote struct {
	Principal     decimal.Decimal `json:"amount"`
	AnnualRate    decimal.Decimal `json:"rate"`
	Months        int             `json:"months"`
	MonthlyEMI    decimal.Decimal `json:"monthly_emi"`
	TotalPayment  decimal.Decimal `json:"total_payment"`
	TotalInterest decimal.Decimal `json:"total_interest"`
}

// NewQuote rounds the installment to cents first and derives the totals from
// the rounded figure, so that Months payments of MonthlyEMI settle TotalPayment exactly.
func NewQuote(principal decimal.Decimal, annualRatePercent float64, tenureMonths int) (Quote, error) {
	inst, err := EMI(principal.InexactFloat64(), annualRatePercent, tenureMonths)
	if err != nil {
		return Quote{}, err
	}
	monthly := decimal.NewFromFloat(inst).Round(2)
	total := monthly.Mul(decimal.NewFromInt(int64(tenureMonths)))
	return Quote{
		Principal:     principal.Round(2),
		AnnualRate:    decimal.NewFromFloat(annualRatePercent),
		Months:        tenureMonths,
		MonthlyEMI:    monthly,
		TotalPayment:  total,
		TotalInterest: total.Sub(principal.Round(2)),
	}, nil
}

// QuoteForIncome picks the rate tier from monthlyIncome and quotes at it.
func QuoteForIncome(principal, monthlyIncome decimal.Decimal, tenureMonths int) (Quote, error) {
	rate, err := InterestRate(monthlyIncome.InexactFloat64())
	if err != nil {
		return Quote{}, err
	}
	return NewQuote(principal, rate, tenureMonths)
}
