package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

var (
	LoanApplications = promauto.NewCounter(prometheus.CounterOpts{
		Name: "miniloan_loan_applications_total",
		Help: "Loan applications accepted.",
	})
	LoanTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "miniloan_loan_transitions_total",
		Help: "Loan status transitions by target status.",
	}, []string{"to"})
	Payments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "miniloan_payments_total",
		Help: "Payments recorded by type.",
	}, []string{"type"})
	PaymentAmount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "miniloan_payment_amount_total",
		Help: "Sum of payment amounts by type.",
	}, []string{"type"})
	IdempotentReplays = promauto.NewCounter(prometheus.CounterOpts{
		Name: "miniloan_idempotent_replays_total",
		Help: "Responses served from the idempotency cache.",
	})
)

func ObserveTransition(to string, n int) {
	if n <= 0 {
		return
	}
	LoanTransitions.WithLabelValues(to).Add(float64(n))
}

func ObservePayment(typ string, amount decimal.Decimal) {
	Payments.WithLabelValues(typ).Inc()
	f, _ := amount.Float64()
	PaymentAmount.WithLabelValues(typ).Add(f)
}
