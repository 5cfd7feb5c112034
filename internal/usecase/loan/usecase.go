package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domain "miniloan-backend/internal/domain/loan"
	"miniloan-backend/internal/domain/payment"
	"miniloan-backend/internal/domain/uow"
	"miniloan-backend/internal/domain/user"
	"miniloan-backend/internal/observability"
	"miniloan-backend/internal/usecase/ledger"
	"miniloan-backend/pkg/emi"
	"miniloan-backend/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type IncomeLookup interface {
	IncomeOf(ctx context.Context, userID string) (decimal.Decimal, error)
}

type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

type Usecase struct {
	loans    domain.Repository
	payments payment.Repository
	incomes  IncomeLookup
	uow      uow.UnitOfWork
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

type Option func(*Usecase)

func WithNotifier(n Notifier) Option        { return func(u *Usecase) { u.notifier = n } }
func WithLogger(l *slog.Logger) Option      { return func(u *Usecase) { u.log = l } }
func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

// NewUsecase: plain repos serve reads, the UoW serves every write.
func NewUsecase(loans domain.Repository, payments payment.Repository, incomes IncomeLookup, tx uow.UnitOfWork, opts ...Option) *Usecase {
	u := &Usecase{
		loans:    loans,
		payments: payments,
		incomes:  incomes,
		uow:      tx,
		log:      observability.Discard(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

func (u *Usecase) Apply(ctx context.Context, in ApplyInput) (*LoanDTO, error) {
	if err := domain.ValidateTerms(in.Amount, in.Tenure); err != nil {
		return nil, err
	}
	income, err := u.incomes.IncomeOf(ctx, in.UserID)
	if err != nil {
		return nil, userNotFound(err, in.UserID)
	}
	q, err := emi.QuoteForIncome(in.Amount, income, in.Tenure)
	if err != nil {
		return nil, err
	}

	var l *domain.Loan
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Users.GetByUserIDForUpdate(ctx, in.UserID); err != nil {
			return userNotFound(err, in.UserID)
		}
		if err := ensureNoActiveLoan(ctx, r.Loans, in.UserID); err != nil {
			return err
		}
		l = &domain.Loan{
			LoanID:          id.NewID32(),
			UserID:          in.UserID,
			Amount:          q.Principal,
			InterestRate:    q.AnnualRate,
			Tenure:          q.Months,
			EMI:             q.MonthlyEMI,
			TotalPayable:    q.TotalPayment,
			PaidAmount:      decimal.Zero,
			RemainingAmount: q.TotalPayment,
			Status:          domain.StatusPending,
		}
		return r.Loans.Create(ctx, l)
	})
	if err != nil {
		return nil, err
	}

	observability.LoanApplications.Inc()
	u.emit(ctx, u.event(EventApplied, l, l.Amount))
	dto := toDTO(l)
	return &dto, nil
}

// Approve locks the owner first, then the loan, the same order Apply takes.
// Every other pending loan of the owner is rejected in the same transaction.
func (u *Usecase) Approve(ctx context.Context, loanID string) (*LoanDTO, error) {
	var (
		l        *domain.Loan
		siblings int64
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		peek, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			return err
		}
		if _, err := r.Users.GetByUserIDForUpdate(ctx, peek.UserID); err != nil {
			return userNotFound(err, peek.UserID)
		}
		l, err = r.Loans.GetByLoanIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if err := l.Approve(u.now()); err != nil {
			return err
		}
		if err := ensureNoActiveLoan(ctx, r.Loans, l.UserID); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		siblings, err = r.Loans.RejectPendingByUserID(ctx, l.UserID, l.ID)
		return err
	})
	if err != nil {
		return nil, loanNotFound(err, loanID)
	}

	observability.ObserveTransition(string(domain.StatusApproved), 1)
	u.emit(ctx, u.event(EventApproved, l, l.Amount))
	if siblings > 0 {
		observability.ObserveTransition(string(domain.StatusRejected), int(siblings))
		e := u.event(EventAutoRejected, l, decimal.Zero)
		e.Status = string(domain.StatusRejected)
		e.Count = siblings
		u.emit(ctx, e)
		u.log.Info("pending loans auto-rejected", "user_id", l.UserID, "approved_loan_id", l.LoanID, "count", siblings)
	}
	dto := toDTO(l)
	return &dto, nil
}

// Reject has no status guard; rejecting a non-pending loan is allowed but logged.
func (u *Usecase) Reject(ctx context.Context, loanID string) (*LoanDTO, error) {
	var (
		l          *domain.Loan
		prev       domain.Status
		wasPending bool
	)
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, locked *domain.Loan) error {
		l = locked
		prev = l.Status
		wasPending = l.Reject()
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		return nil, loanNotFound(err, loanID)
	}

	if !wasPending {
		u.log.Warn("rejected a loan that was not pending", "loan_id", loanID, "previous_status", prev)
	}
	observability.ObserveTransition(string(domain.StatusRejected), 1)
	u.emit(ctx, u.event(EventRejected, l, l.Amount))
	dto := toDTO(l)
	return &dto, nil
}

func (u *Usecase) PayEMI(ctx context.Context, loanID string, amount decimal.Decimal) (*Receipt, error) {
	return u.pay(ctx, loanID, amount, payment.TypeEMI)
}

func (u *Usecase) PayFull(ctx context.Context, loanID string, amount decimal.Decimal) (*Receipt, error) {
	return u.pay(ctx, loanID, amount, payment.TypeFull)
}

func (u *Usecase) PayCurrentEMI(ctx context.Context, userID string, amount decimal.Decimal) (*Receipt, error) {
	cur, err := u.current(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.PayEMI(ctx, cur.LoanID, amount)
}

func (u *Usecase) PayCurrentFull(ctx context.Context, userID string, amount decimal.Decimal) (*Receipt, error) {
	cur, err := u.current(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.PayFull(ctx, cur.LoanID, amount)
}

func (u *Usecase) pay(ctx context.Context, loanID string, amount decimal.Decimal, typ payment.Type) (*Receipt, error) {
	var (
		l *domain.Loan
		p *payment.Payment
	)
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, locked *domain.Loan) error {
		now := u.now()
		var err error
		switch typ {
		case payment.TypeEMI:
			err = locked.ApplyEMI(amount, now)
		case payment.TypeFull:
			err = locked.Settle(amount, now)
		default:
			err = fmt.Errorf("%w: unknown payment type %q", payment.ErrInvalid, typ)
		}
		if err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, locked); err != nil {
			return err
		}
		p, err = ledger.New(r.Payments, func() time.Time { return now }).Record(ctx, locked.LoanID, amount, typ)
		if err != nil {
			return err
		}
		l = locked
		return nil
	})
	if err != nil {
		return nil, loanNotFound(err, loanID)
	}

	observability.ObservePayment(string(typ), amount)
	e := u.event(EventPayment, l, amount)
	u.emit(ctx, e)
	if l.Status == domain.StatusCompleted {
		observability.ObserveTransition(string(domain.StatusCompleted), 1)
		u.emit(ctx, u.event(EventCompleted, l, l.PaidAmount))
	}
	return &Receipt{Payment: toPaymentDTO(p), Loan: toDTO(l)}, nil
}

func (u *Usecase) GetCurrent(ctx context.Context, userID string) (*LoanDTO, error) {
	l, err := u.current(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := toDTO(l)
	return &dto, nil
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, loanNotFound(err, loanID)
	}
	dto := toDTO(l)
	return &dto, nil
}

func (u *Usecase) History(ctx context.Context, userID string) ([]LoanDTO, error) {
	ls, err := u.loans.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toDTOs(ls), nil
}

func (u *Usecase) ListByStatus(ctx context.Context, s domain.Status) ([]LoanDTO, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, s)
	}
	ls, err := u.loans.ListByStatus(ctx, s)
	if err != nil {
		return nil, err
	}
	return toDTOs(ls), nil
}

func (u *Usecase) Payments(ctx context.Context, loanID string) ([]PaymentDTO, error) {
	if _, err := u.loans.GetByLoanID(ctx, loanID); err != nil {
		return nil, loanNotFound(err, loanID)
	}
	ps, err := ledger.New(u.payments, u.now).ForLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentDTO, 0, len(ps))
	for i := range ps {
		out = append(out, toPaymentDTO(&ps[i]))
	}
	return out, nil
}

func (u *Usecase) current(ctx context.Context, userID string) (*domain.Loan, error) {
	l, err := u.loans.GetByUserIDAndStatus(ctx, userID, domain.StatusApproved)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no active loan for user %s", domain.ErrNotFound, userID)
	}
	return l, err
}

func (u *Usecase) event(typ string, l *domain.Loan, amount decimal.Decimal) Event {
	return Event{
		Type:      typ,
		LoanID:    l.LoanID,
		UserID:    l.UserID,
		Status:    string(l.Status),
		Amount:    amount,
		Timestamp: u.now(),
	}
}

// emit never fails the caller; the state change has already committed.
func (u *Usecase) emit(ctx context.Context, e Event) {
	if u.notifier == nil {
		return
	}
	if err := u.notifier.Notify(ctx, e); err != nil {
		u.log.Warn("loan event not delivered", "type", e.Type, "loan_id", e.LoanID, "err", err)
	}
}

func ensureNoActiveLoan(ctx context.Context, loans domain.Repository, userID string) error {
	active, err := loans.GetByUserIDAndStatus(ctx, userID, domain.StatusApproved)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", domain.ErrConflict, active.LoanID)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return err
	}
}

func loanNotFound(err error, loanID string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, loanID)
	}
	return err
}

func userNotFound(err error, userID string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", user.ErrNotFound, userID)
	}
	return err
}
