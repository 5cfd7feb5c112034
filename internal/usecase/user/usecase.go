package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "miniloan-backend/internal/domain/user"
	"miniloan-backend/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Usecase struct{ repo domain.Repository }

func NewUsecase(r domain.Repository) *Usecase { return &Usecase{repo: r} }

func (u *Usecase) Register(ctx context.Context, in RegisterInput) (*UserDTO, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", domain.ErrInvalid)
	}
	if in.MonthlyIncome.IsNegative() {
		return nil, fmt.Errorf("%w: monthly income cannot be negative", domain.ErrInvalid)
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}

	_, err = u.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", domain.ErrEmailTaken, email)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	usr := &domain.User{
		UserID:        id.NewID32(),
		Name:          name,
		Email:         email,
		Occupation:    strings.TrimSpace(in.Occupation),
		MonthlyIncome: in.MonthlyIncome.Round(2),
		Role:          role,
	}
	if err := u.repo.Create(ctx, usr); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", domain.ErrEmailTaken, email)
		}
		return nil, err
	}
	return toDTO(usr), nil
}

// UpdateProfile replaces the caller's occupation and monthly income. The new
// income decides the rate tier of later applications; existing loans keep theirs.
func (u *Usecase) UpdateProfile(ctx context.Context, userID, occupation string, income decimal.Decimal) (*UserDTO, error) {
	occupation = strings.TrimSpace(occupation)
	if occupation == "" {
		return nil, fmt.Errorf("%w: occupation is required", domain.ErrInvalid)
	}
	if income.IsNegative() {
		return nil, fmt.Errorf("%w: monthly income cannot be negative", domain.ErrInvalid)
	}
	usr, err := u.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	usr.Occupation = occupation
	usr.MonthlyIncome = income.Round(2)
	if err := u.repo.Save(ctx, usr); err != nil {
		return nil, err
	}
	return toDTO(usr), nil
}

func (u *Usecase) Get(ctx context.Context, userID string) (*UserDTO, error) {
	usr, err := u.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toDTO(usr), nil
}

func (u *Usecase) List(ctx context.Context) ([]UserDTO, error) {
	rows, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(&rows[i]))
	}
	return out, nil
}

// IncomeOf satisfies the loan usecase's IncomeLookup.
func (u *Usecase) IncomeOf(ctx context.Context, userID string) (decimal.Decimal, error) {
	usr, err := u.find(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return usr.MonthlyIncome, nil
}

func (u *Usecase) RoleOf(ctx context.Context, userID string) (domain.Role, error) {
	usr, err := u.find(ctx, userID)
	if err != nil {
		return "", err
	}
	return usr.Role, nil
}

func (u *Usecase) find(ctx context.Context, userID string) (*domain.User, error) {
	usr, err := u.repo.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, userID)
	}
	return usr, err
}
