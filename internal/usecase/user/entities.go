package user

import (
	"time"

	domain "miniloan-backend/internal/domain/user"

	"github.com/shopspring/decimal"
)

type RegisterInput struct {
	Name          string          `json:"name" validate:"required,max=120"`
	Email         string          `json:"email" validate:"required,email,max=255"`
	Occupation    string          `json:"occupation,omitempty" validate:"max=120"`
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
	Role          string          `json:"role,omitempty" validate:"omitempty,max=16"`
}

type UserDTO struct {
	UserID        string          `json:"user_id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Occupation    string          `json:"occupation"`
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
	Role          string          `json:"role"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toDTO(u *domain.User) *UserDTO {
	return &UserDTO{
		UserID:        u.UserID,
		Name:          u.Name,
		Email:         u.Email,
		Occupation:    u.Occupation,
		MonthlyIncome: u.MonthlyIncome,
		Role:          string(u.Role),
		CreatedAt:     u.CreatedAt,
	}
}
