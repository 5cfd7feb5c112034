package user

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
	ErrInvalid    = errors.New("invalid user")
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// ParseRole accepts "admin", "ADMIN" and the legacy "ROLE_ADMIN" spelling.
// Empty input means RoleUser.
func ParseRole(raw string) (Role, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "ROLE_")
	if s == "" {
		return RoleUser, nil
	}
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalid, raw)
	}
	return r, nil
}

// Table: users
type User struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	UserID        string          `gorm:"column:user_id;size:32;not null;uniqueIndex:ux_users_user_id" json:"user_id"`
	Name          string          `gorm:"column:name;size:120;not null" json:"name"`
	Email         string          `gorm:"column:email;size:255;not null;uniqueIndex:ux_users_email" json:"email"`
	Occupation    string          `gorm:"column:occupation;size:120;not null;default:''" json:"occupation"`
	MonthlyIncome decimal.Decimal `gorm:"column:monthly_income;type:decimal(18,2);not null" json:"monthly_income"`
	Role          Role            `gorm:"column:role;size:16;not null" json:"role"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }
