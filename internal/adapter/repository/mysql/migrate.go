package mysql

import (
	"miniloan-backend/internal/domain/loan"
	"miniloan-backend/internal/domain/payment"
	"miniloan-backend/internal/domain/user"

	"gorm.io/gorm"
)

// Migrate creates or updates the users, loans and payments tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&user.User{}, &loan.Loan{}, &payment.Payment{})
}
