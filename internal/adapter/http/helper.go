package http

import (
	"errors"
	"log/slog"
	"net/http"

	"miniloan-backend/internal/domain/loan"
	"miniloan-backend/internal/domain/payment"
	"miniloan-backend/internal/domain/user"
	"miniloan-backend/pkg/emi"

	"github.com/labstack/echo/v4"
)

// statusFor maps domain sentinels onto HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, loan.ErrNotFound), errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, loan.ErrConflict), errors.Is(err, user.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, loan.ErrInvalidState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, loan.ErrValidation), errors.Is(err, emi.ErrInvalidInput),
		errors.Is(err, user.ErrInvalid), errors.Is(err, payment.ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as an ErrorResponse. Unmapped errors are logged and hidden.
func fail(c echo.Context, log *slog.Logger, err error) error {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method, "route", c.Path(), "err", err)
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}

// bind decodes and validates the body. On failure the response is already written
// and ok is false.
func bind(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
