package http

import (
	"log/slog"
	"net/http"

	"miniloan-backend/pkg/emi"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type EMIHandler struct{ log *slog.Logger }

func NewEMIHandler(log *slog.Logger) *EMIHandler { return &EMIHandler{log: log} }

// Either rate or monthly_income must be given; rate wins when both are.
type emiReq struct {
	Amount        decimal.Decimal `json:"amount" validate:"required,gt=0,dec2"`
	Months        int             `json:"months" validate:"required,gte=1,lte=360"`
	Rate          *float64        `json:"rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	MonthlyIncome *float64        `json:"monthly_income,omitempty" validate:"omitempty,gte=0"`
}

func (h *EMIHandler) Calculate(c echo.Context) error {
	var req emiReq
	if ok, err := bind(c, &req); !ok {
		return err
	}

	var (
		q   emi.Quote
		err error
	)
	switch {
	case req.Rate != nil:
		q, err = emi.NewQuote(req.Amount, *req.Rate, req.Months)
	case req.MonthlyIncome != nil:
		q, err = emi.QuoteForIncome(req.Amount, decimal.NewFromFloat(*req.MonthlyIncome), req.Months)
	default:
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: []FieldError{{Field: "rate", Message: "rate or monthly_income is required"}},
		})
	}
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, q)
}
