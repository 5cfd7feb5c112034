package http

import (
	"log/slog"
	"net/http"

	mw "miniloan-backend/internal/adapter/middleware"
	"miniloan-backend/internal/domain/loan"
	loanuc "miniloan-backend/internal/usecase/loan"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type LoanHandler struct {
	uc  *loanuc.Usecase
	log *slog.Logger
}

func NewLoanHandler(uc *loanuc.Usecase, log *slog.Logger) *LoanHandler {
	return &LoanHandler{uc: uc, log: log}
}

type applyReq struct {
	LoanAmount decimal.Decimal `json:"loan_amount" validate:"required,gte=1000,lte=50000,dec2"`
	Tenure     int             `json:"tenure" validate:"required,gte=1,lte=24"`
}

type payReq struct {
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0,dec2"`
}

func (h *LoanHandler) Apply(c echo.Context) error {
	var req applyReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Apply(c.Request().Context(), loanuc.ApplyInput{
		UserID: mw.UserID(c),
		Amount: req.LoanAmount,
		Tenure: req.Tenure,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) Current(c echo.Context) error {
	dto, err := h.uc.GetCurrent(c.Request().Context(), mw.UserID(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) History(c echo.Context) error {
	out, err := h.uc.History(c.Request().Context(), mw.UserID(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) Pay(c echo.Context) error {
	var req payReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	rc, err := h.uc.PayCurrentEMI(c.Request().Context(), mw.UserID(c), req.Amount)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, rc)
}

func (h *LoanHandler) PayFull(c echo.Context) error {
	var req payReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	rc, err := h.uc.PayCurrentFull(c.Request().Context(), mw.UserID(c), req.Amount)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, rc)
}

// Payments is owner-only; a loan owned by someone else reads as not found.
func (h *LoanHandler) Payments(c echo.Context) error {
	ctx := c.Request().Context()
	loanID := c.Param("loan_id")
	l, err := h.uc.Get(ctx, loanID)
	if err != nil {
		return fail(c, h.log, err)
	}
	if l.UserID != mw.UserID(c) {
		return fail(c, h.log, loan.ErrNotFound)
	}
	out, err := h.uc.Payments(ctx, loanID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}
