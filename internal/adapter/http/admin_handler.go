package http

import (
	"log/slog"
	"net/http"

	"miniloan-backend/internal/domain/loan"
	loanuc "miniloan-backend/internal/usecase/loan"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	uc  *loanuc.Usecase
	log *slog.Logger
}

func NewAdminHandler(uc *loanuc.Usecase, log *slog.Logger) *AdminHandler {
	return &AdminHandler{uc: uc, log: log}
}

func (h *AdminHandler) ListByStatus(c echo.Context) error {
	s, err := loan.ParseStatus(c.Param("status"))
	if err != nil {
		return fail(c, h.log, err)
	}
	out, err := h.uc.ListByStatus(c.Request().Context(), s)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) Approve(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param"})
	}
	dto, err := h.uc.Approve(c.Request().Context(), loanID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AdminHandler) Reject(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param"})
	}
	dto, err := h.uc.Reject(c.Request().Context(), loanID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}
