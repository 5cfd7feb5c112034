package http

import (
	"log/slog"
	"net/http"

	mw "miniloan-backend/internal/adapter/middleware"
	useruc "miniloan-backend/internal/usecase/user"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type UserHandler struct {
	uc  *useruc.Usecase
	log *slog.Logger
}

func NewUserHandler(uc *useruc.Usecase, log *slog.Logger) *UserHandler {
	return &UserHandler{uc: uc, log: log}
}

type registerReq struct {
	Name          string          `json:"name" validate:"required,max=120"`
	Email         string          `json:"email" validate:"required,email,max=255"`
	Occupation    string          `json:"occupation,omitempty" validate:"max=120"`
	MonthlyIncome decimal.Decimal `json:"monthly_income" validate:"gte=0,dec2"`
	Role          string          `json:"role,omitempty" validate:"omitempty,max=16"`
}

func (h *UserHandler) Register(c echo.Context) error {
	var req registerReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Register(c.Request().Context(), useruc.RegisterInput(req))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *UserHandler) Me(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), mw.UserID(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// monthly_income is a pointer so an omitted field is told apart from zero.
type updateProfileReq struct {
	Occupation    string           `json:"occupation" validate:"required,max=120"`
	MonthlyIncome *decimal.Decimal `json:"monthly_income"`
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	if req.MonthlyIncome == nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: []FieldError{{Field: "monthly_income", Message: "is required"}},
		})
	}
	dto, err := h.uc.UpdateProfile(c.Request().Context(), mw.UserID(c), req.Occupation, *req.MonthlyIncome)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *UserHandler) List(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context())
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}
