package http

import (
	"log/slog"
	"time"

	mw "miniloan-backend/internal/adapter/middleware"
	"miniloan-backend/internal/domain/user"
	"miniloan-backend/internal/observability"
	loanuc "miniloan-backend/internal/usecase/loan"
	useruc "miniloan-backend/internal/usecase/user"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type Deps struct {
	Loans *loanuc.Usecase
	Users *useruc.Usecase
	// Nil disables the idempotency layer.
	Redis          *redis.Client
	IdempotencyTTL time.Duration
	Checks         map[string]Check
	Log            *slog.Logger
}

func NewRouter(d Deps) *echo.Echo {
	if d.Log == nil {
		d.Log = observability.Discard()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	h := NewHandler(d.Checks)
	emiH := NewEMIHandler(d.Log)
	users := NewUserHandler(d.Users, d.Log)
	loans := NewLoanHandler(d.Loans, d.Log)
	admin := NewAdminHandler(d.Loans, d.Log)

	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.POST("/emi/calculate", emiH.Calculate)
	api.POST("/users", users.Register)

	authed := api.Group("", mw.Identity())
	authed.GET("/users/me", users.Me)
	authed.PUT("/users/me", users.UpdateProfile)

	var idem []echo.MiddlewareFunc
	if d.Redis != nil {
		idem = append(idem, mw.IdempotencyMiddleware(d.Redis, d.IdempotencyTTL, d.Log))
	}
	lg := authed.Group("/loan")
	lg.POST("/apply", loans.Apply, idem...)
	lg.GET("/current", loans.Current)
	lg.GET("/history", loans.History)
	lg.POST("/pay", loans.Pay, idem...)
	lg.POST("/pay-full", loans.PayFull, idem...)
	lg.GET("/:loan_id/payments", loans.Payments)

	ag := authed.Group("/admin", mw.RequireRole(d.Users, user.RoleAdmin))
	ag.GET("/loans/:status", admin.ListByStatus)
	ag.POST("/loan/:loan_id/approve", admin.Approve)
	ag.POST("/loan/:loan_id/reject", admin.Reject)
	ag.GET("/users", users.List)

	return e
}
