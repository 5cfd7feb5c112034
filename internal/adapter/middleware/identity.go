package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"miniloan-backend/internal/domain/user"
	"miniloan-backend/pkg/id"

	"github.com/labstack/echo/v4"
)

const (
	HeaderUserID    = "Ax-User-Id"
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"

	ctxUserID = "ax.user_id"
)

type RoleLookup interface {
	RoleOf(ctx context.Context, userID string) (user.Role, error)
}

// Identity requires a 32-hex Ax-User-Id and stores it on the context.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
			if uid == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing " + HeaderUserID})
			}
			if !id.IsID32(uid) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid " + HeaderUserID})
			}
			c.Set(ctxUserID, uid)
			return next(c)
		}
	}
}

// UserID returns the caller set by Identity, or "".
func UserID(c echo.Context) string {
	s, _ := c.Get(ctxUserID).(string)
	return s
}

// RequireRole must run after Identity.
func RequireRole(lookup RoleLookup, allowed ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := UserID(c)
			if uid == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
			}
			role, err := lookup.RoleOf(c.Request().Context(), uid)
			switch {
			case errors.Is(err, user.ErrNotFound):
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unknown user"})
			case err != nil:
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
			}
			for _, r := range allowed {
				if role == r {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}
