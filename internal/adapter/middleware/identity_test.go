package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"miniloan-backend/internal/domain/user"

	"github.com/labstack/echo/v4"
)

type roleFn func(ctx context.Context, userID string) (user.Role, error)

func (f roleFn) RoleOf(ctx context.Context, userID string) (user.Role, error) { return f(ctx, userID) }

const (
	adminID  = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	plainID  = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	ghostID  = "cccccccccccccccccccccccccccccccc"
	brokenID = "dddddddddddddddddddddddddddddddd"
)

func adminOnly() *echo.Echo {
	lookup := roleFn(func(_ context.Context, uid string) (user.Role, error) {
		switch uid {
		case adminID:
			return user.RoleAdmin, nil
		case plainID:
			return user.RoleUser, nil
		case brokenID:
			return "", errors.New("db down")
		}
		return "", user.ErrNotFound
	})
	e := echo.New()
	g := e.Group("/admin", Identity(), RequireRole(lookup, user.RoleAdmin))
	g.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, UserID(c))
	})
	return e
}

func TestIdentityAndRole(t *testing.T) {
	e := adminOnly()
	tests := []struct {
		name string
		hdr  map[string]string
		want int
	}{
		{"missing header", nil, http.StatusUnauthorized},
		{"malformed id", map[string]string{"Ax-User-Id": "ADMIN"}, http.StatusUnauthorized},
		{"unknown user", map[string]string{"Ax-User-Id": ghostID}, http.StatusUnauthorized},
		{"plain user", map[string]string{"Ax-User-Id": plainID}, http.StatusForbidden},
		{"lookup failure", map[string]string{"Ax-User-Id": brokenID}, http.StatusInternalServerError},
		{"admin", map[string]string{"Ax-User-Id": adminID}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doReq(t, e, http.MethodGet, "/admin/ping", nil, tt.hdr)
			if rec.Code != tt.want {
				t.Fatalf("want %d, got %d (%s)", tt.want, rec.Code, rec.Body.String())
			}
			if tt.want == http.StatusOK && rec.Body.String() != adminID {
				t.Fatalf("UserID not propagated: %q", rec.Body.String())
			}
		})
	}
}
