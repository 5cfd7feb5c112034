package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"miniloan-backend/internal/observability"
	"miniloan-backend/pkg/id"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	// lifetime of the pending marker if the handler never finishes
	pendingTTL   = 60 * time.Second
	maxClockSkew = 10 * time.Minute
	storeTimeout = 2 * time.Second
)

type respRecorder struct {
	w    http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (r *respRecorder) Header() http.Header { return r.w.Header() }
func (r *respRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.w.Write(b)
}
func (r *respRecorder) WriteHeader(statusCode int) { r.code = statusCode; r.w.WriteHeader(statusCode) }

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}

// IdempotencyMiddleware replays the stored response for a repeated
// (user, route, Ax-Request-Id). The user comes from Identity when it ran
// first, else from Ax-User-Id. Server errors are not stored so the client
// may retry with the same id.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration, log *slog.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = observability.Discard()
	}
	store := replayStore{rdb: rdb, lockTTL: pendingTTL}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			reqID := strings.TrimSpace(req.Header.Get(HeaderRequestID))
			switch {
			case reqID == "":
				return badRequest(c, "missing "+HeaderRequestID)
			case !validRequestID(reqID):
				return badRequest(c, "invalid "+HeaderRequestID+" format")
			}
			reqAt, err := parseRequestAt(req.Header.Get(HeaderRequestAt))
			if err != nil {
				return badRequest(c, err.Error())
			}
			if !withinSkew(reqAt, time.Now().UTC(), maxClockSkew) {
				return badRequest(c, HeaderRequestAt+" too skewed")
			}
			userID := UserID(c)
			if userID == "" {
				userID = strings.TrimSpace(req.Header.Get(HeaderUserID))
			}
			switch {
			case userID == "":
				return badRequest(c, "missing "+HeaderUserID)
			case !id.IsID32(userID):
				return badRequest(c, "invalid "+HeaderUserID)
			}

			var body []byte
			if req.Body != nil {
				if body, err = io.ReadAll(req.Body); err != nil {
					return badRequest(c, "unreadable request body")
				}
			}
			req.Body = io.NopCloser(bytes.NewReader(body))

			key := replayKey(userID, req.Method, c.Path(), reqID)
			entry := storedResponse{
				BodyHash:  hashBody(body),
				RequestID: reqID,
				RequestAt: reqAt.UnixMilli(),
				StoredAt:  time.Now().UTC(),
			}

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()
			ok, err := store.reserve(ctx, key, entry)
			if err != nil {
				log.Warn("idempotency store unavailable", "key", key, "err", err)
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
			}
			if !ok {
				prev, err := store.load(ctx, key)
				if err != nil {
					log.Warn("idempotency entry unreadable", "key", key, "err", err)
				}
				switch {
				case prev.BodyHash != "" && prev.BodyHash != entry.BodyHash:
					return c.JSON(http.StatusConflict, map[string]string{"error": HeaderRequestID + " reused with different body"})
				case prev.replayable():
					observability.IdempotentReplays.Inc()
					return c.Blob(prev.Status, echo.MIMEApplicationJSON, prev.Body)
				default:
					return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
				}
			}

			rec := &respRecorder{w: c.Response().Writer, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the request context may already be cancelled here
			sctx, scancel := context.WithTimeout(context.Background(), storeTimeout)
			defer scancel()
			if rec.code >= http.StatusInternalServerError {
				if err := store.release(sctx, key); err != nil {
					log.Warn("idempotency key not released", "key", key, "err", err)
				}
				return nil
			}
			entry.Status = rec.code
			entry.Body = rec.buf.Bytes()
			entry.StoredAt = time.Now().UTC()
			if err := store.commit(sctx, key, entry, ttl); err != nil {
				log.Warn("idempotency response not stored", "key", key, "err", err)
			}
			return nil
		}
	}
}
