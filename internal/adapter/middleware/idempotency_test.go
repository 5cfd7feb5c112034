package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"

	"miniloan-backend/internal/observability"
)

const payPath = "/api/loan/pay"

func setupEcho(rdb *redis.Client, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(IdempotencyMiddleware(rdb, ttl, nil))
	e.POST(payPath, handler)
	e.GET(payPath, handler)
	return e
}

func doReq(t *testing.T, e *echo.Echo, method, path string, body io.Reader, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func okCreatedHandler(c echo.Context) error {
	return c.JSON(http.StatusCreated, map[string]any{"ok": true})
}

func validHeaders() map[string]string {
	return map[string]string{
		HeaderRequestID: "3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88",
		HeaderRequestAt: strconv.FormatInt(time.Now().UTC().UnixMilli(), 10),
		HeaderUserID:    user32,
	}
}

func with(h map[string]string, k, v string) map[string]string {
	out := make(map[string]string, len(h))
	for hk, hv := range h {
		out[hk] = hv
	}
	if v == "" {
		delete(out, k)
	} else {
		out[k] = v
	}
	return out
}

func Test_BypassOnGET_NoHeadersRequired(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "get ok"})
	})
	if rec := doReq(t, e, http.MethodGet, payPath, nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func Test_HeaderValidation(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	e := setupEcho(rdb, 30*time.Second, okCreatedHandler)
	skewed := time.Now().UTC().Add(-maxClockSkew - time.Minute).Format(time.RFC3339)

	cases := []struct {
		name string
		hdr  map[string]string
	}{
		{"missing request id", with(validHeaders(), HeaderRequestID, "")},
		{"invalid request id", with(validHeaders(), HeaderRequestID, "NOT-VALID")},
		{"invalid request at", with(validHeaders(), HeaderRequestAt, "not-a-time")},
		{"skewed request at", with(validHeaders(), HeaderRequestAt, skewed)},
		{"missing user", with(validHeaders(), HeaderUserID, "")},
		{"invalid user", with(validHeaders(), HeaderUserID, "not32hex")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doReq(t, e, http.MethodPost, payPath, bytes.NewReader([]byte(`{"x":1}`)), tc.hdr)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("want 400, got %d body=%s", rec.Code, rec.Body.String())
			}
		})
	}
}

func Test_Replay_CountsMetric_And_SkipsHandler(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	calls := 0
	e := setupEcho(rdb, time.Minute, func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusCreated, map[string]int{"calls": calls})
	})

	before := testutil.ToFloat64(observability.IdempotentReplays)
	h := validHeaders()
	rec1 := doReq(t, e, http.MethodPost, payPath, bytes.NewReader([]byte(`{"amount":"888.49"}`)), h)
	rec2 := doReq(t, e, http.MethodPost, payPath, bytes.NewReader([]byte(`{"amount":"888.49"}`)), h)

	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
	if rec1.Code != http.StatusCreated || rec2.Code != http.StatusCreated {
		t.Fatalf("codes: %d then %d", rec1.Code, rec2.Code)
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
	if got := testutil.ToFloat64(observability.IdempotentReplays) - before; got != 1 {
		t.Fatalf("replay counter delta = %v", got)
	}
}

func Test_Conflict_When_Pending(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	e := setupEcho(rdb, 2*time.Minute, okCreatedHandler)
	h := validHeaders()
	body := []byte(`{"x":1}`)

	store := replayStore{rdb: rdb, lockTTL: pendingTTL}
	key := replayKey(user32, http.MethodPost, payPath, h[HeaderRequestID])
	if ok, err := store.reserve(context.Background(), key, storedResponse{BodyHash: hashBody(body)}); err != nil || !ok {
		t.Fatalf("seed pending: ok=%v err=%v", ok, err)
	}

	rec := doReq(t, e, http.MethodPost, payPath, bytes.NewReader(body), h)
	if rec.Code != http.StatusConflict {
		t.Fatalf("pending => want 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func Test_Conflict_When_SameRequestID_DifferentBody(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	e := setupEcho(rdb, 2*time.Minute, okCreatedHandler)
	h := validHeaders()

	if rec := doReq(t, e, http.MethodPost, payPath, bytes.NewReader([]byte(`{"x":1}`)), h); rec.Code != http.StatusCreated {
		t.Fatalf("first => want 201, got %d", rec.Code)
	}
	rec := doReq(t, e, http.MethodPost, payPath, bytes.NewReader([]byte(`{"x":2}`)), h)
	if rec.Code != http.StatusConflict {
		t.Fatalf("different body => want 409, got %d", rec.Code)
	}
}

func Test_StoreUnavailable_Returns503(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	e := setupEcho(rdb, time.Minute, okCreatedHandler)

	rec := doReq(t, e, http.MethodPost, payPath, bytes.NewReader([]byte(`{}`)), validHeaders())
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("store unavailable => want 503, got %d", rec.Code)
	}
}

func Test_ServerError_IsNotCached(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	calls := 0
	e := setupEcho(rdb, time.Minute, func(c echo.Context) error {
		calls++
		if calls == 1 {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		return c.JSON(http.StatusOK, map[string]bool{"ok": true})
	})

	h := validHeaders()
	rec1 := doReq(t, e, http.MethodPost, payPath, bytes.NewReader([]byte(`{}`)), h)
	if rec1.Code != http.StatusInternalServerError {
		t.Fatalf("first => want 500, got %d", rec1.Code)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("key should be released after 5xx, have %v", keys)
	}
	rec2 := doReq(t, e, http.MethodPost, payPath, bytes.NewReader([]byte(`{}`)), h)
	if rec2.Code != http.StatusOK || calls != 2 {
		t.Fatalf("retry => want 200 after rerun, got %d (calls=%d)", rec2.Code, calls)
	}
}

func Test_StoredWithTTL(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	e := setupEcho(rdb, 90*time.Second, okCreatedHandler)
	h := validHeaders()
	doReq(t, e, http.MethodPost, payPath, bytes.NewReader([]byte(`{}`)), h)

	key := replayKey(user32, http.MethodPost, payPath, h[HeaderRequestID])
	if ttl := mr.TTL(key); ttl <= pendingTTL || ttl > 90*time.Second {
		t.Fatalf("stored ttl = %v, want the configured 90s", ttl)
	}
}

func Test_KeyUsesIdentityFromContext(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	e := echo.New()
	e.Use(Identity(), IdempotencyMiddleware(rdb, time.Minute, nil))
	e.POST(payPath, okCreatedHandler)

	h := validHeaders()
	if rec := doReq(t, e, http.MethodPost, payPath, bytes.NewReader([]byte(`{}`)), h); rec.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d", rec.Code)
	}
	key := replayKey(h[HeaderUserID], http.MethodPost, payPath, h[HeaderRequestID])
	if !mr.Exists(key) {
		t.Fatalf("expected key %s in store, have %v", key, mr.Keys())
	}
}

type brokenBody struct{ sent bool }

func (b *brokenBody) Read(p []byte) (int, error) {
	if b.sent {
		return 0, errors.New("connection reset")
	}
	b.sent = true
	return copy(p, `{"amount":"88`), nil
}

func Test_TruncatedBody_Returns400_WithoutReserving(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	calls := 0
	e := setupEcho(rdb, time.Minute, func(c echo.Context) error {
		calls++
		return c.NoContent(http.StatusOK)
	})

	rec := doReq(t, e, http.MethodPost, payPath, &brokenBody{}, validHeaders())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d body=%s", rec.Code, rec.Body.String())
	}
	if calls != 0 {
		t.Fatalf("handler ran %d times", calls)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("nothing should be reserved, have %v", keys)
	}
}
