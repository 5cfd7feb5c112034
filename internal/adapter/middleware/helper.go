package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"miniloan-backend/pkg/id"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "miniloan:idem:"

// storedResponse is what the replay store keeps per key. Pending marks a
// request whose handler has not finished yet.
type storedResponse struct {
	Pending   bool      `json:"pending"`
	Status    int       `json:"status,omitempty"`
	Body      []byte    `json:"body,omitempty"`
	BodyHash  string    `json:"body_hash"`
	RequestID string    `json:"request_id"`
	RequestAt int64     `json:"request_at_ms"`
	StoredAt  time.Time `json:"stored_at"`
}

func (s storedResponse) replayable() bool { return !s.Pending && s.Status != 0 && len(s.Body) > 0 }

// replayStore wraps the redis calls the middleware needs.
type replayStore struct {
	rdb     *redis.Client
	lockTTL time.Duration
}

// reserve claims key with a pending marker. false means somebody else holds it.
func (s replayStore) reserve(ctx context.Context, key string, v storedResponse) (bool, error) {
	v.Pending = true
	payload, err := json.Marshal(v)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, s.lockTTL).Result()
}

func (s replayStore) load(ctx context.Context, key string) (storedResponse, error) {
	var v storedResponse
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return v, err
	}
	err = json.Unmarshal(raw, &v)
	return v, err
}

func (s replayStore) commit(ctx context.Context, key string, v storedResponse, ttl time.Duration) error {
	v.Pending = false
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, ttl).Err()
}

func (s replayStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func hashBody(b []byte) string { sum := sha256.Sum256(b); return hex.EncodeToString(sum[:]) }

// replayKey scopes a request id to one user and one route.
func replayKey(userID, method, route, requestID string) string {
	return keyPrefix + userID + ":" + strings.ToLower(method) + ":" + route + ":" + requestID
}

var reUUID = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)

// Lowercase uuid (v1-v5) or 32-hex.
func validRequestID(s string) bool {
	return reUUID.MatchString(s) || id.IsID32(s)
}

// parseRequestAt takes epoch seconds, epoch milliseconds or RFC3339 with a
// zone. Timestamps without a zone are rejected.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
}

func withinSkew(t, now time.Time, skew time.Duration) bool {
	return !t.Before(now.Add(-skew)) && !t.After(now.Add(skew))
}
