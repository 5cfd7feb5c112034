// Package notify delivers loan lifecycle events after commit.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	loanuc "miniloan-backend/internal/usecase/loan"

	"github.com/redis/go-redis/v9"
)

const publishTimeout = 2 * time.Second

// RedisPublisher publishes each event as JSON on a pub/sub channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) Notify(ctx context.Context, e loanuc.Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return p.rdb.Publish(ctx, p.channel, b).Err()
}

// LogNotifier writes events to the log. Used when no Redis channel is configured.
type LogNotifier struct{ log *slog.Logger }

func NewLogNotifier(l *slog.Logger) *LogNotifier { return &LogNotifier{log: l} }

func (n *LogNotifier) Notify(ctx context.Context, e loanuc.Event) error {
	n.log.InfoContext(ctx, "loan event",
		"type", e.Type, "loan_id", e.LoanID, "user_id", e.UserID,
		"status", e.Status, "amount", e.Amount.StringFixed(2))
	return nil
}
