// Package redis keeps the invoice counter in Redis for deployments that
// share one counter between several database replicas.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/polkiloo/pdfshop/internal/domain/repository"
)

// CounterKey holds the last issued invoice number.
const CounterKey = "pdfshop:invoice_counter"

// SeedScript raises the key to ARGV[1] and never lowers it. It returns the
// resulting value.
const SeedScript = `local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
local floor = tonumber(ARGV[1])
if cur < floor then
  redis.call('SET', KEYS[1], floor)
  return floor
end
return cur`

// NextScript increments the key but never returns a value at or below
// ARGV[1], so a key lost to a restart without persistence resumes above the
// last known number.
const NextScript = `local v = redis.call('INCR', KEYS[1])
local floor = tonumber(ARGV[1])
if v <= floor then
  v = floor + 1
  redis.call('SET', KEYS[1], v)
end
return v`

// Counter issues invoice numbers from a Redis key. Both scripts run
// atomically on the server.
type Counter struct {
	client goredis.Cmdable
	logger *slog.Logger
	floor  atomic.Int64
}

var _ repository.InvoiceCounter = (*Counter)(nil)

// NewCounter wraps a redis client.
func NewCounter(client goredis.Cmdable, logger *slog.Logger) *Counter {
	return &Counter{client: client, logger: logger}
}

// NextInvoiceID returns the next invoice number.
func (c *Counter) NextInvoiceID(ctx context.Context) (int64, error) {
	next, err := c.client.Eval(ctx, NextScript, []string{CounterKey}, c.floor.Load()).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis incr: %w", err)
	}
	c.raiseFloor(next)
	return next, nil
}

// Seed raises the counter to floor, the highest number already used by
// orders. A key above floor is left as is.
func (c *Counter) Seed(ctx context.Context, floor int64) error {
	current, err := c.client.Eval(ctx, SeedScript, []string{CounterKey}, floor).Int64()
	if err != nil {
		return fmt.Errorf("redis seed: %w", err)
	}
	c.raiseFloor(current)
	if c.logger != nil {
		c.logger.Info("invoice counter seeded",
			slog.Int64("floor", floor),
			slog.Int64("current", current),
		)
	}
	return nil
}

func (c *Counter) raiseFloor(v int64) {
	for {
		cur := c.floor.Load()
		if v <= cur || c.floor.CompareAndSwap(cur, v) {
			return
		}
	}
}

// Ping verifies connectivity.
func (c *Counter) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

// NewClient builds a client for addr.
func NewClient(addr, password string) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
}
