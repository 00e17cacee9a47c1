// Package storage assembles persistence adapters.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/pdfshop/internal/config"
	"github.com/polkiloo/pdfshop/internal/domain/repository"
	"github.com/polkiloo/pdfshop/internal/storage/postgres"
	redisstore "github.com/polkiloo/pdfshop/internal/storage/redis"
)

// Module provides PostgreSQL repositories and the configured invoice counter.
var Module = fx.Options(
	postgres.Module,
	fx.Provide(newInvoiceCounter),
)

// currentCounter reads the highest invoice number already used in the database.
type currentCounter interface {
	CurrentInvoiceID(ctx context.Context) (int64, error)
}

type counterParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
	Storage   *postgres.Storage
}

func newInvoiceCounter(p counterParams) (repository.InvoiceCounter, error) {
	switch p.Config.CounterBackend {
	case config.CounterBackendPostgres:
		return p.Storage.Counter(), nil
	case config.CounterBackendRedis:
		client := redisstore.NewClient(p.Config.RedisAddr, p.Config.RedisPassword)
		counter := redisstore.NewCounter(client, p.Logger)
		p.Lifecycle.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return startRedisCounter(ctx, counter, p.Storage)
			},
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		return counter, nil
	default:
		return nil, fmt.Errorf("unknown counter backend %q", p.Config.CounterBackend)
	}
}

func startRedisCounter(ctx context.Context, counter *redisstore.Counter, db currentCounter) error {
	if err := counter.Ping(ctx); err != nil {
		return fmt.Errorf("redis counter: %w", err)
	}
	floor, err := db.CurrentInvoiceID(ctx)
	if err != nil {
		return err
	}
	return counter.Seed(ctx, floor)
}
