package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/pdfshop/internal/adapter/blob"
	"github.com/polkiloo/pdfshop/internal/adapter/gateway"
	"github.com/polkiloo/pdfshop/internal/adapter/notify"
	"github.com/polkiloo/pdfshop/internal/app"
	"github.com/polkiloo/pdfshop/internal/config"
	"github.com/polkiloo/pdfshop/internal/logger"
	"github.com/polkiloo/pdfshop/internal/pkg/auth"
	"github.com/polkiloo/pdfshop/internal/server/http/handlers"
	"github.com/polkiloo/pdfshop/internal/server/http/router"
	"github.com/polkiloo/pdfshop/internal/storage"
	"github.com/polkiloo/pdfshop/internal/storage/postgres"
	"github.com/polkiloo/pdfshop/internal/usecase"
	"github.com/polkiloo/pdfshop/internal/worker"
)

// Module composes the whole application graph. Extra options are applied
// last so tests can swap components with fx.Replace.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		storage.Module,
		blob.Module,
		gateway.Module,
		notify.Module,
		worker.Module,
		usecase.Module,
		fx.Provide(
			func(s blob.Store) usecase.BlobStore { return s },
			func(s blob.Store) app.FileServer { return s },
			func(c gateway.Client) usecase.GatewayStateProvider { return c },
			func(s *postgres.Storage) app.HealthChecker { return s },
			func(f *app.ShopFacade) handlers.ShopFacade { return f },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
