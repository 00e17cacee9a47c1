package worker

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/pdfshop/internal/adapter/notify"
	"github.com/polkiloo/pdfshop/internal/config"
	"github.com/polkiloo/pdfshop/internal/domain/repository"
	"github.com/polkiloo/pdfshop/internal/usecase"
)

// Module provides the notification dispatcher and exposes it as the
// queue used by payment callbacks.
var Module = fx.Provide(
	newDispatcher,
	func(d *NotificationDispatcher) usecase.NotificationQueue { return d },
)

type dispatcherParams struct {
	fx.In

	Config   *config.Config
	Notifier notify.Notifier
	Events   repository.EventRepository
	Logger   *slog.Logger
}

func newDispatcher(p dispatcherParams) *NotificationDispatcher {
	return NewNotificationDispatcher(
		p.Notifier,
		p.Events,
		p.Config.NotifyWorkers,
		p.Config.NotifyQueueSize,
		RetryPolicy{MaxRetries: defaultMaxRetries},
		p.Logger,
	)
}
