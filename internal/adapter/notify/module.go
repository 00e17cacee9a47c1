package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
	"go.uber.org/fx"

	"github.com/polkiloo/pdfshop/internal/config"
)

// Module provides the notifier: Kafka when brokers are configured, logs otherwise.
var Module = fx.Provide(newNotifier)

var newSyncProducer = func(brokers []string, cfg *sarama.Config) (sarama.SyncProducer, error) {
	return sarama.NewSyncProducer(brokers, cfg)
}

type notifierParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newNotifier(p notifierParams) (Notifier, error) {
	if len(p.Config.KafkaBrokers) == 0 {
		p.Logger.Warn("no kafka brokers configured, download notifications are only logged")
		return NewLogNotifier(p.Logger), nil
	}

	producer, err := newSyncProducer(p.Config.KafkaBrokers, NewProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	notifier := NewKafkaNotifier(producer, p.Config.KafkaTopic, p.Logger)
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return notifier.Close()
		},
	})
	return notifier, nil
}
