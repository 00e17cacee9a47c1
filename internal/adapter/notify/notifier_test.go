package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"go.uber.org/fx/fxtest"

	"github.com/polkiloo/pdfshop/internal/config"
	"github.com/polkiloo/pdfshop/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func sampleNotification() model.DownloadNotification {
	return model.DownloadNotification{
		OrderID:     "order-1",
		Email:       "buyer@example.com",
		BookTitle:   "Go in Practice",
		DownloadURL: "https://api.example.com/api/payment/download?orderId=order-1&token=abc",
	}
}

func TestKafkaNotifierPublishes(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var msg message
		if err := json.Unmarshal(val, &msg); err != nil {
			return err
		}
		if msg.Type != EventDownloadReady || msg.OrderID != "order-1" || msg.Email != "buyer@example.com" {
			return errors.New("unexpected payload")
		}
		return nil
	})

	notifier := NewKafkaNotifier(producer, "pdfshop.download-ready", testLogger())
	if err := notifier.Notify(context.Background(), sampleNotification()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := notifier.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestKafkaNotifierSendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	notifier := NewKafkaNotifier(producer, "topic", testLogger())
	if err := notifier.Notify(context.Background(), sampleNotification()); !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("expected broker error, got %v", err)
	}
	_ = notifier.Close()
}

func TestKafkaNotifierCancelledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	notifier := NewKafkaNotifier(producer, "topic", testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := notifier.Notify(ctx, sampleNotification()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
	_ = notifier.Close()
}

func TestNewProducerConfig(t *testing.T) {
	cfg := NewProducerConfig()
	if !cfg.Producer.Return.Successes || cfg.Producer.RequiredAcks != sarama.WaitForAll {
		t.Fatalf("unexpected producer config: %+v", cfg.Producer)
	}
}

func TestLogNotifier(t *testing.T) {
	if err := NewLogNotifier(testLogger()).Notify(context.Background(), sampleNotification()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewNotifierWithoutBrokers(t *testing.T) {
	notifier, err := newNotifier(notifierParams{
		Lifecycle: fxtest.NewLifecycle(t),
		Config:    &config.Config{},
		Logger:    testLogger(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := notifier.(*LogNotifier); !ok {
		t.Fatalf("expected *LogNotifier, got %T", notifier)
	}
}

func TestNewNotifierWithBrokers(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	t.Cleanup(func() {
		newSyncProducer = func(brokers []string, cfg *sarama.Config) (sarama.SyncProducer, error) {
			return sarama.NewSyncProducer(brokers, cfg)
		}
	})
	var gotBrokers []string
	newSyncProducer = func(brokers []string, _ *sarama.Config) (sarama.SyncProducer, error) {
		gotBrokers = brokers
		return producer, nil
	}

	lc := fxtest.NewLifecycle(t)
	notifier, err := newNotifier(notifierParams{
		Lifecycle: lc,
		Config:    &config.Config{KafkaBrokers: []string{"kafka:9092"}, KafkaTopic: "topic"},
		Logger:    testLogger(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := notifier.(*KafkaNotifier); !ok {
		t.Fatalf("expected *KafkaNotifier, got %T", notifier)
	}
	if len(gotBrokers) != 1 || gotBrokers[0] != "kafka:9092" {
		t.Fatalf("unexpected brokers: %v", gotBrokers)
	}

	lc.RequireStart()
	lc.RequireStop()
}

func TestNewNotifierProducerError(t *testing.T) {
	t.Cleanup(func() {
		newSyncProducer = func(brokers []string, cfg *sarama.Config) (sarama.SyncProducer, error) {
			return sarama.NewSyncProducer(brokers, cfg)
		}
	})
	newSyncProducer = func([]string, *sarama.Config) (sarama.SyncProducer, error) {
		return nil, errors.New("no brokers")
	}

	if _, err := newNotifier(notifierParams{
		Lifecycle: fxtest.NewLifecycle(t),
		Config:    &config.Config{KafkaBrokers: []string{"kafka:9092"}},
		Logger:    testLogger(),
	}); err == nil {
		t.Fatal("expected error")
	}
}
