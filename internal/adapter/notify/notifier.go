// Package notify delivers download-ready notifications to the mail pipeline.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"

	"github.com/polkiloo/pdfshop/internal/domain/model"
)

// EventDownloadReady is the message type consumed by the mail sender.
const EventDownloadReady = "download_ready"

// Notifier sends a download link to the buyer.
type Notifier interface {
	Notify(ctx context.Context, n model.DownloadNotification) error
}

type message struct {
	Type        string `json:"type"`
	OrderID     string `json:"orderId"`
	Email       string `json:"email"`
	BookTitle   string `json:"bookTitle"`
	DownloadURL string `json:"downloadUrl"`
}

// KafkaNotifier publishes notifications to a topic keyed by order id.
type KafkaNotifier struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

// NewKafkaNotifier wraps a sync producer.
func NewKafkaNotifier(producer sarama.SyncProducer, topic string, logger *slog.Logger) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic, logger: logger}
}

// NewProducerConfig returns the producer settings used for notifications.
func NewProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	return cfg
}

// Notify publishes one message and waits for the broker acknowledgement.
func (k *KafkaNotifier) Notify(ctx context.Context, n model.DownloadNotification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(message{
		Type:        EventDownloadReady,
		OrderID:     n.OrderID,
		Email:       n.Email,
		BookTitle:   n.BookTitle,
		DownloadURL: n.DownloadURL,
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(n.OrderID),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(EventDownloadReady)},
		},
	}
	partition, offset, err := k.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}

	k.logger.Info("download notification published",
		slog.String("order_id", n.OrderID),
		slog.String("topic", k.topic),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
	)
	return nil
}

// Close shuts the producer down.
func (k *KafkaNotifier) Close() error {
	return k.producer.Close()
}

// LogNotifier only records the notification; used when no broker is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(ctx context.Context, n model.DownloadNotification) error {
	l.logger.InfoContext(ctx, "download link ready",
		slog.String("order_id", n.OrderID),
		slog.String("email", n.Email),
		slog.String("book", n.BookTitle),
	)
	return nil
}
