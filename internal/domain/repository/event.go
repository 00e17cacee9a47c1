package repository

import (
	"context"

	"github.com/polkiloo/pdfshop/internal/domain/model"
)

// EventRepository is the append-only audit log of orders.
type EventRepository interface {
	Append(ctx context.Context, orderID string, eventType model.EventType, details any) error
	ListByOrder(ctx context.Context, orderID string) ([]model.OrderEvent, error)
}
