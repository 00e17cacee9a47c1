package usecase

import (
	"context"
	"log/slog"

	"github.com/polkiloo/pdfshop/internal/domain/model"
	"github.com/polkiloo/pdfshop/internal/domain/repository"
)

// recordEvent appends to the audit log. A failed append is logged and does
// not abort the flow that produced the event.
func recordEvent(ctx context.Context, events repository.EventRepository, logger *slog.Logger, orderID string, eventType model.EventType, details any) {
	if err := events.Append(ctx, orderID, eventType, details); err != nil {
		logger.ErrorContext(ctx, "append order event failed",
			slog.String("order_id", orderID),
			slog.String("event", string(eventType)),
			slog.String("error", err.Error()),
		)
	}
}
