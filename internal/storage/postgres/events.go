package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/polkiloo/pdfshop/internal/domain/model"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (r *eventRepository) Append(ctx context.Context, orderID string, eventType model.EventType, details any) error {
	return insertEvent(ctx, r.storage.pool, orderID, eventType, details)
}

func insertEvent(ctx context.Context, db execer, orderID string, eventType model.EventType, details any) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal event details: %w", err)
	}
	if details == nil {
		payload = []byte(`{}`)
	}

	const query = `INSERT INTO order_events (order_id, type, details) VALUES ($1, $2, $3)`
	if _, err := db.Exec(ctx, query, orderID, eventType, payload); err != nil {
		return fmt.Errorf("append %s event: %w", eventType, err)
	}
	return nil
}

func (r *eventRepository) ListByOrder(ctx context.Context, orderID string) ([]model.OrderEvent, error) {
	const query = `SELECT id, order_id, type, details, created_at
                   FROM order_events WHERE order_id=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.OrderEvent
	for rows.Next() {
		var e model.OrderEvent
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Type, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
