package postgres

import (
	"context"
	"fmt"
)

// NextInvoiceID increments the single counter row and returns the new value
// in one statement. The counter never falls behind numbers already used by
// orders, which covers numbers issued while another backend was active.
func (c *invoiceCounter) NextInvoiceID(ctx context.Context) (int64, error) {
	const query = `UPDATE invoice_counter
                   SET value = GREATEST(value, (SELECT COALESCE(MAX(invoice_id), 0) FROM orders)) + 1
                   WHERE id = 1 RETURNING value`
	var next int64
	if err := c.storage.pool.QueryRow(ctx, query).Scan(&next); err != nil {
		return 0, fmt.Errorf("next invoice id: %w", err)
	}
	return next, nil
}

// CurrentInvoiceID returns the highest invoice number known to the database,
// either from the counter row or from stored orders.
func (s *Storage) CurrentInvoiceID(ctx context.Context) (int64, error) {
	const query = `SELECT GREATEST(
                       COALESCE((SELECT value FROM invoice_counter WHERE id = 1), 0),
                       COALESCE((SELECT MAX(invoice_id) FROM orders), 0))`
	var current int64
	if err := s.pool.QueryRow(ctx, query).Scan(&current); err != nil {
		return 0, fmt.Errorf("current invoice id: %w", err)
	}
	return current, nil
}
