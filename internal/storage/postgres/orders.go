package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domainErrors "github.com/polkiloo/pdfshop/internal/domain/errors"
	"github.com/polkiloo/pdfshop/internal/domain/model"
)

const orderColumns = `id, book_id, email, amount, currency, status, invoice_id, signature,
                      download_token, download_token_expiry, download_count, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.BookID, &o.Email, &o.Amount, &o.Currency, &o.Status, &o.InvoiceID, &o.Signature,
		&o.DownloadToken, &o.DownloadTokenExpiry, &o.DownloadCount, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, order model.NewOrder) (*model.Order, error) {
	const query = `INSERT INTO orders (id, book_id, email, amount, currency, status, invoice_id)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)
                   RETURNING ` + orderColumns
	created, err := scanOrder(r.storage.pool.QueryRow(ctx, query,
		order.ID, order.BookID, order.Email, order.Amount, order.Currency, model.OrderStatusPending, order.InvoiceID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return nil, domainErrors.ErrAlreadyExists
			case pgForeignKeyViolation:
				return nil, domainErrors.ErrNotFound
			}
		}
		return nil, err
	}
	return created, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetByIDAndInvoice(ctx context.Context, id string, invoiceID int64) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1 AND invoice_id=$2`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListRecent(ctx context.Context, limit int) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT $1`
	rows, err := r.storage.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkPaid transitions the order to PAID in one conditional statement, so
// concurrent deliveries of the same notification race on the row lock and
// only one of them observes a returned row. The PAYMENT_SUCCESS event is
// written in the same transaction.
func (r *orderRepository) MarkPaid(ctx context.Context, c model.PaymentConfirmation) (*model.Order, bool, error) {
	const query = `UPDATE orders
                   SET status=$3, signature=$4, download_token=$5, download_token_expiry=$6, updated_at=NOW()
                   WHERE id=$1 AND invoice_id=$2 AND status IN ('PENDING', 'FAILED')
                   RETURNING ` + orderColumns
	var order *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = scanOrder(tx.QueryRow(ctx, query,
			c.OrderID, c.InvoiceID, model.OrderStatusPaid, c.Signature, c.DownloadToken, c.DownloadTokenExpiry))
		if err != nil {
			return err
		}
		return insertEvent(ctx, tx, c.OrderID, model.EventPaymentSuccess, c.Details)
	})
	if err == nil {
		return order, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	existing, err := r.GetByIDAndInvoice(ctx, c.OrderID, c.InvoiceID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *orderRepository) MarkFailed(ctx context.Context, id string) (*model.Order, bool, error) {
	const query = `UPDATE orders SET status=$2, updated_at=NOW()
                   WHERE id=$1 AND status='PENDING'
                   RETURNING ` + orderColumns
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id, model.OrderStatusFailed))
	if err == nil {
		return order, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *orderRepository) IncrementDownloads(ctx context.Context, id string) (int, error) {
	const query = `UPDATE orders SET download_count = download_count + 1, updated_at=NOW()
                   WHERE id=$1 AND status='PAID'
                   RETURNING download_count`
	var count int
	if err := r.storage.pool.QueryRow(ctx, query, id).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domainErrors.ErrNotFound
		}
		return 0, err
	}
	return count, nil
}
