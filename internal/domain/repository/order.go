package repository

import (
	"context"

	"github.com/polkiloo/pdfshop/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
//
// MarkPaid and MarkFailed are conditional updates: the returned flag is true
// only for the caller whose write actually changed the status.
type OrderRepository interface {
	Create(ctx context.Context, order model.NewOrder) (*model.Order, error)
	GetByID(ctx context.Context, id string) (*model.Order, error)
	GetByIDAndInvoice(ctx context.Context, id string, invoiceID int64) (*model.Order, error)
	ListRecent(ctx context.Context, limit int) ([]model.Order, error)
	MarkPaid(ctx context.Context, confirmation model.PaymentConfirmation) (*model.Order, bool, error)
	MarkFailed(ctx context.Context, id string) (*model.Order, bool, error)
	IncrementDownloads(ctx context.Context, id string) (int, error)
}
