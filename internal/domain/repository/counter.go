package repository

import "context"

// InvoiceCounter issues gateway invoice numbers.
type InvoiceCounter interface {
	NextInvoiceID(ctx context.Context) (int64, error)
}
