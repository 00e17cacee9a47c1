package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes payment lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusFailed    OrderStatus = "FAILED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Currency is one of the currencies accepted by the payment gateway.
type Currency string

const (
	CurrencyKZT Currency = "KZT"
	CurrencyRUB Currency = "RUB"
)

// Valid reports whether currency belongs to the supported set.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyKZT, CurrencyRUB:
		return true
	}
	return false
}

// Order describes a single purchase attempt of one PDF edition.
type Order struct {
	ID                  string
	BookID              string
	Email               string
	Amount              decimal.Decimal
	Currency            Currency
	Status              OrderStatus
	InvoiceID           int64
	Signature           *string
	DownloadToken       *string
	DownloadTokenExpiry *time.Time
	DownloadCount       int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsPaid reports whether the order reached the absorbing PAID state.
func (o *Order) IsPaid() bool {
	return o.Status == OrderStatusPaid
}

// NewOrder carries the snapshot taken at checkout time.
type NewOrder struct {
	ID        string
	BookID    string
	Email     string
	Amount    decimal.Decimal
	Currency  Currency
	InvoiceID int64
}

// PaymentConfirmation carries values written when the gateway confirms payment.
// Details become the PAYMENT_SUCCESS event committed with the transition.
type PaymentConfirmation struct {
	OrderID             string
	InvoiceID           int64
	Signature           string
	DownloadToken       string
	DownloadTokenExpiry time.Time
	Details             any
}
