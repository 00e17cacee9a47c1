package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/pdfshop/internal/domain/model"
)

// LoginRequest carries the back-office password.
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// LoginResponse returns the issued token.
type LoginResponse struct {
	Token string `json:"token"`
}

// Order is the admin view of an order. The download token is never exposed.
type Order struct {
	ID                  string     `json:"id"`
	BookID              string     `json:"bookId"`
	Email               string     `json:"email"`
	Amount              string     `json:"amount"`
	Currency            string     `json:"currency"`
	Status              string     `json:"status"`
	InvoiceID           int64      `json:"invoiceId"`
	DownloadTokenExpiry *time.Time `json:"downloadTokenExpiry,omitempty"`
	DownloadCount       int        `json:"downloadCount"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// OrderEvent is one audit trail entry.
type OrderEvent struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// OrderTrail combines an order with its audit events.
type OrderTrail struct {
	Order  Order        `json:"order"`
	Events []OrderEvent `json:"events"`
}

// GatewayState compares the local status with the gateway's view.
type GatewayState struct {
	OrderID     string `json:"orderId"`
	InvoiceID   int64  `json:"invoiceId"`
	Status      string `json:"status"`
	ResultCode  int    `json:"resultCode"`
	StateCode   int    `json:"stateCode"`
	Description string `json:"description,omitempty"`
	GatewayPaid bool   `json:"gatewayPaid"`
	Consistent  bool   `json:"consistent"`
}

// BookRequest updates sale settings of a book.
type BookRequest struct {
	Title     string           `json:"title"`
	Published bool             `json:"published"`
	PDFPrice  *decimal.Decimal `json:"pdfPrice"`
	Currency  string           `json:"currency" binding:"required"`
}

// Book is the admin view of a book.
type Book struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Published bool   `json:"published"`
	PDFPrice  string `json:"pdfPrice,omitempty"`
	Currency  string `json:"currency"`
	HasPDF    bool   `json:"hasPdf"`
}

// UploadResponse returns the stored blob ref.
type UploadResponse struct {
	Ref string `json:"ref"`
}

func NewOrder(o model.Order) Order {
	return Order{
		ID:                  o.ID,
		BookID:              o.BookID,
		Email:               o.Email,
		Amount:              o.Amount.StringFixed(2),
		Currency:            string(o.Currency),
		Status:              string(o.Status),
		InvoiceID:           o.InvoiceID,
		DownloadTokenExpiry: o.DownloadTokenExpiry,
		DownloadCount:       o.DownloadCount,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}

func NewOrders(orders []model.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, NewOrder(o))
	}
	return result
}

func NewOrderTrail(o model.Order, events []model.OrderEvent) OrderTrail {
	trail := OrderTrail{Order: NewOrder(o), Events: make([]OrderEvent, 0, len(events))}
	for _, e := range events {
		trail.Events = append(trail.Events, OrderEvent{
			ID:        e.ID,
			Type:      string(e.Type),
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
		})
	}
	return trail
}

func NewGatewayState(o model.Order, s model.GatewayState) GatewayState {
	return GatewayState{
		OrderID:     o.ID,
		InvoiceID:   o.InvoiceID,
		Status:      string(o.Status),
		ResultCode:  s.ResultCode,
		StateCode:   s.StateCode,
		Description: s.Description,
		GatewayPaid: s.Paid(),
		Consistent:  s.Paid() == o.IsPaid(),
	}
}

func NewBook(b model.Book) Book {
	book := Book{
		ID:        b.ID,
		Title:     b.Title,
		Published: b.Published,
		Currency:  string(b.Currency),
		HasPDF:    b.HasPDF(),
	}
	if b.PDFPrice != nil {
		book.PDFPrice = b.PDFPrice.StringFixed(2)
	}
	return book
}

// Update converts the request to the domain update.
func (r BookRequest) Update() model.BookUpdate {
	return model.BookUpdate{
		Title:     r.Title,
		Published: r.Published,
		PDFPrice:  r.PDFPrice,
		Currency:  model.Currency(r.Currency),
	}
}
