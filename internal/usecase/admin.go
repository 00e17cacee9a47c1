package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	domainErrors "github.com/polkiloo/pdfshop/internal/domain/errors"
	"github.com/polkiloo/pdfshop/internal/domain/model"
	"github.com/polkiloo/pdfshop/internal/domain/repository"
)

const (
	defaultOrdersLimit = 50
	maxOrdersLimit     = 500
)

// GatewayStateProvider queries the gateway's view of an invoice.
type GatewayStateProvider interface {
	State(ctx context.Context, invoiceID int64) (*model.GatewayState, error)
}

// AdminUseCase serves the back office: order audit and book sale settings.
type AdminUseCase struct {
	orders  repository.OrderRepository
	events  repository.EventRepository
	books   repository.BookRepository
	blobs   BlobStore
	gateway GatewayStateProvider
	logger  *slog.Logger
}

// NewAdminUseCase constructs AdminUseCase.
func NewAdminUseCase(
	orders repository.OrderRepository,
	events repository.EventRepository,
	books repository.BookRepository,
	blobs BlobStore,
	gateway GatewayStateProvider,
	logger *slog.Logger,
) *AdminUseCase {
	return &AdminUseCase{orders: orders, events: events, books: books, blobs: blobs, gateway: gateway, logger: logger}
}

// RecentOrders returns newest orders first.
func (u *AdminUseCase) RecentOrders(ctx context.Context, limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = defaultOrdersLimit
	}
	if limit > maxOrdersLimit {
		limit = maxOrdersLimit
	}
	return u.orders.ListRecent(ctx, limit)
}

// OrderTrail returns the order and its audit events in insertion order.
func (u *AdminUseCase) OrderTrail(ctx context.Context, orderID string) (*model.Order, []model.OrderEvent, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	events, err := u.events.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, events, nil
}

// GatewayState asks the gateway about the order's invoice. It never
// changes the order.
func (u *AdminUseCase) GatewayState(ctx context.Context, orderID string) (*model.Order, *model.GatewayState, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	state, err := u.gateway.State(ctx, order.InvoiceID)
	if err != nil {
		return nil, nil, fmt.Errorf("gateway state: %w", err)
	}
	if state.Paid() != order.IsPaid() {
		u.logger.WarnContext(ctx, "gateway state differs from order status",
			slog.String("order_id", order.ID),
			slog.String("status", string(order.Status)),
			slog.Int("gateway_state", state.StateCode),
		)
	}
	return order, state, nil
}

// SaveBook creates or updates sale settings of a book.
func (u *AdminUseCase) SaveBook(ctx context.Context, bookID string, update model.BookUpdate) (*model.Book, error) {
	bookID = strings.TrimSpace(bookID)
	if bookID == "" {
		return nil, fmt.Errorf("%w: book id is required", domainErrors.ErrInvalidInput)
	}
	if !update.Currency.Valid() {
		return nil, fmt.Errorf("%w: unsupported currency %q", domainErrors.ErrInvalidInput, update.Currency)
	}
	if update.PDFPrice != nil {
		rounded := update.PDFPrice.Round(2)
		if !rounded.IsPositive() {
			return nil, fmt.Errorf("%w: price must be at least 0.01", domainErrors.ErrInvalidInput)
		}
		update.PDFPrice = &rounded
	}
	update.Title = strings.TrimSpace(update.Title)
	return u.books.Upsert(ctx, bookID, update)
}

// AttachPDF stores the uploaded file and links it to the book.
func (u *AdminUseCase) AttachPDF(ctx context.Context, bookID, filename string, content io.Reader) (string, error) {
	if _, err := u.books.GetByID(ctx, bookID); err != nil {
		return "", err
	}
	ref, err := u.blobs.Put(ctx, filename, content)
	if err != nil {
		return "", fmt.Errorf("store pdf: %w", err)
	}
	if err := u.books.AttachPDF(ctx, bookID, ref); err != nil {
		return "", err
	}
	u.logger.InfoContext(ctx, "pdf attached", slog.String("book_id", bookID), slog.String("ref", ref))
	return ref, nil
}
