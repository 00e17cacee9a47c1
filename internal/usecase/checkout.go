package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/pdfshop/internal/domain/errors"
	"github.com/polkiloo/pdfshop/internal/domain/model"
	"github.com/polkiloo/pdfshop/internal/domain/repository"
	"github.com/polkiloo/pdfshop/internal/pkg/signature"
)

// CheckoutResult is what the buyer needs to continue to the gateway.
type CheckoutResult struct {
	OrderID     string
	InvoiceID   int64
	RedirectURL string
}

// CheckoutUseCase creates orders and signed gateway redirects.
type CheckoutUseCase struct {
	books    repository.BookRepository
	orders   repository.OrderRepository
	events   repository.EventRepository
	counter  repository.InvoiceCounter
	settings PaymentSettings
	logger   *slog.Logger
	newID    func() string
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(
	books repository.BookRepository,
	orders repository.OrderRepository,
	events repository.EventRepository,
	counter repository.InvoiceCounter,
	settings PaymentSettings,
	logger *slog.Logger,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		books:    books,
		orders:   orders,
		events:   events,
		counter:  counter,
		settings: settings,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// InitiateCheckout creates a PENDING order for the book and returns the
// gateway redirect. All validation happens before an invoice number is taken.
func (u *CheckoutUseCase) InitiateCheckout(ctx context.Context, bookID, email string) (*CheckoutResult, error) {
	bookID = strings.TrimSpace(bookID)
	email = strings.TrimSpace(email)
	if bookID == "" {
		return nil, fmt.Errorf("%w: book id is required", domainErrors.ErrInvalidInput)
	}
	if !ValidateEmail(email) {
		return nil, fmt.Errorf("%w: invalid email", domainErrors.ErrInvalidInput)
	}

	book, err := u.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	switch {
	case !book.Published:
		return nil, domainErrors.ErrUnavailable
	case !book.ForSale():
		return nil, domainErrors.ErrNotForSale
	case !book.HasPDF():
		return nil, domainErrors.ErrAssetMissing
	}

	invoiceID, err := u.counter.NextInvoiceID(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate invoice id: %w", err)
	}

	amount := book.PDFPrice.Round(2)
	order, err := u.orders.Create(ctx, model.NewOrder{
		ID:        u.newID(),
		BookID:    book.ID,
		Email:     email,
		Amount:    amount,
		Currency:  book.Currency,
		InvoiceID: invoiceID,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	recordEvent(ctx, u.events, u.logger, order.ID, model.EventCreated, map[string]any{
		"bookId":    book.ID,
		"email":     email,
		"amount":    signature.FormatAmount(amount),
		"currency":  book.Currency,
		"invoiceId": invoiceID,
	})

	redirectURL := u.redirectURL(order, book)

	recordEvent(ctx, u.events, u.logger, order.ID, model.EventPaymentInitiated, map[string]any{
		"invoiceId":   invoiceID,
		"redirectUrl": redirectURL,
	})

	u.logger.InfoContext(ctx, "checkout initiated",
		slog.String("order_id", order.ID),
		slog.Int64("invoice_id", invoiceID),
		slog.String("book_id", book.ID),
	)

	return &CheckoutResult{OrderID: order.ID, InvoiceID: invoiceID, RedirectURL: redirectURL}, nil
}

func (u *CheckoutUseCase) redirectURL(order *model.Order, book *model.Book) string {
	custom := map[string]string{signature.OrderIDParam: order.ID}
	title := book.Title
	if title == "" {
		title = book.ID
	}

	query := url.Values{}
	query.Set("MerchantLogin", u.settings.MerchantLogin)
	query.Set("OutSum", signature.FormatAmount(order.Amount))
	query.Set("InvId", strconv.FormatInt(order.InvoiceID, 10))
	query.Set("Description", truncateRunes("PDF: "+title, maxDescriptionRunes))
	query.Set("SignatureValue", signature.SignCheckout(u.settings.MerchantLogin, order.Amount, order.InvoiceID, u.settings.Password1, custom))
	query.Set("Email", order.Email)
	if u.settings.Culture != "" {
		query.Set("Culture", u.settings.Culture)
	}
	for k, v := range custom {
		query.Set(k, v)
	}
	if u.settings.TestMode {
		query.Set("IsTest", "1")
	}

	return u.settings.PaymentURL + "?" + query.Encode()
}
