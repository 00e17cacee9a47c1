package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/pdfshop/internal/domain/errors"
	"github.com/polkiloo/pdfshop/internal/domain/model"
	"github.com/polkiloo/pdfshop/internal/domain/repository"
	"github.com/polkiloo/pdfshop/internal/pkg/signature"
)

const (
	paramOutSum    = "OutSum"
	paramInvID     = "InvId"
	paramSignature = "SignatureValue"

	reasonInvalidSignature = "Invalid signature"
	reasonAmountMismatch   = "Amount mismatch"
	reasonBrowserFailure   = "User cancelled or payment failed"

	downloadTokenBytes = 32
)

// NotificationQueue accepts download notifications for background delivery.
type NotificationQueue interface {
	Enqueue(n model.DownloadNotification) bool
}

// CallbackUseCase reconciles gateway notifications with orders.
type CallbackUseCase struct {
	orders   repository.OrderRepository
	events   repository.EventRepository
	books    repository.BookRepository
	queue    NotificationQueue
	settings PaymentSettings
	logger   *slog.Logger
	now      func() time.Time
	newToken func() (string, error)
}

// NewCallbackUseCase constructs CallbackUseCase.
func NewCallbackUseCase(
	orders repository.OrderRepository,
	events repository.EventRepository,
	books repository.BookRepository,
	queue NotificationQueue,
	settings PaymentSettings,
	logger *slog.Logger,
) *CallbackUseCase {
	return &CallbackUseCase{
		orders:   orders,
		events:   events,
		books:    books,
		queue:    queue,
		settings: settings,
		logger:   logger,
		now:      time.Now,
		newToken: newDownloadToken,
	}
}

// HandleResult processes the server-to-server result notification and
// returns the invoice id to acknowledge. Replays of an already confirmed
// payment succeed without side effects.
func (u *CallbackUseCase) HandleResult(ctx context.Context, params map[string]string) (int64, error) {
	orderID := params[signature.OrderIDParam]
	if orderID != "" {
		recordEvent(ctx, u.events, u.logger, orderID, model.EventCallbackReceived, params)
	}

	for _, key := range []string{paramOutSum, paramInvID, paramSignature, signature.OrderIDParam} {
		if strings.TrimSpace(params[key]) == "" {
			return 0, fmt.Errorf("%w: missing %s", domainErrors.ErrInvalidInput, key)
		}
	}
	invoiceID, err := strconv.ParseInt(params[paramInvID], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad InvId", domainErrors.ErrInvalidInput)
	}

	outSum := params[paramOutSum]
	received := params[paramSignature]
	if !signature.VerifyCallback(outSum, invoiceID, received, u.settings.Password2, signature.CustomParams(params)) {
		u.logger.WarnContext(ctx, "result callback signature mismatch",
			slog.String("order_id", orderID),
			slog.Int64("invoice_id", invoiceID),
		)
		recordEvent(ctx, u.events, u.logger, orderID, model.EventPaymentFailed, map[string]any{
			"reason":    reasonInvalidSignature,
			"invoiceId": invoiceID,
		})
		return 0, domainErrors.ErrInvalidSignature
	}

	order, err := u.orders.GetByIDAndInvoice(ctx, orderID, invoiceID)
	if err != nil {
		return 0, err
	}
	if order.IsPaid() {
		u.logger.InfoContext(ctx, "duplicate result callback ignored",
			slog.String("order_id", orderID),
			slog.Int64("invoice_id", invoiceID),
		)
		return invoiceID, nil
	}

	paid, err := decimal.NewFromString(outSum)
	if err != nil || !paid.Equal(order.Amount) {
		u.logger.ErrorContext(ctx, "result callback amount mismatch",
			slog.String("order_id", orderID),
			slog.String("received", outSum),
			slog.String("expected", signature.FormatAmount(order.Amount)),
		)
		recordEvent(ctx, u.events, u.logger, orderID, model.EventPaymentFailed, map[string]any{
			"reason":    reasonAmountMismatch,
			"invoiceId": invoiceID,
			"received":  outSum,
			"expected":  signature.FormatAmount(order.Amount),
		})
		return 0, domainErrors.ErrAmountMismatch
	}

	token, err := u.newToken()
	if err != nil {
		return 0, fmt.Errorf("mint download token: %w", err)
	}
	expiry := u.now().Add(u.settings.TokenTTL)

	updated, changed, err := u.orders.MarkPaid(ctx, model.PaymentConfirmation{
		OrderID:             orderID,
		InvoiceID:           invoiceID,
		Signature:           strings.ToLower(received),
		DownloadToken:       token,
		DownloadTokenExpiry: expiry,
		Details: map[string]any{
			"invoiceId":   invoiceID,
			"amount":      signature.FormatAmount(order.Amount),
			"currency":    order.Currency,
			"tokenExpiry": expiry.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return 0, fmt.Errorf("confirm payment: %w", err)
	}
	if !changed {
		// a concurrent delivery won the transition
		return invoiceID, nil
	}

	u.logger.InfoContext(ctx, "payment confirmed",
		slog.String("order_id", orderID),
		slog.Int64("invoice_id", invoiceID),
	)

	u.notify(ctx, updated, token)
	return invoiceID, nil
}

// HandleSuccess returns where to send the buyer after a successful payment.
// The signature is checked with the first password for logging only.
func (u *CallbackUseCase) HandleSuccess(ctx context.Context, params map[string]string) string {
	orderID := params[signature.OrderIDParam]
	invoiceID, err := strconv.ParseInt(params[paramInvID], 10, 64)
	if err != nil || !signature.VerifySuccess(params[paramOutSum], invoiceID, params[paramSignature], u.settings.Password1, signature.CustomParams(params)) {
		u.logger.WarnContext(ctx, "success redirect signature not verified",
			slog.String("order_id", orderID),
			slog.String("invoice_id", params[paramInvID]),
		)
	}
	return u.siteRedirect("success", orderID)
}

// HandleFail marks a pending order FAILED and returns the buyer redirect.
// Paid orders are left untouched.
func (u *CallbackUseCase) HandleFail(ctx context.Context, params map[string]string) string {
	orderID := params[signature.OrderIDParam]
	if orderID == "" {
		return u.siteRedirect("fail", "")
	}

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		if !errors.Is(err, domainErrors.ErrNotFound) {
			u.logger.ErrorContext(ctx, "fail redirect lookup failed", slog.String("order_id", orderID), slog.String("error", err.Error()))
		}
		return u.siteRedirect("fail", orderID)
	}
	if raw := params[paramInvID]; raw != "" && raw != strconv.FormatInt(order.InvoiceID, 10) {
		u.logger.WarnContext(ctx, "fail redirect invoice mismatch", slog.String("order_id", orderID), slog.String("invoice_id", raw))
		return u.siteRedirect("fail", orderID)
	}

	_, changed, err := u.orders.MarkFailed(ctx, orderID)
	if err != nil {
		u.logger.ErrorContext(ctx, "mark order failed", slog.String("order_id", orderID), slog.String("error", err.Error()))
		return u.siteRedirect("fail", orderID)
	}
	if changed {
		recordEvent(ctx, u.events, u.logger, orderID, model.EventPaymentFailed, map[string]any{
			"reason":    reasonBrowserFailure,
			"invoiceId": order.InvoiceID,
		})
	}
	return u.siteRedirect("fail", orderID)
}

// DownloadURL is the public link mailed to the buyer.
func (u *CallbackUseCase) DownloadURL(orderID, token string) string {
	query := url.Values{}
	query.Set("orderId", orderID)
	query.Set("token", token)
	return u.settings.PublicBaseURL + "/api/payment/download?" + query.Encode()
}

func (u *CallbackUseCase) notify(ctx context.Context, order *model.Order, token string) {
	title := order.BookID
	if book, err := u.books.GetByID(ctx, order.BookID); err == nil && book.Title != "" {
		title = book.Title
	}

	accepted := u.queue.Enqueue(model.DownloadNotification{
		OrderID:     order.ID,
		Email:       order.Email,
		BookTitle:   title,
		DownloadURL: u.DownloadURL(order.ID, token),
	})
	if !accepted {
		u.logger.WarnContext(ctx, "download notification dropped", slog.String("order_id", order.ID))
	}
}

func (u *CallbackUseCase) siteRedirect(outcome, orderID string) string {
	target := u.settings.SiteURL + "/payment/" + outcome
	if orderID == "" {
		return target
	}
	return target + "?" + url.Values{"orderId": {orderID}}.Encode()
}

func newDownloadToken() (string, error) {
	buf := make([]byte, downloadTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
