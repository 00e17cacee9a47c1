package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	domainErrors "github.com/polkiloo/pdfshop/internal/domain/errors"
	"github.com/polkiloo/pdfshop/internal/domain/model"
	"github.com/polkiloo/pdfshop/internal/domain/repository"
)

// BlobStore keeps PDF files and issues time-bounded links to them.
type BlobStore interface {
	Put(ctx context.Context, name string, r io.Reader) (string, error)
	SignedURL(ctx context.Context, ref string, ttl time.Duration) (string, error)
}

// DownloadUseCase gates access to purchased files.
type DownloadUseCase struct {
	orders   repository.OrderRepository
	events   repository.EventRepository
	books    repository.BookRepository
	blobs    BlobStore
	settings PaymentSettings
	logger   *slog.Logger
	now      func() time.Time
}

// NewDownloadUseCase constructs DownloadUseCase.
func NewDownloadUseCase(
	orders repository.OrderRepository,
	events repository.EventRepository,
	books repository.BookRepository,
	blobs BlobStore,
	settings PaymentSettings,
	logger *slog.Logger,
) *DownloadUseCase {
	return &DownloadUseCase{
		orders:   orders,
		events:   events,
		books:    books,
		blobs:    blobs,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// ResolveDownload checks the token and returns a short-lived file URL.
// The token stays valid until it expires, every call counts as a download.
func (u *DownloadUseCase) ResolveDownload(ctx context.Context, orderID, token string) (string, error) {
	if orderID == "" || token == "" {
		return "", fmt.Errorf("%w: orderId and token are required", domainErrors.ErrInvalidInput)
	}

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order.DownloadToken == nil || subtle.ConstantTimeCompare([]byte(*order.DownloadToken), []byte(token)) != 1 {
		return "", domainErrors.ErrForbidden
	}
	if order.DownloadTokenExpiry == nil || !u.now().Before(*order.DownloadTokenExpiry) {
		return "", domainErrors.ErrExpired
	}
	if !order.IsPaid() {
		return "", domainErrors.ErrForbidden
	}

	book, err := u.books.GetByID(ctx, order.BookID)
	if err != nil {
		return "", err
	}
	if !book.HasPDF() {
		return "", domainErrors.ErrNotFound
	}
	link, err := u.blobs.SignedURL(ctx, *book.PDFRef, u.settings.BlobURLTTL)
	if err != nil {
		if errors.Is(err, domainErrors.ErrAssetMissing) {
			return "", domainErrors.ErrNotFound
		}
		return "", fmt.Errorf("resolve file: %w", err)
	}

	count, err := u.orders.IncrementDownloads(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("count download: %w", err)
	}
	recordEvent(ctx, u.events, u.logger, orderID, model.EventDownload, map[string]any{"count": count})
	u.logger.InfoContext(ctx, "download served", slog.String("order_id", orderID), slog.Int("count", count))

	return link, nil
}
