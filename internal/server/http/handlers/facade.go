package handlers

import (
	"context"
	"io"
	"os"

	"github.com/polkiloo/pdfshop/internal/domain/model"
	"github.com/polkiloo/pdfshop/internal/usecase"
)

// PaymentFacade covers the buyer and gateway facing payment flow.
type PaymentFacade interface {
	Checkout(ctx context.Context, bookID, email string) (*usecase.CheckoutResult, error)
	PaymentResult(ctx context.Context, params map[string]string) (int64, error)
	PaymentSuccess(ctx context.Context, params map[string]string) string
	PaymentFail(ctx context.Context, params map[string]string) string
	Download(ctx context.Context, orderID, token string) (string, error)
}

// AdminFacade exposes back-office operations.
type AdminFacade interface {
	Login(ctx context.Context, password string) (string, error)
	RecentOrders(ctx context.Context, limit int) ([]model.Order, error)
	OrderTrail(ctx context.Context, orderID string) (*model.Order, []model.OrderEvent, error)
	GatewayState(ctx context.Context, orderID string) (*model.Order, *model.GatewayState, error)
	SaveBook(ctx context.Context, bookID string, update model.BookUpdate) (*model.Book, error)
	AttachPDF(ctx context.Context, bookID, filename string, content io.Reader) (string, error)
}

// FileFacade serves signed blob links.
type FileFacade interface {
	VerifyFile(ref, expires, sig string) error
	OpenFile(ref string) (*os.File, error)
}

// HealthFacade reports service readiness.
type HealthFacade interface {
	Health(ctx context.Context) error
}

// ShopFacade aggregates the full set of operations used across handlers.
type ShopFacade interface {
	PaymentFacade
	AdminFacade
	FileFacade
	HealthFacade
	ParseToken(token string) (string, error)
}
