package app

import (
	"context"
	"io"
	"os"

	"github.com/polkiloo/pdfshop/internal/domain/model"
	"github.com/polkiloo/pdfshop/internal/usecase"
)

// FileServer verifies signed file links and opens stored files.
type FileServer interface {
	Verify(ref, expires, sig string) error
	Open(ref string) (*os.File, error)
}

// HealthChecker reports readiness of the backing database.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ShopFacade is the single entry point used by HTTP handlers.
type ShopFacade struct {
	auth      *usecase.AuthUseCase
	checkout  *usecase.CheckoutUseCase
	callbacks *usecase.CallbackUseCase
	downloads *usecase.DownloadUseCase
	admin     *usecase.AdminUseCase
	files     FileServer
	health    HealthChecker
}

func NewShopFacade(
	auth *usecase.AuthUseCase,
	checkout *usecase.CheckoutUseCase,
	callbacks *usecase.CallbackUseCase,
	downloads *usecase.DownloadUseCase,
	admin *usecase.AdminUseCase,
	files FileServer,
	health HealthChecker,
) *ShopFacade {
	return &ShopFacade{
		auth:      auth,
		checkout:  checkout,
		callbacks: callbacks,
		downloads: downloads,
		admin:     admin,
		files:     files,
		health:    health,
	}
}

func (f *ShopFacade) Checkout(ctx context.Context, bookID, email string) (*usecase.CheckoutResult, error) {
	return f.checkout.InitiateCheckout(ctx, bookID, email)
}

func (f *ShopFacade) PaymentResult(ctx context.Context, params map[string]string) (int64, error) {
	return f.callbacks.HandleResult(ctx, params)
}

func (f *ShopFacade) PaymentSuccess(ctx context.Context, params map[string]string) string {
	return f.callbacks.HandleSuccess(ctx, params)
}

func (f *ShopFacade) PaymentFail(ctx context.Context, params map[string]string) string {
	return f.callbacks.HandleFail(ctx, params)
}

func (f *ShopFacade) Download(ctx context.Context, orderID, token string) (string, error) {
	return f.downloads.ResolveDownload(ctx, orderID, token)
}

func (f *ShopFacade) Login(ctx context.Context, password string) (string, error) {
	return f.auth.Login(ctx, password)
}

func (f *ShopFacade) ParseToken(token string) (string, error) {
	return f.auth.ParseToken(token)
}

func (f *ShopFacade) RecentOrders(ctx context.Context, limit int) ([]model.Order, error) {
	return f.admin.RecentOrders(ctx, limit)
}

func (f *ShopFacade) OrderTrail(ctx context.Context, orderID string) (*model.Order, []model.OrderEvent, error) {
	return f.admin.OrderTrail(ctx, orderID)
}

func (f *ShopFacade) GatewayState(ctx context.Context, orderID string) (*model.Order, *model.GatewayState, error) {
	return f.admin.GatewayState(ctx, orderID)
}

func (f *ShopFacade) SaveBook(ctx context.Context, bookID string, update model.BookUpdate) (*model.Book, error) {
	return f.admin.SaveBook(ctx, bookID, update)
}

func (f *ShopFacade) AttachPDF(ctx context.Context, bookID, filename string, content io.Reader) (string, error) {
	return f.admin.AttachPDF(ctx, bookID, filename, content)
}

func (f *ShopFacade) VerifyFile(ref, expires, sig string) error {
	return f.files.Verify(ref, expires, sig)
}

func (f *ShopFacade) OpenFile(ref string) (*os.File, error) {
	return f.files.Open(ref)
}

func (f *ShopFacade) Health(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
