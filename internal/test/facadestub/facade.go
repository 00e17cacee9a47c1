// Package facadestub holds the HTTP facade stub shared by handler and router tests.
package facadestub

import (
	"context"
	"io"
	"os"

	"github.com/polkiloo/pdfshop/internal/domain/model"
	"github.com/polkiloo/pdfshop/internal/usecase"
)

// ShopFacadeStub implements the HTTP facade with overridable functions.
// Unset functions return zero values.
type ShopFacadeStub struct {
	CheckoutFn       func(ctx context.Context, bookID, email string) (*usecase.CheckoutResult, error)
	PaymentResultFn  func(ctx context.Context, params map[string]string) (int64, error)
	PaymentSuccessFn func(ctx context.Context, params map[string]string) string
	PaymentFailFn    func(ctx context.Context, params map[string]string) string
	DownloadFn       func(ctx context.Context, orderID, token string) (string, error)

	LoginFn        func(ctx context.Context, password string) (string, error)
	ParseTokenFn   func(token string) (string, error)
	RecentOrdersFn func(ctx context.Context, limit int) ([]model.Order, error)
	OrderTrailFn   func(ctx context.Context, orderID string) (*model.Order, []model.OrderEvent, error)
	GatewayStateFn func(ctx context.Context, orderID string) (*model.Order, *model.GatewayState, error)
	SaveBookFn     func(ctx context.Context, bookID string, update model.BookUpdate) (*model.Book, error)
	AttachPDFFn    func(ctx context.Context, bookID, filename string, content io.Reader) (string, error)

	VerifyFileFn func(ref, expires, sig string) error
	OpenFileFn   func(ref string) (*os.File, error)
	HealthFn     func(ctx context.Context) error
}

func (s ShopFacadeStub) Checkout(ctx context.Context, bookID, email string) (*usecase.CheckoutResult, error) {
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, bookID, email)
	}
	return &usecase.CheckoutResult{OrderID: "order-1", InvoiceID: 1, RedirectURL: "https://pay.example.com"}, nil
}

func (s ShopFacadeStub) PaymentResult(ctx context.Context, params map[string]string) (int64, error) {
	if s.PaymentResultFn != nil {
		return s.PaymentResultFn(ctx, params)
	}
	return 1, nil
}

func (s ShopFacadeStub) PaymentSuccess(ctx context.Context, params map[string]string) string {
	if s.PaymentSuccessFn != nil {
		return s.PaymentSuccessFn(ctx, params)
	}
	return "https://shop.example.com/payment/success"
}

func (s ShopFacadeStub) PaymentFail(ctx context.Context, params map[string]string) string {
	if s.PaymentFailFn != nil {
		return s.PaymentFailFn(ctx, params)
	}
	return "https://shop.example.com/payment/fail"
}

func (s ShopFacadeStub) Download(ctx context.Context, orderID, token string) (string, error) {
	if s.DownloadFn != nil {
		return s.DownloadFn(ctx, orderID, token)
	}
	return "https://files.example.com/files/book.pdf", nil
}

func (s ShopFacadeStub) Login(ctx context.Context, password string) (string, error) {
	if s.LoginFn != nil {
		return s.LoginFn(ctx, password)
	}
	return "token", nil
}

func (s ShopFacadeStub) ParseToken(token string) (string, error) {
	if s.ParseTokenFn != nil {
		return s.ParseTokenFn(token)
	}
	return "admin", nil
}

func (s ShopFacadeStub) RecentOrders(ctx context.Context, limit int) ([]model.Order, error) {
	if s.RecentOrdersFn != nil {
		return s.RecentOrdersFn(ctx, limit)
	}
	return nil, nil
}

func (s ShopFacadeStub) OrderTrail(ctx context.Context, orderID string) (*model.Order, []model.OrderEvent, error) {
	if s.OrderTrailFn != nil {
		return s.OrderTrailFn(ctx, orderID)
	}
	return &model.Order{ID: orderID}, nil, nil
}

func (s ShopFacadeStub) GatewayState(ctx context.Context, orderID string) (*model.Order, *model.GatewayState, error) {
	if s.GatewayStateFn != nil {
		return s.GatewayStateFn(ctx, orderID)
	}
	return &model.Order{ID: orderID}, &model.GatewayState{}, nil
}

func (s ShopFacadeStub) SaveBook(ctx context.Context, bookID string, update model.BookUpdate) (*model.Book, error) {
	if s.SaveBookFn != nil {
		return s.SaveBookFn(ctx, bookID, update)
	}
	return &model.Book{ID: bookID, Title: update.Title, Published: update.Published, PDFPrice: update.PDFPrice, Currency: update.Currency}, nil
}

func (s ShopFacadeStub) AttachPDF(ctx context.Context, bookID, filename string, content io.Reader) (string, error) {
	if s.AttachPDFFn != nil {
		return s.AttachPDFFn(ctx, bookID, filename, content)
	}
	return "ref.pdf", nil
}

func (s ShopFacadeStub) VerifyFile(ref, expires, sig string) error {
	if s.VerifyFileFn != nil {
		return s.VerifyFileFn(ref, expires, sig)
	}
	return nil
}

func (s ShopFacadeStub) OpenFile(ref string) (*os.File, error) {
	if s.OpenFileFn != nil {
		return s.OpenFileFn(ref)
	}
	return nil, os.ErrNotExist
}

func (s ShopFacadeStub) Health(ctx context.Context) error {
	if s.HealthFn != nil {
		return s.HealthFn(ctx)
	}
	return nil
}
