package usecase

import (
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/pdfshop/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testSettings() PaymentSettings {
	return PaymentSettings{
		MerchantLogin: "demo",
		Password1:     "pass1",
		Password2:     "pass2",
		PaymentURL:    "https://auth.robokassa.ru/Merchant/Index.aspx",
		Culture:       "ru",
		PublicBaseURL: "https://api.example.com",
		SiteURL:       "https://shop.example.com",
		TokenTTL:      24 * time.Hour,
		BlobURLTTL:    5 * time.Minute,
	}
}

func priceOf(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func strPtr(s string) *string { return &s }

func sellableBook() model.Book {
	return model.Book{
		ID:        "book-1",
		Title:     "Go in Practice",
		Published: true,
		PDFPrice:  priceOf("5000"),
		Currency:  model.CurrencyKZT,
		PDFRef:    strPtr("book-1.pdf"),
	}
}

func pendingOrder() model.Order {
	return model.Order{
		ID:        "order-1",
		BookID:    "book-1",
		Email:     "buyer@test.com",
		Amount:    decimal.RequireFromString("5000.00"),
		Currency:  model.CurrencyKZT,
		Status:    model.OrderStatusPending,
		InvoiceID: 7,
	}
}
