package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/pdfshop/internal/domain/errors"
	"github.com/polkiloo/pdfshop/internal/domain/model"
)

var orderColumnNames = []string{
	"id", "book_id", "email", "amount", "currency", "status", "invoice_id", "signature",
	"download_token", "download_token_expiry", "download_count", "created_at", "updated_at",
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func pendingOrderRows(now time.Time) *pgxmockv3.Rows {
	return pgxmockv3.NewRows(orderColumnNames).AddRow(
		"order-1", "book-1", "buyer@example.com", decimal.RequireFromString("5000.00"), model.CurrencyKZT,
		model.OrderStatusPending, int64(7), nil, nil, nil, 0, now, now,
	)
}

func paidOrderRows(now time.Time) *pgxmockv3.Rows {
	return pgxmockv3.NewRows(orderColumnNames).AddRow(
		"order-1", "book-1", "buyer@example.com", decimal.RequireFromString("5000.00"), model.CurrencyKZT,
		model.OrderStatusPaid, int64(7), strPtr("abc"), strPtr("token"), timePtr(now.Add(time.Hour)), 0, now, now,
	)
}

func TestOrderRepositoryCreate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	now := time.Now()
	input := model.NewOrder{
		ID:        "order-1",
		BookID:    "book-1",
		Email:     "buyer@example.com",
		Amount:    decimal.RequireFromString("5000.00"),
		Currency:  model.CurrencyKZT,
		InvoiceID: 7,
	}

	mock.ExpectQuery("INSERT INTO orders").
		WithArgs("order-1", "book-1", "buyer@example.com", pgxmockv3.AnyArg(), model.CurrencyKZT, model.OrderStatusPending, int64(7)).
		WillReturnRows(pendingOrderRows(now))
	order, err := repo.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != "order-1" || order.Status != model.OrderStatusPending || order.InvoiceID != 7 {
		t.Fatalf("unexpected order: %+v", order)
	}
	if !order.Amount.Equal(decimal.RequireFromString("5000")) {
		t.Fatalf("unexpected amount: %s", order.Amount)
	}

	mock.ExpectQuery("INSERT INTO orders").WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})
	if _, err := repo.Create(context.Background(), input); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	mock.ExpectQuery("INSERT INTO orders").WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation})
	if _, err := repo.Create(context.Background(), input); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("INSERT INTO orders").WillReturnError(errors.New("boom"))
	if _, err := repo.Create(context.Background(), input); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryGet(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()

	mock.ExpectQuery("FROM orders WHERE id=").WithArgs("order-1").WillReturnRows(paidOrderRows(now))
	order, err := repo.GetByID(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.DownloadToken == nil || *order.DownloadToken != "token" {
		t.Fatalf("unexpected token: %+v", order.DownloadToken)
	}

	mock.ExpectQuery("FROM orders WHERE id=").WithArgs("missing").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM orders WHERE id=").WithArgs("err").WillReturnError(errors.New("boom"))
	if _, err := repo.GetByID(context.Background(), "err"); err == nil || errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected raw error, got %v", err)
	}

	mock.ExpectQuery("AND invoice_id=").WithArgs("order-1", int64(7)).WillReturnRows(pendingOrderRows(now))
	if _, err := repo.GetByIDAndInvoice(context.Background(), "order-1", 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectQuery("AND invoice_id=").WithArgs("order-1", int64(8)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByIDAndInvoice(context.Background(), "order-1", 8); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryListRecent(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()

	mock.ExpectQuery("ORDER BY created_at DESC").WithArgs(50).WillReturnRows(paidOrderRows(now))
	list, err := repo.ListRecent(context.Background(), 50)
	if err != nil || len(list) != 1 {
		t.Fatalf("unexpected result: %v err=%v", list, err)
	}

	mock.ExpectQuery("ORDER BY created_at DESC").WithArgs(50).WillReturnError(errors.New("boom"))
	if _, err := repo.ListRecent(context.Background(), 50); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectQuery("ORDER BY created_at DESC").WithArgs(50).WillReturnRows(pgxmockv3.NewRows(orderColumnNames))
	list, err = repo.ListRecent(context.Background(), 50)
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty list, got %v err=%v", list, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryListRecentRowsError(t *testing.T) {
	storage := &Storage{pool: &rowsErrorPool{rows: &errorRows{err: errors.New("rows")}}}
	repo := &orderRepository{storage: storage}

	if _, err := repo.ListRecent(context.Background(), 10); err == nil {
		t.Fatal("expected rows error")
	}
}

func TestOrderRepositoryMarkPaid(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()
	confirmation := model.PaymentConfirmation{
		OrderID:             "order-1",
		InvoiceID:           7,
		Signature:           "abc",
		DownloadToken:       "token",
		DownloadTokenExpiry: now.Add(time.Hour),
		Details:             map[string]int64{"invoiceId": 7},
	}

	t.Run("transition", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE orders\s+SET status=\$3`).
			WithArgs("order-1", int64(7), model.OrderStatusPaid, "abc", "token", pgxmockv3.AnyArg()).
			WillReturnRows(paidOrderRows(now))
		mock.ExpectExec("INSERT INTO order_events").
			WithArgs("order-1", model.EventPaymentSuccess, []byte(`{"invoiceId":7}`)).
			WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
		mock.ExpectCommit()
		order, changed, err := repo.MarkPaid(context.Background(), confirmation)
		if err != nil || !changed {
			t.Fatalf("expected transition, got changed=%v err=%v", changed, err)
		}
		if order.Status != model.OrderStatusPaid {
			t.Fatalf("unexpected status: %s", order.Status)
		}
	})

	t.Run("already paid", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE orders\s+SET status=\$3`).WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()
		mock.ExpectQuery("AND invoice_id=").WithArgs("order-1", int64(7)).WillReturnRows(paidOrderRows(now))
		order, changed, err := repo.MarkPaid(context.Background(), confirmation)
		if err != nil || changed {
			t.Fatalf("expected no transition, got changed=%v err=%v", changed, err)
		}
		if !order.IsPaid() {
			t.Fatalf("expected existing paid order, got %+v", order)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE orders\s+SET status=\$3`).WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()
		mock.ExpectQuery("AND invoice_id=").WillReturnError(pgx.ErrNoRows)
		if _, _, err := repo.MarkPaid(context.Background(), confirmation); !errors.Is(err, domainErrors.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("update error", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE orders\s+SET status=\$3`).WillReturnError(errors.New("boom"))
		mock.ExpectRollback()
		if _, _, err := repo.MarkPaid(context.Background(), confirmation); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("event error rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE orders\s+SET status=\$3`).WillReturnRows(paidOrderRows(now))
		mock.ExpectExec("INSERT INTO order_events").WillReturnError(errors.New("boom"))
		mock.ExpectRollback()
		if _, changed, err := repo.MarkPaid(context.Background(), confirmation); err == nil || changed {
			t.Fatalf("expected rollback error, got changed=%v err=%v", changed, err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryMarkFailed(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()

	failedRows := pgxmockv3.NewRows(orderColumnNames).AddRow(
		"order-1", "book-1", "buyer@example.com", decimal.RequireFromString("5000.00"), model.CurrencyKZT,
		model.OrderStatusFailed, int64(7), nil, nil, nil, 0, now, now,
	)
	mock.ExpectQuery(`UPDATE orders SET status=\$2`).WithArgs("order-1", model.OrderStatusFailed).WillReturnRows(failedRows)
	order, changed, err := repo.MarkFailed(context.Background(), "order-1")
	if err != nil || !changed || order.Status != model.OrderStatusFailed {
		t.Fatalf("unexpected result: %+v changed=%v err=%v", order, changed, err)
	}

	mock.ExpectQuery(`UPDATE orders SET status=\$2`).WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("FROM orders WHERE id=").WithArgs("order-1").WillReturnRows(paidOrderRows(now))
	order, changed, err = repo.MarkFailed(context.Background(), "order-1")
	if err != nil || changed || !order.IsPaid() {
		t.Fatalf("paid order must stay paid: %+v changed=%v err=%v", order, changed, err)
	}

	mock.ExpectQuery(`UPDATE orders SET status=\$2`).WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("FROM orders WHERE id=").WillReturnError(pgx.ErrNoRows)
	if _, _, err := repo.MarkFailed(context.Background(), "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery(`UPDATE orders SET status=\$2`).WillReturnError(errors.New("boom"))
	if _, _, err := repo.MarkFailed(context.Background(), "order-1"); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryIncrementDownloads(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	mock.ExpectQuery("SET download_count = download_count").WithArgs("order-1").
		WillReturnRows(pgxmockv3.NewRows([]string{"download_count"}).AddRow(3))
	count, err := repo.IncrementDownloads(context.Background(), "order-1")
	if err != nil || count != 3 {
		t.Fatalf("unexpected count %d err=%v", count, err)
	}

	mock.ExpectQuery("SET download_count = download_count").WithArgs("order-2").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.IncrementDownloads(context.Background(), "order-2"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("SET download_count = download_count").WithArgs("order-3").WillReturnError(errors.New("boom"))
	if _, err := repo.IncrementDownloads(context.Background(), "order-3"); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
