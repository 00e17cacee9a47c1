package test

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/polkiloo/pdfshop/internal/domain/model"
)

// BlobStoreStub serves deterministic links.
type BlobStoreStub struct {
	PutFn       func(context.Context, string, io.Reader) (string, error)
	SignedURLFn func(context.Context, string, time.Duration) (string, error)
}

func (s BlobStoreStub) Put(ctx context.Context, name string, r io.Reader) (string, error) {
	if s.PutFn != nil {
		return s.PutFn(ctx, name, r)
	}
	_, err := io.Copy(io.Discard, r)
	return "stored-" + name, err
}

func (s BlobStoreStub) SignedURL(ctx context.Context, ref string, ttl time.Duration) (string, error) {
	if s.SignedURLFn != nil {
		return s.SignedURLFn(ctx, ref, ttl)
	}
	return "https://files.example.com/files/" + ref + "?sig=test", nil
}

// GatewayStub answers invoice state queries.
type GatewayStub struct {
	StateFn func(context.Context, int64) (*model.GatewayState, error)
}

func (s GatewayStub) State(ctx context.Context, invoiceID int64) (*model.GatewayState, error) {
	if s.StateFn != nil {
		return s.StateFn(ctx, invoiceID)
	}
	return &model.GatewayState{InvoiceID: invoiceID, ResultCode: 0, StateCode: 100}, nil
}

// QueueStub collects enqueued notifications.
type QueueStub struct {
	Reject bool

	mu    sync.Mutex
	items []model.DownloadNotification
}

func (q *QueueStub) Enqueue(n model.DownloadNotification) bool {
	if q.Reject {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
	return true
}

// Items returns a copy of accepted notifications.
func (q *QueueStub) Items() []model.DownloadNotification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]model.DownloadNotification(nil), q.items...)
}

// NotifierStub records deliveries and fails while Failures is positive.
type NotifierStub struct {
	Failures int
	Err      error

	mu        sync.Mutex
	delivered []model.DownloadNotification
	attempts  int
}

func (n *NotifierStub) Notify(ctx context.Context, msg model.DownloadNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.attempts++
	if n.Failures > 0 {
		n.Failures--
		return n.Err
	}
	n.delivered = append(n.delivered, msg)
	return nil
}

// Delivered returns a copy of delivered notifications.
func (n *NotifierStub) Delivered() []model.DownloadNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.DownloadNotification(nil), n.delivered...)
}

// Attempts returns how many deliveries were tried.
func (n *NotifierStub) Attempts() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.attempts
}

// FileServerStub verifies links and opens files with overridable results.
type FileServerStub struct {
	VerifyErr error
	OpenFn    func(string) (*os.File, error)
}

func (s FileServerStub) Verify(ref, expires, sig string) error {
	return s.VerifyErr
}

func (s FileServerStub) Open(ref string) (*os.File, error) {
	if s.OpenFn != nil {
		return s.OpenFn(ref)
	}
	return nil, os.ErrNotExist
}

// HealthStub reports a fixed health result.
type HealthStub struct {
	Err error
}

func (s HealthStub) HealthCheck(ctx context.Context) error {
	return s.Err
}
