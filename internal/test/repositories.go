package test

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/pdfshop/internal/domain/errors"
	"github.com/polkiloo/pdfshop/internal/domain/model"
	"github.com/polkiloo/pdfshop/internal/domain/repository"
)

// OrderRepositoryStub keeps orders in memory with the same conditional
// transitions as the database implementation. When Events is set, MarkPaid
// records PAYMENT_SUCCESS there like the database transaction does.
type OrderRepositoryStub struct {
	Err         error
	MarkPaidErr error
	Events      *EventRepositoryStub

	mu     sync.Mutex
	orders map[string]*model.Order
	seq    int
}

// NewOrderRepositoryStub constructs an empty repository.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{orders: make(map[string]*model.Order)}
}

func cloneOrder(o *model.Order) *model.Order {
	c := *o
	if o.Signature != nil {
		v := *o.Signature
		c.Signature = &v
	}
	if o.DownloadToken != nil {
		v := *o.DownloadToken
		c.DownloadToken = &v
	}
	if o.DownloadTokenExpiry != nil {
		v := *o.DownloadTokenExpiry
		c.DownloadTokenExpiry = &v
	}
	return &c
}

// Put stores order as is, for arranging test state.
func (s *OrderRepositoryStub) Put(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.orders == nil {
		s.orders = make(map[string]*model.Order)
	}
	s.orders[order.ID] = cloneOrder(&order)
}

// Get returns a snapshot of the stored order or nil.
func (s *OrderRepositoryStub) Get(id string) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[id]; ok {
		return cloneOrder(o)
	}
	return nil
}

// Count returns number of stored orders.
func (s *OrderRepositoryStub) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *OrderRepositoryStub) Create(ctx context.Context, in model.NewOrder) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.orders == nil {
		s.orders = make(map[string]*model.Order)
	}
	if _, exists := s.orders[in.ID]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	for _, o := range s.orders {
		if o.InvoiceID == in.InvoiceID {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	s.seq++
	now := time.Unix(int64(s.seq), 0).UTC()
	order := &model.Order{
		ID:        in.ID,
		BookID:    in.BookID,
		Email:     in.Email,
		Amount:    in.Amount,
		Currency:  in.Currency,
		Status:    model.OrderStatusPending,
		InvoiceID: in.InvoiceID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.orders[order.ID] = order
	return cloneOrder(order), nil
}

func (s *OrderRepositoryStub) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if o := s.Get(id); o != nil {
		return o, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (s *OrderRepositoryStub) GetByIDAndInvoice(ctx context.Context, id string, invoiceID int64) (*model.Order, error) {
	o, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.InvoiceID != invoiceID {
		return nil, domainErrors.ErrNotFound
	}
	return o, nil
}

func (s *OrderRepositoryStub) ListRecent(ctx context.Context, limit int) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	result := make([]model.Order, 0, len(s.orders))
	for _, o := range s.orders {
		result = append(result, *cloneOrder(o))
	}
	s.mu.Unlock()
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *OrderRepositoryStub) MarkPaid(ctx context.Context, c model.PaymentConfirmation) (*model.Order, bool, error) {
	if s.Err != nil {
		return nil, false, s.Err
	}
	if s.MarkPaidErr != nil {
		return nil, false, s.MarkPaidErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[c.OrderID]
	if !ok || o.InvoiceID != c.InvoiceID {
		return nil, false, domainErrors.ErrNotFound
	}
	if o.Status != model.OrderStatusPending && o.Status != model.OrderStatusFailed {
		return cloneOrder(o), false, nil
	}
	sig, token, expiry := c.Signature, c.DownloadToken, c.DownloadTokenExpiry
	o.Status = model.OrderStatusPaid
	o.Signature = &sig
	o.DownloadToken = &token
	o.DownloadTokenExpiry = &expiry
	if s.Events != nil {
		_ = s.Events.Append(ctx, c.OrderID, model.EventPaymentSuccess, c.Details)
	}
	return cloneOrder(o), true, nil
}

func (s *OrderRepositoryStub) MarkFailed(ctx context.Context, id string) (*model.Order, bool, error) {
	if s.Err != nil {
		return nil, false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, false, domainErrors.ErrNotFound
	}
	if o.Status != model.OrderStatusPending {
		return cloneOrder(o), false, nil
	}
	o.Status = model.OrderStatusFailed
	return cloneOrder(o), true, nil
}

func (s *OrderRepositoryStub) IncrementDownloads(ctx context.Context, id string) (int, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.Status != model.OrderStatusPaid {
		return 0, domainErrors.ErrNotFound
	}
	o.DownloadCount++
	return o.DownloadCount, nil
}

// EventRepositoryStub records audit events in memory.
type EventRepositoryStub struct {
	Err error

	mu     sync.Mutex
	events []model.OrderEvent
}

// NewEventRepositoryStub constructs an empty event log.
func NewEventRepositoryStub() *EventRepositoryStub {
	return &EventRepositoryStub{}
}

func (s *EventRepositoryStub) Append(ctx context.Context, orderID string, eventType model.EventType, details any) error {
	if s.Err != nil {
		return s.Err
	}
	payload, err := json.Marshal(details)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, model.OrderEvent{
		ID:      int64(len(s.events) + 1),
		OrderID: orderID,
		Type:    eventType,
		Details: payload,
	})
	return nil
}

func (s *EventRepositoryStub) ListByOrder(ctx context.Context, orderID string) ([]model.OrderEvent, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.OrderEvent
	for _, e := range s.events {
		if e.OrderID == orderID {
			result = append(result, e)
		}
	}
	return result, nil
}

// CountOf returns how many events of the type were recorded for the order.
func (s *EventRepositoryStub) CountOf(orderID string, eventType model.EventType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if e.OrderID == orderID && e.Type == eventType {
			n++
		}
	}
	return n
}

// Last returns the most recent event of the type for the order.
func (s *EventRepositoryStub) Last(orderID string, eventType model.EventType) (model.OrderEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].OrderID == orderID && s.events[i].Type == eventType {
			return s.events[i], true
		}
	}
	return model.OrderEvent{}, false
}

// Types returns event types of the order in insertion order.
func (s *EventRepositoryStub) Types(orderID string) []model.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	var types []model.EventType
	for _, e := range s.events {
		if e.OrderID == orderID {
			types = append(types, e.Type)
		}
	}
	return types
}

// CounterStub is a mutex guarded counter.
type CounterStub struct {
	Err error

	mu    sync.Mutex
	value int64
	calls int
}

func (s *CounterStub) NextInvoiceID(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.Err != nil {
		return 0, s.Err
	}
	s.value++
	return s.value, nil
}

// Calls returns how many times NextInvoiceID was invoked.
func (s *CounterStub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// BookRepositoryStub stores books in memory.
type BookRepositoryStub struct {
	Err error

	mu    sync.Mutex
	books map[string]*model.Book
}

// NewBookRepositoryStub constructs repository prefilled with books.
func NewBookRepositoryStub(books ...model.Book) *BookRepositoryStub {
	s := &BookRepositoryStub{books: make(map[string]*model.Book)}
	for _, b := range books {
		book := b
		s.books[b.ID] = &book
	}
	return s
}

func (s *BookRepositoryStub) GetByID(ctx context.Context, id string) (*model.Book, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.books[id]; ok {
		c := *b
		return &c, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (s *BookRepositoryStub) Upsert(ctx context.Context, id string, u model.BookUpdate) (*model.Book, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.books == nil {
		s.books = make(map[string]*model.Book)
	}
	b, ok := s.books[id]
	if !ok {
		b = &model.Book{ID: id}
		s.books[id] = b
	}
	b.Title, b.Published, b.PDFPrice, b.Currency = u.Title, u.Published, u.PDFPrice, u.Currency
	c := *b
	return &c, nil
}

func (s *BookRepositoryStub) AttachPDF(ctx context.Context, id string, ref string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	b.PDFRef = &ref
	return nil
}

var (
	_ repository.OrderRepository = (*OrderRepositoryStub)(nil)
	_ repository.EventRepository = (*EventRepositoryStub)(nil)
	_ repository.InvoiceCounter  = (*CounterStub)(nil)
	_ repository.BookRepository  = (*BookRepositoryStub)(nil)
)
