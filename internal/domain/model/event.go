package model

import (
	"encoding/json"
	"time"
)

// EventType tags an audit trail entry.
type EventType string

const (
	EventCreated          EventType = "CREATED"
	EventPaymentInitiated EventType = "PAYMENT_INITIATED"
	EventCallbackReceived EventType = "CALLBACK_RECEIVED"
	EventPaymentSuccess   EventType = "PAYMENT_SUCCESS"
	EventPaymentFailed    EventType = "PAYMENT_FAILED"
	EventEmailSent        EventType = "EMAIL_SENT"
	EventDownload         EventType = "DOWNLOAD"
)

// OrderEvent is an immutable audit log entry attached to an order.
type OrderEvent struct {
	ID        int64
	OrderID   string
	Type      EventType
	Details   json.RawMessage
	CreatedAt time.Time
}
