package orders

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type EventItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Emoji     string `json:"emoji,omitempty"`
	Qty       int    `json:"qty"`
	Price     string `json:"price"`
}

type OrderCreatedPayload struct {
	OrderID       string      `json:"order_id"`
	PaymentMethod string      `json:"payment_method"`
	Status        string      `json:"status"`
	Total         string      `json:"total"`
	Items         []EventItem `json:"items"`
	CustomerID    string      `json:"customer_id,omitempty"`
	EmployeeID    string      `json:"employee_id,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

type OrderStatusChangedPayload struct {
	OrderID   string      `json:"order_id"`
	From      string      `json:"from"`
	To        string      `json:"to"`
	Total     string      `json:"total"`
	Items     []EventItem `json:"items"`
	CreatedAt time.Time   `json:"created_at"`
}

func NewOrderCreatedEvent(o Order, producer, traceID string) (Envelope, error) {
	return newEnvelope(EventOrderCreated, o.ID, producer, traceID, OrderCreatedPayload{
		OrderID:       o.ID,
		PaymentMethod: string(o.PaymentMethod),
		Status:        string(o.Status),
		Total:         o.Total.Amount.StringFixed(2),
		Items:         eventItems(o.Items),
		CustomerID:    uuidString(o.CustomerID),
		EmployeeID:    uuidString(o.EmployeeID),
		CreatedAt:     o.CreatedAt,
	})
}

func NewOrderStatusChangedEvent(o Order, from Status, producer, traceID string) (Envelope, error) {
	return newEnvelope(EventOrderStatusChanged, o.ID, producer, traceID, OrderStatusChangedPayload{
		OrderID:   o.ID,
		From:      string(from),
		To:        string(o.Status),
		Total:     o.Total.Amount.StringFixed(2),
		Items:     eventItems(o.Items),
		CreatedAt: o.CreatedAt,
	})
}

func newEnvelope(eventType, orderID, producer, traceID string, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("json.Marshal[%s]: %w", eventType, err)
	}

	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       traceID,
		CorrelationID: orderID,
		Payload:       b,
	}, nil
}

func eventItems(items []LineItem) []EventItem {
	return lo.Map(items, func(it LineItem, _ int) EventItem {
		return EventItem{
			ProductID: it.ProductID.String(),
			Name:      it.Name,
			Emoji:     it.Emoji,
			Qty:       it.Qty,
			Price:     it.Price.StringFixed(2),
		}
	})
}

func uuidString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
