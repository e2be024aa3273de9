package events

import (
	"encoding/json"
	"time"
)

const (
	TopicOrderPlaced = "dealer.order.placed"

	EventOrderPlaced = "OrderPlaced"
)

// Envelope is the versioned wrapper every published event rides in.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderID       string `json:"order_id"`
	OrderNumber   string `json:"order_number"`
	DealerID      string `json:"dealer_id"`
	DealerPhone   string `json:"dealer_phone"`
	TotalAmount   int64  `json:"total_amount"`
	PaymentMethod string `json:"payment_method"`
	ItemCount     int    `json:"item_count"`
}

// PartitionKey keys by dealer so one dealer's order events stay in order.
func PartitionKey(dealerID string) []byte { return []byte(dealerID) }
