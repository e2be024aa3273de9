package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/humsafar/dealer-api/internal/cache"
	"github.com/humsafar/dealer-api/internal/domain"
	"github.com/humsafar/dealer-api/internal/events"
	kafkax "github.com/humsafar/dealer-api/internal/kafka"
	"github.com/humsafar/dealer-api/internal/redisx"
	"github.com/humsafar/dealer-api/internal/service"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher is what the handler needs from the kafka producer; nil-able in
// tests via a no-op.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type OrdersHandler struct {
	Orders   *service.OrderService
	Producer Publisher
	Cache    cache.Cache
	Service  string
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.place)
	r.Get("/orders", h.list)
	r.Get("/orders/{id}", h.get)
}

func (h *OrdersHandler) place(w http.ResponseWriter, r *http.Request) {
	var in service.PlaceOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if in.DeliveryAddress == "" {
		badRequest(w, "missing delivery_address")
		return
	}

	dealer := dealerFrom(r)
	order, err := h.Orders.PlaceOrder(r.Context(), dealer.ID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	h.publishPlaced(r, dealer, order)
	writeJSON(w, http.StatusCreated, order)
}

// publishPlaced emits the order event after the transaction committed.
// Fire-and-forget: a broker hiccup never fails the order.
func (h *OrdersHandler) publishPlaced(r *http.Request, dealer *domain.Dealer, order *domain.Order) {
	if h.Producer == nil {
		return
	}
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: order.ID,
		Payload: kafkax.MustMarshal(events.OrderPlacedPayload{
			OrderID:       order.ID,
			OrderNumber:   order.OrderNumber,
			DealerID:      dealer.ID,
			DealerPhone:   dealer.Phone,
			TotalAmount:   order.TotalAmount,
			PaymentMethod: string(order.PaymentMethod),
			ItemCount:     len(order.Items),
		}),
	}
	h.Producer.Publish(events.PartitionKey(dealer.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.List(r.Context(), dealerFrom(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// get serves the order detail from cache when possible. Orders are
// immutable apart from status, so a short TTL is safe.
func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	dealer := dealerFrom(r)

	key := fmt.Sprintf(redisx.KeyOrderCache, orderID)
	if h.Cache != nil {
		if b, err := h.Cache.Get(r.Context(), key); err == nil {
			var cached domain.Order
			// only serve a cache hit back to its owner
			if json.Unmarshal(b, &cached) == nil && cached.DealerID == dealer.ID {
				writeJSON(w, http.StatusOK, &cached)
				return
			}
		}
	}

	order, err := h.Orders.Get(r.Context(), dealer.ID, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	if h.Cache != nil {
		if b, err := json.Marshal(order); err == nil {
			_ = h.Cache.Set(r.Context(), key, b, redisx.TTLOrderCache)
		}
	}
	writeJSON(w, http.StatusOK, order)
}
