package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/humsafar/dealer-api/internal/cache"
	"github.com/humsafar/dealer-api/internal/domain"
	"github.com/humsafar/dealer-api/internal/events"
	"github.com/humsafar/dealer-api/internal/memory"
	"github.com/humsafar/dealer-api/internal/service"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct{ reply string }

func (s stubCompleter) Complete(ctx context.Context, sessionID, system, user string) (string, error) {
	return s.reply, nil
}

func newAPI(t *testing.T) (*chi.Mux, *memory.Store) {
	r, store, _ := newAPIWithHandlers(t)
	return r, store
}

func newAPIWithHandlers(t *testing.T) (*chi.Mux, *memory.Store, *Handlers) {
	t.Helper()
	store := memory.NewStore()
	products := memory.Products{S: store}
	orders := memory.Orders{S: store}

	auth := service.NewAuthService(store, store)
	h := &Handlers{
		Auth:    &AuthHandler{Auth: auth},
		Catalog: &CatalogHandler{Products: service.NewProductService(products, cache.NewMemory(), store)},
		Cart:    &CartHandler{Cart: service.NewCartService(store, products)},
		Orders: &OrdersHandler{
			Orders:  service.NewOrderService(store, products, store, orders, store),
			Cache:   cache.NewMemory(),
			Service: "dealer-api-test",
		},
		Dashboard: &DashboardHandler{Dashboard: service.NewDashboardService(orders)},
		Chat:      &ChatHandler{Assistant: service.NewAssistantService(stubCompleter{reply: "Use OPC 53."}, products, orders)},
	}

	r := NewRouter()
	h.Register(r)
	return r, store, h
}

func do(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

var registerBody = map[string]string{
	"name":          "Ravi",
	"phone":         "9876543210",
	"email":         "ravi@example.com",
	"business_name": "Ravi Traders",
	"address":       "Plot 4, Industrial Area",
}

// register + otp round trip; returns a live bearer token.
func login(t *testing.T, r http.Handler) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/auth/register", "", registerBody)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodPost, "/api/auth/send-otp", "", map[string]string{"phone": registerBody["phone"]})
	require.Equal(t, http.StatusOK, w.Code)
	otp := decode[map[string]string](t, w)["otp"]
	require.Len(t, otp, 6)

	w = do(t, r, http.MethodPost, "/api/auth/verify-otp", "", map[string]string{"phone": registerBody["phone"], "otp": otp})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[map[string]any](t, w)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAuthEndpoints(t *testing.T) {
	r, _ := newAPI(t)

	w := do(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Ravi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	token := login(t, r)

	w = do(t, r, http.MethodPost, "/api/auth/register", "", registerBody)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "phone_registered", decode[map[string]string](t, w)["code"])

	w = do(t, r, http.MethodPost, "/api/auth/send-otp", "", map[string]string{"phone": "0000000000"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[domain.Dealer](t, w)
	assert.Equal(t, "9876543210", me.Phone)
	assert.Equal(t, domain.DefaultCreditLimitPaise, me.CreditLimit)

	w = do(t, r, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = do(t, r, http.MethodGet, "/api/auth/me", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyOTPRejectsWrongCode(t *testing.T) {
	r, _ := newAPI(t)

	w := do(t, r, http.MethodPost, "/api/auth/register", "", registerBody)
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, r, http.MethodPost, "/api/auth/send-otp", "", map[string]string{"phone": registerBody["phone"]})
	require.Equal(t, http.StatusOK, w.Code)
	otp := decode[map[string]string](t, w)["otp"]

	wrong := "000000"
	if otp == wrong {
		wrong = "111111"
	}
	w = do(t, r, http.MethodPost, "/api/auth/verify-otp", "", map[string]string{"phone": registerBody["phone"], "otp": wrong})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_otp", decode[map[string]string](t, w)["code"])
}

func TestCatalogEndpoints(t *testing.T) {
	r, _ := newAPI(t)

	w := do(t, r, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]domain.Product](t, w))

	w = do(t, r, http.MethodPost, "/api/seed-data", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "6 products added successfully", decode[map[string]string](t, w)["message"])

	w = do(t, r, http.MethodPost, "/api/seed-data", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Products already exist", decode[map[string]string](t, w)["message"])

	w = do(t, r, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	products := decode[[]domain.Product](t, w)
	require.Len(t, products, 6)

	w = do(t, r, http.MethodGet, "/api/products/"+products[0].ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, products[0].Name, decode[domain.Product](t, w).Name)

	w = do(t, r, http.MethodGet, "/api/products/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartAndOrderFlow(t *testing.T) {
	r, store := newAPI(t)
	token := login(t, r)

	ctx := context.Background()
	require.NoError(t, store.CreateProduct(ctx, &domain.Product{
		ID: "p1", Name: "OPC 43 Grade Cement", Price: 35000, Stock: 5000,
	}))

	w := do(t, r, http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPost, "/api/cart", token, map[string]any{"product_id": "p1", "quantity": 4})
	require.Equal(t, http.StatusCreated, w.Code)
	item := decode[domain.CartItem](t, w)
	assert.Equal(t, 4, item.Quantity)

	// same product again merges into the row
	w = do(t, r, http.MethodPost, "/api/cart", token, map[string]any{"product_id": "p1", "quantity": 6})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	lines := decode[[]domain.CartLine](t, w)
	require.Len(t, lines, 1)
	assert.Equal(t, 10, lines[0].Item.Quantity)
	assert.Equal(t, int64(350000), lines[0].Subtotal)

	w = do(t, r, http.MethodPost, "/api/orders", token, map[string]string{"payment_method": "account"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/orders", token, map[string]string{
		"payment_method":   "account",
		"delivery_address": "Plot 4, Industrial Area",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	order := decode[domain.Order](t, w)
	assert.Equal(t, int64(350000), order.TotalAmount)
	assert.Equal(t, domain.OrderPending, order.OrderStatus)
	assert.Equal(t, domain.PaymentCompleted, order.PaymentStatus)

	w = do(t, r, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]domain.CartLine](t, w))

	w = do(t, r, http.MethodGet, "/api/orders", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[[]domain.Order](t, w), 1)

	// order detail, twice to go through the cache path
	for i := 0; i < 2; i++ {
		w = do(t, r, http.MethodGet, "/api/orders/"+order.ID, token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, order.OrderNumber, decode[domain.Order](t, w).OrderNumber)
	}

	w = do(t, r, http.MethodGet, "/api/dashboard/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[domain.DashboardStats](t, w)
	assert.Equal(t, 1, stats.TotalOrders)
	assert.Equal(t, int64(350000), stats.TotalSpent)
}

func TestPlaceOrderInsufficientCreditResponse(t *testing.T) {
	r, store := newAPI(t)
	token := login(t, r)

	ctx := context.Background()
	require.NoError(t, store.CreateProduct(ctx, &domain.Product{
		ID: "p1", Name: "OPC 43 Grade Cement", Price: 35000, Stock: 5000,
	}))
	dealer, err := store.GetByPhone(ctx, registerBody["phone"])
	require.NoError(t, err)
	require.NoError(t, store.AddToBalance(ctx, dealer.ID, 9_900_000))

	w := do(t, r, http.MethodPost, "/api/cart", token, map[string]any{"product_id": "p1", "quantity": 10})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodPost, "/api/orders", token, map[string]string{
		"payment_method":   "account",
		"delivery_address": "Plot 4",
	})
	require.Equal(t, http.StatusPaymentRequired, w.Code)

	body := decode[map[string]any](t, w)
	assert.Equal(t, "insufficient_credit", body["code"])
	assert.Equal(t, float64(100000), body["available_credit"])
	assert.Equal(t, float64(350000), body["required_amount"])

	// the cart survives a rejected order
	w = do(t, r, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.CartLine](t, w), 1)
}

type fakePublisher struct {
	keys   [][]byte
	values [][]byte
}

func (f *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	f.keys = append(f.keys, key)
	f.values = append(f.values, value)
}

func TestPlaceOrderPublishesEvent(t *testing.T) {
	r, store, h := newAPIWithHandlers(t)
	pub := &fakePublisher{}
	h.Orders.Producer = pub

	token := login(t, r)
	ctx := context.Background()
	require.NoError(t, store.CreateProduct(ctx, &domain.Product{
		ID: "p1", Name: "PPC Cement", Price: 34000, Stock: 100,
	}))

	w := do(t, r, http.MethodPost, "/api/cart", token, map[string]any{"product_id": "p1", "quantity": 2})
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, r, http.MethodPost, "/api/orders", token, map[string]string{
		"payment_method":   "cod",
		"delivery_address": "Plot 4",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	order := decode[domain.Order](t, w)

	require.Len(t, pub.values, 1)
	var env events.Envelope
	require.NoError(t, json.Unmarshal(pub.values[0], &env))
	assert.Equal(t, events.EventOrderPlaced, env.EventType)
	assert.Equal(t, order.ID, env.CorrelationID)

	var p events.OrderPlacedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, order.OrderNumber, p.OrderNumber)
	assert.Equal(t, int64(68000), p.TotalAmount)
	assert.Equal(t, "cod", p.PaymentMethod)
	assert.Equal(t, 1, p.ItemCount)

	dealer, err := store.GetByPhone(ctx, registerBody["phone"])
	require.NoError(t, err)
	assert.Equal(t, []byte(dealer.ID), pub.keys[0])
}

func TestChatEndpoint(t *testing.T) {
	r, _ := newAPI(t)
	token := login(t, r)

	w := do(t, r, http.MethodPost, "/api/chat", token, map[string]string{"message": "Which grade for slabs?"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Use OPC 53.", decode[map[string]string](t, w)["response"])

	w = do(t, r, http.MethodPost, "/api/chat", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthz(t *testing.T) {
	r, _ := newAPI(t)

	w := do(t, r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
