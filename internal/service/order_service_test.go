package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/humsafar/dealer-api/internal/domain"
	"github.com/humsafar/dealer-api/internal/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderFixture(t *testing.T) (*OrderService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewOrderService(store, memory.Products{S: store}, store, memory.Orders{S: store}, store)

	require.NoError(t, store.Create(context.Background(), &domain.Dealer{
		ID:          "d1",
		Name:        "Ravi",
		Phone:       "9876543210",
		CreditLimit: 10_000_000,
	}))
	require.NoError(t, store.CreateProduct(context.Background(), &domain.Product{
		ID:    "p1",
		Name:  "OPC 43 Grade Cement",
		Price: 35000,
		Stock: 5000,
	}))
	return svc, store
}

func TestPlaceOrderOnAccount(t *testing.T) {
	ctx := context.Background()
	svc, store := newOrderFixture(t)

	_, err := store.Add(ctx, "d1", "p1", 10)
	require.NoError(t, err)

	order, err := svc.PlaceOrder(ctx, "d1", PlaceOrderInput{
		PaymentMethod:   domain.PaymentAccount,
		DeliveryAddress: "Plot 4, Industrial Area",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(350000), order.TotalAmount)
	assert.Equal(t, domain.OrderPending, order.OrderStatus)
	assert.Equal(t, domain.PaymentCompleted, order.PaymentStatus)
	assert.Regexp(t, `^ORD-\d{14}-[0-9A-F]{6}$`, order.OrderNumber)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "OPC 43 Grade Cement", order.Items[0].ProductName)
	assert.Equal(t, int64(350000), order.Items[0].Subtotal)

	d, err := store.GetByID(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, int64(350000), d.Outstanding)
	assert.Equal(t, int64(9_650_000), d.AvailableCredit())

	items, err := store.ListByDealer(ctx, "d1")
	require.NoError(t, err)
	assert.Empty(t, items, "cart must be cleared after placement")
}

func TestPlaceOrderCODLeavesCreditAlone(t *testing.T) {
	ctx := context.Background()
	svc, store := newOrderFixture(t)

	_, err := store.Add(ctx, "d1", "p1", 2)
	require.NoError(t, err)

	order, err := svc.PlaceOrder(ctx, "d1", PlaceOrderInput{
		PaymentMethod:   domain.PaymentCOD,
		DeliveryAddress: "Plot 4",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)

	d, err := store.GetByID(ctx, "d1")
	require.NoError(t, err)
	assert.Zero(t, d.Outstanding)
}

func TestPlaceOrderInsufficientCredit(t *testing.T) {
	ctx := context.Background()
	svc, store := newOrderFixture(t)

	require.NoError(t, store.AddToBalance(ctx, "d1", 9_900_000))
	_, err := store.Add(ctx, "d1", "p1", 10)
	require.NoError(t, err)

	_, err = svc.PlaceOrder(ctx, "d1", PlaceOrderInput{PaymentMethod: domain.PaymentAccount})

	var ice *InsufficientCreditError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, int64(100000), ice.Available)
	assert.Equal(t, int64(350000), ice.Required)

	// nothing moved
	d, err := store.GetByID(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, int64(9_900_000), d.Outstanding)
	items, err := store.ListByDealer(ctx, "d1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
	orders, err := svc.List(ctx, "d1")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	svc, _ := newOrderFixture(t)

	_, err := svc.PlaceOrder(context.Background(), "d1", PlaceOrderInput{PaymentMethod: domain.PaymentCOD})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceOrderAllProductsWithdrawn(t *testing.T) {
	ctx := context.Background()
	svc, store := newOrderFixture(t)

	_, err := store.Add(ctx, "d1", "gone", 3)
	require.NoError(t, err)

	_, err = svc.PlaceOrder(ctx, "d1", PlaceOrderInput{PaymentMethod: domain.PaymentCOD})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

// A cart row with an absurd quantity must never turn into a negative
// total that slips past the credit check.
func TestPlaceOrderRejectsOverflowingTotal(t *testing.T) {
	ctx := context.Background()
	svc, store := newOrderFixture(t)

	require.NoError(t, store.UpdateQuantity(ctx, "d1", mustAdd(t, store, "d1", "p1", 1).ID, 300_000_000_000_000))

	_, err := svc.PlaceOrder(ctx, "d1", PlaceOrderInput{PaymentMethod: domain.PaymentAccount})
	require.Error(t, err)

	d, err := store.GetByID(ctx, "d1")
	require.NoError(t, err)
	assert.Zero(t, d.Outstanding)
	orders, err := svc.List(ctx, "d1")
	require.NoError(t, err)
	assert.Empty(t, orders)
	items, err := store.ListByDealer(ctx, "d1")
	require.NoError(t, err)
	assert.Len(t, items, 1, "cart must survive the rejected order")
}

func mustAdd(t *testing.T, store *memory.Store, dealerID, productID string, qty int) *domain.CartItem {
	t.Helper()
	it, err := store.Add(context.Background(), dealerID, productID, qty)
	require.NoError(t, err)
	return it
}

func TestPlaceOrderInvalidPaymentMethod(t *testing.T) {
	svc, _ := newOrderFixture(t)

	_, err := svc.PlaceOrder(context.Background(), "d1", PlaceOrderInput{PaymentMethod: "upi"})
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
}

// Two simultaneous account orders from the same dealer. The second one
// must see the state left by the first: its cart is already cleared, so
// exactly one order lands and the balance reflects a single total.
func TestPlaceOrderConcurrent(t *testing.T) {
	ctx := context.Background()
	svc, store := newOrderFixture(t)

	_, err := store.Add(ctx, "d1", "p1", 10)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.PlaceOrder(ctx, "d1", PlaceOrderInput{PaymentMethod: domain.PaymentAccount})
		}(i)
	}
	wg.Wait()

	var ok, failed int
	for _, err := range errs {
		if err == nil {
			ok++
		} else if errors.Is(err, ErrEmptyCart) {
			failed++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, failed)

	d, err := store.GetByID(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, int64(350000), d.Outstanding)

	orders, err := svc.List(ctx, "d1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestOrderGetScopedToDealer(t *testing.T) {
	ctx := context.Background()
	svc, store := newOrderFixture(t)

	_, err := store.Add(ctx, "d1", "p1", 1)
	require.NoError(t, err)
	order, err := svc.PlaceOrder(ctx, "d1", PlaceOrderInput{PaymentMethod: domain.PaymentCOD})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "d1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, got.OrderNumber)

	_, err = svc.Get(ctx, "d2", order.ID)
	assert.Error(t, err)
}
