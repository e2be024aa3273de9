package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/humsafar/dealer-api/internal/domain"
	"github.com/humsafar/dealer-api/internal/repository"
)

// OrderService turns a mutable cart into an immutable order. The whole
// placement runs inside one transaction with the dealer row locked first,
// so two concurrent account orders from the same dealer can never both
// validate against the pre-update balance.
type OrderService struct {
	dealers  repository.DealerRepo
	products repository.ProductRepo
	carts    repository.CartRepo
	orders   repository.OrderRepo
	tx       repository.TxManager
	now      func() time.Time
}

func NewOrderService(dealers repository.DealerRepo, products repository.ProductRepo,
	carts repository.CartRepo, orders repository.OrderRepo, tx repository.TxManager) *OrderService {
	return &OrderService{
		dealers:  dealers,
		products: products,
		carts:    carts,
		orders:   orders,
		tx:       tx,
		now:      time.Now,
	}
}

type PlaceOrderInput struct {
	PaymentMethod   domain.PaymentMethod `json:"payment_method"`
	DeliveryAddress string               `json:"delivery_address"`
	Notes           string               `json:"notes"`
}

func (s *OrderService) PlaceOrder(ctx context.Context, dealerID string, in PlaceOrderInput) (*domain.Order, error) {
	if !in.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	var placed *domain.Order
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		// Lock the dealer row before reading anything else: the credit
		// check and the balance increment must see one snapshot.
		dealer, err := s.dealers.GetForUpdate(ctx, dealerID)
		if err != nil {
			return err
		}

		items, err := s.carts.ListByDealer(ctx, dealerID)
		if err != nil {
			return fmt.Errorf("read cart: %w", err)
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		// Snapshot cart rows against the live catalog. Rows whose product
		// disappeared are dropped, not errors.
		var orderItems []domain.OrderItem
		var total int64
		for _, it := range items {
			p, err := s.products.GetByID(ctx, it.ProductID)
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("resolve product %s: %w", it.ProductID, err)
			}
			if p.Price > 0 && int64(it.Quantity) > math.MaxInt64/p.Price {
				return fmt.Errorf("line total overflow: product %s price %d quantity %d", p.ID, p.Price, it.Quantity)
			}
			subtotal := p.Price * int64(it.Quantity)
			if total > math.MaxInt64-subtotal {
				return fmt.Errorf("order total overflow for dealer %s", dealerID)
			}
			orderItems = append(orderItems, domain.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    it.Quantity,
				Price:       p.Price,
				Subtotal:    subtotal,
			})
			total += subtotal
		}
		if len(orderItems) == 0 {
			// every product in the cart has been withdrawn
			return ErrEmptyCart
		}

		if in.PaymentMethod == domain.PaymentAccount {
			if available := dealer.AvailableCredit(); total > available {
				return &InsufficientCreditError{Available: available, Required: total}
			}
		}

		now := s.now().UTC()
		order := &domain.Order{
			ID:              uuid.NewString(),
			OrderNumber:     domain.GenerateOrderNumber(now),
			DealerID:        dealer.ID,
			Items:           orderItems,
			TotalAmount:     total,
			PaymentMethod:   in.PaymentMethod,
			PaymentStatus:   domain.PaymentStatusFor(in.PaymentMethod),
			OrderStatus:     domain.OrderPending,
			DeliveryAddress: in.DeliveryAddress,
			Notes:           in.Notes,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.orders.Create(ctx, order); err != nil {
			return fmt.Errorf("persist order: %w", err)
		}
		if in.PaymentMethod == domain.PaymentAccount {
			if err := s.dealers.AddToBalance(ctx, dealer.ID, total); err != nil {
				return fmt.Errorf("update balance: %w", err)
			}
		}
		if err := s.carts.Clear(ctx, dealerID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

func (s *OrderService) Get(ctx context.Context, dealerID, orderID string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, dealerID, orderID)
}

func (s *OrderService) List(ctx context.Context, dealerID string) ([]domain.Order, error) {
	return s.orders.ListByDealer(ctx, dealerID)
}
