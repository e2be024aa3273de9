package memory

import (
	"context"

	"github.com/humsafar/dealer-api/internal/domain"
)

// *Store itself satisfies DealerRepo and CartRepo. Products and orders get
// thin views because their interface method names collide with those.

type Products struct{ S *Store }

func (v Products) Create(ctx context.Context, p *domain.Product) error {
	return v.S.CreateProduct(ctx, p)
}
func (v Products) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return v.S.GetProduct(ctx, id)
}
func (v Products) List(ctx context.Context) ([]domain.Product, error) {
	return v.S.ListProducts(ctx)
}
func (v Products) Count(ctx context.Context) (int, error) {
	return v.S.CountProducts(ctx)
}

type Orders struct{ S *Store }

func (v Orders) Create(ctx context.Context, o *domain.Order) error {
	return v.S.CreateOrder(ctx, o)
}
func (v Orders) GetByID(ctx context.Context, dealerID, orderID string) (*domain.Order, error) {
	return v.S.GetOrder(ctx, dealerID, orderID)
}
func (v Orders) ListByDealer(ctx context.Context, dealerID string) ([]domain.Order, error) {
	return v.S.ListOrders(ctx, dealerID)
}
func (v Orders) UpdateStatus(ctx context.Context, dealerID, orderID string, status domain.OrderStatus) error {
	return v.S.UpdateOrderStatus(ctx, dealerID, orderID, status)
}
