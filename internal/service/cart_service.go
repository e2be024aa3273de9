package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/humsafar/dealer-api/internal/domain"
	"github.com/humsafar/dealer-api/internal/repository"
)

type CartService struct {
	carts    repository.CartRepo
	products repository.ProductRepo
}

func NewCartService(carts repository.CartRepo, products repository.ProductRepo) *CartService {
	return &CartService{carts: carts, products: products}
}

// Add puts qty units of a product in the dealer's cart. A second add of the
// same product increments the existing row instead of duplicating it.
func (s *CartService) Add(ctx context.Context, dealerID, productID string, qty int) (*domain.CartItem, error) {
	if qty < 1 || qty > domain.MaxCartQuantity {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	it, err := s.carts.Add(ctx, dealerID, productID, qty)
	if err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	return it, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, dealerID, itemID string, qty int) error {
	if qty < 1 || qty > domain.MaxCartQuantity {
		return ErrInvalidQuantity
	}
	return s.carts.UpdateQuantity(ctx, dealerID, itemID, qty)
}

func (s *CartService) Remove(ctx context.Context, dealerID, itemID string) error {
	return s.carts.Delete(ctx, dealerID, itemID)
}

// Clear empties the cart; clearing an empty cart is a no-op.
func (s *CartService) Clear(ctx context.Context, dealerID string) error {
	return s.carts.Clear(ctx, dealerID)
}

// List joins cart rows to current catalog prices. Rows whose product has
// been removed from the catalog are skipped.
func (s *CartService) List(ctx context.Context, dealerID string) ([]domain.CartLine, error) {
	items, err := s.carts.ListByDealer(ctx, dealerID)
	if err != nil {
		return nil, err
	}
	lines := make([]domain.CartLine, 0, len(items))
	for _, it := range items {
		p, err := s.products.GetByID(ctx, it.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, domain.CartLine{
			Item:     it,
			Product:  *p,
			Subtotal: p.Price * int64(it.Quantity),
		})
	}
	return lines, nil
}
