// Package repository defines the storage contracts the services depend on.
// Two implementations exist: internal/postgres for production and
// internal/memory for tests and local development.
package repository

import (
	"context"
	"errors"

	"github.com/humsafar/dealer-api/internal/domain"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicatePhone = errors.New("phone already registered")
	ErrDuplicateName  = errors.New("name already exists")
)

type DealerRepo interface {
	Create(ctx context.Context, d *domain.Dealer) error
	GetByID(ctx context.Context, id string) (*domain.Dealer, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Dealer, error)
	GetByToken(ctx context.Context, token string) (*domain.Dealer, error)
	// GetForUpdate locks the dealer row for the rest of the surrounding
	// transaction. Callers must be inside TxManager.WithTx.
	GetForUpdate(ctx context.Context, id string) (*domain.Dealer, error)
	SetAuthToken(ctx context.Context, id, token string) error
	AddToBalance(ctx context.Context, id string, delta int64) error
}

type ProductRepo interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Count(ctx context.Context) (int, error)
}

type CartRepo interface {
	// Add merges into the existing (dealer, product) row if one exists,
	// otherwise creates it. The upsert is atomic.
	Add(ctx context.Context, dealerID, productID string, qty int) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, dealerID, itemID string, qty int) error
	Delete(ctx context.Context, dealerID, itemID string) error
	Clear(ctx context.Context, dealerID string) error
	ListByDealer(ctx context.Context, dealerID string) ([]domain.CartItem, error)
}

type OrderRepo interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, dealerID, orderID string) (*domain.Order, error)
	// ListByDealer returns orders newest first.
	ListByDealer(ctx context.Context, dealerID string) ([]domain.Order, error)
	// UpdateStatus is the extension point for fulfillment; nothing in the
	// HTTP surface drives it yet.
	UpdateStatus(ctx context.Context, dealerID, orderID string, status domain.OrderStatus) error
}

// TxManager runs fn atomically. Repo calls made with the ctx passed to fn
// join the same transaction.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
