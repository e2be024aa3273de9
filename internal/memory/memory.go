// Package memory is an in-process implementation of the repository
// contracts. It backs the test suite and doubles as a dev store when no
// postgres is around.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/humsafar/dealer-api/internal/domain"
	"github.com/humsafar/dealer-api/internal/repository"
)

type otpRecord struct {
	code      string
	expiresAt time.Time
}

// Store holds everything behind one RWMutex. WithTx takes the write lock
// for the whole callback, which both serializes per-dealer critical
// sections and mimics the store-level transaction of the postgres backend.
type Store struct {
	mu       sync.RWMutex
	dealers  map[string]domain.Dealer
	products map[string]domain.Product
	cart     map[string]domain.CartItem
	orders   map[string]domain.Order
	otps     map[string]otpRecord
}

func NewStore() *Store {
	return &Store{
		dealers:  make(map[string]domain.Dealer),
		products: make(map[string]domain.Product),
		cart:     make(map[string]domain.CartItem),
		orders:   make(map[string]domain.Order),
		otps:     make(map[string]otpRecord),
	}
}

// Calls made inside WithTx already hold the write lock; the ctx marker
// keeps the repo methods from deadlocking on re-entry.
type txKey struct{}

func inTx(ctx context.Context) bool {
	v, ok := ctx.Value(txKey{}).(bool)
	return ok && v
}

func (s *Store) rlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.RLock()
	}
}
func (s *Store) runlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.RUnlock()
	}
}
func (s *Store) wlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.Lock()
	}
}
func (s *Store) wunlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.Unlock()
	}
}

// WithTx snapshots the maps up front and restores them when fn fails, so a
// mid-transaction error leaves no partial state behind.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type storeSnapshot struct {
	dealers  map[string]domain.Dealer
	products map[string]domain.Product
	cart     map[string]domain.CartItem
	orders   map[string]domain.Order
	otps     map[string]otpRecord
}

func (s *Store) snapshot() storeSnapshot {
	return storeSnapshot{
		dealers:  maps.Clone(s.dealers),
		products: maps.Clone(s.products),
		cart:     maps.Clone(s.cart),
		orders:   maps.Clone(s.orders),
		otps:     maps.Clone(s.otps),
	}
}

func (s *Store) restore(snap storeSnapshot) {
	s.dealers = snap.dealers
	s.products = snap.products
	s.cart = snap.cart
	s.orders = snap.orders
	s.otps = snap.otps
}

// ---- dealers ----

func (s *Store) Create(ctx context.Context, d *domain.Dealer) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	for _, existing := range s.dealers {
		if existing.Phone == d.Phone {
			return repository.ErrDuplicatePhone
		}
	}
	s.dealers[d.ID] = *d
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*domain.Dealer, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	d, ok := s.dealers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (s *Store) GetByPhone(ctx context.Context, phone string) (*domain.Dealer, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	for _, d := range s.dealers {
		if d.Phone == phone {
			cp := d
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) GetByToken(ctx context.Context, token string) (*domain.Dealer, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	if token == "" {
		return nil, repository.ErrNotFound
	}
	for _, d := range s.dealers {
		if d.AuthToken == token {
			cp := d
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// GetForUpdate needs no row lock here: WithTx holds the store-wide write
// lock, so no concurrent transaction can observe a stale balance.
func (s *Store) GetForUpdate(ctx context.Context, id string) (*domain.Dealer, error) {
	return s.GetByID(ctx, id)
}

func (s *Store) SetAuthToken(ctx context.Context, id, token string) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	d, ok := s.dealers[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.AuthToken = token
	s.dealers[id] = d
	return nil
}

func (s *Store) AddToBalance(ctx context.Context, id string, delta int64) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	d, ok := s.dealers[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.Outstanding += delta
	s.dealers[id] = d
	return nil
}

// ---- products ----

func (s *Store) CreateProduct(ctx context.Context, p *domain.Product) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	for _, existing := range s.products {
		if existing.Name == p.Name {
			return repository.ErrDuplicateName
		}
	}
	s.products[p.ID] = *p
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CountProducts(ctx context.Context) (int, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	return len(s.products), nil
}

// ---- cart ----

func (s *Store) Add(ctx context.Context, dealerID, productID string, qty int) (*domain.CartItem, error) {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	for id, it := range s.cart {
		if it.DealerID == dealerID && it.ProductID == productID {
			it.Quantity += qty
			if it.Quantity > domain.MaxCartQuantity {
				it.Quantity = domain.MaxCartQuantity
			}
			s.cart[id] = it
			return &it, nil
		}
	}
	it := domain.CartItem{
		ID:        uuid.NewString(),
		DealerID:  dealerID,
		ProductID: productID,
		Quantity:  qty,
		CreatedAt: time.Now().UTC(),
	}
	s.cart[it.ID] = it
	return &it, nil
}

func (s *Store) UpdateQuantity(ctx context.Context, dealerID, itemID string, qty int) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	it, ok := s.cart[itemID]
	if !ok || it.DealerID != dealerID {
		return repository.ErrNotFound
	}
	it.Quantity = qty
	s.cart[itemID] = it
	return nil
}

func (s *Store) Delete(ctx context.Context, dealerID, itemID string) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	it, ok := s.cart[itemID]
	if !ok || it.DealerID != dealerID {
		return repository.ErrNotFound
	}
	delete(s.cart, itemID)
	return nil
}

func (s *Store) Clear(ctx context.Context, dealerID string) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	for id, it := range s.cart {
		if it.DealerID == dealerID {
			delete(s.cart, id)
		}
	}
	return nil
}

func (s *Store) ListByDealer(ctx context.Context, dealerID string) ([]domain.CartItem, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	var out []domain.CartItem
	for _, it := range s.cart {
		if it.DealerID == dealerID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ---- orders ----

func (s *Store) CreateOrder(ctx context.Context, o *domain.Order) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	s.orders[o.ID] = *o
	return nil
}

func (s *Store) GetOrder(ctx context.Context, dealerID, orderID string) (*domain.Order, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	o, ok := s.orders[orderID]
	if !ok || o.DealerID != dealerID {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (s *Store) ListOrders(ctx context.Context, dealerID string) ([]domain.Order, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	var out []domain.Order
	for _, o := range s.orders {
		if o.DealerID == dealerID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, dealerID, orderID string, status domain.OrderStatus) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	o, ok := s.orders[orderID]
	if !ok || o.DealerID != dealerID {
		return repository.ErrNotFound
	}
	o.OrderStatus = status
	o.UpdatedAt = time.Now().UTC()
	s.orders[orderID] = o
	return nil
}

// ---- otp ----

func (s *Store) PutOTP(ctx context.Context, phone, code string, expiresAt time.Time) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	s.otps[phone] = otpRecord{code: code, expiresAt: expiresAt}
	return nil
}

func (s *Store) GetOTP(ctx context.Context, phone string) (string, time.Time, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	rec, ok := s.otps[phone]
	if !ok {
		return "", time.Time{}, repository.ErrNotFound
	}
	return rec.code, rec.expiresAt, nil
}

func (s *Store) DeleteOTP(ctx context.Context, phone string) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	delete(s.otps, phone)
	return nil
}
