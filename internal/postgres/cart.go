package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/humsafar/dealer-api/internal/domain"
	"github.com/humsafar/dealer-api/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CartRepo struct{ DB *pgxpool.Pool }

// Add relies on the (dealer_id, product_id) unique constraint: a second add
// of the same product lands on the existing row and bumps its quantity,
// clamped to the per-line maximum.
func (r *CartRepo) Add(ctx context.Context, dealerID, productID string, qty int) (*domain.CartItem, error) {
	var it domain.CartItem
	err := q(ctx, r.DB).QueryRow(ctx, `
		INSERT INTO cart_items(id, dealer_id, product_id, quantity, created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (dealer_id, product_id)
		DO UPDATE SET quantity = LEAST(cart_items.quantity + EXCLUDED.quantity, $6)
		RETURNING id, dealer_id, product_id, quantity, created_at`,
		uuid.NewString(), dealerID, productID, qty, time.Now().UTC(), domain.MaxCartQuantity).
		Scan(&it.ID, &it.DealerID, &it.ProductID, &it.Quantity, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *CartRepo) UpdateQuantity(ctx context.Context, dealerID, itemID string, qty int) error {
	ct, err := q(ctx, r.DB).Exec(ctx,
		`UPDATE cart_items SET quantity=$3 WHERE id=$2 AND dealer_id=$1`,
		dealerID, itemID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CartRepo) Delete(ctx context.Context, dealerID, itemID string) error {
	ct, err := q(ctx, r.DB).Exec(ctx,
		`DELETE FROM cart_items WHERE id=$2 AND dealer_id=$1`, dealerID, itemID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CartRepo) Clear(ctx context.Context, dealerID string) error {
	_, err := q(ctx, r.DB).Exec(ctx,
		`DELETE FROM cart_items WHERE dealer_id=$1`, dealerID)
	return err
}

func (r *CartRepo) ListByDealer(ctx context.Context, dealerID string) ([]domain.CartItem, error) {
	rows, err := q(ctx, r.DB).Query(ctx, `
		SELECT id, dealer_id, product_id, quantity, created_at
		FROM cart_items WHERE dealer_id=$1 ORDER BY created_at`, dealerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CartItem
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.ID, &it.DealerID, &it.ProductID, &it.Quantity, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
