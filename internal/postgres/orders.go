package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/humsafar/dealer-api/internal/domain"
	"github.com/humsafar/dealer-api/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepo struct{ DB *pgxpool.Pool }

const orderCols = `id, order_number, dealer_id, items, total_amount,
	payment_method, payment_status, order_status, delivery_address, notes,
	created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var items []byte
	err := row.Scan(&o.ID, &o.OrderNumber, &o.DealerID, &items, &o.TotalAmount,
		&o.PaymentMethod, &o.PaymentStatus, &o.OrderStatus, &o.DeliveryAddress, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	_, err = q(ctx, r.DB).Exec(ctx, `
		INSERT INTO orders(id, order_number, dealer_id, items, total_amount,
		                   payment_method, payment_status, order_status,
		                   delivery_address, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		o.ID, o.OrderNumber, o.DealerID, items, o.TotalAmount,
		o.PaymentMethod, o.PaymentStatus, o.OrderStatus,
		o.DeliveryAddress, o.Notes, o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *OrderRepo) GetByID(ctx context.Context, dealerID, orderID string) (*domain.Order, error) {
	return scanOrder(q(ctx, r.DB).QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE id=$2 AND dealer_id=$1`, dealerID, orderID))
}

func (r *OrderRepo) ListByDealer(ctx context.Context, dealerID string) ([]domain.Order, error) {
	rows, err := q(ctx, r.DB).Query(ctx,
		`SELECT `+orderCols+` FROM orders WHERE dealer_id=$1 ORDER BY created_at DESC`, dealerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, dealerID, orderID string, status domain.OrderStatus) error {
	ct, err := q(ctx, r.DB).Exec(ctx,
		`UPDATE orders SET order_status=$3, updated_at=$4 WHERE id=$2 AND dealer_id=$1`,
		dealerID, orderID, status, time.Now().UTC())
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
