package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/humsafar/dealer-api/internal/domain"
	"github.com/humsafar/dealer-api/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductRepo struct{ DB *pgxpool.Pool }

const productCols = `id, name, description, category, grade, packaging,
	price, stock, image_url, specifications, created_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var specs []byte
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Grade, &p.Packaging,
		&p.Price, &p.Stock, &p.ImageURL, &specs, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &p.Specifications); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	specs, err := json.Marshal(p.Specifications)
	if err != nil {
		return err
	}
	_, err = q(ctx, r.DB).Exec(ctx, `
		INSERT INTO products(id, name, description, category, grade, packaging,
		                     price, stock, image_url, specifications, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		p.ID, p.Name, p.Description, p.Category, p.Grade, p.Packaging,
		p.Price, p.Stock, p.ImageURL, specs, p.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return repository.ErrDuplicateName
	}
	return err
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return scanProduct(q(ctx, r.DB).QueryRow(ctx,
		`SELECT `+productCols+` FROM products WHERE id=$1`, id))
}

func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := q(ctx, r.DB).Query(ctx,
		`SELECT `+productCols+` FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := q(ctx, r.DB).QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}
