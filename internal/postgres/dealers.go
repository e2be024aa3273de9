package postgres

import (
	"context"
	"errors"

	"github.com/humsafar/dealer-api/internal/domain"
	"github.com/humsafar/dealer-api/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DealerRepo struct{ DB *pgxpool.Pool }

const dealerCols = `id, name, phone, email, business_name, address, gst_number,
	credit_limit, outstanding_balance, auth_token, created_at`

func scanDealer(row pgx.Row) (*domain.Dealer, error) {
	var d domain.Dealer
	err := row.Scan(&d.ID, &d.Name, &d.Phone, &d.Email, &d.BusinessName, &d.Address,
		&d.GSTNumber, &d.CreditLimit, &d.Outstanding, &d.AuthToken, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DealerRepo) Create(ctx context.Context, d *domain.Dealer) error {
	_, err := q(ctx, r.DB).Exec(ctx, `
		INSERT INTO dealers(id, name, phone, email, business_name, address, gst_number,
		                    credit_limit, outstanding_balance, auth_token, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		d.ID, d.Name, d.Phone, d.Email, d.BusinessName, d.Address, d.GSTNumber,
		d.CreditLimit, d.Outstanding, d.AuthToken, d.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return repository.ErrDuplicatePhone
	}
	return err
}

func (r *DealerRepo) GetByID(ctx context.Context, id string) (*domain.Dealer, error) {
	return scanDealer(q(ctx, r.DB).QueryRow(ctx,
		`SELECT `+dealerCols+` FROM dealers WHERE id=$1`, id))
}

func (r *DealerRepo) GetByPhone(ctx context.Context, phone string) (*domain.Dealer, error) {
	return scanDealer(q(ctx, r.DB).QueryRow(ctx,
		`SELECT `+dealerCols+` FROM dealers WHERE phone=$1`, phone))
}

func (r *DealerRepo) GetByToken(ctx context.Context, token string) (*domain.Dealer, error) {
	return scanDealer(q(ctx, r.DB).QueryRow(ctx,
		`SELECT `+dealerCols+` FROM dealers WHERE auth_token=$1 AND auth_token<>''`, token))
}

// GetForUpdate serializes concurrent order placements per dealer: the row
// lock is held until the surrounding transaction commits.
func (r *DealerRepo) GetForUpdate(ctx context.Context, id string) (*domain.Dealer, error) {
	return scanDealer(q(ctx, r.DB).QueryRow(ctx,
		`SELECT `+dealerCols+` FROM dealers WHERE id=$1 FOR UPDATE`, id))
}

func (r *DealerRepo) SetAuthToken(ctx context.Context, id, token string) error {
	ct, err := q(ctx, r.DB).Exec(ctx,
		`UPDATE dealers SET auth_token=$2 WHERE id=$1`, id, token)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *DealerRepo) AddToBalance(ctx context.Context, id string, delta int64) error {
	ct, err := q(ctx, r.DB).Exec(ctx,
		`UPDATE dealers SET outstanding_balance = outstanding_balance + $2 WHERE id=$1`, id, delta)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
