package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied on startup; every statement is idempotent.
// Order items are embedded in the order row as a JSONB snapshot: they are
// value objects frozen at order time, never addressed on their own.
const schema = `
CREATE TABLE IF NOT EXISTS dealers (
    id                  TEXT PRIMARY KEY,
    name                TEXT NOT NULL,
    phone               TEXT NOT NULL UNIQUE,
    email               TEXT NOT NULL,
    business_name       TEXT NOT NULL,
    address             TEXT NOT NULL,
    gst_number          TEXT NOT NULL DEFAULT '',
    credit_limit        BIGINT NOT NULL CHECK (credit_limit >= 0),
    outstanding_balance BIGINT NOT NULL DEFAULT 0 CHECK (outstanding_balance >= 0),
    auth_token          TEXT NOT NULL DEFAULT '',
    created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_dealers_auth_token ON dealers(auth_token) WHERE auth_token <> '';

CREATE TABLE IF NOT EXISTS products (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL UNIQUE,
    description    TEXT NOT NULL DEFAULT '',
    category       TEXT NOT NULL,
    grade          TEXT NOT NULL,
    packaging      TEXT NOT NULL,
    price          BIGINT NOT NULL CHECK (price >= 0),
    stock          INT NOT NULL DEFAULT 0,
    image_url      TEXT NOT NULL DEFAULT '',
    specifications JSONB NOT NULL DEFAULT '{}',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS cart_items (
    id         TEXT PRIMARY KEY,
    dealer_id  TEXT NOT NULL REFERENCES dealers(id),
    product_id TEXT NOT NULL REFERENCES products(id),
    quantity   INT NOT NULL CHECK (quantity BETWEEN 1 AND 10000),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (dealer_id, product_id)
);
CREATE INDEX IF NOT EXISTS idx_cart_items_dealer ON cart_items(dealer_id);

CREATE TABLE IF NOT EXISTS orders (
    id               TEXT PRIMARY KEY,
    order_number     TEXT NOT NULL UNIQUE,
    dealer_id        TEXT NOT NULL REFERENCES dealers(id),
    items            JSONB NOT NULL,
    total_amount     BIGINT NOT NULL CHECK (total_amount >= 0),
    payment_method   TEXT NOT NULL,
    payment_status   TEXT NOT NULL,
    order_status     TEXT NOT NULL,
    delivery_address TEXT NOT NULL,
    notes            TEXT NOT NULL DEFAULT '',
    created_at       TIMESTAMPTZ NOT NULL,
    updated_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_dealer_created ON orders(dealer_id, created_at DESC);
`

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
