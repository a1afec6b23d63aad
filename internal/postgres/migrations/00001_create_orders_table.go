package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(UpOrdersTable, DownOrdersTable)
}

func UpOrdersTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `CREATE TABLE orders
(
    id UUID PRIMARY KEY,
    local_order_id VARCHAR(32) NOT NULL UNIQUE,
    client_id VARCHAR(64) NOT NULL,
    store_id VARCHAR(64) NOT NULL,
    currency VARCHAR(8) NOT NULL,
    price NUMERIC NOT NULL DEFAULT 0,
    price_base NUMERIC NOT NULL DEFAULT 0,
    commission NUMERIC NOT NULL DEFAULT 0,
    commission_kind VARCHAR(16) NOT NULL DEFAULT 'fixed',
    quantity INT NOT NULL DEFAULT 1,
    amount_paid NUMERIC NOT NULL DEFAULT 0,
    shipping_cost NUMERIC NOT NULL DEFAULT 0,
    local_delivery_cost NUMERIC NOT NULL DEFAULT 0,
    transaction_fee NUMERIC NOT NULL DEFAULT 0,
    status VARCHAR(32) NOT NULL,
    tracking_number VARCHAR(64),
    weight NUMERIC,
    storage_location VARCHAR(64),
    arrived_at TIMESTAMPTZ,
    stored_at TIMESTAMPTZ,
    withdrawn_at TIMESTAMPTZ,
    invoice_printed BOOLEAN NOT NULL DEFAULT FALSE,
    notification_sent BOOLEAN NOT NULL DEFAULT FALSE,
    delivery_fee_prepaid BOOLEAN NOT NULL DEFAULT FALSE,
    images JSONB NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX orders_status_idx ON orders (status);`)
	return err
}

func DownOrdersTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, "DROP TABLE orders;")
	return err
}
