package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(UpOrderPaymentsTable, DownOrderPaymentsTable)
}

func UpOrderPaymentsTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `CREATE TABLE order_payments
(
    id UUID PRIMARY KEY,
    order_id UUID NOT NULL,
    amount NUMERIC NOT NULL,
    payment_method VARCHAR(64) NOT NULL,
    fee NUMERIC NOT NULL DEFAULT 0,
    delivery_cost NUMERIC NOT NULL DEFAULT 0,
    created_by VARCHAR(128) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX order_payments_order_idx ON order_payments (order_id);`)
	return err
}

func DownOrderPaymentsTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, "DROP TABLE order_payments;")
	return err
}
