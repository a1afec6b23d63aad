package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(UpOrderHistoryTable, DownOrderHistoryTable)
}

// Журнал заказа хранится отдельной таблицей, а не JSON-колонкой:
// строка заказа не растёт, журнал листается независимо.
func UpOrderHistoryTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `CREATE TABLE order_history
(
    id BIGSERIAL PRIMARY KEY,
    order_id UUID NOT NULL,
    at TIMESTAMPTZ NOT NULL DEFAULT now(),
    activity TEXT NOT NULL,
    acting_user VARCHAR(128) NOT NULL
);
CREATE INDEX order_history_order_idx ON order_history (order_id, id);`)
	return err
}

func DownOrderHistoryTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, "DROP TABLE order_history;")
	return err
}
