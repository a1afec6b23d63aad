package trm

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Transaction interface {
	Commit() error
	Rollback() error
}

type txKey struct{}

func withTx(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// ExtractTx возвращает транзакцию из контекста, если она открыта.
func ExtractTx(ctx context.Context) *sqlx.Tx {
	tx, ok := ctx.Value(txKey{}).(*sqlx.Tx)
	if !ok {
		return nil
	}
	return tx
}

type Manager interface {
	Do(ctx context.Context, callback func(ctx context.Context) error) error
}

type txManager struct {
	db       *sqlx.DB
	classify func(error) error
}

// NewManager создаёт менеджер транзакций. classify переводит ошибки
// драйвера на begin/commit в ту же таксономию, что и ошибки запросов:
// обрыв соединения в момент коммита тоже уходит в очередь, а не
// к вызывающему как внутренняя ошибка.
func NewManager(db *sqlx.DB, classify func(error) error) Manager {
	if classify == nil {
		classify = func(err error) error { return err }
	}
	return &txManager{db: db, classify: classify}
}

// Do выполняет callback в транзакции, прокинутой через контекст.
// Откат при любой ошибке callback.
func (t *txManager) Do(ctx context.Context, callback func(ctx context.Context) error) error {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return t.classify(fmt.Errorf("failed to begin tx: %w", err))
	}
	defer tx.Rollback()

	if err := callback(withTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return t.classify(fmt.Errorf("failed to commit tx: %w", err))
	}
	return nil
}
