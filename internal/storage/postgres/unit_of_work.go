package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/khairunnisaa/inventory/internal/domain"
)

// unitOfWork оборачивает *sql.Tx: все списания остатков и сам заказ либо
// фиксируются одним Commit, либо целиком откатываются.
type unitOfWork struct {
	tx   *sql.Tx
	done bool
}

// Begin открывает транзакцию и возвращает единицу работы над ней.
func (s *Store) Begin(ctx context.Context) (domain.UnitOfWork, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("postgres store is not initialized")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &unitOfWork{tx: tx}, nil
}

func (u *unitOfWork) GetItem(ctx context.Context, id string) (domain.Item, error) {
	return getItem(ctx, u.tx, id)
}

func (u *unitOfWork) GetVariant(ctx context.Context, id string) (domain.ItemVariant, error) {
	return getVariant(ctx, u.tx, id)
}

func (u *unitOfWork) SaveItem(ctx context.Context, item domain.Item, expectedVersion int64) (domain.Item, error) {
	return saveItem(ctx, u.tx, item, expectedVersion)
}

func (u *unitOfWork) SaveVariant(ctx context.Context, variant domain.ItemVariant, expectedVersion int64) (domain.ItemVariant, error) {
	return saveVariant(ctx, u.tx, variant, expectedVersion)
}

func (u *unitOfWork) CreateOrder(ctx context.Context, order domain.Order) error {
	return insertOrder(ctx, u.tx, order)
}

// Commit фиксирует транзакцию.
func (u *unitOfWork) Commit(_ context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("commit unit of work: %w", err)
	}
	return nil
}

// Discard откатывает транзакцию; после Commit ничего не делает.
func (u *unitOfWork) Discard() error {
	if u.done {
		return nil
	}
	u.done = true
	if err := u.tx.Rollback(); err != nil {
		return fmt.Errorf("rollback unit of work: %w", err)
	}
	return nil
}

var (
	_ domain.UnitOfWork = (*unitOfWork)(nil)
	_ domain.Transactor = (*Store)(nil)
)
