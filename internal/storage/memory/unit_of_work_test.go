package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/khairunnisaa/inventory/internal/domain"
	"github.com/khairunnisaa/inventory/internal/storage/memory"
)

func storeWithItem(t *testing.T) (*memory.Store, domain.Item) {
	t.Helper()

	store := memory.NewStore()
	item := newItem("item-1", "Coffee Beans")
	if err := store.Catalog().CreateItem(context.Background(), item); err != nil {
		t.Fatalf("create item: %v", err)
	}
	return store, item
}

func TestUnitOfWork_CommitApplies(t *testing.T) {
	store, item := storeWithItem(t)
	ctx := context.Background()

	uow, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	item.StockQty = 17
	if _, err := uow.SaveItem(ctx, item, 1); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	order := newStoredOrder("order-1", "ORD-AB12CD34EF56", time.Now().UTC())
	if err := uow.CreateOrder(ctx, order); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if err := uow.Commit(ctx); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	stored, err := store.Catalog().GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	if stored.StockQty != 17 || stored.Version != 2 {
		t.Fatalf("unexpected item after commit: %+v", stored)
	}
	if _, err := store.Orders().Get(ctx, order.ID); err != nil {
		t.Fatalf("order not applied: %v", err)
	}
}

func TestUnitOfWork_DiscardRollsBack(t *testing.T) {
	store, item := storeWithItem(t)
	ctx := context.Background()

	uow, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	item.StockQty = 0
	if _, err := uow.SaveItem(ctx, item, 1); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := uow.CreateOrder(ctx, newStoredOrder("order-1", "ORD-AB12CD34EF56", time.Now().UTC())); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if err := uow.Discard(); err != nil {
		t.Fatalf("discard failed: %v", err)
	}

	stored, err := store.Catalog().GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	if stored.StockQty != 20 || stored.Version != 1 {
		t.Fatalf("discard leaked writes: %+v", stored)
	}
	if _, err := store.Orders().Get(ctx, "order-1"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("discard leaked order: %v", err)
	}
}

func TestUnitOfWork_ReadsOwnWrites(t *testing.T) {
	store, item := storeWithItem(t)
	ctx := context.Background()

	uow, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	defer func() { _ = uow.Discard() }()

	item.StockQty = 15
	saved, err := uow.SaveItem(ctx, item, 1)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	read, err := uow.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if read.StockQty != 15 || read.Version != saved.Version {
		t.Fatalf("expected staged state, got %+v", read)
	}
}

func TestUnitOfWork_VersionConflictOnStaleSave(t *testing.T) {
	store, item := storeWithItem(t)
	ctx := context.Background()

	uow, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	defer func() { _ = uow.Discard() }()

	item.StockQty = 15
	if _, err := uow.SaveItem(ctx, item, 1); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Повторная запись старой версии поверх уже обновлённого оверлея.
	if _, err := uow.SaveItem(ctx, item, 1); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestUnitOfWork_OrderNumberTaken(t *testing.T) {
	store, _ := storeWithItem(t)
	ctx := context.Background()

	order := newStoredOrder("order-1", "ORD-AB12CD34EF56", time.Now().UTC())
	if err := store.Orders().Create(ctx, order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	uow, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	defer func() { _ = uow.Discard() }()

	duplicate := newStoredOrder("order-2", "ORD-AB12CD34EF56", time.Now().UTC())
	if err := uow.CreateOrder(ctx, duplicate); !errors.Is(err, domain.ErrOrderNumberTaken) {
		t.Fatalf("expected ErrOrderNumberTaken, got %v", err)
	}
}

func TestUnitOfWork_BlocksReadersUntilCommit(t *testing.T) {
	store, item := storeWithItem(t)
	ctx := context.Background()

	uow, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	readDone := make(chan domain.Item, 1)
	go func() {
		got, _ := store.Catalog().GetItem(ctx, item.ID)
		readDone <- got
	}()

	item.StockQty = 17
	if _, err := uow.SaveItem(ctx, item, 1); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	select {
	case <-readDone:
		t.Fatal("reader observed state while unit of work was open")
	case <-time.After(50 * time.Millisecond):
	}

	if err := uow.Commit(ctx); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	got := <-readDone
	if got.StockQty != 17 {
		t.Fatalf("reader saw intermediate state: %+v", got)
	}
}
