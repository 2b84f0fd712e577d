package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/khairunnisaa/inventory/internal/domain"
	"github.com/khairunnisaa/inventory/internal/storage/memory"
)

func newStoredOrder(id, number string, createdAt time.Time) domain.Order {
	return domain.Order{
		ID:         id,
		Number:     number,
		TotalMinor: 450000,
		CreatedAt:  createdAt,
		Lines: []domain.OrderLine{
			{
				ID:             id + "-line-1",
				OrderID:        id,
				ItemID:         "item-1",
				ItemName:       "Coffee Beans",
				Position:       0,
				Qty:            3,
				UnitPriceMinor: 150000,
				LineTotalMinor: 450000,
			},
		},
	}
}

func TestOrderRepository_CreateGet(t *testing.T) {
	repo := memory.NewStore().Orders()
	ctx := context.Background()

	order := newStoredOrder("order-1", "ORD-AB12CD34EF56", time.Now().UTC())
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Number != order.Number || len(stored.Lines) != 1 {
		t.Fatalf("unexpected stored order: %+v", stored)
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_NumberUnique(t *testing.T) {
	repo := memory.NewStore().Orders()
	ctx := context.Background()

	now := time.Now().UTC()
	if err := repo.Create(ctx, newStoredOrder("order-1", "ORD-AB12CD34EF56", now)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err := repo.Create(ctx, newStoredOrder("order-2", "ORD-AB12CD34EF56", now))
	if !errors.Is(err, domain.ErrOrderNumberTaken) {
		t.Fatalf("expected ErrOrderNumberTaken, got %v", err)
	}
}

func TestOrderRepository_ListNewestFirst(t *testing.T) {
	repo := memory.NewStore().Orders()
	ctx := context.Background()

	base := time.Now().UTC()
	if err := repo.Create(ctx, newStoredOrder("order-1", "ORD-000000000001", base)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(ctx, newStoredOrder("order-2", "ORD-000000000002", base.Add(time.Second))); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	orders, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != "order-2" {
		t.Fatalf("expected newest first, got %+v", orders)
	}
}

func TestOrderRepository_GetReturnsCopy(t *testing.T) {
	repo := memory.NewStore().Orders()
	ctx := context.Background()

	order := newStoredOrder("order-1", "ORD-AB12CD34EF56", time.Now().UTC())
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	first, err := repo.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	first.Lines[0].Qty = 99

	second, err := repo.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if second.Lines[0].Qty != 3 {
		t.Fatalf("stored order mutated through returned copy: %+v", second.Lines[0])
	}
}
