package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/khairunnisaa/inventory/internal/domain"
)

func integrationOrder(itemID, number string) domain.Order {
	orderID := uuid.NewString()
	return domain.Order{
		ID:         orderID,
		Number:     number,
		TotalMinor: 450000,
		CreatedAt:  time.Now().UTC(),
		Lines: []domain.OrderLine{
			{
				ID:             uuid.NewString(),
				OrderID:        orderID,
				ItemID:         itemID,
				ItemName:       "Coffee Beans",
				Position:       0,
				Qty:            3,
				UnitPriceMinor: 150000,
				LineTotalMinor: 450000,
			},
		},
	}
}

func TestOrderRepositoryIntegration_RoundTrip(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	catalog := NewCatalogRepository(store)
	orders := NewOrderRepository(store)
	ctx := context.Background()

	item := integrationItem("Coffee Beans")
	if err := catalog.CreateItem(ctx, item); err != nil {
		t.Fatalf("create item: %v", err)
	}

	order := integrationOrder(item.ID, "ORD-AB12CD34EF56")
	if err := orders.Create(ctx, order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	stored, err := orders.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if stored.Number != order.Number || stored.TotalMinor != 450000 {
		t.Fatalf("unexpected stored order: %+v", stored)
	}
	if len(stored.Lines) != 1 || stored.Lines[0].ItemName != "Coffee Beans" {
		t.Fatalf("unexpected lines: %+v", stored.Lines)
	}

	if _, err := orders.Get(ctx, uuid.NewString()); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepositoryIntegration_NumberUnique(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	catalog := NewCatalogRepository(store)
	orders := NewOrderRepository(store)
	ctx := context.Background()

	item := integrationItem("Coffee Beans")
	if err := catalog.CreateItem(ctx, item); err != nil {
		t.Fatalf("create item: %v", err)
	}

	if err := orders.Create(ctx, integrationOrder(item.ID, "ORD-AB12CD34EF56")); err != nil {
		t.Fatalf("create order: %v", err)
	}
	err := orders.Create(ctx, integrationOrder(item.ID, "ORD-AB12CD34EF56"))
	if !errors.Is(err, domain.ErrOrderNumberTaken) {
		t.Fatalf("expected ErrOrderNumberTaken, got %v", err)
	}
}

func TestOrderRepositoryIntegration_ListPreservesLineOrder(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	catalog := NewCatalogRepository(store)
	orders := NewOrderRepository(store)
	ctx := context.Background()

	item := integrationItem("Coffee Beans")
	if err := catalog.CreateItem(ctx, item); err != nil {
		t.Fatalf("create item: %v", err)
	}

	orderID := uuid.NewString()
	order := domain.Order{
		ID:         orderID,
		Number:     "ORD-000000000001",
		TotalMinor: 600000,
		CreatedAt:  time.Now().UTC(),
		Lines: []domain.OrderLine{
			{ID: uuid.NewString(), OrderID: orderID, ItemID: item.ID, ItemName: "Coffee Beans", Position: 0, Qty: 3, UnitPriceMinor: 150000, LineTotalMinor: 450000},
			{ID: uuid.NewString(), OrderID: orderID, ItemID: item.ID, ItemName: "Coffee Beans", Position: 1, Qty: 1, UnitPriceMinor: 150000, LineTotalMinor: 150000},
		},
	}
	if err := orders.Create(ctx, order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	listed, err := orders.List(ctx)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 order, got %d", len(listed))
	}
	got := listed[0]
	if len(got.Lines) != 2 || got.Lines[0].Position != 0 || got.Lines[1].Position != 1 {
		t.Fatalf("line order not preserved: %+v", got.Lines)
	}
}
