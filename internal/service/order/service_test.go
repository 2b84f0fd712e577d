package order_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/khairunnisaa/inventory/internal/domain"
	"github.com/khairunnisaa/inventory/internal/service/catalog"
	"github.com/khairunnisaa/inventory/internal/service/order"
	"github.com/khairunnisaa/inventory/internal/storage/memory"
)

type fixture struct {
	store    *memory.Store
	engine   *order.Service
	coffee   domain.Item
	tshirt   domain.Item
	blackM   domain.ItemVariant
	catalogC *countingCatalog
}

// countingCatalog подсчитывает чтения каталога, чтобы проверять, что
// валидация формы не обращается к хранилищу.
type countingCatalog struct {
	domain.CatalogRepository
	mu    sync.Mutex
	reads int
}

func (c *countingCatalog) GetItem(ctx context.Context, id string) (domain.Item, error) {
	c.mu.Lock()
	c.reads++
	c.mu.Unlock()
	return c.CatalogRepository.GetItem(ctx, id)
}

func (c *countingCatalog) GetVariant(ctx context.Context, id string) (domain.ItemVariant, error) {
	c.mu.Lock()
	c.reads++
	c.mu.Unlock()
	return c.CatalogRepository.GetVariant(ctx, id)
}

func (c *countingCatalog) readCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// newFixture поднимает in-memory каталог: Coffee Beans (20 шт по 150000)
// и T-Shirt с вариантом Black-M (5 шт по 110000).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	items := catalog.NewItemService(store.Catalog(), nil)
	variants := catalog.NewVariantService(store.Catalog(), nil)

	coffeePrice := int64(150000)
	coffee, err := items.Create(ctx, catalog.CreateItemInput{
		Name:           "Coffee Beans",
		BasePriceMinor: &coffeePrice,
		StockQty:       20,
	})
	require.NoError(t, err)

	tshirt, err := items.Create(ctx, catalog.CreateItemInput{
		Name:        "T-Shirt",
		HasVariants: true,
	})
	require.NoError(t, err)

	blackM, err := variants.Create(ctx, catalog.CreateVariantInput{
		ItemID:     tshirt.ID,
		SKU:        "TS-BLK-M",
		Name:       "Black-M",
		PriceMinor: 110000,
		StockQty:   5,
	})
	require.NoError(t, err)

	// Перечитываем товар: создание варианта подняло HasVariants и версию.
	tshirt, err = items.Get(ctx, tshirt.ID)
	require.NoError(t, err)

	counting := &countingCatalog{CatalogRepository: store.Catalog()}
	engine := order.NewService(counting, store.Orders(), store, nil, nil)

	return &fixture{
		store:    store,
		engine:   engine,
		coffee:   coffee,
		tshirt:   tshirt,
		blackM:   blackM,
		catalogC: counting,
	}
}

func (f *fixture) itemStock(t *testing.T, id string) int32 {
	t.Helper()
	item, err := f.store.Catalog().GetItem(context.Background(), id)
	require.NoError(t, err)
	return item.StockQty
}

func (f *fixture) variantStock(t *testing.T, id string) int32 {
	t.Helper()
	variant, err := f.store.Catalog().GetVariant(context.Background(), id)
	require.NoError(t, err)
	return variant.StockQty
}

func (f *fixture) orderCount(t *testing.T) int {
	t.Helper()
	orders, err := f.store.Orders().List(context.Background())
	require.NoError(t, err)
	return len(orders)
}

func TestCreateOrder_SingleLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.engine.CreateOrder(ctx, []order.RequestedLine{
		{ItemID: f.coffee.ID, Qty: 3},
	})
	require.NoError(t, err)

	require.Equal(t, int64(450000), created.TotalMinor)
	require.True(t, strings.HasPrefix(created.Number, "ORD-"))
	require.Len(t, created.Number, 16)
	require.Len(t, created.Lines, 1)

	line := created.Lines[0]
	require.Equal(t, f.coffee.ID, line.ItemID)
	require.Equal(t, "Coffee Beans", line.ItemName)
	require.Nil(t, line.VariantID)
	require.Equal(t, int32(3), line.Qty)
	require.Equal(t, int64(150000), line.UnitPriceMinor)
	require.Equal(t, int64(450000), line.LineTotalMinor)

	require.Equal(t, int32(17), f.itemStock(t, f.coffee.ID))

	stored, err := f.engine.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Number, stored.Number)
}

func TestCreateOrder_VariantLine(t *testing.T) {
	f := newFixture(t)

	created, err := f.engine.CreateOrder(context.Background(), []order.RequestedLine{
		{ItemID: f.tshirt.ID, VariantID: &f.blackM.ID, Qty: 2},
	})
	require.NoError(t, err)

	require.Equal(t, int64(220000), created.TotalMinor)
	line := created.Lines[0]
	require.NotNil(t, line.VariantID)
	require.Equal(t, f.blackM.ID, *line.VariantID)
	require.Equal(t, "Black-M", *line.VariantName)
	require.Equal(t, "T-Shirt", line.ItemName)

	require.Equal(t, int32(3), f.variantStock(t, f.blackM.ID))
	// Базовый остаток вариантного товара не трогается.
	require.Equal(t, int32(0), f.itemStock(t, f.tshirt.ID))
}

func TestCreateOrder_MultiLinePreservesPositions(t *testing.T) {
	f := newFixture(t)

	created, err := f.engine.CreateOrder(context.Background(), []order.RequestedLine{
		{ItemID: f.coffee.ID, Qty: 1},
		{ItemID: f.tshirt.ID, VariantID: &f.blackM.ID, Qty: 1},
	})
	require.NoError(t, err)

	require.Equal(t, int64(260000), created.TotalMinor)
	require.Len(t, created.Lines, 2)
	require.Equal(t, int32(0), created.Lines[0].Position)
	require.Equal(t, int32(1), created.Lines[1].Position)
	require.Equal(t, f.coffee.ID, created.Lines[0].ItemID)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.CreateOrder(context.Background(), []order.RequestedLine{
		{ItemID: f.tshirt.ID, VariantID: &f.blackM.ID, Qty: 6},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	require.Contains(t, err.Error(), "T-Shirt (variant: Black-M)")
	require.Contains(t, err.Error(), "available 5")
	require.Contains(t, err.Error(), "requested 6")

	require.Equal(t, int32(5), f.variantStock(t, f.blackM.ID))
	require.Equal(t, 0, f.orderCount(t))
}

func TestCreateOrder_MultiLineAtomicity(t *testing.T) {
	f := newFixture(t)

	// Первая позиция прошла бы, вторая падает по остатку: не меняется ничего.
	_, err := f.engine.CreateOrder(context.Background(), []order.RequestedLine{
		{ItemID: f.coffee.ID, Qty: 3},
		{ItemID: f.tshirt.ID, VariantID: &f.blackM.ID, Qty: 100},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	require.Equal(t, int32(20), f.itemStock(t, f.coffee.ID))
	require.Equal(t, int32(5), f.variantStock(t, f.blackM.ID))
	require.Equal(t, 0, f.orderCount(t))
}

func TestCreateOrder_FailureIsRepeatable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lines := []order.RequestedLine{
		{ItemID: f.tshirt.ID, VariantID: &f.blackM.ID, Qty: 10},
	}
	for i := 0; i < 3; i++ {
		_, err := f.engine.CreateOrder(ctx, lines)
		require.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	require.Equal(t, int32(5), f.variantStock(t, f.blackM.ID))

	// После неудач заказ на доступное количество проходит.
	created, err := f.engine.CreateOrder(ctx, []order.RequestedLine{
		{ItemID: f.tshirt.ID, VariantID: &f.blackM.ID, Qty: 5},
	})
	require.NoError(t, err)
	require.Equal(t, int64(550000), created.TotalMinor)
	require.Equal(t, int32(0), f.variantStock(t, f.blackM.ID))
}

func TestCreateOrder_ItemNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.CreateOrder(context.Background(), []order.RequestedLine{
		{ItemID: "missing", Qty: 1},
	})
	require.ErrorIs(t, err, domain.ErrItemNotFound)
	require.Equal(t, 0, f.orderCount(t))
}

func TestCreateOrder_VariantNotFound(t *testing.T) {
	f := newFixture(t)

	missing := "missing"
	_, err := f.engine.CreateOrder(context.Background(), []order.RequestedLine{
		{ItemID: f.tshirt.ID, VariantID: &missing, Qty: 1},
	})
	require.ErrorIs(t, err, domain.ErrVariantNotFound)
}

func TestCreateOrder_VariantMismatch(t *testing.T) {
	f := newFixture(t)

	// Вариант принадлежит футболке, а запрошен с кофе.
	_, err := f.engine.CreateOrder(context.Background(), []order.RequestedLine{
		{ItemID: f.coffee.ID, VariantID: &f.blackM.ID, Qty: 1},
	})
	require.ErrorIs(t, err, domain.ErrVariantMismatch)
	require.Equal(t, int32(20), f.itemStock(t, f.coffee.ID))
	require.Equal(t, int32(5), f.variantStock(t, f.blackM.ID))
}

func TestCreateOrder_VariantRequired(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.CreateOrder(context.Background(), []order.RequestedLine{
		{ItemID: f.tshirt.ID, Qty: 1},
	})
	require.ErrorIs(t, err, domain.ErrVariantRequired)
}

func TestCreateOrder_NoBasePrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	items := catalog.NewItemService(f.store.Catalog(), nil)
	noPrice, err := items.Create(ctx, catalog.CreateItemInput{
		Name:     "Mystery Box",
		StockQty: 10,
	})
	require.NoError(t, err)

	_, err = f.engine.CreateOrder(ctx, []order.RequestedLine{
		{ItemID: noPrice.ID, Qty: 1},
	})
	require.ErrorIs(t, err, domain.ErrPriceInvalid)
	require.Equal(t, int32(10), f.itemStock(t, noPrice.ID))
}

func TestCreateOrder_ValidationBeforeStoreAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		lines []order.RequestedLine
		want  error
	}{
		{"empty lines", nil, domain.ErrLinesRequired},
		{"missing item id", []order.RequestedLine{{Qty: 1}}, domain.ErrItemIDRequired},
		{"zero qty", []order.RequestedLine{{ItemID: f.coffee.ID, Qty: 0}}, domain.ErrQtyInvalid},
		{"negative qty", []order.RequestedLine{{ItemID: f.coffee.ID, Qty: -2}}, domain.ErrQtyInvalid},
		{
			"duplicate item line",
			[]order.RequestedLine{
				{ItemID: f.coffee.ID, Qty: 1},
				{ItemID: f.coffee.ID, Qty: 2},
			},
			domain.ErrDuplicateLine,
		},
		{
			"duplicate variant line",
			[]order.RequestedLine{
				{ItemID: f.tshirt.ID, VariantID: &f.blackM.ID, Qty: 1},
				{ItemID: f.tshirt.ID, VariantID: &f.blackM.ID, Qty: 1},
			},
			domain.ErrDuplicateLine,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := f.catalogC.readCount()
			_, err := f.engine.CreateOrder(ctx, tc.lines)
			require.ErrorIs(t, err, tc.want)
			require.Equal(t, before, f.catalogC.readCount(),
				"shape validation must not touch the catalog")
		})
	}
}

func TestCreateOrder_SameItemDifferentVariantsAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	variants := catalog.NewVariantService(f.store.Catalog(), nil)
	blackL, err := variants.Create(ctx, catalog.CreateVariantInput{
		ItemID:     f.tshirt.ID,
		SKU:        "TS-BLK-L",
		Name:       "Black-L",
		PriceMinor: 110000,
		StockQty:   4,
	})
	require.NoError(t, err)

	created, err := f.engine.CreateOrder(ctx, []order.RequestedLine{
		{ItemID: f.tshirt.ID, VariantID: &f.blackM.ID, Qty: 1},
		{ItemID: f.tshirt.ID, VariantID: &blackL.ID, Qty: 1},
	})
	require.NoError(t, err)
	require.Len(t, created.Lines, 2)
}

func TestCreateOrder_ConcurrentLastUnit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	items := catalog.NewItemService(f.store.Catalog(), nil)
	price := int64(90000)
	lastUnit, err := items.Create(ctx, catalog.CreateItemInput{
		Name:           "Limited Edition",
		BasePriceMinor: &price,
		StockQty:       1,
	})
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.CreateOrder(ctx, []order.RequestedLine{
				{ItemID: lastUnit.ID, Qty: 1},
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, outOfStock int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case domain.IsVersionConflict(err) || errors.Is(err, domain.ErrInsufficientStock):
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, succeeded, "exactly one order may claim the last unit")
	require.Equal(t, workers-1, outOfStock)
	require.Equal(t, int32(0), f.itemStock(t, lastUnit.ID))
}
