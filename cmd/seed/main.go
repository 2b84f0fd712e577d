package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/khairunnisaa/inventory/internal/service/catalog"
	"github.com/khairunnisaa/inventory/internal/storage/postgres"
)

// Демонстрационный каталог: товар с базовой ценой и вариантный товар.
func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	logger := log.WithField("component", "seed")

	var dsn string
	flag.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: INVENTORY_POSTGRES_DSN)")
	flag.Parse()

	if strings.TrimSpace(dsn) == "" {
		dsn = strings.TrimSpace(os.Getenv("INVENTORY_POSTGRES_DSN"))
	}
	if dsn == "" {
		logger.Fatal("INVENTORY_POSTGRES_DSN (or -dsn) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		logger.WithError(err).Fatal("open postgres store")
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		logger.WithError(err).Fatal("ensure schema")
	}

	repo := postgres.NewCatalogRepository(store)
	items := catalog.NewItemService(repo, logger.WithField("component", "item-service"))
	variants := catalog.NewVariantService(repo, logger.WithField("component", "variant-service"))

	coffeePrice := int64(150000)
	coffee, err := items.Create(ctx, catalog.CreateItemInput{
		Name:           "Coffee Beans",
		Description:    "Арабика, обжарка средняя, 1 кг",
		BasePriceMinor: &coffeePrice,
		StockQty:       20,
	})
	if err != nil {
		logger.WithError(err).Fatal("seed coffee beans")
	}

	tshirt, err := items.Create(ctx, catalog.CreateItemInput{
		Name:        "T-Shirt",
		Description: "Хлопковая футболка, продаётся по вариантам",
		HasVariants: true,
	})
	if err != nil {
		logger.WithError(err).Fatal("seed t-shirt")
	}

	seedVariants := []catalog.CreateVariantInput{
		{ItemID: tshirt.ID, SKU: "TS-BLK-M", Name: "Black-M", PriceMinor: 110000, StockQty: 5},
		{ItemID: tshirt.ID, SKU: "TS-BLK-L", Name: "Black-L", PriceMinor: 110000, StockQty: 8},
		{ItemID: tshirt.ID, SKU: "TS-WHT-M", Name: "White-M", PriceMinor: 105000, StockQty: 12},
	}
	for _, in := range seedVariants {
		if _, err := variants.Create(ctx, in); err != nil {
			logger.WithError(err).WithField("sku", in.SKU).Fatal("seed variant")
		}
	}

	logger.WithFields(log.Fields{
		"coffee_id": coffee.ID,
		"tshirt_id": tshirt.ID,
		"variants":  len(seedVariants),
	}).Info("демо-каталог загружен")
}
