package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/khairunnisaa/inventory/internal/domain"
	healthcheck "github.com/khairunnisaa/inventory/internal/health"
	"github.com/khairunnisaa/inventory/internal/metrics"
	"github.com/khairunnisaa/inventory/internal/service/catalog"
	"github.com/khairunnisaa/inventory/internal/service/order"
	"github.com/khairunnisaa/inventory/internal/service/rest"
	"github.com/khairunnisaa/inventory/internal/storage/memory"
	"github.com/khairunnisaa/inventory/internal/storage/postgres"
	"github.com/khairunnisaa/inventory/internal/version"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	MetricsAddr string
	// PostgresDSN пустой — работаем на in-memory хранилище.
	PostgresDSN string
}

// DefaultConfig возвращает базовые адреса API и HTTP-метрик.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":8080",
		MetricsAddr: ":9090",
	}
}

// Run собирает зависимости и держит оба HTTP-сервера до отмены контекста.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	var (
		catalogRepo domain.CatalogRepository
		orderRepo   domain.OrderRepository
		transactor  domain.Transactor
	)

	healthHandler := healthcheck.NewHandler(version.String())

	if cfg.PostgresDSN != "" {
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.WithError(err).Warn("failed to close postgres store")
			}
		}()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}

		catalogRepo = postgres.NewCatalogRepository(store)
		orderRepo = postgres.NewOrderRepository(store)
		transactor = store
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return store.Ping(pingCtx)
		}))
		logger.Info("using postgres storage")
	} else {
		store := memory.NewStore()
		catalogRepo = store.Catalog()
		orderRepo = store.Orders()
		transactor = store
		logger.Info("using in-memory storage")
	}

	orderMetrics := metrics.NewOrderMetrics()

	itemSvc := catalog.NewItemService(catalogRepo, logger.WithField("component", "item-service"))
	variantSvc := catalog.NewVariantService(catalogRepo, logger.WithField("component", "variant-service"))
	orderSvc := order.NewService(catalogRepo, orderRepo, transactor, orderMetrics,
		logger.WithField("component", "order-service"))
	retryingSvc := order.NewRetryingService(orderSvc, order.DefaultRetryConfig(),
		logger.WithField("component", "order-retry"))

	apiServer := rest.NewServer(itemSvc, variantSvc, retryingSvc, logger.WithField("component", "rest"))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: apiServer.Handler()}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("API сервер слушает %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем API сервер")
		shutdownHTTP(srv, logger)
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics и health checks.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
