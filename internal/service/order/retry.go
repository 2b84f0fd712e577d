package order

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/khairunnisaa/inventory/internal/domain"
)

// RetryConfig конфигурация для retry логики на границе сервиса.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig возвращает конфигурацию по умолчанию.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  50 * time.Millisecond,
		MaxDelay:      1 * time.Second,
		BackoffFactor: 2.0,
	}
}

// Creator — операции движка заказов, видимые обёрткам и транспорту.
type Creator interface {
	CreateOrder(ctx context.Context, lines []RequestedLine) (domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
}

// RetryingService оборачивает движок повторами при конфликте версий.
// Повторяется только CreateOrder и только на ErrVersionConflict: остальные
// ошибки детерминированы и повтор их не исправит.
type RetryingService struct {
	inner  Creator
	config RetryConfig
	logger *log.Entry
}

// NewRetryingService создаёт обёртку с retry логикой.
func NewRetryingService(inner Creator, config RetryConfig, logger *log.Entry) *RetryingService {
	if logger == nil {
		logger = log.New().WithField("component", "order-retry")
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	return &RetryingService{
		inner:  inner,
		config: config,
		logger: logger,
	}
}

// CreateOrder оформляет заказ, повторяя попытку при конфликте версий.
func (rs *RetryingService) CreateOrder(ctx context.Context, lines []RequestedLine) (domain.Order, error) {
	var lastErr error
	delay := rs.config.InitialDelay

	for attempt := 1; attempt <= rs.config.MaxAttempts; attempt++ {
		order, err := rs.inner.CreateOrder(ctx, lines)
		if err == nil {
			if attempt > 1 {
				rs.logger.WithFields(log.Fields{
					"order_id": order.ID,
					"attempt":  attempt,
				}).Info("order created after retry")
			}
			return order, nil
		}

		lastErr = err

		if !domain.IsVersionConflict(err) {
			return domain.Order{}, err
		}

		if attempt < rs.config.MaxAttempts {
			rs.logger.WithFields(log.Fields{
				"attempt": attempt,
				"delay":   delay,
			}).Warn("version conflict, retrying order creation")

			select {
			case <-ctx.Done():
				return domain.Order{}, ctx.Err()
			case <-time.After(delay):
			}

			// Экспоненциальная задержка с ограничением
			delay = time.Duration(float64(delay) * rs.config.BackoffFactor)
			if delay > rs.config.MaxDelay {
				delay = rs.config.MaxDelay
			}
		}
	}

	rs.logger.WithFields(log.Fields{
		"max_attempts": rs.config.MaxAttempts,
		"error":        lastErr,
	}).Error("order creation failed after all retry attempts")
	return domain.Order{}, lastErr
}

// Get возвращает заказ по идентификатору.
func (rs *RetryingService) Get(ctx context.Context, id string) (domain.Order, error) {
	return rs.inner.Get(ctx, id)
}

// List возвращает все заказы.
func (rs *RetryingService) List(ctx context.Context) ([]domain.Order, error) {
	return rs.inner.List(ctx)
}
