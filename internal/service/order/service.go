package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/khairunnisaa/inventory/internal/domain"
	"github.com/khairunnisaa/inventory/internal/metrics"
)

// Service — движок резервирования остатков. Оформление заказа проходит
// две фазы: резолюция (только чтение, строго слева направо, первая ошибка
// завершает весь вызов) и коммит (списания и заказ в одной единице
// работы). Конфликт версий никогда не повторяется внутри движка —
// ErrVersionConflict отдаётся наружу, политика повторов живёт на границе
// (см. RetryingService).
type Service struct {
	catalog domain.CatalogRepository
	orders  domain.OrderRepository
	tx      domain.Transactor
	metrics *metrics.OrderMetrics
	logger  *log.Entry

	// newNumber подменяется в тестах коллизий номеров.
	newNumber func() string
}

// NewService конструирует движок с зависимостями; metrics может быть nil.
func NewService(
	catalog domain.CatalogRepository,
	orders domain.OrderRepository,
	tx domain.Transactor,
	m *metrics.OrderMetrics,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "order-service")
	}
	return &Service{
		catalog:   catalog,
		orders:    orders,
		tx:        tx,
		metrics:   m,
		logger:    logger,
		newNumber: newOrderNumber,
	}
}

// stockDeduction — отложенное списание, накопленное фазой резолюции.
type stockDeduction struct {
	isVariant bool
	targetID  string
	qty       int32
}

// resolvedLine — позиция с зафиксированной ценой и именами для отображения.
type resolvedLine struct {
	itemID      string
	itemName    string
	variantID   *string
	variantName *string
	qty         int32
	unitPrice   int64
	lineTotal   int64
}

// CreateOrder оформляет заказ по списку запрошенных позиций: либо все
// списания и заказ фиксируются вместе, либо не меняется ничего.
func (s *Service) CreateOrder(ctx context.Context, lines []RequestedLine) (domain.Order, error) {
	start := time.Now()
	if s.metrics != nil {
		s.metrics.RecordInFlightStarted()
		defer s.metrics.RecordInFlightFinished()
	}

	s.logger.WithField("lines", len(lines)).Info("creating order")

	order, deductions, err := s.createOrder(ctx, lines)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordOrderFailed(failureReason(err), time.Since(start))
		}
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderCreated(len(order.Lines), deductions, time.Since(start))
	}
	s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"number":      order.Number,
		"total_minor": order.TotalMinor,
		"lines":       len(order.Lines),
	}).Info("order created")
	return order, nil
}

func (s *Service) createOrder(ctx context.Context, lines []RequestedLine) (domain.Order, int, error) {
	if err := validateLines(lines); err != nil {
		return domain.Order{}, 0, err
	}

	resolved, deductions, total, err := s.resolve(ctx, lines)
	if err != nil {
		return domain.Order{}, 0, err
	}

	order, err := s.commit(ctx, resolved, deductions, total)
	if errors.Is(err, domain.ErrOrderNumberTaken) {
		// Коллизия номера — внутреннее событие, не ошибка клиента:
		// перегенерируем номер и повторяем фазу коммита один раз.
		s.logger.Warn("order number collision, regenerating")
		order, err = s.commit(ctx, resolved, deductions, total)
	}
	if err != nil {
		return domain.Order{}, 0, err
	}
	return order, len(deductions), nil
}

// resolve проходит позиции строго слева направо и не выполняет ни одной
// записи: любая ошибка завершает вызов до каких-либо мутаций.
func (s *Service) resolve(ctx context.Context, lines []RequestedLine) ([]resolvedLine, []stockDeduction, int64, error) {
	resolved := make([]resolvedLine, 0, len(lines))
	deductions := make([]stockDeduction, 0, len(lines))
	var total int64

	for _, line := range lines {
		item, err := s.catalog.GetItem(ctx, line.ItemID)
		if err != nil {
			if errors.Is(err, domain.ErrItemNotFound) {
				s.logger.WithField("item_id", line.ItemID).Warn("item not found")
				return nil, nil, 0, fmt.Errorf("%w: id %s", domain.ErrItemNotFound, line.ItemID)
			}
			return nil, nil, 0, err
		}

		var (
			available   int32
			unitPrice   int64
			target      string
			variantID   *string
			variantName *string
			deduction   stockDeduction
		)

		if line.VariantID != nil {
			variant, err := s.catalog.GetVariant(ctx, *line.VariantID)
			if err != nil {
				if errors.Is(err, domain.ErrVariantNotFound) {
					s.logger.WithField("variant_id", *line.VariantID).Warn("variant not found")
					return nil, nil, 0, fmt.Errorf("%w: id %s", domain.ErrVariantNotFound, *line.VariantID)
				}
				return nil, nil, 0, err
			}
			if variant.ItemID != item.ID {
				s.logger.WithFields(log.Fields{
					"variant_id": variant.ID,
					"item_id":    item.ID,
				}).Error("variant does not belong to item")
				return nil, nil, 0, fmt.Errorf("%w: variant %s, item %s", domain.ErrVariantMismatch, variant.ID, item.ID)
			}
			if variant.PriceMinor < 0 {
				return nil, nil, 0, fmt.Errorf("%w: variant %s", domain.ErrPriceInvalid, variant.ID)
			}

			available = variant.StockQty
			unitPrice = variant.PriceMinor
			target = fmt.Sprintf("%s (variant: %s)", item.Name, variant.Name)
			id, name := variant.ID, variant.Name
			variantID, variantName = &id, &name
			deduction = stockDeduction{isVariant: true, targetID: variant.ID, qty: line.Qty}
		} else {
			if item.HasVariants {
				s.logger.WithField("item_id", item.ID).Error("item requires a variant")
				return nil, nil, 0, fmt.Errorf("%w: item %s", domain.ErrVariantRequired, item.ID)
			}
			if item.BasePriceMinor == nil || *item.BasePriceMinor < 0 {
				return nil, nil, 0, fmt.Errorf("%w: item %s", domain.ErrPriceInvalid, item.ID)
			}

			available = item.StockQty
			unitPrice = *item.BasePriceMinor
			target = item.Name
			deduction = stockDeduction{targetID: item.ID, qty: line.Qty}
		}

		// Защита в глубину: валидатор формы уже отклонил qty <= 0.
		if line.Qty <= 0 {
			return nil, nil, 0, fmt.Errorf("%w: %s", domain.ErrQtyInvalid, target)
		}

		if available < line.Qty {
			s.logger.WithFields(log.Fields{
				"target":    target,
				"available": available,
				"requested": line.Qty,
			}).Warn("insufficient stock")
			return nil, nil, 0, fmt.Errorf(
				"%w: not enough stock for %s, available %d, requested %d",
				domain.ErrInsufficientStock, target, available, line.Qty,
			)
		}

		// Цена фиксируется здесь, при первой резолюции, и не
		// перечитывается на фазе коммита.
		lineTotal := int64(line.Qty) * unitPrice
		total += lineTotal

		resolved = append(resolved, resolvedLine{
			itemID:      item.ID,
			itemName:    item.Name,
			variantID:   variantID,
			variantName: variantName,
			qty:         line.Qty,
			unitPrice:   unitPrice,
			lineTotal:   lineTotal,
		})
		deductions = append(deductions, deduction)
	}

	return resolved, deductions, total, nil
}

// commit выполняет фазу коммита в одной единице работы: перечитывает
// каждую цель, чтобы закрыть окно между резолюцией и записью, списывает
// остатки условными записями и сохраняет заказ. Любая ошибка откатывает
// всё через Discard.
func (s *Service) commit(ctx context.Context, resolved []resolvedLine, deductions []stockDeduction, total int64) (domain.Order, error) {
	uow, err := s.tx.Begin(ctx)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() {
		_ = uow.Discard()
	}()

	for _, d := range deductions {
		if d.isVariant {
			variant, err := uow.GetVariant(ctx, d.targetID)
			if err != nil {
				return domain.Order{}, err
			}
			newStock := variant.StockQty - d.qty
			if newStock < 0 {
				// Конкурентный заказ успел забрать остаток после резолюции.
				s.logger.WithFields(log.Fields{
					"variant_id": variant.ID,
					"current":    variant.StockQty,
					"requested":  d.qty,
				}).Warn("stock consumed concurrently")
				return domain.Order{}, fmt.Errorf(
					"%w: not enough stock for %s, available %d, requested %d",
					domain.ErrInsufficientStock, variant.Name, variant.StockQty, d.qty,
				)
			}
			variant.StockQty = newStock
			if _, err := uow.SaveVariant(ctx, variant, variant.Version); err != nil {
				return domain.Order{}, err
			}
		} else {
			item, err := uow.GetItem(ctx, d.targetID)
			if err != nil {
				return domain.Order{}, err
			}
			newStock := item.StockQty - d.qty
			if newStock < 0 {
				s.logger.WithFields(log.Fields{
					"item_id":   item.ID,
					"current":   item.StockQty,
					"requested": d.qty,
				}).Warn("stock consumed concurrently")
				return domain.Order{}, fmt.Errorf(
					"%w: not enough stock for %s, available %d, requested %d",
					domain.ErrInsufficientStock, item.Name, item.StockQty, d.qty,
				)
			}
			item.StockQty = newStock
			if _, err := uow.SaveItem(ctx, item, item.Version); err != nil {
				return domain.Order{}, err
			}
		}
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:         uuid.NewString(),
		Number:     s.newNumber(),
		TotalMinor: total,
		CreatedAt:  now,
	}
	order.Lines = make([]domain.OrderLine, 0, len(resolved))
	for i, line := range resolved {
		order.Lines = append(order.Lines, domain.OrderLine{
			ID:             uuid.NewString(),
			OrderID:        order.ID,
			ItemID:         line.itemID,
			ItemName:       line.itemName,
			VariantID:      line.variantID,
			VariantName:    line.variantName,
			Position:       int32(i),
			Qty:            line.qty,
			UnitPriceMinor: line.unitPrice,
			LineTotalMinor: line.lineTotal,
		})
	}

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, fmt.Errorf("order invariants violated: %v", errors.Join(errs...))
	}

	if err := uow.CreateOrder(ctx, order); err != nil {
		return domain.Order{}, err
	}
	if err := uow.Commit(ctx); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// Get возвращает заказ по идентификатору.
func (s *Service) Get(ctx context.Context, id string) (domain.Order, error) {
	s.logger.WithField("order_id", id).Debug("finding order")
	return s.orders.Get(ctx, id)
}

// List возвращает все заказы, новые первыми.
func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	s.logger.Debug("listing orders")
	return s.orders.List(ctx)
}

// failureReason классифицирует ошибку для метрик.
func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case domain.IsVersionConflict(err):
		return "version_conflict"
	case domain.IsNotFound(err):
		return "not_found"
	case errors.Is(err, domain.ErrPriceInvalid):
		return "invalid_state"
	case errors.Is(err, domain.ErrLinesRequired),
		errors.Is(err, domain.ErrItemIDRequired),
		errors.Is(err, domain.ErrQtyInvalid),
		errors.Is(err, domain.ErrDuplicateLine),
		errors.Is(err, domain.ErrVariantMismatch),
		errors.Is(err, domain.ErrVariantRequired):
		return "invalid_request"
	default:
		return "internal"
	}
}
