package memory

import (
	"context"
	"sort"

	"github.com/khairunnisaa/inventory/internal/domain"
)

// orderRepository — in-memory реализация OrderRepository поверх Store.
type orderRepository struct {
	store *Store
}

// Create сохраняет заказ, если ID и номер ещё не заняты.
func (r *orderRepository) Create(_ context.Context, order domain.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return createOrderLocked(r.store, order)
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepository) Get(_ context.Context, id string) (domain.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	order, ok := r.store.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return copyOrder(order), nil
}

// List возвращает заказы, новые первыми.
func (r *orderRepository) List(_ context.Context) ([]domain.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.store.orders))
	for _, order := range r.store.orders {
		result = append(result, copyOrder(order))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func createOrderLocked(s *Store, order domain.Order) error {
	if _, exists := s.orders[order.ID]; exists {
		return domain.ErrVersionConflict
	}
	if _, taken := s.numbers[order.Number]; taken {
		return domain.ErrOrderNumberTaken
	}
	s.orders[order.ID] = copyOrder(order)
	s.numbers[order.Number] = struct{}{}
	return nil
}

// copyOrder копирует заказ вместе со срезом позиций.
func copyOrder(order domain.Order) domain.Order {
	lines := make([]domain.OrderLine, len(order.Lines))
	copy(lines, order.Lines)
	for i := range lines {
		if lines[i].VariantID != nil {
			id := *lines[i].VariantID
			lines[i].VariantID = &id
		}
		if lines[i].VariantName != nil {
			name := *lines[i].VariantName
			lines[i].VariantName = &name
		}
	}
	order.Lines = lines
	return order
}

var _ domain.OrderRepository = (*orderRepository)(nil)
