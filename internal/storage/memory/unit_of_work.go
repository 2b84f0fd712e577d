package memory

import (
	"context"
	"time"

	"github.com/khairunnisaa/inventory/internal/domain"
)

// unitOfWork удерживает эксклюзивную блокировку хранилища от Begin до
// Commit/Discard и накапливает записи в оверлее. Снаружи промежуточное
// состояние не видно: до Commit читатели блокируются, а Discard просто
// отбрасывает оверлей.
type unitOfWork struct {
	store *Store
	done  bool

	items    map[string]domain.Item
	variants map[string]domain.ItemVariant
	orders   []domain.Order
}

// Begin начинает единицу работы. Вызывающий обязан завершить её через
// Commit или Discard, иначе хранилище останется заблокированным.
func (s *Store) Begin(_ context.Context) (domain.UnitOfWork, error) {
	s.mu.Lock()
	return &unitOfWork{
		store:    s,
		items:    make(map[string]domain.Item),
		variants: make(map[string]domain.ItemVariant),
	}, nil
}

func (u *unitOfWork) GetItem(_ context.Context, id string) (domain.Item, error) {
	if item, ok := u.items[id]; ok {
		return copyItem(item), nil
	}
	return getItemLocked(u.store, id)
}

func (u *unitOfWork) GetVariant(_ context.Context, id string) (domain.ItemVariant, error) {
	if variant, ok := u.variants[id]; ok {
		return variant, nil
	}
	return getVariantLocked(u.store, id)
}

func (u *unitOfWork) SaveItem(_ context.Context, item domain.Item, expectedVersion int64) (domain.Item, error) {
	current, staged := u.items[item.ID]
	if !staged {
		var err error
		current, err = getItemLocked(u.store, item.ID)
		if err != nil {
			return domain.Item{}, err
		}
	}
	if current.Version != expectedVersion {
		return domain.Item{}, domain.ErrVersionConflict
	}

	item.Version = expectedVersion + 1
	item.CreatedAt = current.CreatedAt
	item.UpdatedAt = time.Now().UTC()
	u.items[item.ID] = copyItem(item)
	return item, nil
}

func (u *unitOfWork) SaveVariant(_ context.Context, variant domain.ItemVariant, expectedVersion int64) (domain.ItemVariant, error) {
	current, staged := u.variants[variant.ID]
	if !staged {
		var err error
		current, err = getVariantLocked(u.store, variant.ID)
		if err != nil {
			return domain.ItemVariant{}, err
		}
	}
	if current.Version != expectedVersion {
		return domain.ItemVariant{}, domain.ErrVersionConflict
	}
	if variant.ItemID != current.ItemID {
		return domain.ItemVariant{}, domain.ErrItemImmutable
	}

	variant.Version = expectedVersion + 1
	variant.CreatedAt = current.CreatedAt
	variant.UpdatedAt = time.Now().UTC()
	u.variants[variant.ID] = variant
	return variant, nil
}

func (u *unitOfWork) CreateOrder(_ context.Context, order domain.Order) error {
	if _, taken := u.store.numbers[order.Number]; taken {
		return domain.ErrOrderNumberTaken
	}
	for _, staged := range u.orders {
		if staged.Number == order.Number {
			return domain.ErrOrderNumberTaken
		}
	}
	u.orders = append(u.orders, copyOrder(order))
	return nil
}

// Commit применяет оверлей к хранилищу и снимает блокировку.
func (u *unitOfWork) Commit(_ context.Context) error {
	if u.done {
		return nil
	}
	for id, item := range u.items {
		u.store.items[id] = item
	}
	for id, variant := range u.variants {
		u.store.variants[id] = variant
	}
	for _, order := range u.orders {
		if err := createOrderLocked(u.store, order); err != nil {
			// Номер проверялся при CreateOrder; сюда можно попасть только
			// при повторном использовании ID заказа.
			u.finish()
			return err
		}
	}
	u.finish()
	return nil
}

// Discard отбрасывает оверлей; после Commit ничего не делает.
func (u *unitOfWork) Discard() error {
	if u.done {
		return nil
	}
	u.finish()
	return nil
}

func (u *unitOfWork) finish() {
	u.done = true
	u.store.mu.Unlock()
}

var _ domain.UnitOfWork = (*unitOfWork)(nil)
