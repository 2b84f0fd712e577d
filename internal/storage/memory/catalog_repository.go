package memory

import (
	"context"
	"sort"
	"time"

	"github.com/khairunnisaa/inventory/internal/domain"
)

// catalogRepository — in-memory реализация CatalogRepository поверх Store.
type catalogRepository struct {
	store *Store
}

func (r *catalogRepository) GetItem(_ context.Context, id string) (domain.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return getItemLocked(r.store, id)
}

func (r *catalogRepository) GetVariant(_ context.Context, id string) (domain.ItemVariant, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return getVariantLocked(r.store, id)
}

func (r *catalogRepository) ListItems(_ context.Context) ([]domain.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Item, 0, len(r.store.items))
	for _, item := range r.store.items {
		result = append(result, copyItem(item))
	}
	sortItems(result)
	return result, nil
}

func (r *catalogRepository) ListVariants(_ context.Context) ([]domain.ItemVariant, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.ItemVariant, 0, len(r.store.variants))
	for _, variant := range r.store.variants {
		result = append(result, variant)
	}
	sortVariants(result)
	return result, nil
}

func (r *catalogRepository) ListVariantsByItem(_ context.Context, itemID string) ([]domain.ItemVariant, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.ItemVariant, 0)
	for _, variant := range r.store.variants {
		if variant.ItemID == itemID {
			result = append(result, variant)
		}
	}
	sortVariants(result)
	return result, nil
}

// CreateItem сохраняет товар, проверяя уникальность имени.
func (r *catalogRepository) CreateItem(_ context.Context, item domain.Item) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.items[item.ID]; exists {
		return domain.ErrVersionConflict
	}
	for _, existing := range r.store.items {
		if existing.Name == item.Name {
			return domain.ErrItemNameTaken
		}
	}
	r.store.items[item.ID] = copyItem(item)
	return nil
}

// CreateVariant сохраняет вариант, проверяя наличие владельца и уникальность SKU.
func (r *catalogRepository) CreateVariant(_ context.Context, variant domain.ItemVariant) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.variants[variant.ID]; exists {
		return domain.ErrVersionConflict
	}
	if _, ok := r.store.items[variant.ItemID]; !ok {
		return domain.ErrItemNotFound
	}
	for _, existing := range r.store.variants {
		if existing.SKU == variant.SKU {
			return domain.ErrVariantSKUTaken
		}
	}
	r.store.variants[variant.ID] = variant
	return nil
}

func (r *catalogRepository) SaveItem(_ context.Context, item domain.Item, expectedVersion int64) (domain.Item, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return saveItemLocked(r.store, item, expectedVersion)
}

func (r *catalogRepository) SaveVariant(_ context.Context, variant domain.ItemVariant, expectedVersion int64) (domain.ItemVariant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return saveVariantLocked(r.store, variant, expectedVersion)
}

func (r *catalogRepository) DeleteItem(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.items[id]; !ok {
		return domain.ErrItemNotFound
	}
	delete(r.store.items, id)
	// Варианты живут в пределах жизни товара.
	for vid, variant := range r.store.variants {
		if variant.ItemID == id {
			delete(r.store.variants, vid)
		}
	}
	return nil
}

func (r *catalogRepository) DeleteVariant(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.variants[id]; !ok {
		return domain.ErrVariantNotFound
	}
	delete(r.store.variants, id)
	return nil
}

// Общие операции под уже взятой блокировкой: используются и репозиторием,
// и единицей работы.

func getItemLocked(s *Store, id string) (domain.Item, error) {
	item, ok := s.items[id]
	if !ok {
		return domain.Item{}, domain.ErrItemNotFound
	}
	return copyItem(item), nil
}

func getVariantLocked(s *Store, id string) (domain.ItemVariant, error) {
	variant, ok := s.variants[id]
	if !ok {
		return domain.ItemVariant{}, domain.ErrVariantNotFound
	}
	return variant, nil
}

func saveItemLocked(s *Store, item domain.Item, expectedVersion int64) (domain.Item, error) {
	current, ok := s.items[item.ID]
	if !ok {
		return domain.Item{}, domain.ErrItemNotFound
	}
	if current.Version != expectedVersion {
		return domain.Item{}, domain.ErrVersionConflict
	}
	for _, existing := range s.items {
		if existing.ID != item.ID && existing.Name == item.Name {
			return domain.Item{}, domain.ErrItemNameTaken
		}
	}

	item.Version = expectedVersion + 1
	item.CreatedAt = current.CreatedAt
	item.UpdatedAt = time.Now().UTC()
	s.items[item.ID] = copyItem(item)
	return item, nil
}

func saveVariantLocked(s *Store, variant domain.ItemVariant, expectedVersion int64) (domain.ItemVariant, error) {
	current, ok := s.variants[variant.ID]
	if !ok {
		return domain.ItemVariant{}, domain.ErrVariantNotFound
	}
	if current.Version != expectedVersion {
		return domain.ItemVariant{}, domain.ErrVersionConflict
	}
	if variant.ItemID != current.ItemID {
		return domain.ItemVariant{}, domain.ErrItemImmutable
	}
	for _, existing := range s.variants {
		if existing.ID != variant.ID && existing.SKU == variant.SKU {
			return domain.ItemVariant{}, domain.ErrVariantSKUTaken
		}
	}

	variant.Version = expectedVersion + 1
	variant.CreatedAt = current.CreatedAt
	variant.UpdatedAt = time.Now().UTC()
	s.variants[variant.ID] = variant
	return variant, nil
}

// copyItem возвращает копию с собственным указателем на цену, чтобы
// избежать непредсказуемых мутаций извне.
func copyItem(item domain.Item) domain.Item {
	if item.BasePriceMinor != nil {
		price := *item.BasePriceMinor
		item.BasePriceMinor = &price
	}
	return item
}

func sortItems(items []domain.Item) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}

func sortVariants(variants []domain.ItemVariant) {
	sort.Slice(variants, func(i, j int) bool {
		if !variants[i].CreatedAt.Equal(variants[j].CreatedAt) {
			return variants[i].CreatedAt.Before(variants[j].CreatedAt)
		}
		return variants[i].ID < variants[j].ID
	})
}

var _ domain.CatalogRepository = (*catalogRepository)(nil)
