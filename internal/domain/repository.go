package domain

import "context"

// CatalogRepository описывает требования к хранилищу каталога.
// Все условные записи принимают явный expectedVersion: хранилище обязано
// отклонить запись с ErrVersionConflict, если сохранённая версия успела
// уйти вперёд, и вернуть обновлённую запись с версией +1 при успехе.
type CatalogRepository interface {
	// GetItem возвращает товар или ErrItemNotFound.
	GetItem(ctx context.Context, id string) (Item, error)
	// GetVariant возвращает вариант или ErrVariantNotFound.
	GetVariant(ctx context.Context, id string) (ItemVariant, error)
	// ListItems возвращает все товары каталога.
	ListItems(ctx context.Context) ([]Item, error)
	// ListVariants возвращает все варианты каталога.
	ListVariants(ctx context.Context) ([]ItemVariant, error)
	// ListVariantsByItem возвращает варианты конкретного товара.
	ListVariantsByItem(ctx context.Context, itemID string) ([]ItemVariant, error)
	// CreateItem сохраняет новый товар; ErrItemNameTaken при конфликте имени.
	CreateItem(ctx context.Context, item Item) error
	// CreateVariant сохраняет новый вариант; ErrVariantSKUTaken при конфликте SKU.
	CreateVariant(ctx context.Context, variant ItemVariant) error
	// SaveItem применяет условную запись товара (optimistic locking).
	SaveItem(ctx context.Context, item Item, expectedVersion int64) (Item, error)
	// SaveVariant применяет условную запись варианта (optimistic locking).
	SaveVariant(ctx context.Context, variant ItemVariant, expectedVersion int64) (ItemVariant, error)
	// DeleteItem удаляет товар или возвращает ErrItemNotFound.
	DeleteItem(ctx context.Context, id string) error
	// DeleteVariant удаляет вариант или возвращает ErrVariantNotFound.
	DeleteVariant(ctx context.Context, id string) error
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет заказ вместе с позициями;
	// ErrOrderNumberTaken при коллизии номера заказа.
	Create(ctx context.Context, order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound.
	Get(ctx context.Context, id string) (Order, error)
	// List возвращает заказы, новые первыми.
	List(ctx context.Context) ([]Order, error)
}

// UnitOfWork — явная единица работы для фазы коммита заказа: списания
// остатков и сам заказ либо фиксируются вместе через Commit, либо
// полностью отбрасываются через Discard. Промежуточное состояние снаружи
// не видно.
type UnitOfWork interface {
	GetItem(ctx context.Context, id string) (Item, error)
	GetVariant(ctx context.Context, id string) (ItemVariant, error)
	SaveItem(ctx context.Context, item Item, expectedVersion int64) (Item, error)
	SaveVariant(ctx context.Context, variant ItemVariant, expectedVersion int64) (ItemVariant, error)
	CreateOrder(ctx context.Context, order Order) error
	// Commit атомарно применяет все накопленные записи.
	Commit(ctx context.Context) error
	// Discard отбрасывает все записи; безопасен после Commit (no-op).
	Discard() error
}

// Transactor создаёт единицы работы; реализуется хранилищем.
type Transactor interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}
