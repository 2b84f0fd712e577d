package memory

import (
	"sync"

	"github.com/khairunnisaa/inventory/internal/domain"
)

// Store — in-memory хранилище каталога и заказов для локальной разработки
// и тестов. Карты защищены общим RW-мьютексом; единица работы (см.
// unit_of_work.go) удерживает эксклюзивную блокировку от Begin до
// Commit/Discard, поэтому фаза коммита заказа атомарна по построению.
type Store struct {
	mu       sync.RWMutex
	items    map[string]domain.Item
	variants map[string]domain.ItemVariant
	orders   map[string]domain.Order
	// numbers индексирует занятые номера заказов для проверки уникальности.
	numbers map[string]struct{}
}

// NewStore возвращает пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{
		items:    make(map[string]domain.Item),
		variants: make(map[string]domain.ItemVariant),
		orders:   make(map[string]domain.Order),
		numbers:  make(map[string]struct{}),
	}
}

// Catalog возвращает представление хранилища как репозитория каталога.
func (s *Store) Catalog() domain.CatalogRepository {
	return &catalogRepository{store: s}
}

// Orders возвращает представление хранилища как репозитория заказов.
func (s *Store) Orders() domain.OrderRepository {
	return &orderRepository{store: s}
}

var _ domain.Transactor = (*Store)(nil)
