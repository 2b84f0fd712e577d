package domain

import "errors"

var (
	// ErrItemNotFound возвращается, если товар не найден в каталоге.
	ErrItemNotFound = errors.New("item not found")
	// ErrVariantNotFound возвращается, если вариант товара не найден в каталоге.
	ErrVariantNotFound = errors.New("item variant not found")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")

	// Ошибка пустого списка позиций при создании заказа.
	ErrLinesRequired = errors.New("order must contain at least one line")
	// Ошибка отсутствующего идентификатора товара в позиции.
	ErrItemIDRequired = errors.New("item_id is required")
	// Ошибка при некорректном количестве в позиции (<= 0).
	ErrQtyInvalid = errors.New("quantity must be greater than zero")
	// Ошибка повторяющейся пары (item_id, variant_id) в одном запросе.
	ErrDuplicateLine = errors.New("duplicate order line")
	// Ошибка, если указанный вариант принадлежит другому товару.
	ErrVariantMismatch = errors.New("variant does not belong to item")
	// Ошибка, если товар продаётся только через варианты, а вариант не указан.
	ErrVariantRequired = errors.New("item has variants, variant_id is required")
	// ErrPriceInvalid сигнализирует о несогласованности каталога:
	// отсутствующая или отрицательная цена у цели заказа.
	ErrPriceInvalid = errors.New("price is missing or negative")
	// ErrInsufficientStock — бизнес-ошибка нехватки остатка под запрошенное количество.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrVersionConflict сигнализирует о проигранной гонке optimistic locking:
	// конкурентная запись успела раньше, вызов следует повторить целиком.
	ErrVersionConflict = errors.New("concurrent modification, version conflict")
	// ErrOrderNumberTaken возвращается хранилищем при коллизии номера заказа.
	ErrOrderNumberTaken = errors.New("order number already taken")

	// Ошибки валидации каталога.
	ErrItemNameRequired   = errors.New("item name is required")
	ErrVariantSKURequired = errors.New("variant sku is required")
	ErrVariantNameEmpty   = errors.New("variant name is required")
	ErrStockNegative      = errors.New("stock quantity cannot be negative")
	ErrPriceNegative      = errors.New("price cannot be negative")
	// Ошибки уникальности каталога.
	ErrItemNameTaken   = errors.New("item name already in use")
	ErrVariantSKUTaken = errors.New("variant sku already in use")
	// ErrItemImmutable возвращается при попытке сменить владельца варианта.
	ErrItemImmutable = errors.New("variant item_id is immutable")

	// Ошибки инвариантов заказа.
	ErrOrderNumberRequired = errors.New("order number is required")
	ErrTotalNegative       = errors.New("order total must be non-negative")
	ErrLineTotalMismatch   = errors.New("line total does not match qty * unit price")
	ErrTotalMismatch       = errors.New("order total does not match lines sum")

	// ErrStorageUnavailable — временная ошибка хранилища, отличная от бизнес-ошибок.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

// IsNotFound проверяет, относится ли ошибка к отсутствующему ресурсу.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrVariantNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}
