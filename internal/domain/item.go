package domain

import "time"

// Item — товар каталога. Цены хранятся в минимальных денежных единицах
// (int64), остатки — в штуках. Version растёт на единицу при каждой
// успешной записи и используется для optimistic locking.
type Item struct {
	ID          string
	Name        string
	Description string
	// BasePriceMinor — базовая цена за единицу; nil означает, что товар
	// не имеет собственной цены (продаётся только через варианты).
	BasePriceMinor *int64
	StockQty       int32
	// HasVariants помечает товар, который продаётся только через варианты:
	// базовая цена и базовый остаток в этом случае не участвуют в продаже.
	HasVariants bool
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateInvariants проверяет базовые инварианты товара и возвращает список замечаний.
func (i *Item) ValidateInvariants() []error {
	var errs []error

	if i.Name == "" {
		errs = append(errs, ErrItemNameRequired)
	}
	if i.StockQty < 0 {
		errs = append(errs, ErrStockNegative)
	}
	if i.BasePriceMinor != nil && *i.BasePriceMinor < 0 {
		errs = append(errs, ErrPriceNegative)
	}

	return errs
}

// ItemVariant — вариант товара (например, размер/цвет). Владелец (ItemID)
// неизменяем после создания; SKU уникален в пределах каталога.
type ItemVariant struct {
	ID         string
	ItemID     string
	SKU        string
	Name       string
	PriceMinor int64
	StockQty   int32
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ValidateInvariants проверяет базовые инварианты варианта.
func (v *ItemVariant) ValidateInvariants() []error {
	var errs []error

	if v.ItemID == "" {
		errs = append(errs, ErrItemIDRequired)
	}
	if v.SKU == "" {
		errs = append(errs, ErrVariantSKURequired)
	}
	if v.Name == "" {
		errs = append(errs, ErrVariantNameEmpty)
	}
	if v.PriceMinor < 0 {
		errs = append(errs, ErrPriceNegative)
	}
	if v.StockQty < 0 {
		errs = append(errs, ErrStockNegative)
	}

	return errs
}
