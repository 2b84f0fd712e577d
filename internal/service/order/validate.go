package order

import (
	"fmt"

	"github.com/khairunnisaa/inventory/internal/domain"
)

// RequestedLine — одна запрошенная позиция заказа: товар, опциональный
// вариант и количество.
type RequestedLine struct {
	ItemID    string
	VariantID *string
	Qty       int32
}

// lineKey различает позиции по паре (item, variant); отсутствие варианта —
// самостоятельный случай, не равный никакому значению variant_id.
type lineKey struct {
	itemID     string
	variantID  string
	hasVariant bool
}

func keyOf(line RequestedLine) lineKey {
	key := lineKey{itemID: line.ItemID}
	if line.VariantID != nil {
		key.variantID = *line.VariantID
		key.hasVariant = true
	}
	return key
}

// validateLines проверяет структурную корректность запроса без обращения
// к хранилищу: непустой список, заполненные идентификаторы, положительные
// количества и отсутствие повторов. Скан слева направо, дубликат
// сообщается на первом повторе.
func validateLines(lines []RequestedLine) error {
	if len(lines) == 0 {
		return domain.ErrLinesRequired
	}

	seen := make(map[lineKey]struct{}, len(lines))
	for i, line := range lines {
		if line.ItemID == "" {
			return fmt.Errorf("%w: line %d", domain.ErrItemIDRequired, i)
		}
		if line.Qty <= 0 {
			return fmt.Errorf("%w: line %d", domain.ErrQtyInvalid, i)
		}

		key := keyOf(line)
		if _, dup := seen[key]; dup {
			if key.hasVariant {
				return fmt.Errorf("%w: item %s, variant %s", domain.ErrDuplicateLine, line.ItemID, key.variantID)
			}
			return fmt.Errorf("%w: item %s", domain.ErrDuplicateLine, line.ItemID)
		}
		seen[key] = struct{}{}
	}

	return nil
}
