package domain

import "time"

// OrderLine — одна позиция заказа. Цена за единицу снимается в момент
// резолюции заказа и больше никогда не пересчитывается; имена товара и
// варианта фиксируются рядом для отображения и аудита.
type OrderLine struct {
	ID      string
	OrderID string
	ItemID  string
	// ItemName — снимок имени товара на момент оформления.
	ItemName string
	// VariantID/VariantName опциональны: nil для товара, продаваемого напрямую.
	VariantID   *string
	VariantName *string
	// Position фиксирует порядок позиций в запросе; к идентичности заказа
	// отношения не имеет, но сохраняется для отображения.
	Position       int32
	Qty            int32
	UnitPriceMinor int64
	LineTotalMinor int64
}

// Order агрегирует оформленный заказ и владеет своими позициями.
type Order struct {
	ID         string
	Number     string
	TotalMinor int64
	Lines      []OrderLine
	CreatedAt  time.Time
}

// ValidateInvariants сверяет сумму заказа с позициями: каждая позиция
// должна сходиться как qty * unit price, а итог — как сумма позиций.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.Number == "" {
		errs = append(errs, ErrOrderNumberRequired)
	}
	if len(o.Lines) == 0 {
		errs = append(errs, ErrLinesRequired)
	}
	if o.TotalMinor < 0 {
		errs = append(errs, ErrTotalNegative)
	}

	var calc int64
	for _, line := range o.Lines {
		if line.Qty <= 0 {
			errs = append(errs, ErrQtyInvalid)
		}
		if line.UnitPriceMinor < 0 {
			errs = append(errs, ErrPriceNegative)
		}
		if line.LineTotalMinor != int64(line.Qty)*line.UnitPriceMinor {
			errs = append(errs, ErrLineTotalMismatch)
		}
		calc += line.LineTotalMinor
	}
	if calc != o.TotalMinor {
		errs = append(errs, ErrTotalMismatch)
	}

	return errs
}
