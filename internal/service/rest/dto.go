package rest

import (
	"time"

	"github.com/khairunnisaa/inventory/internal/domain"
)

// itemDTO — представление товара в API.
type itemDTO struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description,omitempty"`
	BasePriceMinor *int64        `json:"basePriceMinor,omitempty"`
	StockQuantity  int32         `json:"stockQuantity"`
	HasVariants    bool          `json:"hasVariants"`
	Version        int64         `json:"version"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
	Variants       []variantDTO  `json:"variants,omitempty"`
}

// variantDTO — представление варианта товара в API.
type variantDTO struct {
	ID            string    `json:"id"`
	ItemID        string    `json:"itemId"`
	SKU           string    `json:"sku"`
	Name          string    `json:"name"`
	PriceMinor    int64     `json:"priceMinor"`
	StockQuantity int32     `json:"stockQuantity"`
	Version       int64     `json:"version"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// orderDTO — представление заказа в API.
type orderDTO struct {
	ID          string         `json:"id"`
	OrderNumber string         `json:"orderNumber"`
	TotalMinor  int64          `json:"totalMinor"`
	CreatedAt   time.Time      `json:"createdAt"`
	Lines       []orderLineDTO `json:"lines"`
}

// orderLineDTO — позиция заказа со снимками цены и имён.
type orderLineDTO struct {
	ID             string  `json:"id"`
	ItemID         string  `json:"itemId"`
	ItemName       string  `json:"itemName"`
	VariantID      *string `json:"variantId,omitempty"`
	VariantName    *string `json:"variantName,omitempty"`
	Quantity       int32   `json:"quantity"`
	UnitPriceMinor int64   `json:"unitPriceMinor"`
	LineTotalMinor int64   `json:"lineTotalMinor"`
}

// createItemRequest — тело POST /api/items.
type createItemRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	BasePriceMinor *int64 `json:"basePriceMinor"`
	StockQuantity  int32  `json:"stockQuantity"`
	HasVariants    bool   `json:"hasVariants"`
}

// updateItemRequest — тело PUT /api/items/{id}; nil-поля не изменяются.
type updateItemRequest struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	BasePriceMinor *int64  `json:"basePriceMinor"`
	StockQuantity  *int32  `json:"stockQuantity"`
}

// createVariantRequest — тело POST /api/variants.
type createVariantRequest struct {
	ItemID        string `json:"itemId"`
	SKU           string `json:"sku"`
	Name          string `json:"name"`
	PriceMinor    int64  `json:"priceMinor"`
	StockQuantity int32  `json:"stockQuantity"`
}

// updateVariantRequest — тело PUT /api/variants/{id}; nil-поля не изменяются.
type updateVariantRequest struct {
	SKU           *string `json:"sku"`
	Name          *string `json:"name"`
	PriceMinor    *int64  `json:"priceMinor"`
	StockQuantity *int32  `json:"stockQuantity"`
}

// createOrderRequest — тело POST /api/orders.
type createOrderRequest struct {
	Lines []orderLineRequest `json:"lines"`
}

type orderLineRequest struct {
	ItemID    string  `json:"itemId"`
	VariantID *string `json:"variantId"`
	Quantity  int32   `json:"quantity"`
}

func toItemDTO(item domain.Item, variants []domain.ItemVariant) itemDTO {
	dto := itemDTO{
		ID:             item.ID,
		Name:           item.Name,
		Description:    item.Description,
		BasePriceMinor: item.BasePriceMinor,
		StockQuantity:  item.StockQty,
		HasVariants:    item.HasVariants,
		Version:        item.Version,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
	for _, v := range variants {
		dto.Variants = append(dto.Variants, toVariantDTO(v))
	}
	return dto
}

func toVariantDTO(v domain.ItemVariant) variantDTO {
	return variantDTO{
		ID:            v.ID,
		ItemID:        v.ItemID,
		SKU:           v.SKU,
		Name:          v.Name,
		PriceMinor:    v.PriceMinor,
		StockQuantity: v.StockQty,
		Version:       v.Version,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

func toOrderDTO(order domain.Order) orderDTO {
	dto := orderDTO{
		ID:          order.ID,
		OrderNumber: order.Number,
		TotalMinor:  order.TotalMinor,
		CreatedAt:   order.CreatedAt,
		Lines:       make([]orderLineDTO, 0, len(order.Lines)),
	}
	for _, line := range order.Lines {
		dto.Lines = append(dto.Lines, orderLineDTO{
			ID:             line.ID,
			ItemID:         line.ItemID,
			ItemName:       line.ItemName,
			VariantID:      line.VariantID,
			VariantName:    line.VariantName,
			Quantity:       line.Qty,
			UnitPriceMinor: line.UnitPriceMinor,
			LineTotalMinor: line.LineTotalMinor,
		})
	}
	return dto
}
