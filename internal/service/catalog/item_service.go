package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/khairunnisaa/inventory/internal/domain"
)

// CreateItemInput — данные для создания товара.
type CreateItemInput struct {
	Name           string
	Description    string
	BasePriceMinor *int64
	StockQty       int32
	HasVariants    bool
}

// UpdateItemInput — частичное обновление товара: nil-поля не трогаются.
type UpdateItemInput struct {
	Name           *string
	Description    *string
	BasePriceMinor *int64
	StockQty       *int32
}

// ItemService — CRUD по товарам каталога. Обновления выполняются по схеме
// read-modify-write с проверкой версии: параллельное изменение отдаёт
// ErrVersionConflict вызывающему.
type ItemService struct {
	repo   domain.CatalogRepository
	logger *log.Entry
}

// NewItemService создаёт сервис товаров.
func NewItemService(repo domain.CatalogRepository, logger *log.Entry) *ItemService {
	if logger == nil {
		logger = log.New().WithField("component", "item-service")
	}
	return &ItemService{repo: repo, logger: logger}
}

// Create валидирует вход и сохраняет новый товар.
func (s *ItemService) Create(ctx context.Context, in CreateItemInput) (domain.Item, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Item{}, domain.ErrItemNameRequired
	}
	if in.StockQty < 0 {
		return domain.Item{}, domain.ErrStockNegative
	}
	if in.BasePriceMinor != nil && *in.BasePriceMinor < 0 {
		return domain.Item{}, domain.ErrPriceNegative
	}

	now := time.Now().UTC()
	item := domain.Item{
		ID:             uuid.NewString(),
		Name:           name,
		Description:    strings.TrimSpace(in.Description),
		BasePriceMinor: in.BasePriceMinor,
		StockQty:       in.StockQty,
		HasVariants:    in.HasVariants,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return domain.Item{}, err
	}

	s.logger.WithFields(log.Fields{
		"item_id": item.ID,
		"name":    item.Name,
	}).Info("item created")
	return item, nil
}

// Get возвращает товар по идентификатору.
func (s *ItemService) Get(ctx context.Context, id string) (domain.Item, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return domain.Item{}, fmt.Errorf("get item %s: %w", id, err)
	}
	return item, nil
}

// List возвращает все товары.
func (s *ItemService) List(ctx context.Context) ([]domain.Item, error) {
	return s.repo.ListItems(ctx)
}

// Update применяет частичное обновление поверх текущего состояния.
func (s *ItemService) Update(ctx context.Context, id string, in UpdateItemInput) (domain.Item, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return domain.Item{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return domain.Item{}, domain.ErrItemNameRequired
		}
		item.Name = name
	}
	if in.Description != nil {
		item.Description = strings.TrimSpace(*in.Description)
	}
	if in.BasePriceMinor != nil {
		if *in.BasePriceMinor < 0 {
			return domain.Item{}, domain.ErrPriceNegative
		}
		price := *in.BasePriceMinor
		item.BasePriceMinor = &price
	}
	if in.StockQty != nil {
		if *in.StockQty < 0 {
			return domain.Item{}, domain.ErrStockNegative
		}
		item.StockQty = *in.StockQty
	}

	updated, err := s.repo.SaveItem(ctx, item, item.Version)
	if err != nil {
		return domain.Item{}, err
	}

	s.logger.WithFields(log.Fields{
		"item_id": updated.ID,
		"version": updated.Version,
	}).Info("item updated")
	return updated, nil
}

// Delete удаляет товар вместе с его вариантами.
func (s *ItemService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("item_id", id).Info("item deleted")
	return nil
}
