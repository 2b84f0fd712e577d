package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/khairunnisaa/inventory/internal/domain"
)

// CreateVariantInput — данные для создания варианта товара.
type CreateVariantInput struct {
	ItemID     string
	SKU        string
	Name       string
	PriceMinor int64
	StockQty   int32
}

// UpdateVariantInput — частичное обновление варианта. Принадлежность
// товару неизменяема и здесь отсутствует.
type UpdateVariantInput struct {
	SKU        *string
	Name       *string
	PriceMinor *int64
	StockQty   *int32
}

// VariantService — CRUD по вариантам. Создание первого варианта помечает
// родительский товар как вариантный, после чего заказы на базовый товар
// без указания варианта отклоняются.
type VariantService struct {
	repo   domain.CatalogRepository
	logger *log.Entry
}

// NewVariantService создаёт сервис вариантов.
func NewVariantService(repo domain.CatalogRepository, logger *log.Entry) *VariantService {
	if logger == nil {
		logger = log.New().WithField("component", "variant-service")
	}
	return &VariantService{repo: repo, logger: logger}
}

// Create валидирует вход, сохраняет вариант и при необходимости поднимает
// флаг HasVariants у владельца через условную запись.
func (s *VariantService) Create(ctx context.Context, in CreateVariantInput) (domain.ItemVariant, error) {
	if strings.TrimSpace(in.ItemID) == "" {
		return domain.ItemVariant{}, domain.ErrItemIDRequired
	}
	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		return domain.ItemVariant{}, domain.ErrVariantSKURequired
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.ItemVariant{}, domain.ErrVariantNameEmpty
	}
	if in.PriceMinor < 0 {
		return domain.ItemVariant{}, domain.ErrPriceNegative
	}
	if in.StockQty < 0 {
		return domain.ItemVariant{}, domain.ErrStockNegative
	}

	item, err := s.repo.GetItem(ctx, in.ItemID)
	if err != nil {
		return domain.ItemVariant{}, err
	}

	now := time.Now().UTC()
	variant := domain.ItemVariant{
		ID:         uuid.NewString(),
		ItemID:     item.ID,
		SKU:        sku,
		Name:       name,
		PriceMinor: in.PriceMinor,
		StockQty:   in.StockQty,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.CreateVariant(ctx, variant); err != nil {
		return domain.ItemVariant{}, err
	}

	if !item.HasVariants {
		item.HasVariants = true
		if _, err := s.repo.SaveItem(ctx, item, item.Version); err != nil {
			// Товар успели изменить параллельно; вариант уже сохранён,
			// поэтому конфликт отдаём вызывающему для повтора.
			return domain.ItemVariant{}, err
		}
	}

	s.logger.WithFields(log.Fields{
		"variant_id": variant.ID,
		"item_id":    variant.ItemID,
		"sku":        variant.SKU,
	}).Info("variant created")
	return variant, nil
}

// Get возвращает вариант по идентификатору.
func (s *VariantService) Get(ctx context.Context, id string) (domain.ItemVariant, error) {
	return s.repo.GetVariant(ctx, id)
}

// List возвращает все варианты.
func (s *VariantService) List(ctx context.Context) ([]domain.ItemVariant, error) {
	return s.repo.ListVariants(ctx)
}

// ListByItem возвращает варианты одного товара.
func (s *VariantService) ListByItem(ctx context.Context, itemID string) ([]domain.ItemVariant, error) {
	if _, err := s.repo.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.repo.ListVariantsByItem(ctx, itemID)
}

// Update применяет частичное обновление поверх текущего состояния.
func (s *VariantService) Update(ctx context.Context, id string, in UpdateVariantInput) (domain.ItemVariant, error) {
	variant, err := s.repo.GetVariant(ctx, id)
	if err != nil {
		return domain.ItemVariant{}, err
	}

	if in.SKU != nil {
		sku := strings.TrimSpace(*in.SKU)
		if sku == "" {
			return domain.ItemVariant{}, domain.ErrVariantSKURequired
		}
		variant.SKU = sku
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return domain.ItemVariant{}, domain.ErrVariantNameEmpty
		}
		variant.Name = name
	}
	if in.PriceMinor != nil {
		if *in.PriceMinor < 0 {
			return domain.ItemVariant{}, domain.ErrPriceNegative
		}
		variant.PriceMinor = *in.PriceMinor
	}
	if in.StockQty != nil {
		if *in.StockQty < 0 {
			return domain.ItemVariant{}, domain.ErrStockNegative
		}
		variant.StockQty = *in.StockQty
	}

	updated, err := s.repo.SaveVariant(ctx, variant, variant.Version)
	if err != nil {
		return domain.ItemVariant{}, err
	}

	s.logger.WithFields(log.Fields{
		"variant_id": updated.ID,
		"version":    updated.Version,
	}).Info("variant updated")
	return updated, nil
}

// Delete удаляет вариант.
func (s *VariantService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteVariant(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("variant_id", id).Info("variant deleted")
	return nil
}
