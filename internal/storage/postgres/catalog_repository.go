package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/khairunnisaa/inventory/internal/domain"
)

const opTimeout = 5 * time.Second

// querier покрывает общую часть *sql.DB и *sql.Tx: репозитории и единица
// работы используют один и тот же код запросов.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// catalogRepository — PostgreSQL-реализация CatalogRepository.
type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository создаёт PostgreSQL-реализацию CatalogRepository.
func NewCatalogRepository(store *Store) domain.CatalogRepository {
	return &catalogRepository{db: store.DB()}
}

func (r *catalogRepository) GetItem(ctx context.Context, id string) (domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return getItem(ctx, r.db, id)
}

func (r *catalogRepository) GetVariant(ctx context.Context, id string) (domain.ItemVariant, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return getVariant(ctx, r.db, id)
}

func (r *catalogRepository) ListItems(ctx context.Context) ([]domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, itemColumns+`
		FROM items
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item rows: %w", err)
	}
	return items, nil
}

func (r *catalogRepository) ListVariants(ctx context.Context) ([]domain.ItemVariant, error) {
	return r.listVariants(ctx, variantColumns+`
		FROM item_variants
		ORDER BY created_at ASC, id ASC
	`)
}

func (r *catalogRepository) ListVariantsByItem(ctx context.Context, itemID string) ([]domain.ItemVariant, error) {
	return r.listVariants(ctx, variantColumns+`
		FROM item_variants
		WHERE item_id = $1
		ORDER BY created_at ASC, id ASC
	`, itemID)
}

func (r *catalogRepository) listVariants(ctx context.Context, query string, args ...any) ([]domain.ItemVariant, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	variants := make([]domain.ItemVariant, 0)
	for rows.Next() {
		var v domain.ItemVariant
		if err := rows.Scan(
			&v.ID, &v.ItemID, &v.SKU, &v.Name, &v.PriceMinor,
			&v.StockQty, &v.Version, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan variant row: %w", err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variant rows: %w", err)
	}
	return variants, nil
}

func (r *catalogRepository) CreateItem(ctx context.Context, item domain.Item) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO items (
			id, name, description, base_price_minor, stock_qty, has_variants, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		item.ID, item.Name, item.Description, item.BasePriceMinor,
		item.StockQty, item.HasVariants, item.Version, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "uk_items_name") {
			return domain.ErrItemNameTaken
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *catalogRepository) CreateVariant(ctx context.Context, variant domain.ItemVariant) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO item_variants (
			id, item_id, sku, name, price_minor, stock_qty, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		variant.ID, variant.ItemID, variant.SKU, variant.Name, variant.PriceMinor,
		variant.StockQty, variant.Version, variant.CreatedAt, variant.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "uk_item_variants_sku") {
			return domain.ErrVariantSKUTaken
		}
		if isForeignKeyViolation(err) {
			return domain.ErrItemNotFound
		}
		return fmt.Errorf("insert variant: %w", err)
	}
	return nil
}

func (r *catalogRepository) SaveItem(ctx context.Context, item domain.Item, expectedVersion int64) (domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return saveItem(ctx, r.db, item, expectedVersion)
}

func (r *catalogRepository) SaveVariant(ctx context.Context, variant domain.ItemVariant, expectedVersion int64) (domain.ItemVariant, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return saveVariant(ctx, r.db, variant, expectedVersion)
}

func (r *catalogRepository) DeleteItem(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *catalogRepository) DeleteVariant(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM item_variants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete variant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrVariantNotFound
	}
	return nil
}

const (
	itemColumns = `
		SELECT id, name, description, base_price_minor, stock_qty, has_variants, version, created_at, updated_at
	`
	variantColumns = `
		SELECT id, item_id, sku, name, price_minor, stock_qty, version, created_at, updated_at
	`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (domain.Item, error) {
	var (
		item  domain.Item
		price sql.NullInt64
	)
	if err := row.Scan(
		&item.ID, &item.Name, &item.Description, &price, &item.StockQty,
		&item.HasVariants, &item.Version, &item.CreatedAt, &item.UpdatedAt,
	); err != nil {
		return domain.Item{}, err
	}
	if price.Valid {
		item.BasePriceMinor = &price.Int64
	}
	return item, nil
}

func getItem(ctx context.Context, q querier, id string) (domain.Item, error) {
	item, err := scanItem(q.QueryRowContext(ctx, itemColumns+`FROM items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Item{}, domain.ErrItemNotFound
		}
		return domain.Item{}, fmt.Errorf("select item: %w", err)
	}
	return item, nil
}

func getVariant(ctx context.Context, q querier, id string) (domain.ItemVariant, error) {
	var v domain.ItemVariant
	err := q.QueryRowContext(ctx, variantColumns+`FROM item_variants WHERE id = $1`, id).Scan(
		&v.ID, &v.ItemID, &v.SKU, &v.Name, &v.PriceMinor,
		&v.StockQty, &v.Version, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ItemVariant{}, domain.ErrVariantNotFound
		}
		return domain.ItemVariant{}, fmt.Errorf("select variant: %w", err)
	}
	return v, nil
}

// saveItem выполняет условную запись: сравнение версии происходит в самом
// UPDATE, проигравшая сторона получает ErrVersionConflict без блокировок.
func saveItem(ctx context.Context, q querier, item domain.Item, expectedVersion int64) (domain.Item, error) {
	item.UpdatedAt = time.Now().UTC()

	res, err := q.ExecContext(ctx, `
		UPDATE items
		SET name = $1,
		    description = $2,
		    base_price_minor = $3,
		    stock_qty = $4,
		    has_variants = $5,
		    version = version + 1,
		    updated_at = $6
		WHERE id = $7
		  AND version = $8
	`,
		item.Name, item.Description, item.BasePriceMinor, item.StockQty,
		item.HasVariants, item.UpdatedAt, item.ID, expectedVersion,
	)
	if err != nil {
		if isUniqueViolation(err, "uk_items_name") {
			return domain.Item{}, domain.ErrItemNameTaken
		}
		return domain.Item{}, fmt.Errorf("update item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Item{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		if _, err := getItem(ctx, q, item.ID); err != nil {
			return domain.Item{}, err
		}
		return domain.Item{}, domain.ErrVersionConflict
	}

	item.Version = expectedVersion + 1
	return item, nil
}

func saveVariant(ctx context.Context, q querier, variant domain.ItemVariant, expectedVersion int64) (domain.ItemVariant, error) {
	current, err := getVariant(ctx, q, variant.ID)
	if err != nil {
		return domain.ItemVariant{}, err
	}
	if variant.ItemID != current.ItemID {
		return domain.ItemVariant{}, domain.ErrItemImmutable
	}

	variant.UpdatedAt = time.Now().UTC()

	res, err := q.ExecContext(ctx, `
		UPDATE item_variants
		SET sku = $1,
		    name = $2,
		    price_minor = $3,
		    stock_qty = $4,
		    version = version + 1,
		    updated_at = $5
		WHERE id = $6
		  AND version = $7
	`,
		variant.SKU, variant.Name, variant.PriceMinor, variant.StockQty,
		variant.UpdatedAt, variant.ID, expectedVersion,
	)
	if err != nil {
		if isUniqueViolation(err, "uk_item_variants_sku") {
			return domain.ItemVariant{}, domain.ErrVariantSKUTaken
		}
		return domain.ItemVariant{}, fmt.Errorf("update variant: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.ItemVariant{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ItemVariant{}, domain.ErrVersionConflict
	}

	variant.Version = expectedVersion + 1
	return variant, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && (constraint == "" || pgErr.ConstraintName == constraint)
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

var _ domain.CatalogRepository = (*catalogRepository)(nil)
