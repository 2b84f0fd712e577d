package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/khairunnisaa/inventory/internal/domain"
)

// orderRepository — PostgreSQL-реализация OrderRepository.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

// Create сохраняет заказ вместе с позициями в одной транзакции.
func (r *orderRepository) Create(ctx context.Context, order domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = insertOrder(ctx, tx, order); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}
	return nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var order domain.Order
	err := r.db.QueryRowContext(ctx, `
		SELECT id, number, total_minor, created_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.Number, &order.TotalMinor, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	lines, err := r.loadLines(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Lines = lines
	return order, nil
}

func (r *orderRepository) List(ctx context.Context) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, number, total_minor, created_at
		FROM orders
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.Number, &order.TotalMinor, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		lines, err := r.loadLines(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Lines = lines
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) loadLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, item_id, item_name, variant_id, variant_name,
		       position, qty, unit_price_minor, line_total_minor
		FROM order_lines
		WHERE order_id = $1
		ORDER BY position ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.OrderLine, 0)
	for rows.Next() {
		var (
			line        domain.OrderLine
			variantID   sql.NullString
			variantName sql.NullString
		)
		if err := rows.Scan(
			&line.ID, &line.OrderID, &line.ItemID, &line.ItemName,
			&variantID, &variantName, &line.Position, &line.Qty,
			&line.UnitPriceMinor, &line.LineTotalMinor,
		); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		if variantID.Valid {
			line.VariantID = &variantID.String
		}
		if variantName.Valid {
			line.VariantName = &variantName.String
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}
	return lines, nil
}

// insertOrder пишет заказ с позициями через переданный querier: репозиторий
// использует собственную транзакцию, единица работы — общую.
func insertOrder(ctx context.Context, q querier, order domain.Order) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO orders (id, number, total_minor, created_at)
		VALUES ($1,$2,$3,$4)
	`, order.ID, order.Number, order.TotalMinor, order.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "uk_orders_number") {
			return domain.ErrOrderNumberTaken
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for _, line := range order.Lines {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO order_lines (
				id, order_id, item_id, item_name, variant_id, variant_name,
				position, qty, unit_price_minor, line_total_minor
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`,
			line.ID, order.ID, line.ItemID, line.ItemName, line.VariantID,
			line.VariantName, line.Position, line.Qty, line.UnitPriceMinor,
			line.LineTotalMinor,
		); err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}
	return nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
