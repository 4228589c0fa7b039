package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("order not found")

type Repository interface {
	Create(ctx context.Context, o *Order) (int64, error)
	GetByID(ctx context.Context, orderID int64) (*Order, error)
	GetByUserID(ctx context.Context, userID int64) ([]Order, error)
	GetByStatus(ctx context.Context, status Status) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID int64, newStatus Status) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

// Create inserts the order header and its item rows in one transaction, so a
// failed item batch never leaves an orphaned header behind.
func (r *postgresRepository) Create(ctx context.Context, o *Order) (orderID int64, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				log.Error().Err(rbErr).Msg("repository: failed to rollback order transaction")
			}
		}
	}()

	createdAt := time.Now().UTC()

	queryOrder := `
		INSERT INTO orders (user_id, total, status, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err = tx.QueryRow(ctx, queryOrder, o.UserID, o.Total, string(o.Status), createdAt).Scan(&orderID)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to insert order: %w", err)
	}

	queryItem := `
		INSERT INTO order_items (order_id, product_id, qty, price)
		VALUES ($1, $2, $3, $4)
	`

	batch := &pgx.Batch{}
	for _, item := range o.Items {
		batch.Queue(queryItem, orderID, item.ProductID, item.Quantity, item.UnitPrice)
	}

	results := tx.SendBatch(ctx, batch)
	for range o.Items {
		if _, execErr := results.Exec(); execErr != nil {
			_ = results.Close()
			err = fmt.Errorf("repository: failed to insert order items for order %d: %w", orderID, execErr)
			return 0, err
		}
	}
	if err = results.Close(); err != nil {
		return 0, fmt.Errorf("repository: failed to close item batch for order %d: %w", orderID, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("repository: failed to commit order transaction: %w", err)
	}

	o.ID = orderID
	o.CreatedAt = createdAt

	return orderID, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, orderID int64) (*Order, error) {
	queryOrder := `
		SELECT id, user_id, total, status, created_at
		FROM orders
		WHERE id = $1
	`

	var o Order
	err := r.db.QueryRow(ctx, queryOrder, orderID).Scan(
		&o.ID,
		&o.UserID,
		&o.Total,
		&o.Status,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %d: %w", orderID, err)
	}

	items, err := r.loadItems(ctx, []int64{orderID})
	if err != nil {
		return nil, err
	}

	// An inconsistent store may hold a header with no items; callers still get
	// an empty slice, never nil.
	o.Items = items[orderID]
	if o.Items == nil {
		o.Items = make([]OrderItem, 0)
	}

	return &o, nil
}

func (r *postgresRepository) GetByUserID(ctx context.Context, userID int64) ([]Order, error) {
	query := `
		SELECT id, user_id, total, status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return r.selectOrders(ctx, query, userID)
}

func (r *postgresRepository) GetByStatus(ctx context.Context, status Status) ([]Order, error) {
	query := `
		SELECT id, user_id, total, status, created_at
		FROM orders
		WHERE status = $1
		ORDER BY created_at DESC
	`
	return r.selectOrders(ctx, query, string(status))
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, orderID int64, newStatus Status) error {
	query := `
		UPDATE orders
		SET status = $1
		WHERE id = $2
	`

	cmdTag, err := r.db.Exec(ctx, query, string(newStatus), orderID)
	if err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Str("new_status", string(newStatus)).Msg("repository: failed to update order status")
		return fmt.Errorf("repository: failed to update status of order %d: %w", orderID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postgresRepository) selectOrders(ctx context.Context, query string, arg any) ([]Order, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	ordersMap := make(map[int64]*Order)
	var orderIDs []int64

	for rows.Next() {
		var o Order
		err := rows.Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		o.Items = make([]OrderItem, 0)
		ordersMap[o.ID] = &o
		orderIDs = append(orderIDs, o.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating orders: %w", err)
	}

	if len(orderIDs) == 0 {
		return []Order{}, nil
	}

	itemsByOrder, err := r.loadItems(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	result := make([]Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		o := ordersMap[id]
		if items, ok := itemsByOrder[id]; ok {
			o.Items = items
		}
		result = append(result, *o)
	}

	return result, nil
}

// loadItems fetches line items for a set of orders with the catalog join for
// display metadata. The join is LEFT so a removed product does not hide a line.
func (r *postgresRepository) loadItems(ctx context.Context, orderIDs []int64) (map[int64][]OrderItem, error) {
	query := `
		SELECT oi.order_id, oi.product_id, oi.qty, oi.price,
		       COALESCE(p.name, ''), COALESCE(p.image, '')
		FROM order_items oi
		LEFT JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = ANY($1)
	`

	rows, err := r.db.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer rows.Close()

	itemsByOrder := make(map[int64][]OrderItem)
	for rows.Next() {
		var orderID int64
		var item OrderItem
		err := rows.Scan(&orderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.ProductName, &item.ProductImage)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		itemsByOrder[orderID] = append(itemsByOrder[orderID], item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating order items: %w", err)
	}

	return itemsByOrder, nil
}
