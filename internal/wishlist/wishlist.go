package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("wishlist item not found")

// Item is a wishlist row enriched with catalog display fields.
type Item struct {
	ID        int64           `json:"id" db:"id"`
	UserID    int64           `json:"user_id" db:"user_id"`
	ProductID int64           `json:"product_id" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Image     string          `json:"image,omitempty" db:"image"`
	InStock   bool            `json:"in_stock" db:"in_stock"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

type Repository interface {
	GetByUserID(ctx context.Context, userID int64) ([]Item, error)
	Add(ctx context.Context, userID, productID int64) error
	Remove(ctx context.Context, userID, productID int64) error
	Contains(ctx context.Context, userID, productID int64) (bool, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetByUserID(ctx context.Context, userID int64) ([]Item, error) {
	query := `
		SELECT w.id, w.user_id, w.product_id, p.name, p.price,
		       COALESCE(p.image, ''), p.in_stock, w.created_at
		FROM wishlist w
		JOIN products p ON w.product_id = p.id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query wishlist for user %d: %w", userID, err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var item Item
		err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Name,
			&item.Price, &item.Image, &item.InStock, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan wishlist item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating wishlist items: %w", err)
	}

	return items, nil
}

// Add is a no-op when the product is already wishlisted.
func (r *postgresRepository) Add(ctx context.Context, userID, productID int64) error {
	query := `
		INSERT INTO wishlist (user_id, product_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`

	_, err := r.db.Exec(ctx, query, userID, productID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("repository: failed to add product %d to wishlist: %w", productID, err)
	}

	return nil
}

func (r *postgresRepository) Remove(ctx context.Context, userID, productID int64) error {
	query := `DELETE FROM wishlist WHERE user_id = $1 AND product_id = $2`

	cmdTag, err := r.db.Exec(ctx, query, userID, productID)
	if err != nil {
		return fmt.Errorf("repository: failed to remove product %d from wishlist: %w", productID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postgresRepository) Contains(ctx context.Context, userID, productID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM wishlist WHERE user_id = $1 AND product_id = $2)`

	var exists bool
	err := r.db.QueryRow(ctx, query, userID, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repository: failed to check wishlist for product %d: %w", productID, err)
	}

	return exists, nil
}
