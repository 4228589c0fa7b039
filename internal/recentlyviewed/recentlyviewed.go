package recentlyviewed

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DefaultLimit caps the listing when the caller does not ask for a size.
const DefaultLimit = 10

// View is a recently-viewed row joined with catalog display fields.
type View struct {
	ID        int64           `json:"id" db:"id"`
	UserID    int64           `json:"user_id" db:"user_id"`
	ProductID int64           `json:"product_id" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Image     string          `json:"image,omitempty" db:"image"`
	ViewedAt  time.Time       `json:"viewed_at" db:"viewed_at"`
}

type Repository interface {
	GetByUserID(ctx context.Context, userID int64, limit int) ([]View, error)
	Record(ctx context.Context, userID, productID int64) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]View, error) {
	query := `
		SELECT rv.id, rv.user_id, rv.product_id, p.name, p.price,
		       COALESCE(p.image, ''), rv.viewed_at
		FROM recently_viewed rv
		JOIN products p ON rv.product_id = p.id
		WHERE rv.user_id = $1
		ORDER BY rv.viewed_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query recently viewed for user %d: %w", userID, err)
	}
	defer rows.Close()

	views := make([]View, 0)
	for rows.Next() {
		var v View
		err := rows.Scan(&v.ID, &v.UserID, &v.ProductID, &v.Name, &v.Price, &v.Image, &v.ViewedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan recently viewed row: %w", err)
		}
		views = append(views, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating recently viewed rows: %w", err)
	}

	return views, nil
}

// Record upserts the view: a repeat view only bumps viewed_at.
func (r *postgresRepository) Record(ctx context.Context, userID, productID int64) error {
	query := `
		INSERT INTO recently_viewed (user_id, product_id, viewed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO UPDATE SET viewed_at = EXCLUDED.viewed_at
	`

	_, err := r.db.Exec(ctx, query, userID, productID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("repository: failed to record view of product %d: %w", productID, err)
	}

	return nil
}
