package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is one of the known order statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// OrderItem is a denormalized line of an order. UnitPrice is captured at order
// time and stays fixed even when the catalog price changes later. ProductName
// and ProductImage are display metadata joined in from the catalog on reads.
type OrderItem struct {
	ProductID    int64           `json:"product_id" db:"product_id"`
	Quantity     int32           `json:"qty" db:"qty"`
	UnitPrice    decimal.Decimal `json:"price" db:"price"`
	ProductName  string          `json:"name,omitempty" db:"name"`
	ProductImage string          `json:"image,omitempty" db:"image"`
}

type Order struct {
	ID        int64           `json:"id" db:"id"`
	UserID    int64           `json:"user_id" db:"user_id"`
	Total     decimal.Decimal `json:"total" db:"total"`
	Status    Status          `json:"status" db:"status"`
	Items     []OrderItem     `json:"items" db:"-"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
