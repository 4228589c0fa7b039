package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	// ErrAccessDenied signals the order exists but belongs to another user.
	ErrAccessDenied  = errors.New("access to order denied")
	ErrInvalidStatus = errors.New("invalid order status")
)

type Service interface {
	Create(ctx context.Context, userID int64, total decimal.Decimal, items []OrderItem) (int64, error)
	GetByID(ctx context.Context, callerID, orderID int64) (*Order, error)
	GetByUserID(ctx context.Context, userID int64) ([]Order, error)
	GetByStatus(ctx context.Context, status Status) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID int64, newStatus Status) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, userID int64, total decimal.Decimal, items []OrderItem) (int64, error) {
	if len(items) == 0 {
		return 0, errors.New("service: order must contain at least one item")
	}
	if !total.IsPositive() {
		return 0, errors.New("service: order total must be positive")
	}

	for _, item := range items {
		if item.ProductID <= 0 {
			return 0, errors.New("service: order item product id must be positive")
		}
		if item.Quantity <= 0 {
			return 0, fmt.Errorf("service: quantity for product %d must be positive", item.ProductID)
		}
		if !item.UnitPrice.IsPositive() {
			return 0, fmt.Errorf("service: unit price for product %d must be positive", item.ProductID)
		}
	}

	o := &Order{
		UserID: userID,
		Total:  total,
		Status: StatusPending,
		Items:  items,
	}

	orderID, err := s.repo.Create(ctx, o)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("service: failed to create order in repository")
		return 0, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().Int64("order_id", orderID).Int64("user_id", userID).Msg("service: order created")
	return orderID, nil
}

// GetByID returns the order only to its owner; a mismatch is an authorization
// failure, not a not-found.
func (s *service) GetByID(ctx context.Context, callerID, orderID int64) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int64("order_id", orderID).Msg("service: failed to fetch order by id")
		return nil, fmt.Errorf("service: failed to fetch order %d: %w", orderID, err)
	}

	if o.UserID != callerID {
		log.Warn().Int64("order_id", orderID).Int64("caller_id", callerID).Int64("owner_id", o.UserID).Msg("service: order access denied")
		return nil, ErrAccessDenied
	}

	return o, nil
}

func (s *service) GetByUserID(ctx context.Context, userID int64) ([]Order, error) {
	orders, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("service: failed to fetch user orders")
		return nil, fmt.Errorf("service: failed to fetch orders for user %d: %w", userID, err)
	}

	return orders, nil
}

func (s *service) GetByStatus(ctx context.Context, status Status) ([]Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	orders, err := s.repo.GetByStatus(ctx, status)
	if err != nil {
		log.Error().Err(err).Str("status", string(status)).Msg("service: failed to fetch orders by status")
		return nil, fmt.Errorf("service: failed to fetch orders with status %s: %w", status, err)
	}

	return orders, nil
}

// UpdateStatus overwrites the status after enum validation. Transitions are
// deliberately unrestricted; the enum check runs before any write.
func (s *service) UpdateStatus(ctx context.Context, orderID int64, newStatus Status) error {
	if !newStatus.Valid() {
		return ErrInvalidStatus
	}

	err := s.repo.UpdateStatus(ctx, orderID, newStatus)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Int64("order_id", orderID).Str("new_status", string(newStatus)).Msg("service: failed to update order status")
		return fmt.Errorf("service: failed to update status of order %d: %w", orderID, err)
	}

	log.Info().Int64("order_id", orderID).Str("new_status", string(newStatus)).Msg("service: order status updated")
	return nil
}
