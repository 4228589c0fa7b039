package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidCardNumber = errors.New("invalid card number format")
	ErrInvalidExpiry     = errors.New("invalid or expired card date")
)

type Service interface {
	Create(ctx context.Context, m *Method) (int64, error)
	Get(ctx context.Context, userID, methodID int64) (*Method, error)
	List(ctx context.Context, userID int64) ([]Method, error)
	Update(ctx context.Context, userID, methodID int64, update MethodUpdate) error
	Delete(ctx context.Context, userID, methodID int64) error
	SetDefault(ctx context.Context, userID, methodID int64) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Create(ctx context.Context, m *Method) (int64, error) {
	if !ValidCardNumber(m.CardNumber) {
		return 0, ErrInvalidCardNumber
	}
	if !ValidExpiry(m.ExpiryMonth, m.ExpiryYear, s.now()) {
		return 0, ErrInvalidExpiry
	}

	methodID, err := s.repo.Create(ctx, m)
	if err != nil {
		log.Error().Err(err).Int64("user_id", m.UserID).Msg("service: failed to create payment method")
		return 0, fmt.Errorf("service: failed to create payment method: %w", err)
	}

	log.Info().Int64("payment_method_id", methodID).Int64("user_id", m.UserID).Bool("is_default", m.IsDefault).Msg("service: payment method added")
	return methodID, nil
}

func (s *service) Get(ctx context.Context, userID, methodID int64) (*Method, error) {
	m, err := s.repo.GetByID(ctx, userID, methodID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int64("payment_method_id", methodID).Msg("service: failed to fetch payment method")
		return nil, fmt.Errorf("service: failed to fetch payment method %d: %w", methodID, err)
	}

	return m, nil
}

func (s *service) List(ctx context.Context, userID int64) ([]Method, error) {
	methods, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("service: failed to list payment methods")
		return nil, fmt.Errorf("service: failed to list payment methods for user %d: %w", userID, err)
	}

	return methods, nil
}

// Update merges the partial input with the stored row, so omitted fields keep
// their previous values. The ownership check happens on the initial fetch.
func (s *service) Update(ctx context.Context, userID, methodID int64, update MethodUpdate) error {
	existing, err := s.repo.GetByID(ctx, userID, methodID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Int64("payment_method_id", methodID).Msg("service: failed to fetch payment method for update")
		return fmt.Errorf("service: failed to fetch payment method %d: %w", methodID, err)
	}

	if update.CardType != nil {
		existing.CardType = *update.CardType
	}
	if update.CardHolderName != nil {
		existing.CardHolderName = *update.CardHolderName
	}
	if update.ExpiryMonth != nil {
		existing.ExpiryMonth = *update.ExpiryMonth
	}
	if update.ExpiryYear != nil {
		existing.ExpiryYear = *update.ExpiryYear
	}
	if update.IsDefault != nil {
		existing.IsDefault = *update.IsDefault
	}
	if update.BillingAddress != nil {
		existing.BillingAddress = *update.BillingAddress
	}

	if !ValidExpiry(existing.ExpiryMonth, existing.ExpiryYear, s.now()) {
		return ErrInvalidExpiry
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Int64("payment_method_id", methodID).Msg("service: failed to update payment method")
		return fmt.Errorf("service: failed to update payment method %d: %w", methodID, err)
	}

	return nil
}

func (s *service) Delete(ctx context.Context, userID, methodID int64) error {
	err := s.repo.Delete(ctx, userID, methodID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Int64("payment_method_id", methodID).Msg("service: failed to delete payment method")
		return fmt.Errorf("service: failed to delete payment method %d: %w", methodID, err)
	}

	log.Info().Int64("payment_method_id", methodID).Int64("user_id", userID).Msg("service: payment method deleted")
	return nil
}

func (s *service) SetDefault(ctx context.Context, userID, methodID int64) error {
	err := s.repo.SetDefault(ctx, userID, methodID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Int64("payment_method_id", methodID).Msg("service: failed to set default payment method")
		return fmt.Errorf("service: failed to set default payment method %d: %w", methodID, err)
	}

	return nil
}
