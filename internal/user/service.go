package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/auth"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service interface {
	Register(ctx context.Context, u *User, password string) (*User, string, error)
	Login(ctx context.Context, email, password string) (*User, string, error)
	GetProfile(ctx context.Context, id int64) (*User, error)
	UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) (*User, error)
}

type service struct {
	repo   Repository
	tokens auth.TokenManager
}

func NewService(repo Repository, tokens auth.TokenManager) Service {
	return &service{repo: repo, tokens: tokens}
}

// Register creates an account and returns it together with a fresh bearer token.
func (s *service) Register(ctx context.Context, u *User, password string) (*User, string, error) {
	if password == "" {
		return nil, "", errors.New("service: password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to generate password hash")
		return nil, "", fmt.Errorf("service: failed to hash password: %w", err)
	}

	u.PasswordHash = string(hash)
	u.Role = auth.RoleCustomer

	if _, err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, "", ErrEmailExists
		}
		log.Error().Err(err).Msg("service: failed to create user in repository")
		return nil, "", fmt.Errorf("service: failed to save user: %w", err)
	}

	token, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		log.Error().Err(err).Int64("user_id", u.ID).Msg("service: failed to issue token for new user")
		return nil, "", fmt.Errorf("service: failed to issue token: %w", err)
	}

	log.Info().Int64("user_id", u.ID).Msg("service: user registered")
	return u, token, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*User, string, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		log.Error().Err(err).Msg("service: failed to fetch user by email")
		return nil, "", fmt.Errorf("service: failed to fetch user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		log.Error().Err(err).Int64("user_id", u.ID).Msg("service: failed to issue token")
		return nil, "", fmt.Errorf("service: failed to issue token: %w", err)
	}

	return u, token, nil
}

func (s *service) GetProfile(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int64("user_id", id).Msg("service: failed to fetch user by id")
		return nil, fmt.Errorf("service: failed to fetch user by id %d: %w", id, err)
	}

	return u, nil
}

func (s *service) UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) (*User, error) {
	u, err := s.repo.UpdateProfile(ctx, id, update)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrEmailExists) {
			return nil, err
		}
		log.Error().Err(err).Int64("user_id", id).Msg("service: failed to update profile")
		return nil, fmt.Errorf("service: failed to update profile for user %d: %w", id, err)
	}

	return u, nil
}
