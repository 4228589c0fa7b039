package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("email already exists")
)

// Репозиторий для работы с пользователями.
type Repository interface {
	Create(ctx context.Context, u *User) (int64, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) (*User, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, u *User) (int64, error) {
	query := `
		INSERT INTO users (full_name, email, password_hash, phone, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id
	`

	now := time.Now().UTC()

	var id int64
	err := r.db.QueryRow(ctx, query, u.FullName, u.Email, u.PasswordHash, u.Phone, u.Role, now).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, ErrEmailExists
		}
		return 0, fmt.Errorf("repository: failed to insert user: %w", err)
	}

	u.ID = id
	u.CreatedAt = now
	u.UpdatedAt = now

	return id, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT id, full_name, email, password_hash, phone, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	u, err := r.scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select user by id %d: %w", id, err)
	}

	return u, nil
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, full_name, email, password_hash, phone, role, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	u, err := r.scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select user by email %s: %w", email, err)
	}

	return u, nil
}

// UpdateProfile merges non-nil fields into the stored row and returns the result.
func (r *postgresRepository) UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) (*User, error) {
	query := `
		UPDATE users
		SET full_name = COALESCE($1, full_name),
		    email = COALESCE($2, email),
		    phone = COALESCE($3, phone),
		    updated_at = $4
		WHERE id = $5
		RETURNING id, full_name, email, password_hash, phone, role, created_at, updated_at
	`

	u, err := r.scanUser(r.db.QueryRow(ctx, query,
		update.FullName, update.Email, update.Phone, time.Now().UTC(), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("repository: failed to update user %d: %w", id, err)
	}

	return u, nil
}

func (r *postgresRepository) scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&u.PasswordHash,
		&u.Phone,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
