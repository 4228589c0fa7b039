package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("payment method not found")

// Repository owns the per-user default-flag invariant: after every mutation at
// most one of a user's methods has is_default = true. Each multi-statement
// sequence runs in a single transaction so no reader observes zero or two
// defaults mid-operation.
type Repository interface {
	Create(ctx context.Context, m *Method) (int64, error)
	GetByID(ctx context.Context, userID, methodID int64) (*Method, error)
	GetByUserID(ctx context.Context, userID int64) ([]Method, error)
	Update(ctx context.Context, m *Method) error
	Delete(ctx context.Context, userID, methodID int64) error
	SetDefault(ctx context.Context, userID, methodID int64) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const selectColumns = `id, user_id, card_type, card_number, card_holder_name,
	expiry_month, expiry_year, is_default, billing_address, created_at`

func (r *postgresRepository) Create(ctx context.Context, m *Method) (methodID int64, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err)

	if m.IsDefault {
		if err = resetDefaults(ctx, tx, m.UserID); err != nil {
			return 0, err
		}
	} else {
		// The very first method a user adds becomes default regardless of intent.
		var count int
		err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM payment_methods WHERE user_id = $1`, m.UserID).Scan(&count)
		if err != nil {
			return 0, fmt.Errorf("repository: failed to count payment methods for user %d: %w", m.UserID, err)
		}
		if count == 0 {
			m.IsDefault = true
		}
	}

	createdAt := time.Now().UTC()

	query := `
		INSERT INTO payment_methods (user_id, card_type, card_number, card_holder_name,
			expiry_month, expiry_year, is_default, billing_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err = tx.QueryRow(ctx, query,
		m.UserID,
		m.CardType,
		m.CardNumber,
		m.CardHolderName,
		m.ExpiryMonth,
		m.ExpiryYear,
		m.IsDefault,
		m.BillingAddress,
		createdAt,
	).Scan(&methodID)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to insert payment method: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("repository: failed to commit payment method insert: %w", err)
	}

	m.ID = methodID
	m.CreatedAt = createdAt

	return methodID, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, userID, methodID int64) (*Method, error) {
	query := `SELECT ` + selectColumns + `
		FROM payment_methods
		WHERE id = $1 AND user_id = $2`

	m, err := scanMethod(r.db.QueryRow(ctx, query, methodID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select payment method %d: %w", methodID, err)
	}

	return m, nil
}

func (r *postgresRepository) GetByUserID(ctx context.Context, userID int64) ([]Method, error) {
	query := `SELECT ` + selectColumns + `
		FROM payment_methods
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query payment methods for user %d: %w", userID, err)
	}
	defer rows.Close()

	methods := make([]Method, 0)
	for rows.Next() {
		m, err := scanMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan payment method: %w", err)
		}
		methods = append(methods, *m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating payment methods: %w", err)
	}

	return methods, nil
}

// Update overwrites the mutable columns of a method the user owns. The caller
// (service) is responsible for merging partial input with the stored row first.
func (r *postgresRepository) Update(ctx context.Context, m *Method) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err)

	if m.IsDefault {
		query := `UPDATE payment_methods SET is_default = false WHERE user_id = $1 AND id <> $2`
		if _, err = tx.Exec(ctx, query, m.UserID, m.ID); err != nil {
			return fmt.Errorf("repository: failed to reset default payment methods for user %d: %w", m.UserID, err)
		}
	}

	query := `
		UPDATE payment_methods
		SET card_type = $1,
		    card_holder_name = $2,
		    expiry_month = $3,
		    expiry_year = $4,
		    is_default = $5,
		    billing_address = $6
		WHERE id = $7 AND user_id = $8
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.CardType,
		m.CardHolderName,
		m.ExpiryMonth,
		m.ExpiryYear,
		m.IsDefault,
		m.BillingAddress,
		m.ID,
		m.UserID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update payment method %d: %w", m.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		err = ErrNotFound
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository: failed to commit payment method update: %w", err)
	}

	return nil
}

// Delete removes the method and, when it was the default, promotes the most
// recently created remaining method so the user keeps exactly one default.
func (r *postgresRepository) Delete(ctx context.Context, userID, methodID int64) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err)

	var wasDefault bool
	query := `DELETE FROM payment_methods WHERE id = $1 AND user_id = $2 RETURNING is_default`
	err = tx.QueryRow(ctx, query, methodID, userID).Scan(&wasDefault)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotFound
			return err
		}
		return fmt.Errorf("repository: failed to delete payment method %d: %w", methodID, err)
	}

	if wasDefault {
		promote := `
			UPDATE payment_methods
			SET is_default = true
			WHERE id = (
				SELECT id FROM payment_methods
				WHERE user_id = $1
				ORDER BY created_at DESC, id DESC
				LIMIT 1
			)
		`
		if _, err = tx.Exec(ctx, promote, userID); err != nil {
			return fmt.Errorf("repository: failed to promote replacement default for user %d: %w", userID, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository: failed to commit payment method delete: %w", err)
	}

	return nil
}

// SetDefault clears every default flag for the user and sets the target.
// Idempotent: repeating the call leaves the same single default in place.
func (r *postgresRepository) SetDefault(ctx context.Context, userID, methodID int64) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err)

	if err = resetDefaults(ctx, tx, userID); err != nil {
		return err
	}

	query := `UPDATE payment_methods SET is_default = true WHERE id = $1 AND user_id = $2`
	cmdTag, err := tx.Exec(ctx, query, methodID, userID)
	if err != nil {
		return fmt.Errorf("repository: failed to set default payment method %d: %w", methodID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Rolls back the reset above, so a bad id leaves the old default intact.
		err = ErrNotFound
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository: failed to commit set default: %w", err)
	}

	return nil
}

func resetDefaults(ctx context.Context, tx pgx.Tx, userID int64) error {
	_, err := tx.Exec(ctx, `UPDATE payment_methods SET is_default = false WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("repository: failed to reset default payment methods for user %d: %w", userID, err)
	}
	return nil
}

func rollbackOnError(ctx context.Context, tx pgx.Tx, err *error) {
	if *err == nil {
		return
	}
	if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
		log.Error().Err(rbErr).Msg("repository: failed to rollback payment method transaction")
	}
}

func scanMethod(row pgx.Row) (*Method, error) {
	var m Method
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.CardType,
		&m.CardNumber,
		&m.CardHolderName,
		&m.ExpiryMonth,
		&m.ExpiryYear,
		&m.IsDefault,
		&m.BillingAddress,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
