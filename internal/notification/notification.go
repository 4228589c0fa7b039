package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("notification not found")

type Notification struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Type      string    `json:"type" db:"type"`
	Message   string    `json:"message" db:"message"`
	IsRead    bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Repository interface {
	GetByUserID(ctx context.Context, userID int64, limit int) ([]Notification, error)
	Create(ctx context.Context, userID int64, ntype, message string) (int64, error)
	MarkAsRead(ctx context.Context, userID, notificationID int64) error
	MarkAllAsRead(ctx context.Context, userID int64) (int64, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, userID, notificationID int64) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]Notification, error) {
	query := `
		SELECT id, user_id, type, message, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query notifications for user %d: %w", userID, err)
	}
	defer rows.Close()

	notifications := make([]Notification, 0)
	for rows.Next() {
		var n Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.IsRead, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating notifications: %w", err)
	}

	return notifications, nil
}

func (r *postgresRepository) Create(ctx context.Context, userID int64, ntype, message string) (int64, error) {
	query := `
		INSERT INTO notifications (user_id, type, message, is_read, created_at)
		VALUES ($1, $2, $3, false, $4)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query, userID, ntype, message, time.Now().UTC()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to insert notification: %w", err)
	}

	return id, nil
}

func (r *postgresRepository) MarkAsRead(ctx context.Context, userID, notificationID int64) error {
	query := `UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`

	cmdTag, err := r.db.Exec(ctx, query, notificationID, userID)
	if err != nil {
		return fmt.Errorf("repository: failed to mark notification %d as read: %w", notificationID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postgresRepository) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	query := `UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false`

	cmdTag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to mark notifications as read for user %d: %w", userID, err)
	}

	return cmdTag.RowsAffected(), nil
}

func (r *postgresRepository) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false`

	var count int64
	err := r.db.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to count unread notifications for user %d: %w", userID, err)
	}

	return count, nil
}

func (r *postgresRepository) Delete(ctx context.Context, userID, notificationID int64) error {
	query := `DELETE FROM notifications WHERE id = $1 AND user_id = $2`

	cmdTag, err := r.db.Exec(ctx, query, notificationID, userID)
	if err != nil {
		return fmt.Errorf("repository: failed to delete notification %d: %w", notificationID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
