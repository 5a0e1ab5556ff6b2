package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatherhub/server/internal/domain/notifications"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ notifications.Repository = (*NotificationRepository)(nil)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

const notificationColumns = `id, user_id, title, message, type, read, created_at`

func (r *NotificationRepository) Create(ctx context.Context, params notifications.CreateParams) (notifications.Notification, error) {
	userID, err := uuid.Parse(params.UserID)
	if err != nil {
		return notifications.Notification{}, fmt.Errorf("invalid user id: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO notifications (user_id, title, message, type)
VALUES ($1, $2, $3, $4)
RETURNING `+notificationColumns,
		userID, params.Title, params.Message, params.Type)

	notification, err := scanNotification(row)
	if err != nil {
		return notifications.Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	return notification, nil
}

func (r *NotificationRepository) ListForUser(ctx context.Context, userID string, limit int) ([]notifications.Notification, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return []notifications.Notification{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+notificationColumns+`
  FROM notifications
 WHERE user_id = $1
 ORDER BY created_at DESC
 LIMIT $2`,
		id, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	items := make([]notifications.Notification, 0)
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		items = append(items, notification)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return items, nil
}

// MarkRead flips the read flag. Ownership is part of the lookup, so a
// notification belonging to someone else reads as not found. Marking an
// already-read notification succeeds.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) (notifications.Notification, error) {
	notificationID, err := uuid.Parse(id)
	if err != nil {
		return notifications.Notification{}, notifications.ErrNotFound
	}
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return notifications.Notification{}, notifications.ErrNotFound
	}

	row := r.pool.QueryRow(ctx, `
UPDATE notifications SET read = true
 WHERE id = $1 AND user_id = $2
RETURNING `+notificationColumns,
		notificationID, ownerID)

	notification, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notifications.Notification{}, notifications.ErrNotFound
		}
		return notifications.Notification{}, fmt.Errorf("mark notification read: %w", err)
	}
	return notification, nil
}

func scanNotification(row pgx.Row) (notifications.Notification, error) {
	var (
		notification notifications.Notification
		id           uuid.UUID
		userID       uuid.UUID
	)
	if err := row.Scan(&id, &userID, &notification.Title, &notification.Message, &notification.Type, &notification.Read, &notification.CreatedAt); err != nil {
		return notifications.Notification{}, err
	}
	notification.ID = id.String()
	notification.UserID = userID.String()
	return notification, nil
}
