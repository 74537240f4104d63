package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"adspace-backend/internal/domain"
	"adspace-backend/internal/logger"
)

type notificationRepository struct {
	q dbtx
}

const notificationColumns = `id, user_id, title, body, link, dedupe_key, is_read, created_on`

// Create inserts the notification. When a dedupe key is set, a duplicate key
// suppresses the insert and Create reports false. The notifier, not the
// caller, owns duplicate suppression.
func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) (bool, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedOn = time.Now()

	query := `INSERT INTO notifications (id, user_id, title, body, link, dedupe_key, is_read, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if n.DedupeKey != nil {
		query += ` ON CONFLICT (dedupe_key) DO NOTHING`
	}
	logger.DatabaseCall("INSERT", "notifications", "userID", n.UserID, "title", n.Title)

	res, err := r.q.ExecContext(ctx, query, n.ID, n.UserID, n.Title, n.Body, n.Link, n.DedupeKey, n.IsRead, n.CreatedOn)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err, "userID", n.UserID)
		return false, err
	}
	rows, err := res.RowsAffected()
	logger.DatabaseResult("INSERT", rows, err, "notificationID", n.ID)
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *notificationRepository) List(ctx context.Context, userID string, limit, offset int32) ([]domain.Notification, int32, error) {
	var count int32
	countQuery := `SELECT count(*) FROM notifications WHERE user_id = $1`
	if err := r.q.QueryRowContext(ctx, countQuery, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications
	          WHERE user_id = $1 ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.Link, &n.DedupeKey, &n.IsRead, &n.CreatedOn); err != nil {
			return nil, 0, err
		}
		notes = append(notes, n)
	}
	return notes, count, rows.Err()
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID string) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`
	_, err := r.q.ExecContext(ctx, query, id, userID)
	return err
}
