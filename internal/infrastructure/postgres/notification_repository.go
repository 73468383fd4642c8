package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/egovle/sevasetu/internal/domain/notification"
)

// NotificationRepository implements notification.Repository.
type NotificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO notifications (notification_id, user_id, title, body, link, status, last_error, created_at, sent_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id
	`, n.NotificationID, n.UserID, n.Title, n.Body, n.Link, n.Status, n.LastError, n.CreatedAt, n.SentAt).
		Scan(&n.ID)
}

func (r *NotificationRepository) Update(ctx context.Context, n *notification.Notification) error {
	_, err := r.db.Exec(ctx, `
		UPDATE notifications SET status=$1, last_error=$2, sent_at=$3 WHERE notification_id=$4
	`, n.Status, n.LastError, n.SentAt, n.NotificationID)
	return err
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*notification.Notification, error) {
	query := `
		SELECT id, notification_id, user_id, title, body, link, status, last_error, created_at, sent_at
		FROM notifications WHERE user_id=$1
		ORDER BY created_at DESC, id DESC`
	args := []interface{}{userID}
	if limit > 0 {
		args = append(args, limit)
		query += " LIMIT $" + itoa(len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += " OFFSET $" + itoa(len(args))
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var notifications []*notification.Notification
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(&n.ID, &n.NotificationID, &n.UserID, &n.Title, &n.Body, &n.Link,
			&n.Status, &n.LastError, &n.CreatedAt, &n.SentAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}
