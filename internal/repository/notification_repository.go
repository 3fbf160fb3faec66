package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/batchplan-api/internal/models"
)

// NotificationRepository persists announcements and their per-user read receipts.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create stores a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (id, title, message, audience, recipient_ids, created_by, created_at)
		VALUES (:id, :title, :message, :audience, :recipient_ids, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListForUser returns the newest notifications visible to a user: broadcasts to
// everyone or to the user's audience, plus those addressed to the user directly.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID string, audience models.NotificationAudience, limit int) ([]models.Notification, error) {
	const query = `
SELECT n.id, n.title, n.message, n.audience, n.recipient_ids, n.created_by, n.created_at,
	(nr.user_id IS NOT NULL) AS read
FROM notifications n
LEFT JOIN notification_reads nr ON nr.notification_id = n.id AND nr.user_id = $1
WHERE n.audience = 'all' OR n.audience = $2 OR $1 = ANY(n.recipient_ids)
ORDER BY n.created_at DESC
LIMIT $3`
	var items []models.Notification
	if err := r.db.SelectContext(ctx, &items, query, userID, string(audience), limit); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}

// MarkRead records that userID has read the notification. It reports false when
// the notification does not exist or is not visible to the user.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string, audience models.NotificationAudience) (bool, error) {
	const query = `
INSERT INTO notification_reads (notification_id, user_id, read_at)
SELECT n.id, $2, $4 FROM notifications n
WHERE n.id = $1 AND (n.audience = 'all' OR n.audience = $3 OR $2 = ANY(n.recipient_ids))
ON CONFLICT (notification_id, user_id) DO NOTHING
RETURNING notification_id`
	var marked string
	err := r.db.GetContext(ctx, &marked, query, id, userID, string(audience), time.Now().UTC())
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	// ON CONFLICT returns no row when the receipt already exists.
	const visible = `SELECT 1 FROM notification_reads WHERE notification_id = $1 AND user_id = $2`
	var one int
	if err := r.db.GetContext(ctx, &one, visible, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check notification read: %w", err)
	}
	return true, nil
}
