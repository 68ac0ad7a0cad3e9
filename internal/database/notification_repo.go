package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/assetledger/backend/internal/domain"
)

type NotificationRepo struct {
	db *sqlx.DB
}

func NewNotificationRepo(db *sqlx.DB) *NotificationRepo { return &NotificationRepo{db: db} }

type notificationRow struct {
	ID         string         `db:"id"`
	UserID     string         `db:"user_id"`
	Title      string         `db:"title"`
	Message    string         `db:"message"`
	EntityType string         `db:"entity_type"`
	EntityID   sql.NullString `db:"entity_id"`
	IsRead     bool           `db:"is_read"`
	CreatedAt  time.Time      `db:"created_at"`
}

func (r notificationRow) toDomain() (*domain.Notification, error) {
	id, err := domain.ParseID(r.ID)
	if err != nil {
		return nil, err
	}
	userID, err := domain.ParseID(r.UserID)
	if err != nil {
		return nil, err
	}
	n := &domain.Notification{
		ID:         id,
		UserID:     userID,
		Title:      r.Title,
		Message:    r.Message,
		EntityType: r.EntityType,
		IsRead:     r.IsRead,
		CreatedAt:  r.CreatedAt,
	}
	if r.EntityID.Valid {
		eid, err := domain.ParseID(r.EntityID.String)
		if err != nil {
			return nil, err
		}
		n.EntityID = &eid
	}
	return n, nil
}

func (r *NotificationRepo) CreateNotification(ctx context.Context, n *domain.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, title, message, entity_type, entity_id, is_read, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, n.ID, n.UserID, n.Title, n.Message, n.EntityType, n.EntityID, n.IsRead, n.CreatedAt)
	if err != nil {
		return translate("create_notification", "notification", err)
	}
	return nil
}

func (r *NotificationRepo) ListNotifications(ctx context.Context, userID domain.ID, limit, offset int) ([]*domain.Notification, error) {
	var rows []notificationRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, translate("list_notifications", "notification", err)
	}
	return rowsToNotifications(rows)
}

func (r *NotificationRepo) ListUnread(ctx context.Context, userID domain.ID) ([]*domain.Notification, error) {
	var rows []notificationRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM notifications WHERE user_id = $1 AND is_read = FALSE ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, translate("list_unread_notifications", "notification", err)
	}
	return rowsToNotifications(rows)
}

func rowsToNotifications(rows []notificationRow) ([]*domain.Notification, error) {
	out := make([]*domain.Notification, 0, len(rows))
	for _, row := range rows {
		n, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *NotificationRepo) CountUnread(ctx context.Context, userID domain.ID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return 0, translate("count_unread_notifications", "notification", err)
	}
	return count, nil
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id domain.ID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return translate("mark_notification_read", "notification", err)
	}
	return nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID domain.ID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return translate("mark_all_notifications_read", "notification", err)
	}
	return nil
}

func (r *NotificationRepo) DeleteNotification(ctx context.Context, id domain.ID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return translate("delete_notification", "notification", err)
	}
	return nil
}
