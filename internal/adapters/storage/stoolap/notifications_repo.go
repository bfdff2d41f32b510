package stoolap

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync/atomic"

	"vet-clinic-api/internal/domain/notifications"
)

// NotificationsRepo asigna los ids él mismo con un contador atómico
// sembrado desde MAX(id) al abrir: el watermark del stream necesita ids
// estrictamente crecientes y el autoincremento del motor no lo garantiza
// cuando el id se omite.
type NotificationsRepo struct {
	db     *sql.DB
	lastID atomic.Int64
}

func NewNotificationsRepo(db *sql.DB) (*NotificationsRepo, error) {
	r := &NotificationsRepo{db: db}

	var max sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(id) FROM notifications`).Scan(&max); err == nil && max.Valid {
		r.lastID.Store(max.Int64)
	}
	return r, nil
}

func (r *NotificationsRepo) Create(ctx context.Context, n notifications.Notification) (int64, error) {
	payload, err := marshalPayload(n.Payload)
	if err != nil {
		return 0, err
	}

	id := r.lastID.Add(1)
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, priority, payload, is_read, created_at)
		VALUES (?,?,?,?,?,?,?,?,?)
	`,
		id, n.UserID, n.Type, n.Title, n.Message, n.Priority, payload, n.Read, n.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return id, nil
}

const notifCols = `id, user_id, type, title, message, priority, payload, is_read, created_at`

func (r *NotificationsRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]notifications.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+notifCols+`
		FROM notifications
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func (r *NotificationsRepo) ListAfter(ctx context.Context, userID string, afterID int64, limit int) ([]notifications.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+notifCols+`
		FROM notifications
		WHERE user_id = ? AND id > ?
		ORDER BY id ASC
		LIMIT ?
	`, userID, afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func (r *NotificationsRepo) UnreadCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = false
	`, userID).Scan(&n)
	return n, err
}

func (r *NotificationsRepo) MarkRead(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = true WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return notifications.ErrNotFound
	}
	return nil
}

func (r *NotificationsRepo) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = true WHERE user_id = ? AND is_read = false
	`, userID)
	return err
}

func (r *NotificationsRepo) Delete(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM notifications WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return notifications.ErrNotFound
	}
	return nil
}

func (r *NotificationsRepo) DeleteAll(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM notifications WHERE user_id = ?
	`, userID)
	return err
}

func (r *NotificationsRepo) GetPreferences(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT type, enabled FROM notification_preferences WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var (
			t       string
			enabled bool
		)
		if err := rows.Scan(&t, &enabled); err != nil {
			return nil, err
		}
		out[t] = enabled
	}
	return out, rows.Err()
}

// SetPreference hace update-then-insert: el motor no tiene ON CONFLICT.
func (r *NotificationsRepo) SetPreference(ctx context.Context, userID, ntype string, enabled bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notification_preferences SET enabled = ? WHERE user_id = ? AND type = ?
	`, enabled, userID, ntype)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO notification_preferences (user_id, type, enabled) VALUES (?,?,?)
	`, userID, ntype, enabled)
	return err
}

func scanNotifications(rows *sql.Rows) ([]notifications.Notification, error) {
	var out []notifications.Notification
	for rows.Next() {
		var (
			n       notifications.Notification
			payload sql.NullString
		)
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
			&n.Priority, &payload, &n.Read, &n.CreatedAt,
		); err != nil {
			return nil, err
		}
		if payload.Valid && payload.String != "" {
			_ = json.Unmarshal([]byte(payload.String), &n.Payload)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func marshalPayload(p map[string]any) (sql.NullString, error) {
	if len(p) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
