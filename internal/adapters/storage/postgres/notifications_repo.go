package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"vet-clinic-api/internal/domain/notifications"
)

// NotificationsRepo usa el BIGSERIAL de la tabla como id: eso garantiza
// ids estrictamente crecientes para el watermark del stream.
type NotificationsRepo struct {
	db *sql.DB
}

func NewNotificationsRepo(db *sql.DB) *NotificationsRepo {
	return &NotificationsRepo{db: db}
}

func (r *NotificationsRepo) Create(ctx context.Context, n notifications.Notification) (int64, error) {
	payload, err := marshalPayload(n.Payload)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO notifications (user_id, type, title, message, priority, payload, is_read, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id
	`,
		n.UserID, n.Type, n.Title, n.Message, n.Priority, payload, n.Read, n.CreatedAt,
	).Scan(&id)
	return id, err
}

const notifCols = `id, user_id, type, title, message, priority, payload, is_read, created_at`

func (r *NotificationsRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]notifications.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+notifCols+`
		FROM notifications
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3
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
		WHERE user_id = $1 AND id > $2
		ORDER BY id ASC
		LIMIT $3
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
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false
	`, userID).Scan(&n)
	return n, err
}

func (r *NotificationsRepo) MarkRead(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2
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
		UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false
	`, userID)
	return err
}

func (r *NotificationsRepo) Delete(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM notifications WHERE id = $1 AND user_id = $2
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
		DELETE FROM notifications WHERE user_id = $1
	`, userID)
	return err
}

// GetPreferences devuelve solo los overrides guardados; los tipos sin
// fila se consideran habilitados.
func (r *NotificationsRepo) GetPreferences(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT type, enabled FROM notification_preferences WHERE user_id = $1
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

func (r *NotificationsRepo) SetPreference(ctx context.Context, userID, ntype string, enabled bool) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_preferences (user_id, type, enabled)
		VALUES ($1,$2,$3)
		ON CONFLICT (user_id, type) DO UPDATE SET enabled = EXCLUDED.enabled
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
