// Package stoolap es el adapter embebido por defecto: una sola base
// relacional en archivo (file://) o en memoria (memory://), que se crea
// sola y se auto-migra agregando las columnas que falten al abrir.
package stoolap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/stoolap/stoolap/pkg/driver"
)

var (
	ErrNotFound = errors.New("not found")
)

// schema define las tablas esperadas. Cada columna lleva su DDL completo
// para poder agregarla con ALTER TABLE si un archivo viejo no la tiene.
var schema = []struct {
	table   string
	columns [][2]string // nombre, DDL
}{
	{"users", [][2]string{
		{"id", "id TEXT PRIMARY KEY"},
		{"name", "name TEXT"},
		{"email", "email TEXT"},
		{"password_hash", "password_hash TEXT"},
		{"role", "role TEXT"},
		{"active", "active BOOLEAN"},
		{"email_verified", "email_verified BOOLEAN"},
		{"image_path", "image_path TEXT"},
		{"created_at", "created_at TIMESTAMP"},
		{"updated_at", "updated_at TIMESTAMP"},
	}},
	{"login_attempts", [][2]string{
		{"id", "id TEXT PRIMARY KEY"},
		{"email", "email TEXT"},
		{"ip", "ip TEXT"},
		{"user_agent", "user_agent TEXT"},
		{"success", "success BOOLEAN"},
		{"attempted_at", "attempted_at TIMESTAMP"},
		{"locked_until", "locked_until TIMESTAMP"},
	}},
	{"notifications", [][2]string{
		{"id", "id INTEGER PRIMARY KEY"},
		{"user_id", "user_id TEXT"},
		{"type", "type TEXT"},
		{"title", "title TEXT"},
		{"message", "message TEXT"},
		{"priority", "priority TEXT"},
		{"payload", "payload TEXT"},
		{"is_read", "is_read BOOLEAN"},
		{"created_at", "created_at TIMESTAMP"},
	}},
	{"notification_preferences", [][2]string{
		{"user_id", "user_id TEXT"},
		{"type", "type TEXT"},
		{"enabled", "enabled BOOLEAN"},
	}},
	{"pets", [][2]string{
		{"id", "id TEXT PRIMARY KEY"},
		{"owner_user_id", "owner_user_id TEXT"},
		{"name", "name TEXT"},
		{"species", "species TEXT"},
		{"breed", "breed TEXT"},
		{"sex", "sex TEXT"},
		{"birth_date", "birth_date TIMESTAMP"},
		{"weight_kg", "weight_kg FLOAT"},
		{"notes", "notes TEXT"},
		{"active", "active BOOLEAN"},
		{"created_at", "created_at TIMESTAMP"},
		{"updated_at", "updated_at TIMESTAMP"},
	}},
	{"services", [][2]string{
		{"id", "id TEXT PRIMARY KEY"},
		{"name", "name TEXT"},
		{"description", "description TEXT"},
		{"duration_min", "duration_min INTEGER"},
		{"price", "price FLOAT"},
		{"active", "active BOOLEAN"},
		{"created_at", "created_at TIMESTAMP"},
		{"updated_at", "updated_at TIMESTAMP"},
	}},
	{"appointments", [][2]string{
		{"id", "id TEXT PRIMARY KEY"},
		{"client_id", "client_id TEXT"},
		{"pet_id", "pet_id TEXT"},
		{"service_id", "service_id TEXT"},
		{"staff_id", "staff_id TEXT"},
		{"scheduled_at", "scheduled_at TIMESTAMP"},
		{"status", "status TEXT"},
		{"notes", "notes TEXT"},
		{"cancel_requested", "cancel_requested BOOLEAN"},
		{"cancel_reason", "cancel_reason TEXT"},
		{"created_at", "created_at TIMESTAMP"},
		{"updated_at", "updated_at TIMESTAMP"},
	}},
	{"medical_records", [][2]string{
		{"id", "id TEXT PRIMARY KEY"},
		{"appointment_id", "appointment_id TEXT"},
		{"pet_id", "pet_id TEXT"},
		{"client_id", "client_id TEXT"},
		{"staff_id", "staff_id TEXT"},
		{"diagnosis", "diagnosis TEXT"},
		{"treatment", "treatment TEXT"},
		{"medication", "medication TEXT"},
		{"follow_up", "follow_up TEXT"},
		{"created_at", "created_at TIMESTAMP"},
		{"updated_at", "updated_at TIMESTAMP"},
	}},
	{"products", [][2]string{
		{"id", "id TEXT PRIMARY KEY"},
		{"name", "name TEXT"},
		{"description", "description TEXT"},
		{"price", "price FLOAT"},
		{"stock", "stock INTEGER"},
		{"image_path", "image_path TEXT"},
		{"active", "active BOOLEAN"},
		{"created_at", "created_at TIMESTAMP"},
		{"updated_at", "updated_at TIMESTAMP"},
	}},
	{"cart_items", [][2]string{
		{"id", "id TEXT PRIMARY KEY"},
		{"user_id", "user_id TEXT"},
		{"product_id", "product_id TEXT"},
		{"quantity", "quantity INTEGER"},
		{"created_at", "created_at TIMESTAMP"},
		{"updated_at", "updated_at TIMESTAMP"},
	}},
	{"orders", [][2]string{
		{"id", "id TEXT PRIMARY KEY"},
		{"user_id", "user_id TEXT"},
		{"status", "status TEXT"},
		{"total", "total FLOAT"},
		{"created_at", "created_at TIMESTAMP"},
		{"updated_at", "updated_at TIMESTAMP"},
	}},
	{"order_items", [][2]string{
		{"id", "id TEXT PRIMARY KEY"},
		{"order_id", "order_id TEXT"},
		{"product_id", "product_id TEXT"},
		{"product_name", "product_name TEXT"},
		{"unit_price", "unit_price FLOAT"},
		{"quantity", "quantity INTEGER"},
	}},
}

// Open abre (o crea) la base. DSN: "memory://" o "file:///ruta/clinic.db".
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("stoolap", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ensureSchema crea las tablas que falten y agrega columnas nuevas a las
// existentes, para que un archivo de una versión vieja siga funcionando.
func ensureSchema(ctx context.Context, db *sql.DB) error {
	for _, t := range schema {
		ddl := ""
		for i, c := range t.columns {
			if i > 0 {
				ddl += ", "
			}
			ddl += c[1]
		}
		if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", t.table, ddl)); err != nil {
			return fmt.Errorf("create %s: %w", t.table, err)
		}

		for _, c := range t.columns {
			if columnExists(ctx, db, t.table, c[0]) {
				continue
			}
			if _, err := db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", t.table, c[1])); err != nil {
				return fmt.Errorf("add %s.%s: %w", t.table, c[0], err)
			}
		}
	}
	return nil
}

// columnExists sondea la columna con un SELECT barato: si el motor lo
// acepta, la columna está.
func columnExists(ctx context.Context, db *sql.DB, table, column string) bool {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM %s LIMIT 1", column, table))
	if err != nil {
		return false
	}
	_ = rows.Close()
	return true
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
