package stoolap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vet-clinic-api/internal/domain/orders"
)

type OrdersRepo struct {
	db *sql.DB
}

func NewOrdersRepo(db *sql.DB) *OrdersRepo {
	return &OrdersRepo{db: db}
}

// CreateWithItems corre todo en una transacción: orden, líneas, descuento
// de stock y (opcional) vaciado del carrito. La lectura de suficiencia la
// hace el service sin lock, así que el UPDATE condiciona stock >= n: si
// otra compra ganó la carrera, afecta 0 filas y toda la orden se revierte.
func (r *OrdersRepo) CreateWithItems(ctx context.Context, o orders.Order, items []orders.OrderItem, clearCartUserID string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, status, total, created_at, updated_at)
		VALUES (?,?,?,?,?,?)
	`, o.ID, o.UserID, o.Status, o.Total, o.CreatedAt, o.UpdatedAt); err != nil {
		return err
	}

	for _, it := range items {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, unit_price, quantity)
			VALUES (?,?,?,?,?,?)
		`, it.ID, it.OrderID, it.ProductID, it.ProductName, it.UnitPrice, it.Quantity); err != nil {
			return err
		}

		var res sql.Result
		res, err = tx.ExecContext(ctx, `
			UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?
		`, it.Quantity, it.ProductID, it.Quantity)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			// producto desaparecido o stock insuficiente: misma salida
			err = fmt.Errorf("product %s: %w", it.ProductID, orders.ErrInsufficientStock)
			return err
		}
	}

	if clearCartUserID != "" {
		if _, err = tx.ExecContext(ctx, `
			DELETE FROM cart_items WHERE user_id = ?
		`, clearCartUserID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

const orderCols = `id, user_id, status, total, created_at, updated_at`

func (r *OrdersRepo) GetByID(ctx context.Context, id string) (orders.Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderCols+` FROM orders WHERE id = ?
	`, id)

	var o orders.Order
	if err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return orders.Order{}, orders.ErrNotFound
		}
		return orders.Order{}, err
	}
	return o, nil
}

func (r *OrdersRepo) ItemsByOrder(ctx context.Context, orderID string) ([]orders.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, unit_price, quantity
		FROM order_items
		WHERE order_id = ?
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []orders.OrderItem
	for rows.Next() {
		var it orders.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *OrdersRepo) UpdateStatus(ctx context.Context, id string, status orders.Status) error {
	// El motor no tiene NOW(); el timestamp va como parámetro.
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = ?, updated_at = ? WHERE id = ?
	`, status, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return orders.ErrNotFound
	}
	return nil
}

func (r *OrdersRepo) ListByUser(ctx context.Context, userID string) ([]orders.Order, error) {
	return r.list(ctx, `WHERE user_id = ?`, userID)
}

func (r *OrdersRepo) ListAll(ctx context.Context) ([]orders.Order, error) {
	return r.list(ctx, ``)
}

func (r *OrdersRepo) list(ctx context.Context, where string, args ...any) ([]orders.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderCols+` FROM orders `+where+` ORDER BY created_at DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []orders.Order
	for rows.Next() {
		var o orders.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
