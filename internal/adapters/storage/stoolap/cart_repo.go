package stoolap

import (
	"context"
	"database/sql"
	"errors"

	"vet-clinic-api/internal/domain/cart"
)

type CartRepo struct {
	db *sql.DB
}

func NewCartRepo(db *sql.DB) *CartRepo {
	return &CartRepo{db: db}
}

const cartCols = `
	id, user_id, product_id, quantity, created_at, updated_at
`

// La unicidad (user_id, product_id) la garantiza el servicio con un
// Get previo; el motor no soporta constraints compuestos.
func (r *CartRepo) Get(ctx context.Context, userID, productID string) (cart.Item, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+cartCols+` FROM cart_items WHERE user_id = ? AND product_id = ?
	`, userID, productID)

	var it cart.Item
	if err := row.Scan(&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cart.Item{}, cart.ErrNotFound
		}
		return cart.Item{}, err
	}
	return it, nil
}

func (r *CartRepo) Create(ctx context.Context, it cart.Item) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (`+cartCols+`)
		VALUES (?,?,?,?,?,?)
	`, it.ID, it.UserID, it.ProductID, it.Quantity, it.CreatedAt, it.UpdatedAt)
	return err
}

func (r *CartRepo) Update(ctx context.Context, it cart.Item) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cart_items SET quantity = ?, updated_at = ? WHERE id = ?
	`, it.Quantity, it.UpdatedAt, it.ID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return cart.ErrNotFound
	}
	return nil
}

func (r *CartRepo) Remove(ctx context.Context, userID, productID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items WHERE user_id = ? AND product_id = ?
	`, userID, productID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return cart.ErrNotFound
	}
	return nil
}

func (r *CartRepo) Clear(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID)
	return err
}

func (r *CartRepo) ListByUser(ctx context.Context, userID string) ([]cart.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+cartCols+` FROM cart_items WHERE user_id = ? ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []cart.Item
	for rows.Next() {
		var it cart.Item
		if err := rows.Scan(&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
