package postgres

import (
	"context"
	"database/sql"
	"errors"

	"vet-clinic-api/internal/domain/products"
)

type ProductsRepo struct {
	db *sql.DB
}

func NewProductsRepo(db *sql.DB) *ProductsRepo {
	return &ProductsRepo{db: db}
}

const productCols = `id, name, description, price, stock, image_path, active, created_at, updated_at`

func (r *ProductsRepo) Create(ctx context.Context, p products.Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (`+productCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.ImagePath, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *ProductsRepo) GetByID(ctx context.Context, id string) (products.Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+productCols+`
		FROM products
		WHERE id = $1
	`, id)

	var p products.Product
	if err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImagePath, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return products.Product{}, products.ErrNotFound
		}
		return products.Product{}, err
	}
	return p, nil
}

func (r *ProductsRepo) Update(ctx context.Context, p products.Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET
			name = $2,
			description = $3,
			price = $4,
			stock = $5,
			image_path = $6,
			active = $7,
			updated_at = $8
		WHERE id = $1
	`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.ImagePath, p.Active, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return products.ErrNotFound
	}
	return nil
}

func (r *ProductsRepo) ListActive(ctx context.Context) ([]products.Product, error) {
	return r.list(ctx, true)
}

func (r *ProductsRepo) ListAll(ctx context.Context) ([]products.Product, error) {
	return r.list(ctx, false)
}

func (r *ProductsRepo) list(ctx context.Context, activeOnly bool) ([]products.Product, error) {
	q := `SELECT ` + productCols + ` FROM products`
	if activeOnly {
		q += ` WHERE active = true`
	}
	q += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []products.Product
	for rows.Next() {
		var p products.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImagePath, &p.Active, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
