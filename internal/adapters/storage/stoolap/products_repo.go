package stoolap

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

const productCols = `
	id, name, description, price, stock, image_path, active, created_at, updated_at
`

func (r *ProductsRepo) Create(ctx context.Context, p products.Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (`+productCols+`)
		VALUES (?,?,?,?,?,?,?,?,?)
	`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.ImagePath, p.Active,
		p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *ProductsRepo) GetByID(ctx context.Context, id string) (products.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productCols+` FROM products WHERE id = ?`, id)

	var p products.Product
	if err := scanProduct(row.Scan, &p); err != nil {
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
			name = ?,
			description = ?,
			price = ?,
			stock = ?,
			image_path = ?,
			active = ?,
			updated_at = ?
		WHERE id = ?
	`,
		p.Name, p.Description, p.Price, p.Stock, p.ImagePath, p.Active, p.UpdatedAt,
		p.ID,
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
	return r.list(ctx, `WHERE active = ?`, true)
}

func (r *ProductsRepo) ListAll(ctx context.Context) ([]products.Product, error) {
	return r.list(ctx, ``)
}

func (r *ProductsRepo) list(ctx context.Context, where string, args ...any) ([]products.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productCols+` FROM products `+where+` ORDER BY name ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []products.Product
	for rows.Next() {
		var p products.Product
		if err := scanProduct(rows.Scan, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProduct(scan func(...any) error, p *products.Product) error {
	return scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImagePath, &p.Active,
		&p.CreatedAt, &p.UpdatedAt,
	)
}
