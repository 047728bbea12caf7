package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct{ DB *pgxpool.Pool }

const productColumns = `id, name, price::text, category, emoji, description, status, created_at, updated_at`

// List returns products by category then name. activeOnly hides what the
// shop has switched off.
func (r *Repo) List(ctx context.Context, activeOnly bool) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE NOT $1 OR status = 'active'
		ORDER BY category, name`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("q.ListProducts: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Product, error) {
		return scanProduct(row)
	})
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, fmt.Errorf("q.GetProduct: %w", ErrNotFound)
		}
		return Product{}, fmt.Errorf("q.GetProduct: %w", err)
	}
	return p, nil
}

func (r *Repo) Create(ctx context.Context, in ProductInput) (Product, error) {
	if err := in.Normalize(); err != nil {
		return Product{}, err
	}

	p, err := scanProduct(r.DB.QueryRow(ctx, `
		INSERT INTO products(id, name, price, category, emoji, description, status)
		VALUES ($1, $2, $3::text::numeric, $4, $5, $6, $7)
		RETURNING `+productColumns,
		uuid.New(), in.Name, in.Price.String(), in.Category, in.Emoji, in.Description, string(in.Status)))
	if err != nil {
		return Product{}, fmt.Errorf("q.CreateProduct: %w", err)
	}
	return p, nil
}

func (r *Repo) Update(ctx context.Context, id uuid.UUID, in ProductInput) (Product, error) {
	if err := in.Normalize(); err != nil {
		return Product{}, err
	}

	p, err := scanProduct(r.DB.QueryRow(ctx, `
		UPDATE products
		SET name = $2, price = $3::text::numeric, category = $4, emoji = $5, description = $6,
		    status = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		id, in.Name, in.Price.String(), in.Category, in.Emoji, in.Description, string(in.Status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, fmt.Errorf("q.UpdateProduct: %w", ErrNotFound)
		}
		return Product{}, fmt.Errorf("q.UpdateProduct: %w", err)
	}
	return p, nil
}

// Delete removes the product. Past orders keep their own snapshot of it.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("q.DeleteProduct: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("q.DeleteProduct: %w", ErrNotFound)
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p             Product
		price, status string
	)

	if err := row.Scan(&p.ID, &p.Name, &price, &p.Category, &p.Emoji, &p.Description, &status,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return p, err
	}

	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return p, fmt.Errorf("price[%s] is not valid: %w", price, err)
	}
	p.Status = Status(status)

	return p, nil
}
