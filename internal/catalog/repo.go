package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

type Repo struct{ DB *pgxpool.Pool }

const productColumns = `id, sku, title, price::text, price_original::text, currency, images, stock, created_at, updated_at`

func (r *Repo) Get(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("query product: %w", err)
	}
	return p, nil
}

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Upsert is used by seeding and tests; the storefront never writes products.
func (r *Repo) Upsert(ctx context.Context, p Product) error {
	var original *string
	if p.Price.Original != nil {
		s := p.Price.Original.String()
		original = &s
	}
	images := p.Images
	if images == nil {
		images = []string{}
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products(id, sku, title, price, price_original, currency, images, stock)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			sku=EXCLUDED.sku, title=EXCLUDED.title, price=EXCLUDED.price,
			price_original=EXCLUDED.price_original, currency=EXCLUDED.currency,
			images=EXCLUDED.images, stock=EXCLUDED.stock, updated_at=NOW()`,
		p.ID, p.SKU, p.Title, p.Price.Current.String(), original, p.Price.Currency, images, p.Stock)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	var price string
	var original *string
	if err := row.Scan(&p.ID, &p.SKU, &p.Title, &price, &original, &p.Price.Currency,
		&p.Images, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Product{}, err
	}
	cur, err := decimal.NewFromString(price)
	if err != nil {
		return Product{}, fmt.Errorf("parse price %q: %w", price, err)
	}
	p.Price.Current = cur
	if original != nil {
		o, err := decimal.NewFromString(*original)
		if err != nil {
			return Product{}, fmt.Errorf("parse original price %q: %w", *original, err)
		}
		p.Price.Original = &o
	}
	return p, nil
}
