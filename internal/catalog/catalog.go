// Package catalog is the read-only boundary to the product catalog.
// Price and MRP read here are authoritative at the instant of checkout.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProductNotFound = errors.New("product not found")

type Product struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SellerID  string `json:"seller_id"`
	UnitPrice int64  `json:"unit_price"`
	UnitMrp   int64  `json:"unit_mrp"`
}

type Catalog struct{ DB *pgxpool.Pool }

func (c *Catalog) Get(ctx context.Context, productID string) (*Product, error) {
	var p Product
	err := c.DB.QueryRow(ctx, `
		SELECT id, name, seller_id, unit_price, unit_mrp
		FROM products WHERE id=$1`, productID).
		Scan(&p.ID, &p.Name, &p.SellerID, &p.UnitPrice, &p.UnitMrp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", productID, ErrProductNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PricingTx fetches current pricing for a set of products inside the
// checkout transaction, keyed by product id. Missing products are
// simply absent from the map.
func (c *Catalog) PricingTx(ctx context.Context, tx pgx.Tx, productIDs []string) (map[string]Product, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, name, seller_id, unit_price, unit_mrp
		FROM products WHERE id = ANY($1)`, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]Product, len(productIDs))
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SellerID, &p.UnitPrice, &p.UnitMrp); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (c *Catalog) List(ctx context.Context) ([]Product, error) {
	rows, err := c.DB.Query(ctx, `
		SELECT id, name, seller_id, unit_price, unit_mrp
		FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SellerID, &p.UnitPrice, &p.UnitMrp); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
