package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"shop-telegram/db"
	"shop-telegram/models"
)

// Catalog resolves product identifiers to current catalog snapshots. A
// requested id absent from the ResolveByIDs result (or a nil GetByID result)
// is the sole signal that the product does not exist.
type Catalog interface {
	ResolveByIDs(ctx context.Context, ids []string) (map[string]*models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

// PostgresCatalog reads the products table.
type PostgresCatalog struct{}

func NewPostgresCatalog() *PostgresCatalog {
	return &PostgresCatalog{}
}

func (c *PostgresCatalog) ResolveByIDs(ctx context.Context, ids []string) (map[string]*models.Product, error) {
	if len(ids) == 0 {
		return map[string]*models.Product{}, nil
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT id::text, name, slug, price_current::text, COALESCE(price_old::text, ''), images, is_active, created_at
		FROM products WHERE id = ANY($1::uuid[])`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}
	defer rows.Close()

	products := make(map[string]*models.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products[p.ID] = p
	}
	return products, rows.Err()
}

func (c *PostgresCatalog) GetByID(ctx context.Context, id string) (*models.Product, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id::text, name, slug, price_current::text, COALESCE(price_old::text, ''), images, is_active, created_at
		FROM products WHERE id = $1`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanProduct(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (*models.Product, error) {
	var p models.Product
	var current, old string
	var imagesJSON []byte
	if err := row.Scan(&p.ID, &p.Name, &p.Slug, &current, &old, &imagesJSON, &p.IsActive, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	cur, err := decimal.NewFromString(current)
	if err != nil {
		return nil, fmt.Errorf("parse product price: %w", err)
	}
	p.Price.Current = cur
	if old != "" {
		o, err := decimal.NewFromString(old)
		if err != nil {
			return nil, fmt.Errorf("parse product old price: %w", err)
		}
		p.Price.Old = &o
	}
	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &p.Images); err != nil {
			return nil, fmt.Errorf("unmarshal product images: %w", err)
		}
	}
	return &p, nil
}
