package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dagudeloc/almacen/internal/product"
)

// Store is the read-only Postgres view of the product master. Receptions
// never write back to it.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectProductColumns = `
	p.internal_sku, p.supplier_sku, p.description, p.stock, p.last_cost
`

// scanProduct reads a product row from the scanner. Numeric columns come
// back as text so they land in decimals without a float detour.
func scanProduct(s scanner) (*product.MasterProduct, error) {
	var p product.MasterProduct

	var stock string

	var lastCost sql.NullString

	if err := s.Scan(&p.InternalSKU, &p.SupplierSKU, &p.Description, &stock, &lastCost); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(stock)
	if err != nil {
		return nil, fmt.Errorf("parsing stock: %w", err)
	}

	p.Stock = parsed

	if lastCost.Valid {
		cost, err := decimal.NewFromString(lastCost.String)
		if err != nil {
			return nil, fmt.Errorf("parsing last cost: %w", err)
		}

		p.LastCost = &cost
	}

	return &p, nil
}

func (s *Store) Lookup(ctx context.Context, supplierSKU string) (*product.MasterProduct, error) {
	query := `
		SELECT ` + selectProductColumns + `
		FROM products p
		WHERE p.supplier_sku = $1
	`

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, supplierSKU))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("lookup product: %w", err)
	}

	return p, nil
}

func (s *Store) Snapshot(ctx context.Context, supplierSKUs []string) (map[string]product.MasterProduct, error) {
	if len(supplierSKUs) == 0 {
		return map[string]product.MasterProduct{}, nil
	}

	query := `
		SELECT ` + selectProductColumns + `
		FROM products p
		WHERE p.supplier_sku = ANY($1)
	`

	rows, err := s.db.QueryContext(ctx, query, supplierSKUs)
	if err != nil {
		return nil, fmt.Errorf("snapshot products: %w", err)
	}
	defer rows.Close()

	snapshot := make(map[string]product.MasterProduct, len(supplierSKUs))

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}

		snapshot[p.SupplierSKU] = *p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot products: %w", err)
	}

	return snapshot, nil
}
