package product

import (
	"context"

	"github.com/shopspring/decimal"
)

// MasterProduct is one row of the product master. The supplier SKU is the
// join key against invoice lines; it is assumed unique within the snapshot
// a reception works with.
type MasterProduct struct {
	InternalSKU string
	SupplierSKU string
	Description string
	Stock       decimal.Decimal
	// LastCost is the last recorded purchase cost; nil when the product has
	// never been purchased.
	LastCost *decimal.Decimal
}

//go:generate mockgen -source=product.go -destination=repository_mock.go -package=product
type Repository interface {
	// Lookup returns the master product for a supplier SKU, or nil when the
	// SKU is unknown.
	Lookup(ctx context.Context, supplierSKU string) (*MasterProduct, error)

	// Snapshot fetches the master rows for the given supplier SKUs in one
	// round trip, keyed by supplier SKU. Unknown SKUs are simply absent.
	Snapshot(ctx context.Context, supplierSKUs []string) (map[string]MasterProduct, error)
}
