package resolver_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagudeloc/almacen/internal/product"
	"github.com/dagudeloc/almacen/internal/reception"
	"github.com/dagudeloc/almacen/internal/resolver"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func line(ordinal int, sku string, price string) reception.InvoiceLine {
	return reception.InvoiceLine{
		Ordinal:     ordinal,
		SupplierSKU: sku,
		Description: "factura desc",
		Quantity:    dec("1"),
		UnitPrice:   dec(price),
	}
}

func TestResolve_ExistingItem(t *testing.T) {
	master := map[string]product.MasterProduct{
		"RTRXA0080106": {
			InternalSKU: "FER-DIS-001",
			SupplierSKU: "RTRXA0080106",
			Description: "Disco corte metal",
			LastCost:    decPtr("9200"),
		},
	}

	resolved := resolver.Resolve([]reception.InvoiceLine{line(1, "RTRXA0080106", "9200")}, master)
	require.Len(t, resolved, 1)

	got := resolved[0]
	assert.Equal(t, reception.ResolutionExisting, got.Resolution)
	assert.Equal(t, "FER-DIS-001", got.InternalSKU)
	assert.Equal(t, "Disco corte metal", got.FinalDescription)
	require.NotNil(t, got.Drift)
	assert.True(t, got.Drift.IsZero(), "drift %s", got.Drift)
}

func TestResolve_PriceDrift(t *testing.T) {
	master := map[string]product.MasterProduct{
		"X1": {InternalSKU: "INT-1", SupplierSKU: "X1", Description: "d", LastCost: decPtr("100")},
	}

	resolved := resolver.Resolve([]reception.InvoiceLine{line(1, "X1", "130")}, master)

	require.NotNil(t, resolved[0].Drift)
	assert.True(t, resolved[0].Drift.Equal(dec("30")), "drift %s", resolved[0].Drift)
}

func TestResolve_NoDriftWithoutLastCost(t *testing.T) {
	type testCase struct {
		name     string
		lastCost *decimal.Decimal
	}

	tests := []testCase{
		{name: "AbsentCost", lastCost: nil},
		{name: "ZeroCost", lastCost: decPtr("0")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			master := map[string]product.MasterProduct{
				"X1": {InternalSKU: "INT-1", SupplierSKU: "X1", LastCost: tt.lastCost},
			}

			resolved := resolver.Resolve([]reception.InvoiceLine{line(1, "X1", "130")}, master)
			assert.Equal(t, reception.ResolutionExisting, resolved[0].Resolution)
			assert.Nil(t, resolved[0].Drift)
		})
	}
}

func TestResolve_UnknownItem(t *testing.T) {
	resolved := resolver.Resolve([]reception.InvoiceLine{line(1, "NEW-ITEM-XYZ", "1000")}, nil)
	require.Len(t, resolved, 1)

	got := resolved[0]
	assert.Equal(t, reception.ResolutionNew, got.Resolution)
	assert.Equal(t, "NEW-NEWITEMX-1", got.InternalSKU)
	assert.Equal(t, "factura desc", got.FinalDescription)
	assert.Nil(t, got.Drift)
}

func TestResolve_GenericSKU(t *testing.T) {
	resolved := resolver.Resolve([]reception.InvoiceLine{line(3, "GENERIC", "0")}, nil)
	assert.Equal(t, "NEW-GENERIC-3", resolved[0].InternalSKU)
}

func TestResolve_DuplicateSupplierSKU(t *testing.T) {
	// The same unknown supplier SKU on two lines must still produce two
	// distinct internal SKUs.
	lines := []reception.InvoiceLine{
		line(1, "DUP-1", "500"),
		line(2, "DUP-1", "500"),
	}

	resolved := resolver.Resolve(lines, nil)
	require.Len(t, resolved, 2)
	assert.Equal(t, "NEW-DUP1-1", resolved[0].InternalSKU)
	assert.Equal(t, "NEW-DUP1-2", resolved[1].InternalSKU)
	assert.NotEqual(t, resolved[0].InternalSKU, resolved[1].InternalSKU)
}

func TestResolve_Deterministic(t *testing.T) {
	master := map[string]product.MasterProduct{
		"X1": {InternalSKU: "INT-1", SupplierSKU: "X1", LastCost: decPtr("100")},
	}
	lines := []reception.InvoiceLine{line(1, "X1", "150"), line(2, "ZZZ", "10")}

	first := resolver.Resolve(lines, master)
	second := resolver.Resolve(lines, master)

	assert.Equal(t, first, second)
}
