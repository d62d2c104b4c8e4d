// Package resolver joins invoice lines against the product master and
// mints temporary internal SKUs for items the master does not know yet.
package resolver

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dagudeloc/almacen/internal/product"
	"github.com/dagudeloc/almacen/internal/reception"
)

// newSKUStemLen caps the alphanumeric stem of a synthesized SKU.
const newSKUStemLen = 8

var hundred = decimal.NewFromInt(100)

// Resolve attaches internal identity and cost drift to each line. The
// output has the same length and order as the input, and identical inputs
// always produce identical outputs: no randomness, no timestamps.
func Resolve(lines []reception.InvoiceLine, master map[string]product.MasterProduct) []reception.ResolvedLine {
	resolved := make([]reception.ResolvedLine, len(lines))

	for i, line := range lines {
		resolved[i] = resolveLine(line, master)
	}

	return resolved
}

func resolveLine(line reception.InvoiceLine, master map[string]product.MasterProduct) reception.ResolvedLine {
	rl := reception.ResolvedLine{InvoiceLine: line}

	match, found := master[line.SupplierSKU]
	if !found {
		rl.Resolution = reception.ResolutionNew
		rl.InternalSKU = synthesizeSKU(line.SupplierSKU, line.Ordinal)
		rl.FinalDescription = line.Description

		return rl
	}

	rl.Resolution = reception.ResolutionExisting
	rl.InternalSKU = match.InternalSKU
	rl.FinalDescription = match.Description
	rl.Drift = drift(line.UnitPrice, match.LastCost)

	return rl
}

// drift is the signed percent change of the invoiced unit price against the
// last purchase cost. Nil when there is no usable last cost.
func drift(unitPrice decimal.Decimal, lastCost *decimal.Decimal) *decimal.Decimal {
	if lastCost == nil || !lastCost.IsPositive() {
		return nil
	}

	d := unitPrice.Sub(*lastCost).Div(*lastCost).Mul(hundred)

	return &d
}

// synthesizeSKU builds a temporary internal SKU for an unknown item. The
// ordinal suffix keeps synthesized SKUs unique within the invoice even when
// the same supplier SKU shows up on several lines (lots, returns, price
// breaks).
func synthesizeSKU(supplierSKU string, ordinal int) string {
	stem := alphanumOnly(supplierSKU)
	if len(stem) > newSKUStemLen {
		stem = stem[:newSKUStemLen]
	}

	return fmt.Sprintf("NEW-%s-%d", stem, ordinal)
}

func alphanumOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}

		return -1
	}, s)
}
