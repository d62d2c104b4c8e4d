package dian

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dagudeloc/almacen/internal/reception"
)

// GenericSKU is the sentinel supplier SKU for lines that carry no item
// identification at all.
const GenericSKU = "GENERIC"

// NoDescription is the default for lines whose item has no description.
const NoDescription = "No description"

// ErrMalformedInvoice means the inner payload is not well-formed, or a
// required header or line field is missing or non-numeric.
var ErrMalformedInvoice = errors.New("malformed invoice")

const issueDateLayout = "2006-01-02"

// ParseInvoice turns the inner invoice payload into a header and its lines
// in document order. Folio, issue date and per-line invoiced quantity are
// required; every other field defaults rather than fails, because supplier
// dialects drop optional UBL elements freely.
//
// The supplier name is not part of the inner document; the caller fills it
// in from the envelope.
func ParseInvoice(payload string) (reception.InvoiceHeader, []reception.InvoiceLine, error) {
	root, err := decode(strings.NewReader(payload))
	if err != nil {
		return reception.InvoiceHeader{}, nil, fmt.Errorf("%w: %v", ErrMalformedInvoice, err)
	}

	header, err := parseHeader(root)
	if err != nil {
		return reception.InvoiceHeader{}, nil, err
	}

	lines, err := parseLines(root)
	if err != nil {
		return reception.InvoiceHeader{}, nil, err
	}

	return header, lines, nil
}

func parseHeader(root *node) (reception.InvoiceHeader, error) {
	folio := root.text(cbc("ID"))
	if folio == "" {
		return reception.InvoiceHeader{}, fmt.Errorf("%w: missing invoice ID", ErrMalformedInvoice)
	}

	dateStr := root.text(cbc("IssueDate"))
	if dateStr == "" {
		return reception.InvoiceHeader{}, fmt.Errorf("%w: missing issue date", ErrMalformedInvoice)
	}

	issued, err := time.Parse(issueDateLayout, dateStr)
	if err != nil {
		return reception.InvoiceHeader{}, fmt.Errorf("%w: issue date %q", ErrMalformedInvoice, dateStr)
	}

	monetary := root.path(cac("LegalMonetaryTotal"))

	subtotal := decimal.Zero
	total := decimal.Zero

	if monetary != nil {
		subtotal = amountOrZero(monetary, cbc("LineExtensionAmount"))
		total = amountOrZero(monetary, cbc("PayableAmount"))
	}

	// Document-level tax when declared; otherwise derive it from the totals,
	// clamped at zero so a payable below the subtotal never yields negative tax.
	tax := decimal.Zero
	if taxStr := root.text(cac("TaxTotal"), cbc("TaxAmount")); taxStr != "" {
		parsed, err := decimal.NewFromString(taxStr)
		if err == nil {
			tax = parsed
		}
	} else if derived := total.Sub(subtotal); derived.IsPositive() {
		tax = derived
	}

	return reception.InvoiceHeader{
		Folio:     folio,
		IssueDate: issued,
		Subtotal:  subtotal,
		TaxTotal:  tax,
		Total:     total,
	}, nil
}

func parseLines(root *node) ([]reception.InvoiceLine, error) {
	var lines []reception.InvoiceLine

	ordinal := 0

	for i := range root.Children {
		el := &root.Children[i]
		if el.XMLName.Local != "InvoiceLine" || el.XMLName.Space != nsCAC {
			continue
		}

		ordinal++

		line, err := parseLine(el, ordinal)
		if err != nil {
			return nil, err
		}

		lines = append(lines, line)
	}

	return lines, nil
}

func parseLine(el *node, ordinal int) (reception.InvoiceLine, error) {
	qtyStr := el.text(cbc("InvoicedQuantity"))
	if qtyStr == "" {
		return reception.InvoiceLine{}, fmt.Errorf("%w: line %d: missing invoiced quantity", ErrMalformedInvoice, ordinal)
	}

	qty, err := decimal.NewFromString(qtyStr)
	if err != nil {
		return reception.InvoiceLine{}, fmt.Errorf("%w: line %d: invoiced quantity %q", ErrMalformedInvoice, ordinal, qtyStr)
	}

	desc := el.text(cac("Item"), cbc("Description"))
	if desc == "" {
		desc = NoDescription
	}

	sku := el.text(cac("Item"), cac("StandardItemIdentification"), cbc("ID"))
	if sku == "" {
		sku = el.text(cac("Item"), cac("SellersItemIdentification"), cbc("ID"))
	}

	if sku == "" {
		sku = GenericSKU
	}

	price := decimal.Zero
	if priceEl := el.path(cac("Price")); priceEl != nil {
		price = amountOrZero(priceEl, cbc("PriceAmount"))
	}

	subtotal := amountOrZero(el, cbc("LineExtensionAmount"))

	tax := decimal.Zero
	if taxEl := el.path(cac("TaxTotal")); taxEl != nil {
		tax = amountOrZero(taxEl, cbc("TaxAmount"))
	}

	return reception.InvoiceLine{
		Ordinal:     ordinal,
		SupplierSKU: sku,
		Description: desc,
		Quantity:    qty,
		UnitPrice:   price,
		Subtotal:    subtotal,
		Tax:         tax,
		// Computed, never read from the document: supplier rounding on the
		// declared line total drifts from subtotal + tax.
		Total: subtotal.Add(tax),
	}, nil
}

// amountOrZero reads a decimal child element, defaulting to zero when the
// element is missing or unparseable.
func amountOrZero(n *node, name xml.Name) decimal.Decimal {
	s := n.text(name)
	if s == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}

	return d
}
