package reception

import (
	"time"

	"github.com/shopspring/decimal"
)

// ResolutionStatus says whether an invoice line matched the product master.
type ResolutionStatus string

const (
	ResolutionExisting ResolutionStatus = "EXISTING"
	ResolutionNew      ResolutionStatus = "NEW"
)

// LineStatus classifies a counted line against its invoiced quantity.
type LineStatus string

const (
	LineOK      LineStatus = "OK"
	LineShort   LineStatus = "SHORT"
	LineOver    LineStatus = "OVER"
	LineMissing LineStatus = "MISSING"
)

// State represents the lifecycle stage of a reception.
type State string

const (
	StateLoaded  State = "loaded"
	StateCounted State = "counted"
	StateClosed  State = "closed"
)

// InvoiceHeader holds the commercial header of the received invoice.
type InvoiceHeader struct {
	Supplier  string
	Folio     string
	IssueDate time.Time
	Subtotal  decimal.Decimal
	TaxTotal  decimal.Decimal
	Total     decimal.Decimal
}

// InvoiceLine is one line of the inner invoice. Ordinal is the 1-based
// position of appearance in the document and is the stable key within a
// reception; the supplier SKU may legitimately repeat across lines.
type InvoiceLine struct {
	Ordinal     int
	SupplierSKU string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
}

// ResolvedLine is an invoice line joined against the product master.
type ResolvedLine struct {
	InvoiceLine

	Resolution       ResolutionStatus
	InternalSKU      string
	FinalDescription string
	// Drift is the signed percent change of the invoiced unit price vs the
	// last recorded purchase cost. Nil when the item is new or the last
	// cost is absent or zero.
	Drift *decimal.Decimal
}
