package reception

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store keeps the active ledger between user steps. The host round-trips
// the ledger unchanged; the core never persists it.
type Store interface {
	Put(id uuid.UUID, ledger *Ledger)
	Get(id uuid.UUID) (*Ledger, error)
	Delete(id uuid.UUID)
}

// Line is a resolved invoice line augmented with the physical count.
type Line struct {
	ResolvedLine

	// Received is nil until a count has been recorded for the line.
	Received *decimal.Decimal
}

// Variance is received minus invoiced. An uncounted line counts as zero
// received.
func (l Line) Variance() decimal.Decimal {
	received := decimal.Zero
	if l.Received != nil {
		received = *l.Received
	}

	return received.Sub(l.Quantity)
}

// Status classifies the line against its invoiced quantity.
func (l Line) Status() LineStatus {
	received := decimal.Zero
	if l.Received != nil {
		received = *l.Received
	}

	switch {
	case received.Equal(l.Quantity):
		return LineOK
	case received.IsZero():
		return LineMissing
	case received.LessThan(l.Quantity):
		return LineShort
	default:
		return LineOver
	}
}

// Ledger holds one in-flight reception: the parsed header, the resolved
// lines and the physical counts. It moves Loaded -> Counted -> Closed and
// never backward; discarding the ledger is the only reset.
type Ledger struct {
	header InvoiceHeader
	lines  []Line
	closed bool
}

// Open creates a ledger in the Loaded state. The ledger takes its own copy
// of the lines; callers keep no aliases into it.
func Open(header InvoiceHeader, lines []ResolvedLine) *Ledger {
	owned := make([]Line, len(lines))
	for i, rl := range lines {
		owned[i] = Line{ResolvedLine: rl}
	}

	return &Ledger{header: header, lines: owned}
}

func (g *Ledger) Header() InvoiceHeader {
	return g.header
}

// Lines returns a copy of the ledger lines in ordinal order.
func (g *Ledger) Lines() []Line {
	out := make([]Line, len(g.lines))
	copy(out, g.lines)

	return out
}

// State is derived, not stored: Counted is true exactly when every line has
// a recorded count, explicit zero included.
func (g *Ledger) State() State {
	if g.closed {
		return StateClosed
	}

	for i := range g.lines {
		if g.lines[i].Received == nil {
			return StateLoaded
		}
	}

	return StateCounted
}

// RecordCount sets the received quantity for the line with the given
// ordinal. Recording the same value twice is a no-op; the last write per
// ordinal wins. The ledger is left untouched on any failure.
func (g *Ledger) RecordCount(ordinal int, quantity decimal.Decimal) error {
	if g.closed {
		return ErrAlreadyClosed
	}

	if quantity.IsNegative() {
		return fmt.Errorf("%w: got %s", ErrInvalidQuantity, quantity)
	}

	line := g.line(ordinal)
	if line == nil {
		return fmt.Errorf("%w: ordinal %d", ErrUnknownLine, ordinal)
	}

	qty := quantity
	line.Received = &qty

	return nil
}

// LineStatus returns the reconciliation status of a single line.
func (g *Ledger) LineStatus(ordinal int) (LineStatus, error) {
	line := g.line(ordinal)
	if line == nil {
		return "", fmt.Errorf("%w: ordinal %d", ErrUnknownLine, ordinal)
	}

	return line.Status(), nil
}

// Close freezes the ledger. It fails with ErrNotReady unless every line has
// been counted, and the ledger stays mutable after a failed close.
func (g *Ledger) Close() error {
	if g.closed {
		return ErrAlreadyClosed
	}

	if g.State() != StateCounted {
		return ErrNotReady
	}

	g.closed = true

	return nil
}

// Summary aggregates per-status line counts and the signed money variance
// sum((received - invoiced) * unit price). Uncounted lines count as zero
// received, so a summary taken before counting reports them as MISSING.
type Summary struct {
	OK            int
	Short         int
	Over          int
	Missing       int
	MoneyVariance decimal.Decimal
}

func (g *Ledger) Summary() Summary {
	s := Summary{MoneyVariance: decimal.Zero}

	for i := range g.lines {
		switch g.lines[i].Status() {
		case LineOK:
			s.OK++
		case LineShort:
			s.Short++
		case LineOver:
			s.Over++
		case LineMissing:
			s.Missing++
		}

		s.MoneyVariance = s.MoneyVariance.Add(g.lines[i].Variance().Mul(g.lines[i].UnitPrice))
	}

	return s
}

func (g *Ledger) line(ordinal int) *Line {
	for i := range g.lines {
		if g.lines[i].Ordinal == ordinal {
			return &g.lines[i]
		}
	}

	return nil
}
