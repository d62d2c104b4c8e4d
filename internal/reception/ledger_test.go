package reception_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagudeloc/almacen/internal/reception"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testHeader() reception.InvoiceHeader {
	return reception.InvoiceHeader{
		Supplier:  "Distribuciones del Norte",
		Folio:     "FVE-100",
		IssueDate: time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
		Subtotal:  dec("5000"),
		TaxTotal:  dec("950"),
		Total:     dec("5950"),
	}
}

func resolvedLine(ordinal int, sku string, qty, price string) reception.ResolvedLine {
	return reception.ResolvedLine{
		InvoiceLine: reception.InvoiceLine{
			Ordinal:     ordinal,
			SupplierSKU: sku,
			Description: "desc",
			Quantity:    dec(qty),
			UnitPrice:   dec(price),
			Subtotal:    dec(qty).Mul(dec(price)),
			Total:       dec(qty).Mul(dec(price)),
		},
		Resolution:       reception.ResolutionExisting,
		InternalSKU:      "INT-" + sku,
		FinalDescription: "desc interna " + sku,
	}
}

func TestLedger_StateProgression(t *testing.T) {
	ledger := reception.Open(testHeader(), []reception.ResolvedLine{
		resolvedLine(1, "A", "5", "1000"),
		resolvedLine(2, "B", "3", "500"),
	})

	assert.Equal(t, reception.StateLoaded, ledger.State())

	require.NoError(t, ledger.RecordCount(1, dec("5")))
	assert.Equal(t, reception.StateLoaded, ledger.State())

	// Explicit zero is a count too.
	require.NoError(t, ledger.RecordCount(2, dec("0")))
	assert.Equal(t, reception.StateCounted, ledger.State())

	require.NoError(t, ledger.Close())
	assert.Equal(t, reception.StateClosed, ledger.State())
}

func TestLedger_CloseBeforeCountingFails(t *testing.T) {
	ledger := reception.Open(testHeader(), []reception.ResolvedLine{
		resolvedLine(1, "A", "5", "1000"),
		resolvedLine(2, "B", "3", "500"),
	})

	require.NoError(t, ledger.RecordCount(1, dec("5")))

	err := ledger.Close()
	assert.ErrorIs(t, err, reception.ErrNotReady)

	// A failed close leaves the ledger mutable.
	assert.Equal(t, reception.StateLoaded, ledger.State())
	assert.NoError(t, ledger.RecordCount(2, dec("3")))
}

func TestLedger_RecordCount(t *testing.T) {
	type testCase struct {
		name    string
		ordinal int
		qty     string
		wantErr error
	}

	tests := []testCase{
		{name: "Valid", ordinal: 1, qty: "4"},
		{name: "ExplicitZero", ordinal: 1, qty: "0"},
		{name: "Fractional", ordinal: 1, qty: "2.5000"},
		{name: "Negative", ordinal: 1, qty: "-1", wantErr: reception.ErrInvalidQuantity},
		{name: "UnknownOrdinal", ordinal: 9, qty: "1", wantErr: reception.ErrUnknownLine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := reception.Open(testHeader(), []reception.ResolvedLine{
				resolvedLine(1, "A", "5", "1000"),
			})

			err := ledger.RecordCount(tt.ordinal, dec(tt.qty))

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				// Failed mutations leave no trace.
				assert.Nil(t, ledger.Lines()[0].Received)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, ledger.Lines()[0].Received)
			assert.True(t, ledger.Lines()[0].Received.Equal(dec(tt.qty)))
		})
	}
}

func TestLedger_RecordCountIdempotent(t *testing.T) {
	ledger := reception.Open(testHeader(), []reception.ResolvedLine{
		resolvedLine(1, "A", "5", "1000"),
	})

	require.NoError(t, ledger.RecordCount(1, dec("3")))
	require.NoError(t, ledger.RecordCount(1, dec("3")))

	assert.True(t, ledger.Lines()[0].Received.Equal(dec("3")))

	// Last write per ordinal wins.
	require.NoError(t, ledger.RecordCount(1, dec("5")))
	assert.True(t, ledger.Lines()[0].Received.Equal(dec("5")))
}

func TestLedger_MutationAfterClose(t *testing.T) {
	ledger := reception.Open(testHeader(), []reception.ResolvedLine{
		resolvedLine(1, "A", "5", "1000"),
	})

	require.NoError(t, ledger.RecordCount(1, dec("5")))
	require.NoError(t, ledger.Close())

	assert.ErrorIs(t, ledger.RecordCount(1, dec("4")), reception.ErrAlreadyClosed)
	assert.ErrorIs(t, ledger.Close(), reception.ErrAlreadyClosed)
}

func TestLedger_LineStatus(t *testing.T) {
	type testCase struct {
		name     string
		invoiced string
		received string
		want     reception.LineStatus
	}

	tests := []testCase{
		{name: "Exact", invoiced: "5", received: "5", want: reception.LineOK},
		{name: "Short", invoiced: "5", received: "3", want: reception.LineShort},
		{name: "Over", invoiced: "5", received: "7", want: reception.LineOver},
		{name: "Missing", invoiced: "5", received: "0", want: reception.LineMissing},
		// Nothing invoiced and nothing received is a clean line, not a
		// missing one.
		{name: "ZeroInvoicedZeroReceived", invoiced: "0", received: "0", want: reception.LineOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := reception.Open(testHeader(), []reception.ResolvedLine{
				resolvedLine(1, "A", tt.invoiced, "1000"),
			})

			require.NoError(t, ledger.RecordCount(1, dec(tt.received)))

			status, err := ledger.LineStatus(1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestLedger_Summary(t *testing.T) {
	ledger := reception.Open(testHeader(), []reception.ResolvedLine{
		resolvedLine(1, "A", "5", "1000"),
		resolvedLine(2, "B", "3", "500"),
		resolvedLine(3, "C", "2", "250"),
		resolvedLine(4, "D", "1", "100"),
	})

	require.NoError(t, ledger.RecordCount(1, dec("5"))) // OK
	require.NoError(t, ledger.RecordCount(2, dec("1"))) // SHORT, -1000
	require.NoError(t, ledger.RecordCount(3, dec("4"))) // OVER, +500
	require.NoError(t, ledger.RecordCount(4, dec("0"))) // MISSING, -100

	summary := ledger.Summary()
	assert.Equal(t, 1, summary.OK)
	assert.Equal(t, 1, summary.Short)
	assert.Equal(t, 1, summary.Over)
	assert.Equal(t, 1, summary.Missing)
	assert.True(t, summary.MoneyVariance.Equal(dec("-600")), "variance %s", summary.MoneyVariance)

	require.NoError(t, ledger.Close())

	total := summary.OK + summary.Short + summary.Over + summary.Missing
	assert.Equal(t, len(ledger.Lines()), total)
}

func TestLedger_ShortCountMoneyVariance(t *testing.T) {
	// 5 invoiced, 3 received at 1000 each: 2000 short.
	ledger := reception.Open(testHeader(), []reception.ResolvedLine{
		resolvedLine(1, "NEW-ITEM-XYZ", "5", "1000"),
	})

	require.NoError(t, ledger.RecordCount(1, dec("3")))

	summary := ledger.Summary()
	assert.Equal(t, 1, summary.Short)
	assert.True(t, summary.MoneyVariance.Equal(dec("-2000")), "variance %s", summary.MoneyVariance)
}
