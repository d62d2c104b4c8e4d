// Package export turns a reception ledger into its downstream artifacts:
// a reconciliation spreadsheet for internal review and the two-part ERP
// ingestion bundle.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/dagudeloc/almacen/internal/reception"
)

const reconciliationSheet = "Conciliacion"

var reconciliationColumns = []struct {
	Title string
	Width float64
}{
	{"Referencia_Interna", 18},
	{"Descripcion", 40},
	{"Cantidad_Facturada", 16},
	{"Cantidad_Recibida", 16},
	{"Diferencia", 12},
	{"Estado_Conciliacion", 18},
	{"Precio_Unitario", 16},
	{"Total_Linea", 16},
}

// Reconciliation builds the single-sheet review workbook. Rows follow the
// ledger's ordinal order; the caller owns closing the file.
func Reconciliation(ledger *reception.Ledger) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", reconciliationSheet); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	col := 'A'
	for _, c := range reconciliationColumns {
		cell := string(col) + "1"
		if err := f.SetCellValue(reconciliationSheet, cell, c.Title); err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}

		if err := f.SetColWidth(reconciliationSheet, string(col), string(col), c.Width); err != nil {
			return nil, fmt.Errorf("setting column width: %w", err)
		}

		col++
	}

	if err := f.SetCellStyle(reconciliationSheet, "A1", "H1", headerStyle); err != nil {
		return nil, fmt.Errorf("styling header: %w", err)
	}

	for i, line := range ledger.Lines() {
		row := i + 2

		received := "0"
		if line.Received != nil {
			received = formatQuantity(*line.Received)
		}

		values := []any{
			line.InternalSKU,
			line.FinalDescription,
			formatQuantity(line.Quantity),
			received,
			formatQuantity(line.Variance()),
			string(line.Status()),
			formatMoney(line.UnitPrice),
			formatMoney(line.Total),
		}

		col := 'A'
		for _, v := range values {
			cell := fmt.Sprintf("%c%d", col, row)
			if err := f.SetCellValue(reconciliationSheet, cell, v); err != nil {
				return nil, fmt.Errorf("writing row %d: %w", row, err)
			}

			col++
		}
	}

	return f, nil
}
