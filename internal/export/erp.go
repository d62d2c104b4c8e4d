package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dagudeloc/almacen/internal/reception"
)

const (
	headerSheet = "Header"
	detailSheet = "Detail"

	flatDateLayout = "2006-01-02"
)

// Bundle carries the two ERP ingestion artifacts. Both are fully derived
// from a closed ledger, so building a bundle twice yields identical bytes.
type Bundle struct {
	Workbook *excelize.File
	FlatFile []byte
}

// ERP builds the ingestion bundle. It refuses any ledger that is not
// Closed: until then counts may still change.
func ERP(ledger *reception.Ledger, purchaseType string) (*Bundle, error) {
	if ledger.State() != reception.StateClosed {
		return nil, reception.ErrNotReady
	}

	wb, err := erpWorkbook(ledger, purchaseType)
	if err != nil {
		return nil, err
	}

	return &Bundle{Workbook: wb, FlatFile: erpFlatFile(ledger, purchaseType)}, nil
}

// WriteBundle writes both artifacts into dir, named after the folio, and
// returns the file paths. The handler zips the directory for download.
func WriteBundle(ledger *reception.Ledger, purchaseType, dir string) ([]string, error) {
	bundle, err := ERP(ledger, purchaseType)
	if err != nil {
		return nil, err
	}

	base := "recepcion_" + safeFilename(ledger.Header().Folio)

	xlsxPath := filepath.Join(dir, base+".xlsx")
	if err := bundle.Workbook.SaveAs(xlsxPath); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}

	flatPath := filepath.Join(dir, base+".txt")
	if err := os.WriteFile(flatPath, bundle.FlatFile, 0o644); err != nil {
		return nil, fmt.Errorf("writing flat file: %w", err)
	}

	return []string{xlsxPath, flatPath}, nil
}

func erpWorkbook(ledger *reception.Ledger, purchaseType string) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", headerSheet); err != nil {
		return nil, fmt.Errorf("naming header sheet: %w", err)
	}

	if _, err := f.NewSheet(detailSheet); err != nil {
		return nil, fmt.Errorf("creating detail sheet: %w", err)
	}

	header := ledger.Header()

	headerRows := [][2]string{
		{"TIPO_COMPRA", purchaseType},
		{"PROVEEDOR", header.Supplier},
		{"NUMERO_FACTURA", header.Folio},
		{"FECHA_FACTURA", header.IssueDate.Format(flatDateLayout)},
	}

	for i, kv := range headerRows {
		row := i + 1
		if err := f.SetCellValue(headerSheet, fmt.Sprintf("A%d", row), kv[0]); err != nil {
			return nil, fmt.Errorf("writing header sheet: %w", err)
		}

		if err := f.SetCellValue(headerSheet, fmt.Sprintf("B%d", row), kv[1]); err != nil {
			return nil, fmt.Errorf("writing header sheet: %w", err)
		}
	}

	detailColumns := []string{"INTERNAL_REFERENCE", "PRODUCT_NAME", "UNITS_RECEIVED", "UNIT_COST"}

	col := 'A'
	for _, title := range detailColumns {
		if err := f.SetCellValue(detailSheet, string(col)+"1", title); err != nil {
			return nil, fmt.Errorf("writing detail header: %w", err)
		}

		col++
	}

	row := 2

	for _, line := range ledger.Lines() {
		if line.Received == nil || line.Received.IsZero() {
			continue
		}

		values := []any{
			line.InternalSKU,
			line.FinalDescription,
			formatQuantity(*line.Received),
			line.UnitPrice.StringFixed(2),
		}

		col := 'A'
		for _, v := range values {
			if err := f.SetCellValue(detailSheet, fmt.Sprintf("%c%d", col, row), v); err != nil {
				return nil, fmt.Errorf("writing detail row %d: %w", row, err)
			}

			col++
		}

		row++
	}

	return f, nil
}

// erpFlatFile renders the comma-delimited ingestion file. Layout is fixed:
// a two-line purchase header followed by a detail section that skips lines
// received at zero, in ordinal order, UTF-8 with Unix line endings.
func erpFlatFile(ledger *reception.Ledger, purchaseType string) []byte {
	header := ledger.Header()

	var sb strings.Builder

	sb.WriteString("TIPO_COMPRA,PROVEEDOR_ID,NUMERO_FACTURA,FECHA_FACTURA\n")
	sb.WriteString(fmt.Sprintf("%s,%s,%s,%s\n",
		purchaseType, header.Supplier, header.Folio, header.IssueDate.Format(flatDateLayout)))
	sb.WriteString("REFERENCIA_INTERNA,UNIDADES_RECIBIDAS,COSTO_UNITARIO,COSTO_TOTAL\n")

	for _, line := range ledger.Lines() {
		if line.Received == nil || line.Received.IsZero() {
			continue
		}

		total := line.Received.Mul(line.UnitPrice)

		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s\n",
			line.InternalSKU,
			formatQuantity(*line.Received),
			line.UnitPrice.StringFixed(2),
			total.StringFixed(2)))
	}

	return []byte(sb.String())
}
