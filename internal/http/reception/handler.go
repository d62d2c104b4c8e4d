package reception

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dagudeloc/almacen/internal/dian"
	"github.com/dagudeloc/almacen/internal/encoding"
	"github.com/dagudeloc/almacen/internal/export"
	"github.com/dagudeloc/almacen/internal/product"
	"github.com/dagudeloc/almacen/internal/reception"
	"github.com/dagudeloc/almacen/internal/resolver"
)

type Handler struct {
	products     product.Repository
	sessions     reception.Store
	purchaseType string
}

func NewHandler(products product.Repository, sessions reception.Store, purchaseType string) *Handler {
	return &Handler{
		products:     products,
		sessions:     sessions,
		purchaseType: purchaseType,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.open)
	r.Get("/{id}", h.get)
	r.Post("/{id}/counts", h.recordCounts)
	r.Post("/{id}/close", h.close)
	r.Delete("/{id}", h.discard)
	r.Get("/{id}/export/reconciliation", h.exportReconciliation)
	r.Get("/{id}/export/erp", h.exportERP)
}

type lineResponse struct {
	Ordinal     int                        `json:"ordinal"`
	SupplierSKU string                     `json:"supplier_sku"`
	InternalSKU string                     `json:"internal_sku"`
	Description string                     `json:"description"`
	Resolution  reception.ResolutionStatus `json:"resolution"`
	Quantity    decimal.Decimal            `json:"quantity"`
	UnitPrice   decimal.Decimal            `json:"unit_price"`
	Subtotal    decimal.Decimal            `json:"subtotal"`
	Tax         decimal.Decimal            `json:"tax"`
	Total       decimal.Decimal            `json:"total"`
	Drift       *decimal.Decimal           `json:"drift,omitempty"`
	Received    *decimal.Decimal           `json:"received,omitempty"`
	Variance    decimal.Decimal            `json:"variance"`
	Status      reception.LineStatus       `json:"status"`
}

type summaryResponse struct {
	OK            int             `json:"ok"`
	Short         int             `json:"short"`
	Over          int             `json:"over"`
	Missing       int             `json:"missing"`
	MoneyVariance decimal.Decimal `json:"money_variance"`
}

type receptionResponse struct {
	ID        uuid.UUID       `json:"id"`
	State     reception.State `json:"state"`
	Supplier  string          `json:"supplier"`
	Folio     string          `json:"folio"`
	IssueDate string          `json:"issue_date"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxTotal  decimal.Decimal `json:"tax_total"`
	Total     decimal.Decimal `json:"total"`
	Lines     []lineResponse  `json:"lines"`
	Summary   summaryResponse `json:"summary"`
}

func toResponse(id uuid.UUID, ledger *reception.Ledger) receptionResponse {
	header := ledger.Header()
	lines := ledger.Lines()

	lineResponses := make([]lineResponse, 0, len(lines))
	for _, line := range lines {
		lineResponses = append(lineResponses, lineResponse{
			Ordinal:     line.Ordinal,
			SupplierSKU: line.SupplierSKU,
			InternalSKU: line.InternalSKU,
			Description: line.FinalDescription,
			Resolution:  line.Resolution,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    line.Subtotal,
			Tax:         line.Tax,
			Total:       line.Total,
			Drift:       line.Drift,
			Received:    line.Received,
			Variance:    line.Variance(),
			Status:      line.Status(),
		})
	}

	summary := ledger.Summary()

	return receptionResponse{
		ID:        id,
		State:     ledger.State(),
		Supplier:  header.Supplier,
		Folio:     header.Folio,
		IssueDate: header.IssueDate.Format(time.DateOnly),
		Subtotal:  header.Subtotal,
		TaxTotal:  header.TaxTotal,
		Total:     header.Total,
		Lines:     lineResponses,
		Summary: summaryResponse{
			OK:            summary.OK,
			Short:         summary.Short,
			Over:          summary.Over,
			Missing:       summary.Missing,
			MoneyVariance: summary.MoneyVariance,
		},
	}
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	utf8r, err := encoding.NewUTF8Reader(file)
	if err != nil {
		http.Error(w, "detect encoding: "+err.Error(), http.StatusBadRequest)
		return
	}

	envelope, err := dian.ReadEnvelope(utf8r)
	if err != nil {
		httpError(w, err)
		return
	}

	header, lines, err := dian.ParseInvoice(envelope.Payload)
	if err != nil {
		httpError(w, err)
		return
	}

	header.Supplier = envelope.Supplier

	snapshot, err := h.products.Snapshot(r.Context(), supplierSKUs(lines))
	if err != nil {
		slog.Error("failed to snapshot product master", "error", err)
		http.Error(w, "product master unavailable", http.StatusInternalServerError)

		return
	}

	ledger := reception.Open(header, resolver.Resolve(lines, snapshot))
	id := uuid.New()
	h.sessions.Put(id, ledger)

	slog.Info("reception opened", "id", id, "supplier", header.Supplier, "folio", header.Folio, "lines", len(lines))

	writeJSON(w, http.StatusCreated, toResponse(id, ledger))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ledger, ok := h.ledger(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, toResponse(id, ledger))
}

type countRecord struct {
	Ordinal  int             `json:"ordinal"`
	Quantity decimal.Decimal `json:"quantity"`
}

type countsRequest struct {
	Counts []countRecord `json:"counts"`
}

func (h *Handler) recordCounts(w http.ResponseWriter, r *http.Request) {
	id, ledger, ok := h.ledger(w, r)
	if !ok {
		return
	}

	var req countsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	// Counts apply in request order; the first failure stops the batch and
	// leaves earlier records in place.
	for _, c := range req.Counts {
		if err := ledger.RecordCount(c.Ordinal, c.Quantity); err != nil {
			httpError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, toResponse(id, ledger))
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	id, ledger, ok := h.ledger(w, r)
	if !ok {
		return
	}

	if err := ledger.Close(); err != nil {
		httpError(w, err)
		return
	}

	slog.Info("reception closed", "id", id, "folio", ledger.Header().Folio)

	writeJSON(w, http.StatusOK, toResponse(id, ledger))
}

func (h *Handler) discard(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid reception id", http.StatusBadRequest)
		return
	}

	h.sessions.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) exportReconciliation(w http.ResponseWriter, r *http.Request) {
	_, ledger, ok := h.ledger(w, r)
	if !ok {
		return
	}

	f, err := export.Reconciliation(ledger)
	if err != nil {
		slog.Error("failed to build reconciliation workbook", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}
	defer f.Close()

	filename := "conciliacion_" + ledger.Header().Folio + ".xlsx"

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := f.Write(w); err != nil {
		slog.Error("failed to write workbook", "error", err)
	}
}

func (h *Handler) exportERP(w http.ResponseWriter, r *http.Request) {
	_, ledger, ok := h.ledger(w, r)
	if !ok {
		return
	}

	tmpDir, err := os.MkdirTemp("", "almacen-erp-*")
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tmpDir)

	paths, err := export.WriteBundle(ledger, h.purchaseType, tmpDir)
	if err != nil {
		httpError(w, err)
		return
	}

	filename := "recepcion_" + ledger.Header().Folio + ".zip"

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	zipWriter := zip.NewWriter(w)
	defer zipWriter.Close()

	for _, path := range paths {
		zf, err := zipWriter.Create(filepath.Base(path))
		if err != nil {
			slog.Error("failed to create zip entry", "error", err)
			return
		}

		src, err := os.Open(path)
		if err != nil {
			slog.Error("failed to open artifact", "error", err)
			return
		}

		if _, err := io.Copy(zf, src); err != nil {
			src.Close()
			slog.Error("failed to write zip entry", "error", err)

			return
		}

		src.Close()
	}
}

// ledger resolves the {id} route param to its active ledger, writing the
// error response itself when that fails.
func (h *Handler) ledger(w http.ResponseWriter, r *http.Request) (uuid.UUID, *reception.Ledger, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid reception id", http.StatusBadRequest)
		return uuid.Nil, nil, false
	}

	ledger, err := h.sessions.Get(id)
	if err != nil {
		httpError(w, err)
		return uuid.Nil, nil, false
	}

	return id, ledger, true
}

func supplierSKUs(lines []reception.InvoiceLine) []string {
	seen := make(map[string]struct{}, len(lines))
	skus := make([]string, 0, len(lines))

	for _, line := range lines {
		if _, ok := seen[line.SupplierSKU]; ok {
			continue
		}

		seen[line.SupplierSKU] = struct{}{}
		skus = append(skus, line.SupplierSKU)
	}

	return skus
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// httpError maps core error kinds to status codes.
func httpError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, reception.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, reception.ErrNotReady), errors.Is(err, reception.ErrAlreadyClosed):
		status = http.StatusConflict
	case errors.Is(err, reception.ErrInvalidQuantity), errors.Is(err, reception.ErrUnknownLine),
		errors.Is(err, dian.ErrMalformedEnvelope), errors.Is(err, dian.ErrMissingInnerDocument),
		errors.Is(err, dian.ErrMalformedInvoice):
		status = http.StatusBadRequest
	}

	http.Error(w, err.Error(), status)
}
