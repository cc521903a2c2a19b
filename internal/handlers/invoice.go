package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/diewo77/invoicing-api/internal/httpx"
	"github.com/diewo77/invoicing-api/internal/repository"
	"github.com/diewo77/invoicing-api/internal/services"
	"github.com/diewo77/invoicing-api/internal/validation"
)

const maxAddressLen = 500

type invoiceItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  *int `json:"quantity"` // omitted means 1
}

type createInvoiceRequest struct {
	ClientID  uint                 `json:"client_id"`
	Address   *string              `json:"address"`
	IssueDate string               `json:"issue_date"`
	DueDate   string               `json:"due_date"`
	Tax       *decimal.Decimal     `json:"tax"` // omitted means 0
	Items     []invoiceItemRequest `json:"items"`
}

type updateInvoiceRequest struct {
	ClientID  *uint                `json:"client_id"`
	Address   *string              `json:"address"`
	IssueDate *string              `json:"issue_date"`
	DueDate   *string              `json:"due_date"`
	Tax       *decimal.Decimal     `json:"tax"`
	Items     []invoiceItemRequest `json:"items"` // nil keeps the stored set
}

type InvoiceHandler struct {
	svc *services.InvoiceService
	log zerolog.Logger
}

func NewInvoiceHandler(svc *services.InvoiceService, log zerolog.Logger) *InvoiceHandler {
	return &InvoiceHandler{svc: svc, log: log.With().Str("handler", "invoices").Logger()}
}

// Create: POST /invoices
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	v := make(validation.Violations)
	if req.ClientID == 0 {
		v["client_id"] = "required"
	}
	validation.Required("issue_date", req.IssueDate, v)
	validation.Required("due_date", req.DueDate, v)
	validation.Date("issue_date", req.IssueDate, v)
	validation.Date("due_date", req.DueDate, v)
	if _, ok := v["issue_date"]; !ok {
		if _, ok := v["due_date"]; !ok && req.DueDate < req.IssueDate {
			v["due_date"] = "before_issue_date"
		}
	}
	if req.Address != nil {
		validation.MaxLen("address", *req.Address, maxAddressLen, v)
	}
	tax := decimal.Zero
	if req.Tax != nil {
		tax = *req.Tax
		validation.NonNegativeDecimal("tax", tax, v)
	}
	items := validateItems(req.Items, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	address := ""
	if req.Address != nil {
		address = *req.Address
	}
	view, err := h.svc.Create(r.Context(), services.CreateInput{
		ClientID:  req.ClientID,
		Address:   address,
		IssueDate: req.IssueDate,
		DueDate:   req.DueDate,
		Tax:       tax,
		Items:     items,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, view)
}

// Get: GET /invoices/{id}
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	view, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

// List: GET /invoices with optional filters and pagination.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v := make(validation.Violations)

	limit := 20
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			v["limit"] = "invalid_integer"
		} else {
			validation.IntRange("limit", n, 1, 100, v)
			limit = n
		}
	}
	offset := 0
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			v["offset"] = "must_not_be_negative"
		} else {
			offset = n
		}
	}

	var filters repository.ListFilters
	if raw := q.Get("client_id"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			v["client_id"] = "invalid_id"
		} else {
			id := uint(n)
			filters.ClientID = &id
		}
	}
	filters.IssueDateFrom = dateFilter(q.Get("issue_date_from"), "issue_date_from", v)
	filters.IssueDateTo = dateFilter(q.Get("issue_date_to"), "issue_date_to", v)
	filters.DueDateFrom = dateFilter(q.Get("due_date_from"), "due_date_from", v)
	filters.DueDateTo = dateFilter(q.Get("due_date_to"), "due_date_to", v)

	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	view, err := h.svc.List(r.Context(), filters, limit, offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

// Update: PUT /invoices/{id} — partial update, any subset of create fields.
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	var req updateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	v := make(validation.Violations)
	if req.ClientID != nil && *req.ClientID == 0 {
		v["client_id"] = "invalid_id"
	}
	if req.IssueDate != nil {
		validation.Required("issue_date", *req.IssueDate, v)
		validation.Date("issue_date", *req.IssueDate, v)
	}
	if req.DueDate != nil {
		validation.Required("due_date", *req.DueDate, v)
		validation.Date("due_date", *req.DueDate, v)
	}
	if req.Address != nil {
		validation.MaxLen("address", *req.Address, maxAddressLen, v)
	}
	if req.Tax != nil {
		validation.NonNegativeDecimal("tax", *req.Tax, v)
	}
	var items []services.ItemInput
	if req.Items != nil {
		items = validateItems(req.Items, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	view, err := h.svc.Update(r.Context(), id, services.UpdateInput{
		ClientID:  req.ClientID,
		Address:   req.Address,
		IssueDate: req.IssueDate,
		DueDate:   req.DueDate,
		Tax:       req.Tax,
		Items:     items,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

// Delete: DELETE /invoices/{id}
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.NoContent(w)
}

// validateItems checks the requested lines and converts them to service
// inputs. Quantity defaults to 1 when omitted.
func validateItems(items []invoiceItemRequest, v validation.Violations) []services.ItemInput {
	if len(items) == 0 {
		v["items"] = "at_least_one_required"
		return nil
	}
	inputs := make([]services.ItemInput, 0, len(items))
	for _, it := range items {
		qty := 1
		if it.Quantity != nil {
			qty = *it.Quantity
		}
		if it.ProductID == 0 || qty < 1 {
			v["items"] = "invalid_product_or_quantity"
			return nil
		}
		inputs = append(inputs, services.ItemInput{ProductID: it.ProductID, Quantity: qty})
	}
	return inputs
}

func dateFilter(raw, field string, v validation.Violations) *string {
	if raw == "" {
		return nil
	}
	validation.Date(field, raw, v)
	return &raw
}

func (h *InvoiceHandler) writeServiceError(w http.ResponseWriter, err error) {
	var pnf *services.ProductNotFoundError
	switch {
	case errors.Is(err, services.ErrInvoiceNotFound):
		httpx.JSONError(w, http.StatusNotFound, "invoice_not_found", nil)
	case errors.Is(err, services.ErrClientNotFound):
		httpx.JSONError(w, http.StatusBadRequest, "client_not_found", nil)
	case errors.As(err, &pnf):
		httpx.JSONError(w, http.StatusBadRequest, "product_not_found", map[string]uint{"product_id": pnf.ProductID})
	case errors.Is(err, services.ErrInvalidDateRange):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"due_date": "before_issue_date"})
	case errors.Is(err, services.ErrNumberExhausted):
		h.log.Error().Err(err).Msg("invoice number generation exhausted")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	default:
		h.log.Error().Err(err).Msg("invoice operation failed")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
