package web

import (
	"net/http"

	"quote-to-cash/internal/app"

	"github.com/go-chi/chi/v5"
)

// listInvoices handles GET /api/invoices?status=overdue.
func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListInvoices(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetInvoice(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// createInvoice handles POST /api/invoices with {"order_id": "...", "due_date": "...", "status": "..."}.
func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req app.CreateInvoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateInvoice(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteInvoice(r.Context(), chi.URLParam(r, "ref")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) transitionInvoice(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.TransitionInvoice(r.Context(), chi.URLParam(r, "ref"), req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// updateDueDate handles PUT /api/invoices/{ref}/due-date with {"due_date": "2024-05-31"}.
func (h *Handler) updateDueDate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DueDate string `json:"due_date"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.UpdateInvoiceDueDate(r.Context(), chi.URLParam(r, "ref"), req.DueDate)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
