package web

import (
	"net/http"

	"quote-to-cash/internal/app"

	"github.com/go-chi/chi/v5"
)

// listOrders handles GET /api/orders?status=confirmed.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetOrder(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// createOrder handles POST /api/orders with {"quote_id": "...", "status": "..."}.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req app.CreateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteOrder(r.Context(), chi.URLParam(r, "ref")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) transitionOrder(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.TransitionOrder(r.Context(), chi.URLParam(r, "ref"), req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// invoiceFromOrder handles POST /api/orders/{ref}/invoice. The body is optional.
func (h *Handler) invoiceFromOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DueDate string `json:"due_date"`
		Status  string `json:"status"`
	}
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateInvoice(r.Context(), app.CreateInvoiceRequest{
		OrderRef: chi.URLParam(r, "ref"),
		DueDate:  req.DueDate,
		Status:   req.Status,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}
