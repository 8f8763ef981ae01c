package web

import (
	"net/http"

	"quote-to-cash/internal/core"

	"github.com/go-chi/chi/v5"
)

// ── Customers ────────────────────────────────────────────────────────────────

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListCustomers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Customer)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req core.CustomerInput
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateCustomer(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Customer)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	var req core.CustomerInput
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.UpdateCustomer(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Customer)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCustomer(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Products ─────────────────────────────────────────────────────────────────

// listProducts handles GET /api/products?category=Software.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListProducts(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Product)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req core.ProductInput
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateProduct(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req core.ProductInput
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Product)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
