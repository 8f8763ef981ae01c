package web

import (
	"net/http"

	"quote-to-cash/internal/app"
	"quote-to-cash/internal/core"

	"github.com/go-chi/chi/v5"
)

// listQuotes handles GET /api/quotes?status=sent.
func (h *Handler) listQuotes(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListQuotes(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// getQuote handles GET /api/quotes/{ref}; ref is an id or a quote number.
func (h *Handler) getQuote(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetQuote(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) createQuote(w http.ResponseWriter, r *http.Request) {
	var req app.QuoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateQuote(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

func (h *Handler) updateQuote(w http.ResponseWriter, r *http.Request) {
	var req app.QuoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.UpdateQuote(r.Context(), chi.URLParam(r, "ref"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) deleteQuote(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteQuote(r.Context(), chi.URLParam(r, "ref")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// transitionQuote handles POST /api/quotes/{ref}/status with {"status": "..."}.
func (h *Handler) transitionQuote(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.TransitionQuote(r.Context(), chi.URLParam(r, "ref"), req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// orderFromQuote handles POST /api/quotes/{ref}/order. The body is optional.
func (h *Handler) orderFromQuote(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateOrder(r.Context(), app.CreateOrderRequest{
		QuoteRef: chi.URLParam(r, "ref"),
		Status:   req.Status,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

// previewQuote handles POST /api/quotes/preview: live totals for the quote form.
func (h *Handler) previewQuote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Lines []core.LineInput `json:"lines"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	preview, err := h.svc.PreviewQuote(r.Context(), req.Lines)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, preview)
}

// draftQuote handles POST /api/quotes/draft with {"text": "..."}.
func (h *Handler) draftQuote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.DraftQuote(r.Context(), req.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
