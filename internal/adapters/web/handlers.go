package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"quote-to-cash/internal/app"

	"github.com/go-chi/chi/v5"
)

// Options configures the cross-cutting middleware of the API.
type Options struct {
	AllowedOrigins string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Handler serves the API over an ApplicationService.
type Handler struct {
	svc app.ApplicationService
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, opts Options) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(opts.AllowedOrigins))

	// ── Health ───────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	r.Group(func(r chi.Router) {
		r.Use(RateLimit(opts.RateLimitRPS, opts.RateLimitBurst))
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		// ── Catalog ──────────────────────────────────────────────────────────
		r.Route("/api/customers", func(r chi.Router) {
			r.Get("/", h.listCustomers)
			r.Post("/", h.createCustomer)
			r.Get("/{id}", h.getCustomer)
			r.Put("/{id}", h.updateCustomer)
			r.Delete("/{id}", h.deleteCustomer)
		})
		r.Route("/api/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Post("/", h.createProduct)
			r.Get("/{id}", h.getProduct)
			r.Put("/{id}", h.updateProduct)
			r.Delete("/{id}", h.deleteProduct)
		})

		// ── Quotes ───────────────────────────────────────────────────────────
		r.Route("/api/quotes", func(r chi.Router) {
			r.Get("/", h.listQuotes)
			r.Post("/", h.createQuote)
			r.Post("/preview", h.previewQuote)
			r.Post("/draft", h.draftQuote)
			r.Get("/{ref}", h.getQuote)
			r.Put("/{ref}", h.updateQuote)
			r.Delete("/{ref}", h.deleteQuote)
			r.Post("/{ref}/status", h.transitionQuote)
			r.Post("/{ref}/order", h.orderFromQuote)
		})

		// ── Orders ───────────────────────────────────────────────────────────
		r.Route("/api/orders", func(r chi.Router) {
			r.Get("/", h.listOrders)
			r.Post("/", h.createOrder)
			r.Get("/{ref}", h.getOrder)
			r.Delete("/{ref}", h.deleteOrder)
			r.Post("/{ref}/status", h.transitionOrder)
			r.Post("/{ref}/invoice", h.invoiceFromOrder)
		})

		// ── Invoices ─────────────────────────────────────────────────────────
		r.Route("/api/invoices", func(r chi.Router) {
			r.Get("/", h.listInvoices)
			r.Post("/", h.createInvoice)
			r.Get("/{ref}", h.getInvoice)
			r.Delete("/{ref}", h.deleteInvoice)
			r.Post("/{ref}/status", h.transitionInvoice)
			r.Put("/{ref}/due-date", h.updateDueDate)
		})

		// ── Dashboard ────────────────────────────────────────────────────────
		r.Get("/api/dashboard", h.dashboard)
		r.Get("/api/dashboard/sales", h.salesChart)
		r.Get("/api/dashboard/activity", h.recentActivity)

		// ── Maintenance ──────────────────────────────────────────────────────
		r.Post("/api/maintenance/sweep", h.sweep)
	})

	return r
}

// health reports liveness.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// sweep handles POST /api/maintenance/sweep.
func (h *Handler) sweep(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.SweepExpired(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	return decodeBody(w, r, v, false)
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be absent.
// An empty body, chunked or not, leaves v untouched.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	return decodeBody(w, r, v, true)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// queryInt reads a positive integer query parameter, falling back to def when absent.
func queryInt(w http.ResponseWriter, r *http.Request, key string, def int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		writeError(w, r, key+" must be a positive integer", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return n, true
}

type statusRequest struct {
	Status string `json:"status"`
}
