package web

import "net/http"

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetDashboard(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Metrics)
}

// salesChart handles GET /api/dashboard/sales?months=6.
func (h *Handler) salesChart(w http.ResponseWriter, r *http.Request) {
	months, ok := queryInt(w, r, "months", 6)
	if !ok {
		return
	}
	result, err := h.svc.GetSalesChart(r.Context(), months)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// recentActivity handles GET /api/dashboard/activity?limit=10.
func (h *Handler) recentActivity(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit", 10)
	if !ok {
		return
	}
	result, err := h.svc.GetRecentActivity(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
