package http

import (
	"net/http"

	"autofleet-backoffice/internal/service"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *DashboardHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.dashboardService.Revenue(r.Context(), r.URL.Query().Get("period"), queryInt(r, "year"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": buckets})
}

func (h *DashboardHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.dashboardService.Alerts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": alerts})
}
