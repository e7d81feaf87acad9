package handler

import (
	"net/http"

	"github.com/edvin/mailings/internal/api/response"
	"github.com/edvin/mailings/internal/core"
)

type Dashboard struct {
	svc *core.DashboardService
}

func NewDashboard(svc *core.DashboardService) *Dashboard {
	return &Dashboard{svc: svc}
}

func (h *Dashboard) Stats(w http.ResponseWriter, r *http.Request) {
	_, scope := actorScope(r)
	stats, err := h.svc.Stats(r.Context(), scope)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, stats)
}
