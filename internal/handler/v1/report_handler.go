package v1

import (
	"github.com/gin-gonic/gin"
)

func (h *Handler) upcomingAppointments(c *gin.Context) {
	days := parseQueryInt(c, "days", h.reports.UpcomingDays)
	rows, err := h.svc.Reports.UpcomingAppointments(c.Request.Context(), days)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, rows)
}

func (h *Handler) lowStock(c *gin.Context) {
	threshold := parseQueryInt(c, "threshold", h.reports.LowStockThreshold)
	rows, err := h.svc.Reports.LowStock(c.Request.Context(), threshold)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, rows)
}
