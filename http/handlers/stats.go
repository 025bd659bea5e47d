package handlers

import (
	"net/http"

	"coursehub/http/response"
	"coursehub/services"
	"coursehub/utils"
)

// StatsHandler serves the payment statistics rollups.
type StatsHandler struct {
	stats *services.StatisticsService
}

// NewStatsHandler creates a new StatsHandler instance
func NewStatsHandler(stats *services.StatisticsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// GetPaymentStatistics aggregates counts, sums and the daily trend for a
// period.
// GET /admin/payments/stats?period=7d
// GET /admin/payments/stats?period=custom&from=2026-08-01&to=2026-08-28
func (h *StatsHandler) GetPaymentStatistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	timeFilters, err := utils.ParseTimeFilters(r)
	if err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	period := r.URL.Query().Get("period")
	stats, err := h.stats.GetPaymentStatistics(r.Context(), period, timeFilters.From, timeFilters.To)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.SuccessResponse(w, http.StatusOK, "Payment statistics", stats)
}
