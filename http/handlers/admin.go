package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"coursehub/http/response"
	"coursehub/logger"
	"coursehub/models"
	"coursehub/repository"
	"coursehub/services"
	"coursehub/utils"
)

// AdminHandler serves the admin review endpoints: listing, single and
// bulk decisions, repair and spreadsheet export.
type AdminHandler struct {
	payments  *services.PaymentService
	decisions *services.DecisionService
}

// NewAdminHandler creates a new AdminHandler instance
func NewAdminHandler(payments *services.PaymentService, decisions *services.DecisionService) *AdminHandler {
	return &AdminHandler{payments: payments, decisions: decisions}
}

// ListPayments returns a filtered, sorted, paginated page of payments
// plus the all-statuses counters for the same filter.
// GET /admin/payments?status=pending&search=...&from=...&to=...&limit=20&offset=0&sort_by=amount&sort_order=desc
func (h *AdminHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	payments, counters, err := h.payments.ListPayments(r.Context(), *filter)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.SuccessResponse(w, http.StatusOK, "Payments retrieved", map[string]interface{}{
		"payments": payments,
		"counters": counters,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

// ExportPayments streams the filtered payment listing as a spreadsheet.
// GET /admin/payments/export?status=...&from=...&to=...
func (h *AdminHandler) ExportPayments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=payments_%s.xlsx", time.Now().UTC().Format("20060102_150405")))

	if err := h.payments.ExportPayments(r.Context(), *filter, w); err != nil {
		logger.Error("Error exporting payments: %v", err)
	}
}

// DecidePayment applies one accept/reject decision.
// POST /admin/payments/decide
func (h *AdminHandler) DecidePayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		PaymentID string `json:"payment_id"`
		Decision  string `json:"decision"`
		DecidedBy string `json:"decided_by"`
		Reason    string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := utils.ValidateReason(req.Reason); err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	payment, err := h.decisions.DecidePayment(r.Context(), req.PaymentID, req.Decision, req.DecidedBy, req.Reason)
	if err != nil {
		response.Error(w, err)
		return
	}

	logger.Info("Payment %s decided as %s by %s", payment.ID, payment.Status, req.DecidedBy)
	response.SuccessResponse(w, http.StatusOK, "Payment decided", payment)
}

// BulkDecidePayments applies one decision to a batch of payment ids.
// POST /admin/payments/bulk-decide
func (h *AdminHandler) BulkDecidePayments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		PaymentIDs []string `json:"payment_ids"`
		Decision   string   `json:"decision"`
		DecidedBy  string   `json:"decided_by"`
		Reason     string   `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.PaymentIDs) == 0 {
		response.ErrorResponse(w, http.StatusBadRequest, "payment_ids must not be empty")
		return
	}

	result, err := h.decisions.BulkDecidePayments(r.Context(), req.PaymentIDs, req.Decision, req.DecidedBy, req.Reason)
	if err != nil {
		response.Error(w, err)
		return
	}

	logger.Info("Bulk decision %s: %d of %d payments updated", req.Decision, result.UpdatedCount, result.RequestedCount)
	response.SuccessResponse(w, http.StatusOK, "Bulk decision applied", result)
}

// RepairPayment re-runs enrollment synchronization for a decided payment.
// POST /admin/payments/repair
func (h *AdminHandler) RepairPayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		PaymentID string `json:"payment_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.decisions.RepairPayment(r.Context(), req.PaymentID); err != nil {
		response.Error(w, err)
		return
	}

	response.SuccessResponse(w, http.StatusOK, "Enrollment state synchronized", map[string]interface{}{
		"payment_id": req.PaymentID,
	})
}

// parseListFilter builds the store filter from list query parameters.
func parseListFilter(r *http.Request) (*repository.ListFilter, error) {
	filter := &repository.ListFilter{
		Search: r.URL.Query().Get("search"),
	}

	if str := r.URL.Query().Get("status"); str != "" {
		status := models.PaymentStatus(str)
		if !status.Valid() {
			return nil, fmt.Errorf("invalid status: must be pending, accepted or rejected")
		}
		filter.Status = &status
	}

	timeFilters, err := utils.ParseTimeFilters(r)
	if err != nil {
		return nil, err
	}
	filter.From = timeFilters.From
	filter.To = timeFilters.To

	pagination, err := utils.ParsePagination(r)
	if err != nil {
		return nil, err
	}
	filter.Limit = pagination.Limit
	filter.Offset = pagination.Offset

	sort, err := utils.ParseSort(r, "created_at", "amount", "decided_at", "student_name")
	if err != nil {
		return nil, err
	}
	filter.SortBy = sort.SortBy
	filter.SortDesc = sort.SortDesc

	return filter, nil
}
