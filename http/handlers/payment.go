package handlers

import (
	"net/http"
	"strconv"

	"coursehub/http/response"
	"coursehub/logger"
	"coursehub/services"
)

// 10 MB cap on the multipart form, screenshot included.
const maxSubmissionBytes = 10 << 20

// PaymentHandler serves the student-facing submission endpoints.
type PaymentHandler struct {
	payments *services.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler instance
func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// SubmitPayment accepts a proof-of-transfer submission.
// POST /payments (multipart/form-data)
func (h *PaymentHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxSubmissionBytes); err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	req := services.SubmitPaymentRequest{
		StudentID:    r.FormValue("student_id"),
		CourseID:     r.FormValue("course_id"),
		StudentName:  r.FormValue("student_name"),
		StudentPhone: r.FormValue("student_phone"),
		StudentEmail: r.FormValue("student_email"),
		Currency:     r.FormValue("currency"),
		Reference:    r.FormValue("transaction_reference"),
	}

	if amountStr := r.FormValue("amount"); amountStr != "" {
		amount, err := strconv.ParseFloat(amountStr, 64)
		if err != nil {
			response.ErrorResponse(w, http.StatusBadRequest, "invalid amount: must be a number")
			return
		}
		req.Amount = amount
	}

	file, header, err := r.FormFile("screenshot")
	if err == nil {
		defer file.Close()
		req.Screenshot = file
		req.ScreenshotFilename = header.Filename
	}

	result, err := h.payments.SubmitPayment(r.Context(), req)
	if err != nil {
		response.Error(w, err)
		return
	}

	logger.Info("Payment %s submitted by student %s", result.PaymentID, req.StudentID)
	response.SuccessResponse(w, http.StatusCreated, "Payment submitted", result)
}

// CheckReference reports whether a transaction reference is still free.
// GET /payments/check-reference?reference=TXN_...
func (h *PaymentHandler) CheckReference(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reference := r.URL.Query().Get("reference")
	available, err := h.payments.CheckReferenceAvailable(r.Context(), reference)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.SuccessResponse(w, http.StatusOK, "Reference availability", map[string]interface{}{
		"reference": reference,
		"available": available,
	})
}
