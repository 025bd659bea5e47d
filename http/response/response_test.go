package response_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "coursehub/errors"
	"coursehub/http/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) response.StandardResponse {
	t.Helper()
	var body response.StandardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestSuccessResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	response.SuccessResponse(rec, http.StatusCreated, "Payment submitted", map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeBody(t, rec)
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "Payment submitted", body.Message)
}

func TestErrorMapsKindToStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation",
			err:        apperrors.NewValidationError(map[string]string{"amount": "must be greater than 0"}),
			wantStatus: http.StatusBadRequest,
			wantCode:   "ValidationError",
		},
		{
			name:       "not found",
			err:        apperrors.E(apperrors.NotFound, apperrors.CodePaymentNotFound, "payment not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   "PaymentNotFound",
		},
		{
			name:       "conflict",
			err:        apperrors.NewAlreadyProcessed("accepted", nil),
			wantStatus: http.StatusConflict,
			wantCode:   "AlreadyProcessed",
		},
		{
			name:       "internal",
			err:        apperrors.E(apperrors.Internal, apperrors.CodeStorageError, "storage operation failed"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "StorageError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			response.Error(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, "error", body.Status)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestErrorCarriesFieldsAndMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Error(rec, apperrors.NewDuplicateReference("pay-123"))

	body := decodeBody(t, rec)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "pay-123", body.Meta["conflicting_payment_id"])

	rec = httptest.NewRecorder()
	response.Error(rec, apperrors.NewValidationError(map[string]string{"student_phone": "invalid phone format"}))
	body = decodeBody(t, rec)
	assert.Equal(t, "invalid phone format", body.Fields["student_phone"])
}

func TestErrorHidesUnclassifiedDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Error(rec, fmt.Errorf("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "internal server error", body.Error)
	assert.NotContains(t, body.Error, "password")
}
