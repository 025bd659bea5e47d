package response

import (
	"encoding/json"
	"net/http"

	apperrors "coursehub/errors"
	"coursehub/logger"
)

// StandardResponse represents the standard API response structure
type StandardResponse struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    interface{}            `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Code    string                 `json:"code,omitempty"`
	Fields  map[string]string      `json:"fields,omitempty"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

// SuccessResponse sends a success response with given status code, message, and data
func SuccessResponse(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	response := StandardResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	}
	SendJSON(w, statusCode, response)
}

// ErrorResponse sends an error response with given status code and error message
func ErrorResponse(w http.ResponseWriter, statusCode int, errorMsg string) {
	response := StandardResponse{
		Status: "error",
		Error:  errorMsg,
	}
	SendJSON(w, statusCode, response)
}

// Error maps an application error onto the HTTP response: the error's
// kind picks the status code, and its stable code, field details and
// meta context travel in the body for clients to branch on.
func Error(w http.ResponseWriter, err error) {
	var e *apperrors.Error
	if !apperrors.As(err, &e) {
		logger.Error("Unhandled error: %v", err)
		ErrorResponse(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if e.Kind == apperrors.Internal || e.Kind == apperrors.Other {
		logger.Error("Internal error (%s): %v", e.Code, err)
	}

	SendJSON(w, statusFromKind(e.Kind), StandardResponse{
		Status: "error",
		Error:  e.Message,
		Code:   string(e.Code),
		Fields: e.Fields,
		Meta:   e.Meta,
	})
}

func statusFromKind(k apperrors.Kind) int {
	switch k {
	case apperrors.Invalid:
		return http.StatusBadRequest
	case apperrors.NotFound:
		return http.StatusNotFound
	case apperrors.Conflict:
		return http.StatusConflict
	case apperrors.Unauthorized:
		return http.StatusUnauthorized
	case apperrors.Forbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// SendJSON encodes and sends a JSON response
func SendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}
