package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/csg33k/txn-intake/internal/domain"
)

type apiError struct {
	Status       string                  `json:"status"`
	Code         string                  `json:"code"`
	Message      string                  `json:"message"`
	RequestID    string                  `json:"requestId,omitempty"`
	Fields       domain.ValidationErrors `json:"fields,omitempty"`
	SubmissionID string                  `json:"submissionId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{
		"status": "success",
		"data":   data,
	})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, apiError{
		Status:    "error",
		Code:      code,
		Message:   message,
		RequestID: requestIDFromContext(r.Context()),
	})
}

// writeDomainError maps err onto the API envelope. submissionID is set
// when the submission was stored before the failure.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, submissionID string) {
	status, code, msg := mapDomainError(err)
	body := apiError{
		Status:       "error",
		Code:         code,
		Message:      msg,
		RequestID:    requestIDFromContext(r.Context()),
		SubmissionID: submissionID,
	}
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		body.Fields = verrs
	}
	writeJSON(w, status, body)
}

func mapDomainError(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "VALIDATION_ERROR", err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusUnprocessableEntity, "CONFIGURATION_ERROR", err.Error()
	case errors.Is(err, domain.ErrMapping):
		return http.StatusUnprocessableEntity, "MAPPING_ERROR", err.Error()
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
	}
}
