package models

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC 7807 body, written with Content-Type application/problem+json.
type Problem struct {
	// Type is a URI reference that identifies the problem type.
	Type string `json:"type"`

	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`

	// Status is the HTTP status code for this occurrence of the problem.
	Status int `json:"status"`

	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`

	// Instance is a URI reference that identifies the specific occurrence.
	Instance string `json:"instance,omitempty"`

	// TraceID is the request trace identifier for debugging.
	TraceID string `json:"traceId"`

	// Errors contains structured field validation errors.
	Errors []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ProblemType constants for standard error types.
const (
	ProblemTypeValidation       = "https://api.roomy.ng/problems/validation-error"
	ProblemTypeBookingInvalid   = "https://api.roomy.ng/problems/booking-invalid"
	ProblemTypeUnauthorized     = "https://api.roomy.ng/problems/unauthorized"
	ProblemTypeTLSRequired      = "https://api.roomy.ng/problems/tls-required"
	ProblemTypeNotFound         = "https://api.roomy.ng/problems/not-found"
	ProblemTypeConflict         = "https://api.roomy.ng/problems/conflict"
	ProblemTypeUnsupportedMedia = "https://api.roomy.ng/problems/unsupported-media-type"
	ProblemTypeTooManyRequests  = "https://api.roomy.ng/problems/too-many-requests"
	ProblemTypeInternal         = "https://api.roomy.ng/problems/internal-error"
	ProblemTypeBadGateway       = "https://api.roomy.ng/problems/bad-gateway"
	ProblemTypeUnavailable      = "https://api.roomy.ng/problems/service-unavailable"
)

// NewProblem creates a Problem with no detail.
func NewProblem(problemType, title string, status int, traceID string) *Problem {
	return &Problem{
		Type:    problemType,
		Title:   title,
		Status:  status,
		TraceID: traceID,
	}
}

// Write sends the problem with its status and the trace id as X-Request-Id.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.Header().Set("X-Request-Id", p.TraceID)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func detailed(problemType, title string, status int, traceID, detail string, errors []FieldError) *Problem {
	p := NewProblem(problemType, title, status, traceID)
	p.Detail = detail
	p.Errors = errors
	return p
}

// NewBadRequest creates a 400 listing the offending fields.
func NewBadRequest(traceID, detail string, errors []FieldError) *Problem {
	return detailed(ProblemTypeValidation, "Validation error", http.StatusBadRequest, traceID, detail, errors)
}

// NewUnauthorized creates a 401.
func NewUnauthorized(traceID, detail string) *Problem {
	return detailed(ProblemTypeUnauthorized, "Unauthorized", http.StatusUnauthorized, traceID, detail, nil)
}

// NewNotFound creates a 404.
func NewNotFound(traceID, detail string) *Problem {
	return detailed(ProblemTypeNotFound, "Not found", http.StatusNotFound, traceID, detail, nil)
}

// NewConflict creates a 409.
func NewConflict(traceID, detail string) *Problem {
	return detailed(ProblemTypeConflict, "Conflict", http.StatusConflict, traceID, detail, nil)
}

// NewUnprocessable creates a 422 for a well-formed request the current
// booking selection cannot satisfy. Errors list every failing condition.
func NewUnprocessable(traceID, detail string, errors []FieldError) *Problem {
	return detailed(ProblemTypeBookingInvalid, "Booking selection incomplete", http.StatusUnprocessableEntity, traceID, detail, errors)
}

// NewTooManyRequests creates a 429.
func NewTooManyRequests(traceID, detail string) *Problem {
	return detailed(ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests, traceID, detail, nil)
}

// NewInternalError creates a 500.
func NewInternalError(traceID, detail string) *Problem {
	return detailed(ProblemTypeInternal, "Internal server error", http.StatusInternalServerError, traceID, detail, nil)
}

// NewBadGateway creates a 502.
func NewBadGateway(traceID, detail string) *Problem {
	return detailed(ProblemTypeBadGateway, "Bad gateway", http.StatusBadGateway, traceID, detail, nil)
}

// NewServiceUnavailable creates a 503.
func NewServiceUnavailable(traceID, detail string) *Problem {
	return detailed(ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable, traceID, detail, nil)
}
