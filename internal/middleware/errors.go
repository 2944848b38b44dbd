package middleware

import "license-admin-go/internal/core"

// ErrorResponse mirrors api.ErrorResponse; it is defined here to avoid an import cycle.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details string       `json:"details,omitempty"`
	Notice  *core.Notice `json:"notice,omitempty"`
}

// Context keys set by the middleware.
const (
	ContextKeyOperator  = "operatorEmail"
	ContextKeyUID       = "operatorUID"
	ContextKeyRequestID = "requestID"
)
