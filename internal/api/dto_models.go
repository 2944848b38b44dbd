package api

import "license-admin-go/internal/core"

// ErrorResponse is the body of every failed request. Notice is what the
// dashboard toasts; Prompt is set when the action awaits confirmation.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details string       `json:"details,omitempty"`
	Notice  *core.Notice `json:"notice,omitempty"`
	Prompt  string       `json:"prompt,omitempty"`
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string       `json:"message"`
	Notice  *core.Notice `json:"notice,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
}
