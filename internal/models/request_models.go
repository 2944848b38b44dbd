package models

// TogglePRORequest is the body of POST /users/:id/pro. Plan applies to
// activation only and defaults to basic.
type TogglePRORequest struct {
	Activate  bool   `json:"activate"`
	Plan      string `json:"plan"`
	Confirmed bool   `json:"confirmed"`
}

// ActivateTrialsRequest is the body of POST /trials. Emails is the raw
// newline-delimited block pasted by the operator.
type ActivateTrialsRequest struct {
	Emails    string `json:"emails"`
	Confirmed bool   `json:"confirmed"`
}

// UpdateUserDetailsRequest carries the scalar fields of the detail editor.
// MonthlyValue nil clears the value.
type UpdateUserDetailsRequest struct {
	ContactInfo    string   `json:"contactInfo"`
	MonthlyValue   *float64 `json:"monthlyValue"`
	Notes          string   `json:"notes"`
	ProActivatedBy string   `json:"proActivatedBy"`
}

// AddPaymentRequest is the body of POST /users/:id/payments.
type AddPaymentRequest struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
	Note  string  `json:"note"`
}

// SetFilterRequest is the body of PUT /users/filter.
type SetFilterRequest struct {
	Filter string `json:"filter" binding:"required"`
}

// SignInFailureRequest reports a failed client-side sign-in attempt.
type SignInFailureRequest struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
